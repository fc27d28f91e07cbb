package activity

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Action names the account event an entry records.
type Action string

const (
	ActionRegistered Action = "registered"
	ActionLogin      Action = "login"
)

// Entry is one document of the activity log. ID is left empty so the driver
// assigns an ObjectID, whose embedded timestamp is the store-side creation time.
// EventID makes redelivery of the same entry idempotent.
type Entry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	EventID   string             `bson:"event_id"`
	Name      string             `bson:"name,omitempty"`
	Email     string             `bson:"email"`
	Action    Action             `bson:"action"`
	CreatedAt time.Time          `bson:"created_at"`
}

// Store appends entries to the activity log.
type Store interface {
	Append(ctx context.Context, e Entry) error
}
