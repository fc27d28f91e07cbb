package account

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/georgemunganga/account-service/internal/common"
	"github.com/georgemunganga/account-service/internal/modules/user"
	"github.com/go-chi/chi/v5"
)

// Handler exposes account HTTP endpoints.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Get("/profile/{id}", h.getProfile)
	r.Put("/profile/{id}", h.updateProfile)
}

type registerBody struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type loginBody struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type registerResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type loginResponse struct {
	Message string           `json:"message"`
	User    *user.PublicUser `json:"user"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	if err := decode(r, &body); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := required("name", body.Name, "email", body.Email, "password", body.Password); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.service.Register(r.Context(), RegisterRequest{
		Name:     *body.Name,
		Email:    *body.Email,
		Password: *body.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, registerResponse{Message: "User registered successfully", ID: res.ID})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if err := decode(r, &body); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := required("email", body.Email, "password", body.Password); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	u, err := h.service.Login(r.Context(), LoginRequest{Email: *body.Email, Password: *body.Password})
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, loginResponse{Message: "Login successful", User: u})
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := h.service.GetProfile(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, u)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}
	var body registerBody
	if err := decode(r, &body); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := required("name", body.Name, "email", body.Email, "password", body.Password); err != nil {
		fail(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.service.UpdateProfile(r.Context(), id, UpdateProfileRequest{
		Name:     *body.Name,
		Email:    *body.Email,
		Password: *body.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	respond(w, http.StatusOK, messageResponse{Message: "Profile updated successfully"})
}

// writeError maps service errors onto status codes. Anything that is not a
// lookup miss or a bad password is reported as 400 with its message.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		fail(w, http.StatusNotFound, "User not found")
	case errors.Is(err, common.ErrInvalidCredentials):
		fail(w, http.StatusBadRequest, "Incorrect password")
	default:
		fail(w, http.StatusBadRequest, err.Error())
	}
}

func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// required takes alternating field names and values and reports the first
// value that was absent from the body.
func required(pairs ...any) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if v, _ := pairs[i+1].(*string); v == nil {
			return fmt.Errorf("missing field: %s", pairs[i])
		}
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user id %q", raw)
	}
	return id, nil
}

func fail(w http.ResponseWriter, status int, detail string) {
	respond(w, status, errorResponse{Detail: detail})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
