// Package health serves a readiness probe over the service's backing stores.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// Check reports whether one dependency is reachable.
type Check func(ctx context.Context) error

type namedCheck struct {
	name  string
	check Check
}

// Handler runs every registered check on each probe.
type Handler struct {
	checks  []namedCheck
	timeout time.Duration
}

func NewHandler(timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Handler{timeout: timeout}
}

// Add registers a named check.
func (h *Handler) Add(name string, c Check) *Handler {
	h.checks = append(h.checks, namedCheck{name: name, check: c})
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.healthz)
}

type report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	results := h.run(ctx)
	rep := report{Status: "ok", Checks: results}
	status := http.StatusOK
	for _, v := range results {
		if v != "ok" {
			rep.Status = "unavailable"
			status = http.StatusServiceUnavailable
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(rep)
}

func (h *Handler) run(ctx context.Context) map[string]string {
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		out = make(map[string]string, len(h.checks))
	)
	for _, c := range h.checks {
		wg.Add(1)
		go func(c namedCheck) {
			defer wg.Done()
			res := "ok"
			if err := c.check(ctx); err != nil {
				res = err.Error()
			}
			mu.Lock()
			out[c.name] = res
			mu.Unlock()
		}(c)
	}
	wg.Wait()
	return out
}

// Names lists the registered checks in sorted order.
func (h *Handler) Names() []string {
	names := make([]string, 0, len(h.checks))
	for _, c := range h.checks {
		names = append(names, c.name)
	}
	sort.Strings(names)
	return names
}
