// Package httpapi exposes a health check and an endpoint that hosted cron
// services call to trigger the daily backup run.
package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"mindvault/internal/scheduler"
)

// SecretHeader carries the shared secret on the trigger endpoint.
const SecretHeader = "X-Cron-Secret"

// BackupTrigger runs one backup pass over every user.
type BackupTrigger interface {
	RunOnce(ctx context.Context) []scheduler.Delivery
}

// Handler serves the HTTP surface.
type Handler struct {
	Router chi.Router

	backups BackupTrigger
	secret  string
	log     *slog.Logger
}

type backupResponse struct {
	Users      int                  `json:"users"`
	Sent       int                  `json:"sent"`
	Deliveries []scheduler.Delivery `json:"deliveries"`
}

// NewHandler builds the router. An empty secret leaves the trigger open.
func NewHandler(backups BackupTrigger, secret string, log *slog.Logger) *Handler {
	h := &Handler{
		backups: backups,
		secret:  secret,
		log:     log.With("component", "httpapi"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.withLogging)

	r.Get("/healthz", h.Health)
	r.Post("/cron/backup", h.TriggerBackup)

	h.Router = r
	return h
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// TriggerBackup runs one scheduled-backup pass synchronously.
func (h *Handler) TriggerBackup(w http.ResponseWriter, r *http.Request) {
	if h.secret != "" {
		got := r.Header.Get(SecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
	}

	deliveries := h.backups.RunOnce(r.Context())
	resp := backupResponse{Users: len(deliveries), Deliveries: deliveries}
	for _, d := range deliveries {
		if d.Sent {
			resp.Sent++
		}
	}
	if resp.Deliveries == nil {
		resp.Deliveries = []scheduler.Delivery{}
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("write response", "error", err)
	}
}

func (h *Handler) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
