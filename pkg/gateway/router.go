package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/notifgate/notifgate/pkg/dispatch"
	"github.com/notifgate/notifgate/pkg/notify"
	"github.com/notifgate/notifgate/pkg/publisher"
	"github.com/notifgate/notifgate/pkg/statusstore"
)

// IdempotencyKeyHeader is the conventional header carrying the
// caller-supplied idempotency key; a body field with the same meaning wins.
const IdempotencyKeyHeader = "Idempotency-Key"

// Service is the slice of the dispatcher the HTTP boundary needs.
type Service interface {
	Submit(ctx context.Context, req notify.DispatchRequest) (dispatch.Receipt, error)
	Status(ctx context.Context, id string) (*notify.Record, error)
}

// Healthcheck probes a single backing dependency.
type Healthcheck func(context.Context) error

// Router builds the HTTP handler for the gateway boundary. checks maps a
// dependency name to its probe for /health.
func Router(svc Service, checks map[string]Healthcheck, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/api/v1/notifications", handleSubmit(svc, log))
	r.Get("/api/v1/notifications/{id}", handleStatus(svc))
	r.Get("/health", handleHealth(checks))

	return r
}

type submitRequest struct {
	Channel        string `json:"channel"`
	Priority       string `json:"priority"`
	Recipient      string `json:"recipient"`
	Subject        string `json:"subject,omitempty"`
	Body           string `json:"body"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func handleSubmit(svc Service, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}

		priority, err := notify.ParsePriority(req.Priority)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		key := req.IdempotencyKey
		if key == "" {
			key = r.Header.Get(IdempotencyKeyHeader)
		}

		receipt, err := svc.Submit(r.Context(), notify.DispatchRequest{
			Channel:        notify.Channel(req.Channel),
			Priority:       priority,
			Recipient:      req.Recipient,
			Subject:        req.Subject,
			Body:           req.Body,
			IdempotencyKey: key,
		})
		switch {
		case err == nil && receipt.Duplicate:
			writeJSON(w, http.StatusOK, receipt)
		case err == nil:
			writeJSON(w, http.StatusAccepted, receipt)
		case errors.Is(err, dispatch.ErrValidation):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.Is(err, statusstore.ErrUnavailable):
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "status store unavailable"})
		case errors.Is(err, publisher.ErrBrokerUnavailable):
			// The record stayed queued; the caller should retry.
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "message broker unavailable, retry the submission"})
		default:
			log.Error("submission failed",
				slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}
	}
}

func handleStatus(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !notify.ValidID(id) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed notification id"})
			return
		}

		rec, err := svc.Status(r.Context(), id)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, rec)
		case errors.Is(err, statusstore.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "notification not found"})
		case errors.Is(err, statusstore.ErrUnavailable):
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "status store unavailable"})
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}
	}
}

type healthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
}

func handleHealth(checks map[string]Healthcheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "healthy", Dependencies: make(map[string]string, len(checks))}
		code := http.StatusOK

		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				resp.Dependencies[name] = "down"
				resp.Status = "unhealthy"
				code = http.StatusServiceUnavailable
				continue
			}
			resp.Dependencies[name] = "ok"
		}

		writeJSON(w, code, resp)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
