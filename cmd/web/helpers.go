package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/myrjola/huntdesk/internal/ai"
	"github.com/myrjola/huntdesk/internal/errors"
	"github.com/myrjola/huntdesk/internal/playbook"
	"github.com/myrjola/huntdesk/internal/repositories"
	"github.com/myrjola/huntdesk/internal/validation"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error   string                  `json:"error"`
	Details []validation.FieldError `json:"details,omitempty"`
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "marshal response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(body); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "failed to write response", errors.SlogError(err))
	}
}

// readJSON decodes a single JSON value from the request body into dst.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	app.writeJSON(w, r, http.StatusInternalServerError, errorBody{Error: "Internal server error", Details: nil})
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, message string) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelDebug, http.StatusText(status),
		slog.String("method", method), slog.String("uri", uri), slog.String("message", message))
	app.writeJSON(w, r, status, errorBody{Error: message, Details: nil})
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.clientError(w, r, http.StatusNotFound, "Route not found")
}

// handleError maps err to a response status by its kind.
func (app *application) handleError(w http.ResponseWriter, r *http.Request, err error, notFoundMessage string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "validation failed", errors.SlogError(err))
		app.writeJSON(w, r, http.StatusBadRequest, errorBody{Error: "Validation failed", Details: verr.Fields})
	case errors.Is(err, repositories.ErrNotFound), errors.Is(err, playbook.ErrNoHunts):
		app.clientError(w, r, http.StatusNotFound, notFoundMessage)
	case errors.Is(err, ai.ErrExternalService):
		app.logger.LogAttrs(r.Context(), slog.LevelError, "external service failed", errors.SlogError(err))
		app.writeJSON(w, r, http.StatusBadGateway, errorBody{Error: "External service error", Details: nil})
	default:
		app.serverError(w, r, err)
	}
}
