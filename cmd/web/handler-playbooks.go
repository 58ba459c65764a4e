package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/myrjola/huntdesk/internal/errors"
	"github.com/myrjola/huntdesk/internal/models"
	"github.com/myrjola/huntdesk/internal/render"
)

type playbookList struct {
	Data  []models.Playbook `json:"data"`
	Total int               `json:"total"`
}

// generatePlaybook synthesizes the playbook of a sub-channel from its recent hunts.
func (app *application) generatePlaybook(w http.ResponseWriter, r *http.Request) {
	subChannel := r.PathValue("subChannel")
	pb, err := app.services.GeneratePlaybook(r.Context(), subChannel)
	if err != nil {
		app.handleError(w, r, err, fmt.Sprintf("No hunts found for sub-channel: %s", subChannel))
		return
	}
	app.writeJSON(w, r, http.StatusCreated, pb)
}

func (app *application) getPlaybook(w http.ResponseWriter, r *http.Request) {
	subChannel := r.PathValue("subChannel")
	pb, err := app.services.Playbooks.Get(r.Context(), subChannel)
	if err != nil {
		app.handleError(w, r, err, fmt.Sprintf("No playbook found for sub-channel: %s", subChannel))
		return
	}
	app.writeJSON(w, r, http.StatusOK, pb)
}

// getPlaybookHTML responds with the playbook rendered as an HTML fragment.
func (app *application) getPlaybookHTML(w http.ResponseWriter, r *http.Request) {
	subChannel := r.PathValue("subChannel")
	pb, err := app.services.Playbooks.Get(r.Context(), subChannel)
	if err != nil {
		app.handleError(w, r, err, fmt.Sprintf("No playbook found for sub-channel: %s", subChannel))
		return
	}
	var html string
	if html, err = render.PlaybookHTML(pb.ContentMD); err != nil {
		app.serverError(w, r, errors.Wrap(err, "render playbook", slog.Int("version", pb.Version)))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err = w.Write([]byte(html)); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "failed to write response", errors.SlogError(err))
	}
}

func (app *application) listPlaybooks(w http.ResponseWriter, r *http.Request) {
	playbooks, err := app.services.Playbooks.List(r.Context())
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "list playbooks"))
		return
	}
	app.writeJSON(w, r, http.StatusOK, playbookList{Data: playbooks, Total: len(playbooks)})
}
