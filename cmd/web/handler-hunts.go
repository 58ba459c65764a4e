package main

import (
	"net/http"

	"github.com/myrjola/huntdesk/internal/errors"
	"github.com/myrjola/huntdesk/internal/models"
	"github.com/myrjola/huntdesk/internal/repositories"
	"github.com/myrjola/huntdesk/internal/validation"
)

const huntNotFound = "Hunt not found"

type pagination struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type huntList struct {
	Data       []models.Hunt `json:"data"`
	Pagination pagination    `json:"pagination"`
}

type message struct {
	Message string `json:"message"`
}

// createHunt runs a hunt synchronously and responds with the stored record.
func (app *application) createHunt(w http.ResponseWriter, r *http.Request) {
	var in validation.HuntInput
	if err := readJSON(w, r, &in); err != nil {
		app.clientError(w, r, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	hunt, err := app.services.CreateHunt(r.Context(), in)
	if err != nil {
		app.handleError(w, r, err, huntNotFound)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, hunt)
}

func (app *application) listHunts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit, offset, err := validation.ParsePagination(query.Get("limit"), query.Get("offset"))
	if err != nil {
		app.handleError(w, r, err, huntNotFound)
		return
	}
	subChannel := query.Get("subChannel")

	var hunts []models.Hunt
	if hunts, err = app.services.Hunts.List(r.Context(), repositories.HuntFilter{
		SubChannel: subChannel,
		Limit:      limit,
		Offset:     offset,
	}); err != nil {
		app.serverError(w, r, errors.Wrap(err, "list hunts"))
		return
	}
	var total int
	if total, err = app.services.Hunts.Count(r.Context(), subChannel); err != nil {
		app.serverError(w, r, errors.Wrap(err, "count hunts"))
		return
	}

	app.writeJSON(w, r, http.StatusOK, huntList{
		Data:       hunts,
		Pagination: pagination{Total: total, Limit: limit, Offset: offset},
	})
}

func (app *application) getHunt(w http.ResponseWriter, r *http.Request) {
	hunt, err := app.services.Hunts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		app.handleError(w, r, err, huntNotFound)
		return
	}
	app.writeJSON(w, r, http.StatusOK, hunt)
}

func (app *application) deleteHunt(w http.ResponseWriter, r *http.Request) {
	if err := app.services.Hunts.Delete(r.Context(), r.PathValue("id")); err != nil {
		app.handleError(w, r, err, huntNotFound)
		return
	}
	app.writeJSON(w, r, http.StatusOK, message{Message: "Hunt deleted successfully"})
}
