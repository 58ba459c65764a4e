package main

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// healthy responds with a JSON object indicating that the server is healthy.
func (app *application) healthy(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok", Timestamp: time.Now().UTC()})
}
