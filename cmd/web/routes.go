package main

import (
	"net/http"
	"time"

	"github.com/justinas/alice"
)

func (app *application) routes(timeout time.Duration) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/healthy", app.healthy)
	mux.HandleFunc("GET /health", app.healthy)
	mux.Handle("GET /metrics", app.services.Metrics.Handler())

	mux.HandleFunc("POST /api/hunts", app.createHunt)
	mux.HandleFunc("GET /api/hunts", app.listHunts)
	mux.HandleFunc("GET /api/hunts/{id}", app.getHunt)
	mux.HandleFunc("DELETE /api/hunts/{id}", app.deleteHunt)

	mux.HandleFunc("GET /api/playbooks", app.listPlaybooks)
	mux.HandleFunc("POST /api/playbooks/{subChannel}", app.generatePlaybook)
	mux.HandleFunc("GET /api/playbooks/{subChannel}", app.getPlaybook)
	mux.HandleFunc("GET /api/playbooks/{subChannel}/html", app.getPlaybookHTML)

	mux.HandleFunc("/", app.notFound)

	common := alice.New(app.recoverPanic, app.logRequest, secureHeaders)
	return common.Then(timeoutHandler(mux, timeout))
}
