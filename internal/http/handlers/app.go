package handlers

import (
	"encoding/json"
	"net/http"

	"imagestudio/internal/infra"
	"imagestudio/internal/series"
	"imagestudio/internal/session"
)

// App carries the wired dependencies for every handler.
type App struct {
	Config       *infra.Config
	Logger       infra.Logger
	Generator    series.Generator
	Orchestrator *series.Orchestrator
	Sessions     *session.Manager
}

func NewApp(cfg *infra.Config, logger infra.Logger, generator series.Generator, orchestrator *series.Orchestrator, sessions *session.Manager) *App {
	return &App{
		Config:       cfg,
		Logger:       logger,
		Generator:    generator,
		Orchestrator: orchestrator,
		Sessions:     sessions,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) fail(w http.ResponseWriter, code int, msg string) {
	a.json(w, code, map[string]string{"error": msg})
}
