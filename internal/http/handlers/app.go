package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"campaignflow/internal/infra"
	"campaignflow/internal/pipeline"
)

// App carries the injected collaborators every handler needs. Construction
// happens once in main; handlers never reach for globals.
type App struct {
	Runner        *pipeline.Runner
	Logger        infra.Logger
	StreamTimeout time.Duration
}

func NewApp(runner *pipeline.Runner, logger infra.Logger, streamTimeout time.Duration) *App {
	return &App{Runner: runner, Logger: logger, StreamTimeout: streamTimeout}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]string{"error": kind, "message": message})
}
