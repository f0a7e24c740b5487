package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"campaignflow/internal/pipeline"
)

// Campaign runs the full workflow synchronously and returns the aggregate
// result as one JSON document. Stage events go to the service log only.
func (a *App) Campaign(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	brief := req.toBrief()
	if err := brief.Validate(); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), a.StreamTimeout)
	defer cancel()

	result := a.Runner.RunCampaign(ctx, brief, pipeline.LogSink{Logger: a.Logger})
	if !result.Success {
		a.json(w, http.StatusUnprocessableEntity, result)
		return
	}
	a.json(w, http.StatusOK, result)
}

// CampaignStream runs the full workflow while streaming every stage event to
// the client as newline-delimited JSON. The run finishes server-side even if
// the client goes away mid-stream.
func (a *App) CampaignStream(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	brief := req.toBrief()
	if err := brief.Validate(); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	// Detach from the request context so a client disconnect cannot abort
	// in-flight renders; the stream budget still bounds the run.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), a.StreamTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	a.Runner.RunCampaign(ctx, brief, pipeline.NewEmitter(w, a.Logger))
}
