package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"campaignflow/internal/pipeline"
)

// PipelineStream runs the prompt workflow, streaming stage events as
// newline-delimited JSON. Without an imageUrl in the request the stream ends
// on an awaiting-input frame; a second request carrying the URL resumes and
// runs through the video prompt.
func (a *App) PipelineStream(w http.ResponseWriter, r *http.Request) {
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

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), a.StreamTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	_, _ = a.Runner.RunPromptFlow(ctx, pipeline.PromptFlowRequest{
		Brief:    brief,
		ImageURL: req.ImageURL,
	}, pipeline.NewEmitter(w, a.Logger))
}
