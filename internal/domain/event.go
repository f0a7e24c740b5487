package domain

// PipelineEvent is one frame of the newline-delimited progress stream. Events
// are append-only and strictly ordered: no event may describe a later stage
// before the previous stage's completion event has been emitted.
type PipelineEvent struct {
	Step    string `json:"step"`
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// Recognized step values.
const (
	StepImagePrompt     = "image-prompt"
	StepImageGeneration = "image-generation"
	StepImageURL        = "image-url"
	StepVideoPrompt     = "video-prompt"
	StepWorkflow        = "workflow"
	StepError           = "error"
)

// Recognized status values.
const (
	StatusGenerating = "generating"
	StatusComplete   = "complete"
	StatusWaiting    = "waiting"
	StatusReceived   = "received"
	StatusFailed     = "failed"
)

// Terminal reports whether the stream closes after this event.
func (e PipelineEvent) Terminal() bool {
	if e.Step == StepError {
		return true
	}
	if e.Step == StepWorkflow && e.Status == StatusComplete {
		return true
	}
	// A run with no seed image parks in an awaiting-input sub-state; the
	// stream closes and a later invocation resumes with the image URL.
	return e.Step == StepImageGeneration && e.Status == StatusWaiting
}
