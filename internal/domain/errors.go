package domain

import "errors"

// Stage-fatal errors abort the whole run with a single terminal error event.
// Everything else in the pipeline is recorded per asset and never escalated.
var (
	ErrEmptyBrief             = errors.New("brief is missing required fields")
	ErrMalformedConceptOutput = errors.New("malformed concept output")
	ErrCapabilityNotBound     = errors.New("capability not bound")
)
