package text

import (
	"context"
	"fmt"
	"sync"

	"campaignflow/internal/domain"
)

// GenerateRequest carries one natural-language instruction plus optional
// structured context for the model.
type GenerateRequest struct {
	Instruction string
	Context     string
	// JSONOutput asks the model to respond with a JSON document. The caller
	// still parses defensively; models are free-text at heart.
	JSONOutput  bool
	Temperature float64
}

// Generator is the text-generation capability: submit an instruction, receive
// generated text. Stateless per call.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// Capability names bound in the registry.
const (
	CapPromptSynthesis = "prompt-synthesis"
	CapConcepts        = "visual-concepts"
	CapCaptions        = "caption-extraction"
)

// Registry maps capability names to generators. The orchestrator resolves
// every capability it needs once at run start and fails the whole run fast
// when one is missing, instead of null-checking at each call site.
type Registry struct {
	mu         sync.RWMutex
	generators map[string]Generator
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{generators: make(map[string]Generator)}
}

// Bind registers gen under name, replacing any previous binding.
func (r *Registry) Bind(name string, gen Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[name] = gen
}

// Lookup returns the generator bound to name or a stage-fatal error.
func (r *Registry) Lookup(name string) (Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gen, ok := r.generators[name]
	if !ok || gen == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrCapabilityNotBound, name)
	}
	return gen, nil
}
