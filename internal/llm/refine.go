package llm

import (
	"context"
	"errors"
)

// Generation settings shared by every provider.
const (
	MaxTokens   = 500
	Temperature = 0.7
)

// ErrEmptyCompletion is returned when a provider answers without usable text.
var ErrEmptyCompletion = errors.New("llm: empty completion")

// Refiner turns a refinement instruction into richer prompt text. Refinement
// is best-effort: callers fall back to their baseline prompt on any error.
type Refiner interface {
	Refine(ctx context.Context, instruction string) (string, error)
}
