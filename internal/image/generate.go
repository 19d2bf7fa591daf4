package image

import (
	"context"
	"fmt"
	"time"

	"github.com/synthmed/radgen/internal/config"
	"github.com/synthmed/radgen/internal/prompt"
	"github.com/synthmed/radgen/internal/safety"
)

// Params is one request to the diffusion backend.
type Params struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Steps          int    `json:"steps"`
	Seed           int64  `json:"seed"`
}

// DefaultNegativePrompt steers the backend away from non-clinical renderings.
const DefaultNegativePrompt = "text, watermark, low quality, blurry, distorted, deformed anatomy, unrealistic, cartoon, drawing"

type Generator interface {
	Generate(context.Context, Params) ([]byte, error)
}

// Artifact is one generated image plus everything needed to reproduce it.
// The store owns it once persisted; nothing upstream keeps a reference.
type Artifact struct {
	Data      []byte
	Prompt    prompt.Prompt
	Request   config.Request
	Seed      int64
	CreatedAt time.Time
	Verdicts  []safety.Verdict
}

// GenerationError surfaces once the retries for one image are exhausted.
type GenerationError struct {
	Seed int64
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("image generation failed (seed %d): %v", e.Seed, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
