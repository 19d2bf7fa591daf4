package store

import (
	"context"
	"time"

	"github.com/synthmed/radgen/internal/image"
	"github.com/synthmed/radgen/internal/safety"
)

// Storer persists artifacts and their sidecar metadata. Store returns the
// path (or key) the image landed at; names are collision-free across runs
// and an existing file is never silently overwritten.
type Storer interface {
	Store(context.Context, image.Artifact) (string, error)
	Put(context.Context, PutParams) (string, error)
}

// PutParams writes an auxiliary file (batch report, feed XML) next to the
// artifacts.
type PutParams struct {
	Name        string
	Data        []byte
	ContentType string
}

// Metadata is the sidecar record stored with every image. It is sufficient
// to reproduce the artifact against the same backend state.
type Metadata struct {
	Modality   string           `json:"modality"`
	Region     string           `json:"region"`
	Detail     string           `json:"detail"`
	Resolution int              `json:"resolution"`
	Steps      int              `json:"steps"`
	Seed       int64            `json:"seed"`
	Angle      string           `json:"angle"`
	Prompt     string           `json:"prompt"`
	Refined    bool             `json:"refined"`
	Provider   string           `json:"llm_provider"`
	SafetyMode string           `json:"safety_mode"`
	Verdicts   []safety.Verdict `json:"safety_verdicts"`
	CreatedAt  time.Time        `json:"created_at"`
	Notice     string           `json:"safety_notice"`
}

const syntheticNotice = "SYNTHETIC - NOT FOR DIAGNOSTIC USE"

func metadataFor(art image.Artifact) Metadata {
	return Metadata{
		Modality:   string(art.Request.Modality),
		Region:     art.Request.Region,
		Detail:     string(art.Request.Detail),
		Resolution: art.Request.Resolution,
		Steps:      art.Request.StepCount(),
		Seed:       art.Seed,
		Angle:      art.Prompt.Angle,
		Prompt:     art.Prompt.Text,
		Refined:    art.Prompt.Refined,
		Provider:   string(art.Request.Provider),
		SafetyMode: string(art.Request.SafetyMode),
		Verdicts:   art.Verdicts,
		CreatedAt:  art.CreatedAt,
		Notice:     syntheticNotice,
	}
}
