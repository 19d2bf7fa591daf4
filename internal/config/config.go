package config

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/synthmed/radgen/internal/safety"
)

// Modality is the imaging technique being simulated.
type Modality string

const (
	ModalityXRay Modality = "xray"
	ModalityMRI  Modality = "mri"
	ModalityCT   Modality = "ct"
)

func ParseModality(s string) (Modality, bool) {
	switch Modality(strings.ToLower(s)) {
	case ModalityXRay, ModalityMRI, ModalityCT:
		return Modality(strings.ToLower(s)), true
	}
	return "", false
}

// ModalityInfo carries the phrasing the prompt templates need.
type ModalityInfo struct {
	Name          string
	TechnicalName string
	Artifacts     []string
}

var modalities = map[Modality]ModalityInfo{
	ModalityXRay: {
		Name:          "X-ray",
		TechnicalName: "radiograph",
		Artifacts:     []string{"scatter", "noise", "grid lines"},
	},
	ModalityMRI: {
		Name:          "MRI",
		TechnicalName: "magnetic resonance imaging",
		Artifacts:     []string{"motion blur", "ringing", "aliasing"},
	},
	ModalityCT: {
		Name:          "CT",
		TechnicalName: "computed tomography",
		Artifacts:     []string{"beam hardening", "ring artifacts", "noise"},
	},
}

func (m Modality) Info() ModalityInfo { return modalities[m] }

// Regions holds the anatomical regions each modality knows how to render.
var Regions = map[Modality][]string{
	ModalityXRay: {"chest", "spine", "pelvis", "knee", "shoulder", "hand", "foot", "skull"},
	ModalityMRI:  {"brain", "spine", "knee", "shoulder", "abdomen", "pelvis"},
	ModalityCT:   {"chest", "brain", "abdomen", "pelvis", "spine", "skull"},
}

// Angles holds the views a modality can be rendered from. One is picked at
// random when the request does not name one.
var Angles = map[Modality][]string{
	ModalityXRay: {"AP", "lateral", "oblique", "PA"},
	ModalityMRI:  {"axial", "sagittal", "coronal", "oblique"},
	ModalityCT:   {"axial", "coronal", "sagittal", "3D reconstruction"},
}

// Detail maps a qualitative level to an inference-step count and to the
// descriptive phrasing used by the prompt templates.
type Detail string

const (
	DetailLow    Detail = "low"
	DetailMedium Detail = "medium"
	DetailHigh   Detail = "high"
)

func ParseDetail(s string) (Detail, bool) {
	switch Detail(strings.ToLower(s)) {
	case DetailLow, DetailMedium, DetailHigh:
		return Detail(strings.ToLower(s)), true
	}
	return "", false
}

type DetailInfo struct {
	Description string
	Steps       int
}

var details = map[Detail]DetailInfo{
	DetailLow:    {Description: "basic anatomical structures visible", Steps: 20},
	DetailMedium: {Description: "clear anatomical detail with some texture", Steps: 35},
	DetailHigh:   {Description: "highly detailed with realistic tissue texture and artifacts", Steps: 50},
}

func (d Detail) Info() DetailInfo { return details[d] }

// Provider selects the LLM used for prompt refinement.
type Provider string

const (
	ProviderClaude      Provider = "claude"
	ProviderGPT         Provider = "gpt"
	ProviderHuggingFace Provider = "huggingface"
	ProviderNone        Provider = "none"
)

func ParseProvider(s string) (Provider, bool) {
	switch Provider(strings.ToLower(s)) {
	case ProviderClaude, ProviderGPT, ProviderHuggingFace, ProviderNone:
		return Provider(strings.ToLower(s)), true
	}
	return "", false
}

// SupportedResolutions are the square output sizes the diffusion backend
// accepts.
var SupportedResolutions = []int{512, 768, 1024}

// Request is one fully resolved CLI invocation. It is read-only after
// Resolve returns it; repeated runs with an identical Request and a set Seed
// are deterministic.
type Request struct {
	Modality   Modality
	Region     string
	Detail     Detail
	Count      int
	Resolution int
	Angle      string // empty means auto-select per image
	Seed       *int64
	Steps      *int
	SafetyMode safety.Mode
	Provider   Provider
	Output     string
}

// StepCount is the explicit --steps value or the per-detail default.
func (r Request) StepCount() int {
	if r.Steps != nil {
		return *r.Steps
	}
	return r.Detail.Info().Steps
}

// ValidationError names the offending field so the CLI can report it before
// any generation attempt.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid --%s %v: %s", e.Field, e.Value, e.Reason)
}

func invalid(field string, value any, reason string) error {
	return &ValidationError{Field: field, Value: value, Reason: reason}
}

func oneOf[T any](vals []T) string {
	return strings.Join(lo.Map(vals, func(v T, _ int) string { return fmt.Sprint(v) }), ", ")
}
