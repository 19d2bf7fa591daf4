package config

import (
	"os"

	"github.com/samber/lo"
	"github.com/synthmed/radgen/internal/safety"
)

// Defaults applied when neither a flag nor an environment variable is given.
const (
	DefaultModality   = ModalityXRay
	DefaultRegion     = "chest"
	DefaultDetail     = DetailMedium
	DefaultCount      = 1
	DefaultResolution = 512
	DefaultProvider   = ProviderClaude
	DefaultSafetyMode = safety.ModeStrict
	DefaultOutput     = "outputs"
)

// Flags carries the raw CLI values before validation. Pointer fields
// distinguish "not given" from a zero value.
type Flags struct {
	Modality   string
	Region     string
	Detail     string
	Count      *int
	Resolution int
	Angle      string
	Provider   string
	SafetyMode string
	Seed       *int64
	Steps      *int
	Output     string
}

// Resolve merges flags, environment variables, and defaults into a validated
// Request. It is a pure merge and validate: no directories are created and
// no backends are touched here.
func Resolve(f Flags) (Request, error) {
	modality, ok := ParseModality(lo.Ternary(f.Modality != "", f.Modality, string(DefaultModality)))
	if !ok {
		return Request{}, invalid("modality", f.Modality, "must be one of "+oneOf([]Modality{ModalityXRay, ModalityMRI, ModalityCT}))
	}

	region := lo.Ternary(f.Region != "", f.Region, DefaultRegion)
	if !lo.Contains(Regions[modality], region) {
		return Request{}, invalid("region", region, "not a known region for "+string(modality)+"; expected one of "+oneOf(Regions[modality]))
	}

	detail, ok := ParseDetail(lo.Ternary(f.Detail != "", f.Detail, string(DefaultDetail)))
	if !ok {
		return Request{}, invalid("detail", f.Detail, "must be one of "+oneOf([]Detail{DetailLow, DetailMedium, DetailHigh}))
	}

	count := DefaultCount
	if f.Count != nil {
		count = *f.Count
	}
	if count < 1 {
		return Request{}, invalid("count", count, "must be at least 1")
	}

	resolution := lo.Ternary(f.Resolution != 0, f.Resolution, DefaultResolution)
	if !lo.Contains(SupportedResolutions, resolution) {
		return Request{}, invalid("resolution", resolution, "must be one of "+oneOf(SupportedResolutions))
	}

	if f.Angle != "" && !lo.Contains(Angles[modality], f.Angle) {
		return Request{}, invalid("angle", f.Angle, "not a known view for "+string(modality)+"; expected one of "+oneOf(Angles[modality]))
	}

	provider, ok := ParseProvider(lo.Ternary(f.Provider != "", f.Provider, string(DefaultProvider)))
	if !ok {
		return Request{}, invalid("llm", f.Provider, "must be one of "+oneOf([]Provider{ProviderClaude, ProviderGPT, ProviderHuggingFace, ProviderNone}))
	}
	if err := checkProviderKey(provider); err != nil {
		return Request{}, err
	}

	mode, ok := safety.ParseMode(lo.Ternary(f.SafetyMode != "", f.SafetyMode, string(DefaultSafetyMode)))
	if !ok {
		return Request{}, invalid("safety-mode", f.SafetyMode, "must be one of "+oneOf([]safety.Mode{safety.ModeStrict, safety.ModeModerate, safety.ModePermissive}))
	}

	if f.Steps != nil && *f.Steps < 1 {
		return Request{}, invalid("steps", *f.Steps, "must be at least 1")
	}

	output := f.Output
	if output == "" {
		output = os.Getenv("RADGEN_OUTPUT")
	}
	if output == "" {
		output = DefaultOutput
	}

	return Request{
		Modality:   modality,
		Region:     region,
		Detail:     detail,
		Count:      count,
		Resolution: resolution,
		Angle:      f.Angle,
		Seed:       f.Seed,
		Steps:      f.Steps,
		SafetyMode: mode,
		Provider:   provider,
		Output:     output,
	}, nil
}

// checkProviderKey fails fast when a refinement backend is selected but no
// credential can possibly be resolved for it. The actual fetch may still go
// through SSM Parameter Store; here we only verify that something is set.
func checkProviderKey(p Provider) error {
	envSet := func(names ...string) bool {
		return lo.SomeBy(names, func(n string) bool { return os.Getenv(n) != "" })
	}
	switch p {
	case ProviderClaude:
		if !envSet("ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY_PARAM") {
			return invalid("llm", p, "ANTHROPIC_API_KEY is not set")
		}
	case ProviderGPT:
		if !envSet("OPENAI_API_KEY", "OPENAI_API_KEY_PARAM") {
			return invalid("llm", p, "OPENAI_API_KEY is not set")
		}
	case ProviderHuggingFace:
		if !envSet("HUGGINGFACE_API_KEY", "HUGGINGFACE_API_KEY_PARAM") {
			return invalid("llm", p, "HUGGINGFACE_API_KEY is not set")
		}
	}
	return nil
}
