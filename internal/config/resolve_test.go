package config

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synthmed/radgen/internal/safety"
)

func TestResolveDefaults(t *testing.T) {
	t.Setenv("RADGEN_OUTPUT", "")
	req, err := Resolve(Flags{Provider: "none"})
	require.NoError(t, err)

	assert.Equal(t, ModalityXRay, req.Modality)
	assert.Equal(t, "chest", req.Region)
	assert.Equal(t, DetailMedium, req.Detail)
	assert.Equal(t, 1, req.Count)
	assert.Equal(t, 512, req.Resolution)
	assert.Equal(t, safety.ModeStrict, req.SafetyMode)
	assert.Equal(t, "outputs", req.Output)
	assert.Nil(t, req.Seed)
	assert.Nil(t, req.Steps)
}

func TestResolveInvariants(t *testing.T) {
	// Any request that resolves satisfies count >= 1 and a supported
	// resolution, whatever combination of valid inputs produced it.
	for _, modality := range []string{"xray", "mri", "ct"} {
		for _, region := range Regions[Modality(modality)] {
			for _, resolution := range []int{0, 512, 768, 1024} {
				req, err := Resolve(Flags{
					Modality:   modality,
					Region:     region,
					Resolution: resolution,
					Count:      lo.ToPtr(3),
					Provider:   "none",
				})
				require.NoError(t, err)
				assert.GreaterOrEqual(t, req.Count, 1)
				assert.Contains(t, SupportedResolutions, req.Resolution)
			}
		}
	}
}

func TestResolveRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		flags Flags
		field string
	}{
		{"unknown modality", Flags{Modality: "ultrasound", Provider: "none"}, "modality"},
		{"region not valid for modality", Flags{Modality: "xray", Region: "brain", Provider: "none"}, "region"},
		{"unknown detail", Flags{Detail: "ultra", Provider: "none"}, "detail"},
		{"negative count", Flags{Count: lo.ToPtr(-2), Provider: "none"}, "count"},
		{"zero count", Flags{Count: lo.ToPtr(0), Provider: "none"}, "count"},
		{"unsupported resolution", Flags{Resolution: 640, Provider: "none"}, "resolution"},
		{"unknown angle", Flags{Angle: "sideways", Provider: "none"}, "angle"},
		{"unknown provider", Flags{Provider: "bard"}, "llm"},
		{"unknown safety mode", Flags{SafetyMode: "maximal", Provider: "none"}, "safety-mode"},
		{"zero steps", Flags{Steps: lo.ToPtr(0), Provider: "none"}, "steps"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.flags)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestResolveRequiresProviderKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY_PARAM", "")
	_, err := Resolve(Flags{Provider: "claude"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	req, err := Resolve(Flags{Provider: "claude"})
	require.NoError(t, err)
	assert.Equal(t, ProviderClaude, req.Provider)
}

func TestResolveStepOverrides(t *testing.T) {
	req, err := Resolve(Flags{Detail: "high", Provider: "none"})
	require.NoError(t, err)
	assert.Equal(t, 50, req.StepCount())

	req, err = Resolve(Flags{Detail: "high", Steps: lo.ToPtr(12), Provider: "none"})
	require.NoError(t, err)
	assert.Equal(t, 12, req.StepCount())
}

func TestResolveOutputFromEnv(t *testing.T) {
	t.Setenv("RADGEN_OUTPUT", "/tmp/radgen-out")
	req, err := Resolve(Flags{Provider: "none"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/radgen-out", req.Output)

	req, err = Resolve(Flags{Provider: "none", Output: "elsewhere"})
	require.NoError(t, err)
	assert.Equal(t, "elsewhere", req.Output)
}
