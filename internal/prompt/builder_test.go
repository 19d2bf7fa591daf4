package prompt

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/synthmed/radgen/internal/config"
	"github.com/synthmed/radgen/internal/safety"
)

type stubRefiner struct {
	text  string
	err   error
	calls int
}

func (s *stubRefiner) Refine(ctx context.Context, instruction string) (string, error) {
	s.calls++
	return s.text, s.err
}

func testRequest() config.Request {
	return config.Request{
		Modality:   config.ModalityXRay,
		Region:     "chest",
		Detail:     config.DetailMedium,
		Count:      1,
		Resolution: 512,
		Seed:       lo.ToPtr(int64(42)),
		SafetyMode: safety.ModeStrict,
		Provider:   config.ProviderNone,
		Output:     "outputs",
	}
}

func TestBuildBaseline(t *testing.T) {
	b := NewBuilderWith(nil, safety.NewFilter(safety.ModeStrict), time.Second)

	p, err := b.Build(context.Background(), testRequest(), 42)
	require.NoError(t, err)

	assert.Contains(t, p.Text, "radiograph")
	assert.Contains(t, p.Text, "chest")
	assert.Contains(t, p.Text, "synthetic")
	assert.Contains(t, config.Angles[config.ModalityXRay], p.Angle)
	assert.False(t, p.Refined)
	assert.True(t, p.Verdict.Accepted())
}

func TestBuildDeterministicWithSeed(t *testing.T) {
	b := NewBuilderWith(nil, safety.NewFilter(safety.ModeStrict), time.Second)

	first, err := b.Build(context.Background(), testRequest(), 42)
	require.NoError(t, err)
	second, err := b.Build(context.Background(), testRequest(), 42)
	require.NoError(t, err)

	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, first.Angle, second.Angle)
}

func TestBuildFallsBackWhenRefinerFails(t *testing.T) {
	refiner := &stubRefiner{err: errors.New("quota exceeded")}
	b := NewBuilderWith(refiner, safety.NewFilter(safety.ModeStrict), time.Second)

	p, err := b.Build(context.Background(), testRequest(), 42)
	require.NoError(t, err)

	assert.Equal(t, 1, refiner.calls)
	assert.False(t, p.Refined)
	assert.Contains(t, p.Text, "clear anatomical detail")
}

func TestBuildAdoptsSafeRefinement(t *testing.T) {
	refiner := &stubRefiner{text: "simulated clear lung fields with subtle scatter artifact"}
	b := NewBuilderWith(refiner, safety.NewFilter(safety.ModeStrict), time.Second)

	p, err := b.Build(context.Background(), testRequest(), 42)
	require.NoError(t, err)

	assert.True(t, p.Refined)
	assert.Contains(t, p.Text, "simulated clear lung fields")
}

func TestBuildDiscardsUnsafeRefinement(t *testing.T) {
	refiner := &stubRefiner{text: "chest film of patient John, General Hospital archive"}
	b := NewBuilderWith(refiner, safety.NewFilter(safety.ModeStrict), time.Second)

	p, err := b.Build(context.Background(), testRequest(), 42)
	require.NoError(t, err)

	assert.False(t, p.Refined)
	assert.NotContains(t, p.Text, "John")
	assert.Contains(t, p.Text, "clear anatomical detail")
}

func TestBuildRejectsUnsafeBaseline(t *testing.T) {
	filter := safety.NewFilterFromPolicy(safety.Policy{
		Mode:  safety.ModeStrict,
		Rules: []safety.Rule{safety.TermRule("no-chest", "chest")},
	})
	refiner := &stubRefiner{text: "anything"}
	b := NewBuilderWith(refiner, filter, time.Second)

	_, err := b.Build(context.Background(), testRequest(), 42)
	var rejection *safety.Rejection
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, "prompt", rejection.Stage)
	// The paid refinement call must not happen for a rejected baseline.
	assert.Equal(t, 0, refiner.calls)
}

func TestBuildHonorsExplicitAngle(t *testing.T) {
	req := testRequest()
	req.Angle = "PA"
	b := NewBuilderWith(nil, safety.NewFilter(safety.ModeStrict), time.Second)

	p, err := b.Build(context.Background(), req, 42)
	require.NoError(t, err)
	assert.Equal(t, "PA", p.Angle)
	assert.Contains(t, p.Text, "PA view of chest")
}
