package image

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyGenerator struct {
	failures int
	calls    int
}

func (g *flakyGenerator) Generate(ctx context.Context, params Params) ([]byte, error) {
	g.calls++
	if g.calls <= g.failures {
		return nil, errors.New("resource exhausted")
	}
	return []byte("ok"), nil
}

func testPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}
}

func TestRetryEventuallySucceeds(t *testing.T) {
	backend := &flakyGenerator{failures: 2}
	g := &RetryingGenerator{Next: backend, Policy: testPolicy()}

	data, err := g.Generate(context.Background(), Params{Seed: 7})
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), data)
	assert.Equal(t, 3, backend.calls)
}

func TestRetryIsBounded(t *testing.T) {
	backend := &flakyGenerator{failures: 100}
	g := &RetryingGenerator{Next: backend, Policy: testPolicy()}

	_, err := g.Generate(context.Background(), Params{Seed: 7})

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, int64(7), genErr.Seed)
	assert.Equal(t, 3, backend.calls)
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	backend := &flakyGenerator{failures: 100}
	g := &RetryingGenerator{Next: backend, Policy: testPolicy()}

	_, err := g.Generate(ctx, Params{})
	require.Error(t, err)
	assert.LessOrEqual(t, backend.calls, 1)
}
