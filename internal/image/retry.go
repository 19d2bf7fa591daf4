package image

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/synthmed/radgen/internal/log"
)

// RetryPolicy bounds how often one image request is retried before its
// failure surfaces. It exists as a value so tests can exercise it directly.
type RetryPolicy struct {
	MaxAttempts     uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:     3,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
}

func (p RetryPolicy) backoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	return backoff.WithContext(backoff.WithMaxRetries(b, p.MaxAttempts-1), ctx)
}

// RetryingGenerator decorates a Generator with the bounded retry policy.
type RetryingGenerator struct {
	Next   Generator
	Policy RetryPolicy
}

func (g *RetryingGenerator) Generate(ctx context.Context, params Params) ([]byte, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("retry")

	data, err := backoff.RetryNotifyWithData(func() ([]byte, error) {
		return g.Next.Generate(ctx, params)
	}, g.Policy.backoff(ctx), func(err error, next time.Duration) {
		log.Warn("generation attempt failed, retrying", "err", err, "next", next)
	})
	if err != nil {
		return nil, &GenerationError{Seed: params.Seed, Err: err}
	}
	return data, nil
}
