package param

import (
	"context"
	"fmt"
	"os"

	"github.com/synthmed/radgen/internal/log"
)

// Fetcher resolves a secret by name. The environment fetcher is the default;
// the SSM fetcher serves deployments keeping API keys in Parameter Store.
type Fetcher interface {
	Fetch(ctx context.Context, name string) (string, error)
}

type EnvFetcher struct{}

func (EnvFetcher) Fetch(ctx context.Context, name string) (string, error) {
	log.FromContextOrDiscard(ctx).WithGroup("param").Debug("reading environment", "name", name)
	v := os.Getenv(name)
	if v == "" {
		return "", fmt.Errorf("%s is not set", name)
	}
	return v, nil
}
