package inject

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/samber/do"
	"github.com/synthmed/radgen/internal/config"
	"github.com/synthmed/radgen/internal/image"
	"github.com/synthmed/radgen/internal/llm"
	"github.com/synthmed/radgen/internal/log"
	"github.com/synthmed/radgen/internal/page"
	"github.com/synthmed/radgen/internal/param"
	"github.com/synthmed/radgen/internal/prompt"
	"github.com/synthmed/radgen/internal/run"
	"github.com/synthmed/radgen/internal/safety"
	"github.com/synthmed/radgen/internal/store"
)

const defaultSDURL = "http://127.0.0.1:7860/sdapi/v1/txt2img"

// Setup wires one CLI invocation. Everything is lazy: the AWS clients, the
// LLM client, and the secret fetches only happen when a component that needs
// them is invoked.
func Setup(ctx context.Context, req config.Request, refineTimeout time.Duration) *do.Injector {
	logger := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		},
	})

	do.ProvideValue[*http.Client](injector, http.DefaultClient)
	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return awsconfig.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*s3.Client](injector, func(i *do.Injector) (*s3.Client, error) {
		return s3.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})

	do.ProvideValue[*safety.Filter](injector, safety.NewFilter(req.SafetyMode))
	do.ProvideValue[*page.Templator](injector, &page.Templator{})
	do.ProvideNamedValue[time.Duration](injector, "refine_timeout", refineTimeout)

	if req.Provider != config.ProviderNone {
		do.Provide[llm.Refiner](injector, func(i *do.Injector) (llm.Refiner, error) {
			return newRefiner(ctx, i, req.Provider)
		})
	}
	do.Provide[*prompt.Builder](injector, prompt.NewBuilder)

	do.Provide[image.Generator](injector, func(i *do.Injector) (image.Generator, error) {
		url := os.Getenv("SD_API_URL")
		if url == "" {
			url = defaultSDURL
		}
		backend := &image.Txt2ImgGenerator{
			Client: do.MustInvoke[*http.Client](i),
			URL:    url,
			Key:    os.Getenv("SD_API_KEY"),
		}
		return &image.RetryingGenerator{Next: backend, Policy: image.DefaultRetryPolicy}, nil
	})

	do.Provide[store.Storer](injector, func(i *do.Injector) (store.Storer, error) {
		if bucket, prefix, ok := parseS3(req.Output); ok {
			return store.NewS3Store(do.MustInvoke[*s3.Client](i), bucket, prefix), nil
		}
		return store.NewDirStore(req.Output), nil
	})

	do.Provide[*run.Runner](injector, run.NewRunner)

	return injector
}

// newRefiner resolves the provider's API key and builds its client. Keys
// come from the environment, or from SSM Parameter Store when the matching
// *_PARAM variable names a parameter.
func newRefiner(ctx context.Context, i *do.Injector, provider config.Provider) (llm.Refiner, error) {
	switch provider {
	case config.ProviderClaude:
		key, err := secret(ctx, i, "ANTHROPIC_API_KEY")
		if err != nil {
			return nil, err
		}
		return llm.NewAnthropicRefiner(key, os.Getenv("ANTHROPIC_MODEL")), nil
	case config.ProviderGPT:
		key, err := secret(ctx, i, "OPENAI_API_KEY")
		if err != nil {
			return nil, err
		}
		return llm.NewOpenAIRefiner(key, os.Getenv("OPENAI_MODEL")), nil
	case config.ProviderHuggingFace:
		key, err := secret(ctx, i, "HUGGINGFACE_API_KEY")
		if err != nil {
			return nil, err
		}
		client := do.MustInvoke[*http.Client](i)
		return llm.NewHuggingFaceRefiner(client, os.Getenv("HUGGINGFACE_MODEL_URL"), key), nil
	}
	return nil, fmt.Errorf("no refiner for provider %s", provider)
}

func secret(ctx context.Context, i *do.Injector, env string) (string, error) {
	if path := os.Getenv(env + "_PARAM"); path != "" {
		fetcher := &param.ParameterStoreFetcher{Client: do.MustInvoke[*ssm.Client](i)}
		return fetcher.Fetch(ctx, path)
	}
	return param.EnvFetcher{}.Fetch(ctx, env)
}

func parseS3(output string) (bucket, prefix string, ok bool) {
	rest, found := strings.CutPrefix(output, "s3://")
	if !found || rest == "" {
		return "", "", false
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	return bucket, prefix, true
}
