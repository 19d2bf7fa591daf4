package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/do"
	"github.com/synthmed/radgen/internal/config"
	"github.com/synthmed/radgen/internal/feed"
	"github.com/synthmed/radgen/internal/inject"
	"github.com/synthmed/radgen/internal/log"
	"github.com/synthmed/radgen/internal/run"
)

const (
	exitOK         = 0
	exitFailure    = 1
	exitValidation = 2
)

func main() {
	os.Exit(realMain())
}

func realMain() int {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(os.Args) > 1 && os.Args[1] == "feed" {
		return feedMain(ctx, os.Args[2:])
	}
	return generateMain(ctx, os.Args[1:])
}

func generateMain(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("radgen", flag.ExitOnError)
	var (
		modality   = fs.String("modality", "", "imaging modality: xray, mri, ct (default xray)")
		region     = fs.String("region", "", "body region to image (default chest)")
		detail     = fs.String("detail", "", "level of detail: low, medium, high (default medium)")
		count      = fs.Int("count", 1, "number of images to generate")
		resolution = fs.Int("resolution", 0, "image resolution: 512, 768, 1024 (default 512)")
		angle      = fs.String("angle", "", "imaging angle/view (auto-selected if not provided)")
		provider   = fs.String("llm", "", "LLM provider for prompt refinement: claude, gpt, huggingface, none (default claude)")
		safetyMode = fs.String("safety-mode", "", "safety filter mode: strict, moderate, permissive (default strict)")
		seed       = fs.Int64("seed", 0, "random seed for reproducibility")
		steps      = fs.Int("steps", 0, "inference steps (overrides detail level default)")
		output     = fs.String("output", "", "output directory or s3://bucket/prefix (default outputs)")
		timeout    = fs.Duration("timeout", 30*time.Second, "LLM refinement timeout")
		noRefine   = fs.Bool("no-refine", false, "skip LLM prompt refinement")
		verbose    = fs.Bool("verbose", false, "debug logging")
	)
	_ = fs.Parse(args)

	flags := config.Flags{
		Modality:   *modality,
		Region:     *region,
		Detail:     *detail,
		Resolution: *resolution,
		Angle:      *angle,
		Provider:   *provider,
		SafetyMode: *safetyMode,
		Output:     *output,
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "count":
			flags.Count = count
		case "seed":
			flags.Seed = seed
		case "steps":
			flags.Steps = steps
		}
	})
	if *noRefine {
		flags.Provider = string(config.ProviderNone)
	}

	logger := log.New(os.Stderr, *verbose)
	ctx = log.NewContext(ctx, logger)

	req, err := config.Resolve(flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, "radgen:", err)
		return exitValidation
	}

	injector := inject.Setup(ctx, req, *timeout)
	defer func() { _ = injector.Shutdown() }()

	runner, err := do.Invoke[*run.Runner](injector)
	if err != nil {
		fmt.Fprintln(os.Stderr, "radgen:", err)
		return exitFailure
	}

	summary := runner.Run(ctx, req)
	fmt.Println(summary.String())
	for _, path := range summary.Stored {
		fmt.Println(" ", path)
	}
	if !summary.Success() {
		return exitFailure
	}
	return exitOK
}

func feedMain(ctx context.Context, args []string) int {
	fs := flag.NewFlagSet("radgen feed", flag.ExitOnError)
	var (
		output  = fs.String("output", config.DefaultOutput, "directory holding generated artifacts")
		baseURL = fs.String("base-url", "", "base URL for item links")
		file    = fs.String("file", "", "write the feed here instead of stdout")
		verbose = fs.Bool("verbose", false, "debug logging")
	)
	_ = fs.Parse(args)

	ctx = log.NewContext(ctx, log.New(os.Stderr, *verbose))

	rss, err := (&feed.Generator{Dir: *output, BaseURL: *baseURL}).Generate(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "radgen:", err)
		return exitFailure
	}

	if *file == "" {
		fmt.Println(string(rss))
		return exitOK
	}
	if err := os.WriteFile(*file, rss, 0o600); err != nil {
		fmt.Fprintln(os.Stderr, "radgen:", err)
		return exitFailure
	}
	return exitOK
}
