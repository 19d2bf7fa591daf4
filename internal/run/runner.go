package run

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/do"
	"github.com/synthmed/radgen/internal/config"
	"github.com/synthmed/radgen/internal/image"
	"github.com/synthmed/radgen/internal/log"
	"github.com/synthmed/radgen/internal/page"
	"github.com/synthmed/radgen/internal/prompt"
	"github.com/synthmed/radgen/internal/safety"
	"github.com/synthmed/radgen/internal/store"
)

// Summary is the batch outcome. The run succeeds when at least one artifact
// was stored; every skipped item has a logged reason.
type Summary struct {
	Stored   []string
	Rejected int
	Failed   int
}

func (s Summary) Success() bool { return len(s.Stored) > 0 }

func (s Summary) String() string {
	return fmt.Sprintf("%d stored, %d rejected, %d failed", len(s.Stored), s.Rejected, s.Failed)
}

// Runner drives the per-image pipeline: prompt, safety, generate, safety,
// store. Images are processed one at a time; a failure or rejection skips
// that image only.
type Runner struct {
	builder   *prompt.Builder
	generator image.Generator
	storer    store.Storer
	filter    *safety.Filter
	templator *page.Templator

	rnd *rand.Rand
	now func() time.Time
}

func NewRunner(i *do.Injector) (*Runner, error) {
	return &Runner{
		builder:   do.MustInvoke[*prompt.Builder](i),
		generator: do.MustInvoke[image.Generator](i),
		storer:    do.MustInvoke[store.Storer](i),
		filter:    do.MustInvoke[*safety.Filter](i),
		templator: do.MustInvoke[*page.Templator](i),
		rnd:       rand.New(rand.NewSource(time.Now().UTC().UnixNano())),
		now:       time.Now,
	}, nil
}

// NewRunnerWith is the plain constructor, used directly by tests.
func NewRunnerWith(builder *prompt.Builder, generator image.Generator, storer store.Storer, filter *safety.Filter) *Runner {
	return &Runner{
		builder:   builder,
		generator: generator,
		storer:    storer,
		filter:    filter,
		templator: &page.Templator{},
		rnd:       rand.New(rand.NewSource(time.Now().UTC().UnixNano())),
		now:       time.Now,
	}
}

func (r *Runner) Run(ctx context.Context, req config.Request) Summary {
	log := log.FromContextOrDiscard(ctx).WithGroup("run").With(
		"modality", req.Modality,
		"region", req.Region,
		"count", req.Count,
	)
	log.Info("starting batch")

	var summary Summary
	var items []page.Item
	for i := 0; i < req.Count; i++ {
		if ctx.Err() != nil {
			log.Warn("batch cancelled", "remaining", req.Count-i)
			break
		}

		seed := r.seedFor(req, i)
		path, item, err := r.generateOne(ctx, req, seed)
		if err != nil {
			var rejection *safety.Rejection
			if errors.As(err, &rejection) {
				summary.Rejected++
				log.Warn("image rejected", "image", i+1, "seed", seed, "reason", rejection.Error())
			} else {
				summary.Failed++
				log.Error("image failed", "image", i+1, "seed", seed, "err", err)
			}
			continue
		}

		summary.Stored = append(summary.Stored, path)
		items = append(items, item)
		log.Info("image stored", "image", i+1, "path", path)
	}

	if len(items) > 0 {
		r.writeReport(ctx, req, items)
	}

	log.Info("batch finished", "summary", summary.String())
	return summary
}

// generateOne runs the full pipeline for a single image.
func (r *Runner) generateOne(ctx context.Context, req config.Request, seed int64) (string, page.Item, error) {
	p, err := r.builder.Build(ctx, req, seed)
	if err != nil {
		return "", page.Item{}, err
	}

	data, err := r.generator.Generate(ctx, image.Params{
		Prompt:         p.Text,
		NegativePrompt: image.DefaultNegativePrompt,
		Width:          req.Resolution,
		Height:         req.Resolution,
		Steps:          req.StepCount(),
		Seed:           seed,
	})
	if err != nil {
		return "", page.Item{}, err
	}

	imgVerdict := r.filter.CheckImage(data)
	if !imgVerdict.Accepted() {
		return "", page.Item{}, &safety.Rejection{Stage: "image", Verdict: imgVerdict}
	}

	path, err := r.storer.Store(ctx, image.Artifact{
		Data:      data,
		Prompt:    p,
		Request:   req,
		Seed:      seed,
		CreatedAt: r.now().UTC(),
		Verdicts:  []safety.Verdict{p.Verdict, imgVerdict},
	})
	if err != nil {
		return "", page.Item{}, fmt.Errorf("storing artifact: %w", err)
	}

	return path, page.Item{
		Image:   filepath.Base(path),
		Prompt:  p.Text,
		Angle:   p.Angle,
		Seed:    seed,
		Verdict: string(imgVerdict.Outcome),
	}, nil
}

// seedFor derives the per-image seed: explicit seeds advance by index so a
// fixed request reproduces every image, absent seeds are randomized fresh.
func (r *Runner) seedFor(req config.Request, i int) int64 {
	if req.Seed != nil {
		return *req.Seed + int64(i)
	}
	return r.rnd.Int63()
}

func (r *Runner) writeReport(ctx context.Context, req config.Request, items []page.Item) {
	log := log.FromContextOrDiscard(ctx).WithGroup("run")

	title := fmt.Sprintf("radgen batch: %s %s (%s)",
		strings.ToUpper(string(req.Modality)), req.Region, r.now().UTC().Format(time.RFC3339))
	html, err := r.templator.Template(ctx, page.Params{Title: title, Items: items})
	if err != nil {
		log.Warn("report rendering failed", "err", err)
		return
	}
	if _, err := r.storer.Put(ctx, store.PutParams{
		Name:        "report.html",
		Data:        html,
		ContentType: "text/html",
	}); err != nil {
		log.Warn("report write failed", "err", err)
	}
}
