package prompt

import (
	"context"
	"math/rand"
	"time"

	"github.com/samber/do"
	"github.com/samber/lo"
	"github.com/synthmed/radgen/internal/config"
	"github.com/synthmed/radgen/internal/llm"
	"github.com/synthmed/radgen/internal/log"
	"github.com/synthmed/radgen/internal/safety"
)

// Prompt is the resolved text plus the attributes it was derived from. It is
// immutable once handed to the image adapter.
type Prompt struct {
	Text     string
	Modality config.Modality
	Region   string
	Detail   config.Detail
	Angle    string
	Refined  bool
	Verdict  safety.Verdict
}

type Builder struct {
	refiner llm.Refiner // nil disables refinement
	filter  *safety.Filter
	timeout time.Duration
	rnd     *rand.Rand
}

func NewBuilder(i *do.Injector) (*Builder, error) {
	refiner, _ := do.Invoke[llm.Refiner](i) // absent when refinement is off
	return &Builder{
		refiner: refiner,
		filter:  do.MustInvoke[*safety.Filter](i),
		timeout: do.MustInvokeNamed[time.Duration](i, "refine_timeout"),
		rnd:     rand.New(rand.NewSource(time.Now().UTC().UnixNano())),
	}, nil
}

// NewBuilderWith is the plain constructor, used directly by tests.
func NewBuilderWith(refiner llm.Refiner, filter *safety.Filter, timeout time.Duration) *Builder {
	return &Builder{
		refiner: refiner,
		filter:  filter,
		timeout: timeout,
		rnd:     rand.New(rand.NewSource(time.Now().UTC().UnixNano())),
	}
}

// Build expands the request into a prompt for one image. The baseline is
// checked before any refinement call; refined text replaces it only when it
// also passes the filter. Any refinement failure falls back to the baseline.
func (b *Builder) Build(ctx context.Context, req config.Request, seed int64) (Prompt, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("prompt")

	angle := req.Angle
	if angle == "" {
		angle = b.pickAngle(req, seed)
	}

	baseline := compose(req, angle, req.Detail.Info().Description)
	verdict := b.filter.Check(baseline)
	if !verdict.Accepted() {
		return Prompt{}, &safety.Rejection{Stage: "prompt", Verdict: verdict}
	}

	p := Prompt{
		Text:     baseline,
		Modality: req.Modality,
		Region:   req.Region,
		Detail:   req.Detail,
		Angle:    angle,
		Verdict:  verdict,
	}

	if b.refiner != nil {
		if refined, ok := b.refine(ctx, req, angle); ok {
			p.Text = refined
			p.Refined = true
			p.Verdict = b.filter.Check(refined)
		}
	}

	p.Text += syntheticNotice
	log.Debug("prompt built", "angle", angle, "refined", p.Refined)
	return p, nil
}

func (b *Builder) refine(ctx context.Context, req config.Request, angle string) (string, bool) {
	log := log.FromContextOrDiscard(ctx).WithGroup("prompt")

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	enhanced, err := b.refiner.Refine(ctx, instruction(req, angle))
	if err != nil {
		log.Warn("refinement failed, using baseline prompt", "err", err)
		return "", false
	}

	refined := compose(req, angle, enhanced)
	if verdict := b.filter.Check(refined); !verdict.Accepted() {
		log.Warn("refined prompt rejected, using baseline prompt", "rules", verdict.RuleIDs)
		return "", false
	}
	return refined, true
}

// pickAngle selects a view for the modality. With an explicit request seed
// the pick is deterministic per image; otherwise it varies run to run.
func (b *Builder) pickAngle(req config.Request, seed int64) string {
	angles := config.Angles[req.Modality]
	rnd := lo.Ternary(req.Seed != nil, rand.New(rand.NewSource(seed)), b.rnd)
	return angles[rnd.Intn(len(angles))]
}
