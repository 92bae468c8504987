package series

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"imagestudio/internal/gemini"
	"imagestudio/internal/infra"
	"imagestudio/internal/prompt"
)

// DefaultPacing is the delay between sequential vendor calls. It keeps the
// vendor rate limiter happy and, with a reference image, noticeably improves
// subject consistency across the series.
const DefaultPacing = 500 * time.Millisecond

// Generator is the port the orchestrator drives; *gemini.Client satisfies it.
type Generator interface {
	GenerateOne(ctx context.Context, params gemini.GenerateParams) (*gemini.ImagePayload, error)
}

// Orchestrator drives N prompt compositions through a Generator, collecting
// successes and per-item failures into one partial-success Outcome.
type Orchestrator struct {
	generator Generator
	logger    *infra.Logger
	pacing    time.Duration
}

// NewOrchestrator constructs an orchestrator with the default pacing.
func NewOrchestrator(generator Generator, logger *infra.Logger) *Orchestrator {
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Orchestrator{generator: generator, logger: logger, pacing: DefaultPacing}
}

// itemSlot is the discriminated per-task result. Each task owns exactly one
// slot, so partial failure never races on a shared accumulator.
type itemSlot struct {
	image *ImageResult
	err   *ItemError
}

// Generate runs one series. Validation is fail-fast: no vendor call is made
// for an invalid request. A failure in one item never aborts its siblings.
// Zero successes yield an *AllFailedError; anything else returns an Outcome
// whose Errors list callers must surface as a multi-status result.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*Outcome, error) {
	if len(req.Variations) == 0 {
		return nil, ErrMissingVariations
	}
	if req.Quantity < MinQuantity || req.Quantity > MaxQuantity {
		return nil, ErrInvalidQuantity
	}

	consistency, err := o.consistencyText(req)
	if err != nil {
		return nil, err
	}

	variations := req.Variations
	if len(variations) > req.Quantity {
		variations = variations[:req.Quantity]
	}

	strategy := req.Strategy
	if strategy == StrategyAuto {
		if req.BaseImage != "" {
			strategy = StrategySequential
		} else {
			strategy = StrategyParallel
		}
	}

	o.logger.Info().
		Str("strategy", string(strategy)).
		Int("quantity", req.Quantity).
		Int("variations", len(variations)).
		Bool("base_image", req.BaseImage != "").
		Msg("series: starting generation")

	slots := make([]itemSlot, len(variations))
	switch strategy {
	case StrategySequential:
		err = o.runSequential(ctx, req, consistency, variations, slots)
	default:
		err = o.runParallel(ctx, req, consistency, variations, slots)
	}
	if err != nil {
		return nil, err
	}

	outcome := merge(slots, req, consistency)
	if len(outcome.Images) == 0 {
		return nil, &AllFailedError{Errors: outcome.Errors}
	}

	o.logger.Info().
		Int("successful", outcome.Metadata.Successful).
		Int("failed", outcome.Metadata.Failed).
		Msg("series: generation finished")

	return outcome, nil
}

// runSequential dispatches items in request order with a fixed inter-call
// pace, used when a reference image anchors the series.
func (o *Orchestrator) runSequential(ctx context.Context, req Request, consistency string, variations []string, slots []itemSlot) error {
	limiter := rate.NewLimiter(rate.Every(o.pacing), 1)
	for i, variation := range variations {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		slots[i] = o.generateItem(ctx, req, consistency, variation, i)
	}
	return nil
}

// runParallel fans all items out at once; each task writes only its own slot
// and the orchestrator merges after the join.
func (o *Orchestrator) runParallel(ctx context.Context, req Request, consistency string, variations []string, slots []itemSlot) error {
	eg, egCtx := errgroup.WithContext(ctx)
	for i, variation := range variations {
		i, variation := i, variation
		eg.Go(func() error {
			slots[i] = o.generateItem(egCtx, req, consistency, variation, i)
			return nil
		})
	}
	return eg.Wait()
}

func (o *Orchestrator) generateItem(ctx context.Context, req Request, consistency, variation string, index int) itemSlot {
	var fullPrompt string
	if req.BaseImage != "" {
		fullPrompt = prompt.BuildReferencePrompt(req.BasePrompt, variation, consistency)
	} else {
		fullPrompt = prompt.BuildTextPrompt(req.BasePrompt, variation, consistency)
	}

	mode := gemini.ModeGenerate
	if req.BaseImage != "" {
		mode = gemini.ModeEdit
	}

	payload, err := o.generator.GenerateOne(ctx, gemini.GenerateParams{
		Prompt:      fullPrompt,
		AspectRatio: req.AspectRatio,
		Mode:        mode,
		BaseImage:   req.BaseImage,
	})
	if err != nil {
		o.logger.Warn().
			Err(err).
			Int("index", index).
			Str("variation", variation).
			Msg("series: item generation failed")
		return itemSlot{err: &ItemError{Index: index, Variation: variation, Message: err.Error()}}
	}

	return itemSlot{image: &ImageResult{
		ImagePayload: *payload,
		Variation:    variation,
		Index:        index,
	}}
}

// merge folds the per-item slots into an Outcome. Images are emitted in
// request order regardless of completion order; each carries its original
// index, so consumers can still detect gaps.
func merge(slots []itemSlot, req Request, consistency string) *Outcome {
	outcome := &Outcome{}
	for _, slot := range slots {
		switch {
		case slot.image != nil:
			outcome.Images = append(outcome.Images, *slot.image)
		case slot.err != nil:
			outcome.Errors = append(outcome.Errors, *slot.err)
		}
	}
	outcome.Metadata = Metadata{
		BasePrompt:  req.BasePrompt,
		StylePrompt: consistency,
		GeneratedAt: time.Now().UTC(),
		Quantity:    req.Quantity,
		Successful:  len(outcome.Images),
		Failed:      len(outcome.Errors),
	}
	return outcome
}

func (o *Orchestrator) consistencyText(req Request) (string, error) {
	if text := strings.TrimSpace(req.ConsistencyPrompt); text != "" {
		return text, nil
	}
	if req.ConsistencyLevel == "" {
		return "", nil
	}
	directive, err := prompt.ConsistencyDirective(req.ConsistencyLevel)
	if err != nil {
		return "", err
	}
	if req.StyleAnchor != "" {
		directive += ". Style anchor: " + req.StyleAnchor
	}
	return directive, nil
}
