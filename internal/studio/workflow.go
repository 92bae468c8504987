package studio

import (
	"context"
	"fmt"

	"imagestudio/internal/infra"
	"imagestudio/internal/series"
	"imagestudio/internal/session"
	"imagestudio/internal/upload"
)

// Workflow ties the endpoint client, the upload pipeline, and the session
// manager into the generate-accept-save loop a host runs.
type Workflow struct {
	client   *Client
	store    upload.AssetStore
	sessions *session.Manager
	logger   infra.Logger

	// OnComplete, when set, is invoked once per uploaded asset.
	OnComplete func(upload.AssetRef)
	// OnProgress, when set, receives batch upload progress.
	OnProgress func(upload.Progress)
}

func NewWorkflow(client *Client, store upload.AssetStore, sessions *session.Manager, logger infra.Logger) *Workflow {
	return &Workflow{client: client, store: store, sessions: sessions, logger: logger}
}

// RunSeries generates a series, records the outcome in the current session,
// and returns it. Partial outcomes are recorded like full ones; the host
// decides which images to accept.
func (w *Workflow) RunSeries(ctx context.Context, opts SeriesOptions) (*series.Outcome, error) {
	outcome, err := w.client.GenerateSeries(ctx, opts)
	if err != nil {
		return nil, err
	}
	w.sessions.AddResult(*outcome)
	if len(outcome.Errors) > 0 {
		w.logger.Warn().
			Int("successful", outcome.Metadata.Successful).
			Int("failed", outcome.Metadata.Failed).
			Msg("series completed with failures")
	}
	return outcome, nil
}

// SaveImages uploads the accepted images, records each uploaded asset in the
// session, persists the session, and fires OnComplete per asset. Per-item
// upload failures are returned alongside the successes; they do not abort
// the batch.
func (w *Workflow) SaveImages(ctx context.Context, images []series.ImageResult, meta upload.Metadata) ([]upload.AssetRef, []upload.ItemError, error) {
	if len(images) == 0 {
		return nil, nil, nil
	}

	batch := upload.NewBatch(w.store, &w.logger, w.OnProgress)
	inputs := make([]upload.Image, len(images))
	metadata := make([]upload.Metadata, len(images))
	for i, img := range images {
		inputs[i] = upload.Image{ImageData: img.ImageData, MimeType: img.MimeType}
		m := meta
		if m.Params == nil {
			m.Params = map[string]any{}
		}
		m.Params = withVariation(m.Params, img.Variation)
		metadata[i] = m
	}

	refs, itemErrs := batch.Run(ctx, inputs, metadata)
	for _, ref := range refs {
		w.sessions.AddSavedImage(ref.ID)
		if w.OnComplete != nil {
			w.OnComplete(ref)
		}
	}
	if err := w.sessions.SaveCurrent(ctx); err != nil {
		return refs, itemErrs, fmt.Errorf("studio: persist session: %w", err)
	}
	return refs, itemErrs, nil
}

func withVariation(params map[string]any, variation string) map[string]any {
	out := make(map[string]any, len(params)+1)
	for k, v := range params {
		out[k] = v
	}
	if variation != "" {
		out["variation"] = variation
	}
	return out
}
