// Package upload implements the batch pipeline that moves generated images
// into the asset store, one at a time, with progress reporting and per-item
// error accumulation.
package upload

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/rs/zerolog"

	"imagestudio/internal/infra"
)

// AssetRef is the handle of one uploaded asset.
type AssetRef struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// Metadata is optional descriptive metadata attached to an upload.
type Metadata struct {
	Prompt string
	Model  string
	Params map[string]any
}

// Input is one decoded image ready for the asset store.
type Input struct {
	Data     []byte
	MimeType string
	Filename string
	Metadata *Metadata
}

// AssetStore is the port to the blob-upload endpoint.
type AssetStore interface {
	Upload(ctx context.Context, in Input) (*AssetRef, error)
}

// Image is one in-memory image payload awaiting upload.
type Image struct {
	ImageData string `json:"imageData"`
	MimeType  string `json:"mimeType"`
}

// Progress is the incremental state of one batch call. Completed increments
// only on success; Percentage is always round(completed/total*100).
type Progress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// ItemError records one failed upload; the batch continues past it.
type ItemError struct {
	Index   int    `json:"index"`
	Message string `json:"error"`
}

// Batch uploads images strictly one at a time, in input order, to avoid
// overwhelming the asset-store API. It performs no automatic retries.
type Batch struct {
	store      AssetStore
	logger     *infra.Logger
	onProgress func(Progress)
	now        func() time.Time
}

// NewBatch constructs a batch uploader. onProgress may be nil.
func NewBatch(store AssetStore, logger *infra.Logger, onProgress func(Progress)) *Batch {
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Batch{store: store, logger: logger, onProgress: onProgress, now: time.Now}
}

// Run uploads every image and returns the successfully uploaded asset
// handles in completion order plus the accumulated per-item errors. Failed
// items are simply absent from the returned handles; callers correlate
// successes back to inputs via the declared filename position.
func (b *Batch) Run(ctx context.Context, images []Image, metadata []Metadata) ([]AssetRef, []ItemError) {
	total := len(images)
	completed := 0
	b.report(completed, total)

	var refs []AssetRef
	var itemErrs []ItemError

	for i, image := range images {
		ref, err := b.uploadOne(ctx, image, metadata, i)
		if err != nil {
			b.logger.Warn().Err(err).Int("index", i).Msg("upload: item failed")
			itemErrs = append(itemErrs, ItemError{Index: i, Message: err.Error()})
			b.report(completed, total)
			continue
		}
		refs = append(refs, *ref)
		completed++
		b.report(completed, total)
	}

	return refs, itemErrs
}

func (b *Batch) uploadOne(ctx context.Context, image Image, metadata []Metadata, index int) (*AssetRef, error) {
	data, err := base64.StdEncoding.DecodeString(image.ImageData)
	if err != nil {
		return nil, fmt.Errorf("decode image data: %w", err)
	}

	mime := image.MimeType
	if mime == "" {
		mime = "image/png"
	}

	var meta *Metadata
	if index < len(metadata) {
		meta = &metadata[index]
	}

	return b.store.Upload(ctx, Input{
		Data:     data,
		MimeType: mime,
		Filename: fmt.Sprintf("gemini-series-%d-%d", b.now().UnixMilli(), index+1),
		Metadata: meta,
	})
}

func (b *Batch) report(completed, total int) {
	if b.onProgress == nil {
		return
	}
	percentage := 0
	if total > 0 {
		percentage = int(math.Round(float64(completed) / float64(total) * 100))
	}
	b.onProgress(Progress{Completed: completed, Total: total, Percentage: percentage})
}
