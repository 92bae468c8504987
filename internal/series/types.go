package series

import (
	"errors"
	"fmt"
	"time"

	"imagestudio/internal/gemini"
	"imagestudio/internal/prompt"
)

// Quantity bounds for one series request.
const (
	MinQuantity = 2
	MaxQuantity = 10
)

var (
	// ErrMissingVariations rejects a series request with no variation strings.
	ErrMissingVariations = errors.New("variations are required for series generation")

	// ErrInvalidQuantity rejects a quantity outside [MinQuantity, MaxQuantity].
	ErrInvalidQuantity = fmt.Errorf("quantity must be between %d and %d", MinQuantity, MaxQuantity)
)

// Strategy selects how the per-item vendor calls are dispatched.
type Strategy string

const (
	// StrategyAuto picks sequential when a base image anchors the series
	// (consistency benefits from ordered, paced calls) and parallel otherwise.
	StrategyAuto       Strategy = ""
	StrategySequential Strategy = "sequential"
	StrategyParallel   Strategy = "parallel"
)

// Request describes one series generation run.
type Request struct {
	BasePrompt string
	Quantity   int
	// ConsistencyPrompt is the precomposed consistency text, as sent by
	// remote callers. When empty, ConsistencyLevel and StyleAnchor are used
	// to derive it.
	ConsistencyPrompt string
	ConsistencyLevel  prompt.ConsistencyLevel
	StyleAnchor       string
	// Variations are per-image directives; only the first Quantity entries
	// are used.
	Variations  []string
	AspectRatio string
	// BaseImage is an optional base64 reference image anchoring subject
	// identity.
	BaseImage string
	Strategy  Strategy
}

// ImageResult is one successfully generated series image. Index is the
// item's original position in the requested variation sequence, not its
// position among successes.
type ImageResult struct {
	gemini.ImagePayload
	Variation string `json:"variation"`
	Index     int    `json:"index"`
}

// ItemError records one failed item without aborting its siblings.
type ItemError struct {
	Index     int    `json:"index"`
	Variation string `json:"variation"`
	Message   string `json:"error"`
}

// Metadata summarizes a finished run.
type Metadata struct {
	BasePrompt  string    `json:"basePrompt"`
	StylePrompt string    `json:"stylePrompt"`
	GeneratedAt time.Time `json:"generatedAt"`
	Quantity    int       `json:"quantity"`
	Successful  int       `json:"successful"`
	Failed      int       `json:"failed"`
}

// Outcome is the partial-success result of a series run: successes and
// per-item failures side by side. len(Images) == Metadata.Successful and
// len(Errors) == Metadata.Failed.
type Outcome struct {
	Images   []ImageResult `json:"images"`
	Errors   []ItemError   `json:"errors,omitempty"`
	Metadata Metadata      `json:"metadata"`
}

// Partial reports whether some, but not all, items failed.
func (o *Outcome) Partial() bool {
	return len(o.Errors) > 0 && len(o.Images) > 0
}

// AllFailedError is returned when zero items succeed. It carries every
// per-item error as detail.
type AllFailedError struct {
	Errors []ItemError
}

func (e *AllFailedError) Error() string {
	return fmt.Sprintf("all %d image generations failed", len(e.Errors))
}
