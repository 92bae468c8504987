package gemini

import "errors"

// Mode selects between text-to-image generation and editing an existing image.
type Mode string

const (
	ModeGenerate Mode = "generate"
	ModeEdit     Mode = "edit"
)

// AspectRatios lists the ratio strings the generate endpoint accepts.
var AspectRatios = []string{"1:1", "2:3", "3:2", "3:4", "4:3", "4:5", "5:4", "9:16", "16:9", "21:9"}

var (
	// ErrNotConfigured is returned when no API key is available. Every call
	// fails fast with it instead of attempting a vendor request.
	ErrNotConfigured = errors.New("gemini: api key not configured")

	// ErrNoImage is returned when no candidate part of the vendor response
	// carries inline image data. This is terminal for the call; retries, if
	// any, belong to the caller.
	ErrNoImage = errors.New("gemini: no image generated in response")
)

// GenerateParams describes a single image generation or edit call.
type GenerateParams struct {
	Prompt      string
	AspectRatio string
	Mode        Mode
	// BaseImage is a base64 payload; required for ModeEdit.
	BaseImage string
}

// ImagePayload is one generated image: base64-encoded bytes plus the MIME
// type the vendor declared, defaulting to image/png when omitted. Produced
// once per successful call; immutable.
type ImagePayload struct {
	ImageData string `json:"imageData"`
	MimeType  string `json:"mimeType"`
}

// ValidAspectRatio reports whether the given ratio is one of the supported
// fixed strings. The empty string is valid and means "unset".
func ValidAspectRatio(ratio string) bool {
	if ratio == "" {
		return true
	}
	for _, r := range AspectRatios {
		if r == ratio {
			return true
		}
	}
	return false
}
