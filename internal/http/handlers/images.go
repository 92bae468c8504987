package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"imagestudio/internal/gemini"
	"imagestudio/internal/prompt"
	"imagestudio/internal/series"
)

type seriesParams struct {
	Quantity          json.Number `json:"quantity"`
	ConsistencyPrompt string      `json:"consistencyPrompt"`
	Variations        []string    `json:"variations"`
}

type generateRequest struct {
	Prompt      string        `json:"prompt"`
	AspectRatio string        `json:"aspectRatio"`
	Mode        string        `json:"mode"`
	BaseImage   string        `json:"baseImage"`
	Series      *seriesParams `json:"series"`
}

type seriesResponse struct {
	Images   []series.ImageResult `json:"images"`
	Metadata series.Metadata      `json:"metadata"`
	Errors   []series.ItemError   `json:"errors,omitempty"`
	Warning  string               `json:"warning,omitempty"`
}

// ImagesGenerate serves both single-image and series generation. Series
// requests answer 200 on full success, 207 with a warning on partial
// success, and 500 with per-item details when every item failed.
func (a *App) ImagesGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.fail(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if req.Prompt == "" {
		a.fail(w, http.StatusBadRequest, "Prompt is required")
		return
	}
	if a.Config.GeminiAPIKey == "" {
		a.fail(w, http.StatusInternalServerError, "GEMINI_API_KEY is not configured")
		return
	}
	if req.Mode == string(gemini.ModeEdit) && req.BaseImage == "" {
		a.fail(w, http.StatusBadRequest, "Base image is required for edit mode")
		return
	}
	if !gemini.ValidAspectRatio(req.AspectRatio) {
		a.fail(w, http.StatusBadRequest, "unsupported aspect ratio")
		return
	}

	if req.Series != nil {
		a.generateSeries(w, r, req)
		return
	}
	a.generateSingle(w, r, req)
}

func (a *App) generateSingle(w http.ResponseWriter, r *http.Request, req generateRequest) {
	mode := gemini.ModeGenerate
	if req.Mode == string(gemini.ModeEdit) {
		mode = gemini.ModeEdit
	}
	image, err := a.Generator.GenerateOne(r.Context(), gemini.GenerateParams{
		Prompt:      req.Prompt,
		AspectRatio: req.AspectRatio,
		Mode:        mode,
		BaseImage:   req.BaseImage,
	})
	if err != nil {
		a.Logger.Error().Err(err).Msg("single image generation failed")
		if errors.Is(err, gemini.ErrNotConfigured) {
			a.fail(w, http.StatusInternalServerError, "GEMINI_API_KEY is not configured")
			return
		}
		a.fail(w, http.StatusInternalServerError, err.Error())
		return
	}
	a.json(w, http.StatusOK, image)
}

func (a *App) generateSeries(w http.ResponseWriter, r *http.Request, req generateRequest) {
	quantity, ok := parseQuantity(req.Series.Quantity)
	if !ok {
		a.fail(w, http.StatusBadRequest, series.ErrInvalidQuantity.Error())
		return
	}
	outcome, err := a.Orchestrator.Generate(r.Context(), series.Request{
		BasePrompt:        req.Prompt,
		Quantity:          quantity,
		ConsistencyPrompt: req.Series.ConsistencyPrompt,
		Variations:        req.Series.Variations,
		AspectRatio:       req.AspectRatio,
		BaseImage:         req.BaseImage,
	})
	if err != nil {
		var allFailed *series.AllFailedError
		switch {
		case errors.As(err, &allFailed):
			a.Logger.Error().Int("failed", len(allFailed.Errors)).Msg("series generation failed entirely")
			a.json(w, http.StatusInternalServerError, map[string]any{
				"error":   "All image generations failed",
				"details": allFailed.Errors,
			})
		case errors.Is(err, series.ErrMissingVariations),
			errors.Is(err, series.ErrInvalidQuantity),
			errors.Is(err, prompt.ErrInvalidConsistencyLevel):
			a.fail(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, gemini.ErrNotConfigured):
			a.fail(w, http.StatusInternalServerError, "GEMINI_API_KEY is not configured")
		default:
			a.Logger.Error().Err(err).Msg("series generation failed")
			a.fail(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	resp := seriesResponse{
		Images:   outcome.Images,
		Metadata: outcome.Metadata,
		Errors:   outcome.Errors,
	}
	if outcome.Partial() {
		resp.Warning = "Some image generations failed"
		a.json(w, http.StatusMultiStatus, resp)
		return
	}
	a.json(w, http.StatusOK, resp)
}

// parseQuantity accepts only finite integral quantities; anything else is a
// validation failure before generation starts.
func parseQuantity(raw json.Number) (int, bool) {
	if raw == "" {
		return 0, false
	}
	f, err := raw.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
