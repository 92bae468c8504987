package studio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"imagestudio/internal/gemini"
	"imagestudio/internal/prompt"
	"imagestudio/internal/series"
)

// DefaultTimeout covers a full sequential series round trip; single images
// finish far sooner.
const DefaultTimeout = 120 * time.Second

// Options configures the endpoint client.
type Options struct {
	// Endpoint is the full URL of the generate route.
	Endpoint string
	// AccessKey, when set, is sent as X-API-Key on every call.
	AccessKey  string
	HTTPClient *http.Client
}

// Client calls the Remote Endpoint Adapter from a host application.
type Client struct {
	endpoint   string
	accessKey  string
	httpClient *http.Client
}

// SeriesOptions describes one series run from the host's point of view. The
// client derives the consistency text from Level and StyleAnchor before
// sending.
type SeriesOptions struct {
	BasePrompt  string
	Quantity    int
	Level       prompt.ConsistencyLevel
	StyleAnchor string
	Variations  []string
	AspectRatio string
	BaseImage   string
}

type wireSeries struct {
	Quantity          int      `json:"quantity"`
	ConsistencyPrompt string   `json:"consistencyPrompt"`
	Variations        []string `json:"variations"`
}

type wireRequest struct {
	Prompt      string      `json:"prompt"`
	AspectRatio string      `json:"aspectRatio,omitempty"`
	Mode        string      `json:"mode,omitempty"`
	BaseImage   string      `json:"baseImage,omitempty"`
	Series      *wireSeries `json:"series,omitempty"`
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		endpoint:   opts.Endpoint,
		accessKey:  opts.AccessKey,
		httpClient: httpClient,
	}
}

// GenerateImage requests one text-to-image generation.
func (c *Client) GenerateImage(ctx context.Context, promptText, aspectRatio string) (*gemini.ImagePayload, error) {
	return c.single(ctx, wireRequest{
		Prompt:      promptText,
		AspectRatio: aspectRatio,
		Mode:        string(gemini.ModeGenerate),
	})
}

// EditImage requests an edit of an existing base64 image.
func (c *Client) EditImage(ctx context.Context, promptText, baseImage, aspectRatio string) (*gemini.ImagePayload, error) {
	return c.single(ctx, wireRequest{
		Prompt:      promptText,
		AspectRatio: aspectRatio,
		Mode:        string(gemini.ModeEdit),
		BaseImage:   baseImage,
	})
}

// GenerateSeries runs a consistency series and returns the outcome, whether
// fully or partially successful. A 207 response is a success with Errors
// populated.
func (c *Client) GenerateSeries(ctx context.Context, opts SeriesOptions) (*series.Outcome, error) {
	consistency, err := prompt.BuildSeriesPrompt(opts.BasePrompt, "", opts.Level, opts.StyleAnchor)
	if err != nil {
		return nil, err
	}
	variations := opts.Variations
	if opts.Quantity > 0 && len(variations) > opts.Quantity {
		variations = variations[:opts.Quantity]
	}
	mode := gemini.ModeGenerate
	if opts.BaseImage != "" {
		mode = gemini.ModeEdit
	}
	body, status, err := c.post(ctx, wireRequest{
		Prompt:      opts.BasePrompt,
		AspectRatio: opts.AspectRatio,
		Mode:        string(mode),
		BaseImage:   opts.BaseImage,
		Series: &wireSeries{
			Quantity:          opts.Quantity,
			ConsistencyPrompt: consistency,
			Variations:        variations,
		},
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusMultiStatus {
		return nil, decodeRemoteError(status, body)
	}
	var outcome series.Outcome
	if err := json.Unmarshal(body, &outcome); err != nil {
		return nil, fmt.Errorf("studio: decode series response: %w", err)
	}
	return &outcome, nil
}

func (c *Client) single(ctx context.Context, req wireRequest) (*gemini.ImagePayload, error) {
	body, status, err := c.post(ctx, req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, decodeRemoteError(status, body)
	}
	var image gemini.ImagePayload
	if err := json.Unmarshal(body, &image); err != nil {
		return nil, fmt.Errorf("studio: decode image response: %w", err)
	}
	return &image, nil
}

func (c *Client) post(ctx context.Context, req wireRequest) ([]byte, int, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, 0, fmt.Errorf("studio: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, 0, fmt.Errorf("studio: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.accessKey != "" {
		httpReq.Header.Set("X-API-Key", c.accessKey)
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("studio: call endpoint: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("studio: read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func decodeRemoteError(status int, body []byte) error {
	var remote struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &remote); err == nil && remote.Error != "" {
		return fmt.Errorf("studio: endpoint returned %d: %s", status, remote.Error)
	}
	return fmt.Errorf("studio: endpoint returned %d", status)
}
