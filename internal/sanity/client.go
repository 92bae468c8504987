// Package sanity is a thin client for the Sanity asset upload API, used as
// the concrete asset-store backend of the upload pipeline.
package sanity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"imagestudio/internal/upload"
)

// Options configures the Sanity client. ProjectID, Dataset, and Token come
// from deployment configuration; BaseURL exists for tests.
type Options struct {
	ProjectID  string
	Dataset    string
	Token      string
	APIVersion string
	BaseURL    string
	HTTPClient *http.Client
}

// Client uploads image bytes to the Sanity assets endpoint.
type Client struct {
	dataset    string
	token      string
	apiVersion string
	baseURL    string
	httpClient *http.Client
}

type assetDocument struct {
	ID       string `json:"_id"`
	URL      string `json:"url"`
	Metadata struct {
		Dimensions struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"dimensions"`
	} `json:"metadata"`
}

type uploadResponse struct {
	Document assetDocument `json:"document"`
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// NewClient constructs a Sanity asset client.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	apiVersion := opts.APIVersion
	if apiVersion == "" {
		apiVersion = "v2024-01-01"
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.api.sanity.io", opts.ProjectID)
	}

	return &Client{
		dataset:    opts.Dataset,
		token:      opts.Token,
		apiVersion: apiVersion,
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// Upload posts raw image bytes to the assets endpoint and returns the stored
// asset's handle. It satisfies the upload.AssetStore port.
func (c *Client) Upload(ctx context.Context, in upload.Input) (*upload.AssetRef, error) {
	if c.token == "" {
		return nil, errors.New("sanity: token is required")
	}
	if len(in.Data) == 0 {
		return nil, errors.New("sanity: empty image payload")
	}

	endpoint := fmt.Sprintf("%s/%s/assets/images/%s", c.baseURL, c.apiVersion, url.PathEscape(c.dataset))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(in.Data))
	if err != nil {
		return nil, fmt.Errorf("sanity: create request: %w", err)
	}

	q := req.URL.Query()
	q.Set("filename", in.Filename+extensionFor(in.MimeType))
	if in.Metadata != nil && in.Metadata.Prompt != "" {
		q.Set("title", in.Filename)
		q.Set("description", in.Metadata.Prompt)
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Content-Type", in.MimeType)
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sanity: upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, decodeError(resp)
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("sanity: decode response: %w", err)
	}
	if out.Document.ID == "" {
		return nil, errors.New("sanity: response missing asset id")
	}

	return &upload.AssetRef{
		ID:       out.Document.ID,
		URL:      out.Document.URL,
		Filename: in.Filename,
		Width:    out.Document.Metadata.Dimensions.Width,
		Height:   out.Document.Metadata.Dimensions.Height,
	}, nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)
	var apiErr apiError
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Message != "" {
		return fmt.Errorf("sanity status %d: %s", resp.StatusCode, apiErr.Message)
	}
	if len(data) > 0 {
		return fmt.Errorf("sanity status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return fmt.Errorf("sanity status %d", resp.StatusCode)
}

func extensionFor(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}

var _ upload.AssetStore = (*Client)(nil)
