package sanity

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"imagestudio/internal/upload"
)

func TestUpload(t *testing.T) {
	body := []byte{0x89, 0x50, 0x4e, 0x47}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2024-01-01/assets/images/production" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Fatalf("unexpected auth header: %s", got)
		}
		if got := r.Header.Get("Content-Type"); got != "image/png" {
			t.Fatalf("unexpected content type: %s", got)
		}
		if got := r.URL.Query().Get("filename"); got != "gemini-series-1-1.png" {
			t.Fatalf("unexpected filename: %s", got)
		}
		if got := r.URL.Query().Get("description"); got != "red sneaker" {
			t.Fatalf("unexpected description: %s", got)
		}
		data, err := io.ReadAll(r.Body)
		if err != nil || len(data) != len(body) {
			t.Fatalf("body mismatch: %v len=%d", err, len(data))
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"document":{"_id":"image-abc123","url":"https://cdn.sanity.io/images/p/production/abc123.png","metadata":{"dimensions":{"width":1024,"height":1024}}}}`))
	}))
	defer ts.Close()

	client := NewClient(Options{Dataset: "production", Token: "test-token", BaseURL: ts.URL})
	ref, err := client.Upload(context.Background(), upload.Input{
		Data:     body,
		MimeType: "image/png",
		Filename: "gemini-series-1-1",
		Metadata: &upload.Metadata{Prompt: "red sneaker"},
	})
	if err != nil {
		t.Fatalf("Upload error: %v", err)
	}
	if ref.ID != "image-abc123" {
		t.Fatalf("unexpected asset id: %s", ref.ID)
	}
	if ref.Width != 1024 || ref.Height != 1024 {
		t.Fatalf("unexpected dimensions: %dx%d", ref.Width, ref.Height)
	}
	if ref.Filename != "gemini-series-1-1" {
		t.Fatalf("unexpected filename: %s", ref.Filename)
	}
}

func TestUploadAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Unauthorized","message":"invalid token"}`))
	}))
	defer ts.Close()

	client := NewClient(Options{Dataset: "production", Token: "bad", BaseURL: ts.URL})
	_, err := client.Upload(context.Background(), upload.Input{Data: []byte{1}, MimeType: "image/png", Filename: "f"})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestUploadMissingToken(t *testing.T) {
	client := NewClient(Options{Dataset: "production"})
	if _, err := client.Upload(context.Background(), upload.Input{Data: []byte{1}}); err == nil {
		t.Fatal("expected error when token missing")
	}
}
