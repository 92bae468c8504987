package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"imagestudio/internal/gemini"
	"imagestudio/internal/http/handlers"
	"imagestudio/internal/infra"
	"imagestudio/internal/series"
	"imagestudio/internal/session"
)

type okGenerator struct{}

func (okGenerator) GenerateOne(ctx context.Context, params gemini.GenerateParams) (*gemini.ImagePayload, error) {
	return &gemini.ImagePayload{ImageData: "aGVsbG8=", MimeType: "image/png"}, nil
}

func newTestRouter(t *testing.T, cfg *infra.Config) (http.Handler, *session.Manager) {
	t.Helper()
	logger := zerolog.Nop()
	gen := okGenerator{}
	sessions := session.NewManager(context.Background(), session.NewMemoryStore(), logger)
	app := handlers.NewApp(cfg, logger, gen, series.NewOrchestrator(gen, &logger), sessions)
	return NewRouter(app), sessions
}

func TestRouterMethodNotAllowed(t *testing.T) {
	router, _ := newTestRouter(t, &infra.Config{GeminiAPIKey: "test-key"})
	req := httptest.NewRequest(http.MethodGet, "/v1/images/generate", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestRouterPreflight(t *testing.T) {
	router, _ := newTestRouter(t, &infra.Config{GeminiAPIKey: "test-key"})
	req := httptest.NewRequest(http.MethodOptions, "/v1/images/generate", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard origin, got %q", got)
	}
}

func TestRouterAccessKey(t *testing.T) {
	router, _ := newTestRouter(t, &infra.Config{GeminiAPIKey: "test-key", APIAccessKey: "secret"})

	req := httptest.NewRequest(http.MethodPost, "/v1/images/generate", strings.NewReader(`{"prompt":"a red sneaker"}`))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/images/generate", strings.NewReader(`{"prompt":"a red sneaker"}`))
	req.Header.Set("X-API-Key", "secret")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with key, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestRouterSessionEndpoints(t *testing.T) {
	router, _ := newTestRouter(t, &infra.Config{GeminiAPIKey: "test-key"})

	body := `{"id":"session-1","timestamp":"2025-06-01T12:00:00Z","results":[],"savedImages":["image-abc"]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on save, got %d: %s", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/sessions", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on list, got %d", rr.Code)
	}
	var list struct {
		Sessions []session.GenerationSession `json:"sessions"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Sessions) != 1 || list.Sessions[0].ID != "session-1" {
		t.Fatalf("unexpected session list: %+v", list.Sessions)
	}

	req = httptest.NewRequest(http.MethodDelete, "/v1/sessions/session-1", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on delete, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/v1/sessions/session-1", nil)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rr.Code)
	}
}

func TestRouterHealth(t *testing.T) {
	router, _ := newTestRouter(t, &infra.Config{GeminiAPIKey: "test-key"})
	req := httptest.NewRequest(http.MethodGet, "/v1/healthz", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
