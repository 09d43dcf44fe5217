package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maauso/gifposter/internal/media/mediatest"
	"github.com/maauso/gifposter/internal/metrics"
	"github.com/maauso/gifposter/internal/poster"
	"github.com/maauso/gifposter/internal/publish"
	"github.com/maauso/gifposter/internal/storage"
	"github.com/maauso/gifposter/internal/tag"
)

// mockPublisher implements Publisher for testing.
type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, assets []tag.Asset) ([]publish.Upload, error) {
	args := m.Called(ctx, assets)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]publish.Upload), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestRenderer builds a real expander over a temporary site with
// a.gif + a.png and a lone c.jpg, and no external tools installed.
func newTestRenderer(t *testing.T) *tag.Expander {
	t.Helper()
	dir := t.TempDir()
	for _, f := range []string{"a.gif", "a.png", "c.jpg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), make([]byte, 1536), 0600))
	}
	site, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)

	resolver := poster.NewResolver(site, mediatest.NewRunner(), poster.Options{}, testLogger())
	return tag.NewExpander(resolver, testLogger())
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf []byte
	switch b := body.(type) {
	case string:
		buf = []byte(b)
	default:
		var err error
		buf, err = json.Marshal(b)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := NewHandlers(newTestRenderer(t), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	h.Health(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestRender_Success(t *testing.T) {
	h := NewHandlers(newTestRenderer(t), testLogger())

	rec := postJSON(t, h.Render, "/render", RenderRequest{Path: "a.gif"})
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp RenderResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t,
		`<figure class="animated_gif_frame" data-caption="GIF (1.5KB)"><img class="animated_gif" src="a.png" data-source="a.gif"></figure>`,
		resp.HTML)
	assert.Equal(t, "a.png", resp.Poster)
	assert.Equal(t, "a.gif", resp.Gif)
	assert.Empty(t, resp.Error)
}

func TestRender_ResolutionFailureIsInline(t *testing.T) {
	h := NewHandlers(newTestRenderer(t), testLogger())

	rec := postJSON(t, h.Render, "/render", RenderRequest{Path: "c.jpg"})
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp RenderResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "<Gif for c.jpg not found>", resp.HTML)
	assert.NotEmpty(t, resp.Error)
}

func TestRender_InvalidJSON(t *testing.T) {
	h := NewHandlers(newTestRenderer(t), testLogger())

	rec := postJSON(t, h.Render, "/render", "invalid json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "INVALID_JSON", resp.Code)
}

func TestRender_ValidationError(t *testing.T) {
	h := NewHandlers(newTestRenderer(t), testLogger())

	rec := postJSON(t, h.Render, "/render", RenderRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.Code)
}

func TestExpand_Success(t *testing.T) {
	h := NewHandlers(newTestRenderer(t), testLogger())

	rec := postJSON(t, h.Expand, "/expand", ExpandRequest{Content: "<p>{% gif a.gif %}</p><p>{% gif c.jpg %}</p>"})
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ExpandResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, strings.HasPrefix(resp.Content, `<p><figure class="animated_gif_frame"`))
	assert.True(t, strings.HasSuffix(resp.Content, `<p><Gif for c.jpg not found></p>`))
	assert.Equal(t, []tag.Asset{{Poster: "a.png", Gif: "a.gif"}}, resp.Assets)
	assert.Empty(t, resp.Uploads)
}

func TestExpand_NoDirectives(t *testing.T) {
	h := NewHandlers(newTestRenderer(t), testLogger())

	rec := postJSON(t, h.Expand, "/expand", ExpandRequest{Content: "plain"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"assets":[]`)
}

func TestExpand_PublishNotConfigured(t *testing.T) {
	h := NewHandlers(newTestRenderer(t), testLogger())

	rec := postJSON(t, h.Expand, "/expand", ExpandRequest{Content: "{% gif a.gif %}", Publish: true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "PUBLISH_NOT_CONFIGURED", resp.Code)
}

func TestExpand_Publish(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, []tag.Asset{{Poster: "a.png", Gif: "a.gif"}}).
		Return([]publish.Upload{{Path: "a.png", URL: "https://b/a.png"}, {Path: "a.gif", URL: "https://b/a.gif"}}, nil)
	h := NewHandlers(newTestRenderer(t), testLogger(), WithPublisher(pub))

	rec := postJSON(t, h.Expand, "/expand", ExpandRequest{Content: "{% gif a.gif %}", Publish: true})
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ExpandResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Uploads, 2)
	pub.AssertExpectations(t)
}

func TestExpand_PublishFailure(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("upload to S3: denied"))
	h := NewHandlers(newTestRenderer(t), testLogger(), WithPublisher(pub))

	rec := postJSON(t, h.Expand, "/expand", ExpandRequest{Content: "{% gif a.gif %}", Publish: true})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg, nil)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.gif"), []byte("GIF89a"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("jpg"), 0600))
	site, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	resolver := metrics.Instrument(poster.NewResolver(site, mediatest.NewRunner(), poster.Options{}, testLogger()), m)

	h := NewHandlers(tag.NewExpander(resolver, testLogger()), testLogger())
	cfg := DefaultConfig()
	cfg.Gatherer = reg
	router := NewRouter(h, testLogger(), cfg)

	t.Run("render through router", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/render", strings.NewReader(`{"path":"a.gif"}`))
		req.Header.Set(RequestIDHeader, "req-123")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))
		assert.Contains(t, rec.Body.String(), `src=\"a.jpg\"`)
	})

	t.Run("escaping path", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/render", strings.NewReader(`{"path":"../../../tmp/evil.gif"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `Poster image for ../../../tmp/evil.gif not found`)
	})

	t.Run("metrics", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `gifposter_resolutions_total{outcome="ok"} 1`)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/render", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
	})
}
