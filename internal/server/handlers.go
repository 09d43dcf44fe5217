package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/maauso/gifposter/internal/poster"
	"github.com/maauso/gifposter/internal/publish"
	"github.com/maauso/gifposter/internal/storage"
	"github.com/maauso/gifposter/internal/tag"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 16 << 20

// Renderer resolves directives in single or document form.
type Renderer interface {
	Render(ctx context.Context, markup string) poster.Result
	Expand(ctx context.Context, doc string) (string, []tag.Asset)
}

// Publisher uploads resolved assets.
type Publisher interface {
	Publish(ctx context.Context, assets []tag.Asset) ([]publish.Upload, error)
}

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	renderer  Renderer
	publisher Publisher
	validator *validator.Validate
	logger    *slog.Logger
}

// HandlerOption is a function that configures a Handlers instance.
type HandlerOption func(*Handlers)

// WithPublisher enables publishing on /expand.
func WithPublisher(p Publisher) HandlerOption {
	return func(h *Handlers) {
		h.publisher = p
	}
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(renderer Renderer, logger *slog.Logger, opts ...HandlerOption) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handlers{
		renderer:  renderer,
		validator: validator.New(),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// Render handles POST /render requests. Resolution failures are reported
// in the body with status 200: they are rendered text, not request errors.
func (h *Handlers) Render(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if !h.decode(w, r, &req) {
		return
	}

	res := h.renderer.Render(r.Context(), req.Path)
	AddLogAttrs(r.Context(), slog.String("outcome", res.Outcome()))
	resp := RenderResponse{
		HTML:   res.HTML(),
		Poster: res.Poster,
		Gif:    res.Gif,
	}
	if res.Err != nil {
		resp.Error = res.Err.Error()
	}

	writeJSON(w, http.StatusOK, resp)
}

// Expand handles POST /expand requests.
func (h *Handlers) Expand(w http.ResponseWriter, r *http.Request) {
	var req ExpandRequest
	if !h.decode(w, r, &req) {
		return
	}

	if req.Publish && h.publisher == nil {
		writeError(w, http.StatusBadRequest, "publishing is not configured", "PUBLISH_NOT_CONFIGURED")
		return
	}

	content, assets := h.renderer.Expand(r.Context(), req.Content)
	if assets == nil {
		assets = []tag.Asset{}
	}
	resp := ExpandResponse{Content: content, Assets: assets}
	AddLogAttrs(r.Context(), slog.Int("assets", len(assets)))

	if req.Publish {
		uploads, err := h.publisher.Publish(r.Context(), assets)
		if err != nil {
			h.logger.Error("failed to publish assets",
				slog.String("error", err.Error()),
			)
			code := http.StatusBadGateway
			if errors.Is(err, storage.ErrS3NotConfigured) {
				code = http.StatusBadRequest
			}
			writeError(w, code, "failed to publish assets", "PUBLISH_FAILED")
			return
		}
		resp.Uploads = uploads
	}

	h.logger.Info("document expanded",
		slog.Int("assets", len(assets)),
		slog.Bool("published", req.Publish),
	)

	writeJSON(w, http.StatusOK, resp)
}

// decode reads and validates a JSON body, writing a 400 on failure.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		h.logger.Warn("request validation failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return false
	}
	return true
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
