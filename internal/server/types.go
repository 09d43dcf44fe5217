// Package server provides the HTTP surface for rendering gif directives.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

import (
	"github.com/maauso/gifposter/internal/publish"
	"github.com/maauso/gifposter/internal/tag"
)

// RenderRequest is the HTTP request body for rendering one directive.
type RenderRequest struct {
	// Path is the directive argument: an image path relative to the site root.
	Path string `json:"path" validate:"required,max=4096"`
}

// RenderResponse is the HTTP response for a rendered directive.
type RenderResponse struct {
	// HTML is the figure fragment, or the inline error text.
	HTML string `json:"html"`
	// Poster is the poster path, if resolved.
	Poster string `json:"poster,omitempty"`
	// Gif is the gif path, if resolved.
	Gif string `json:"gif,omitempty"`
	// Error describes why resolution failed, if it did.
	Error string `json:"error,omitempty"`
}

// ExpandRequest is the HTTP request body for expanding a document.
type ExpandRequest struct {
	// Content is the page source containing directives.
	Content string `json:"content" validate:"required,max=10485760"`
	// Publish uploads referenced assets to remote storage when true.
	Publish bool `json:"publish"`
}

// ExpandResponse is the HTTP response for an expanded document.
type ExpandResponse struct {
	// Content is the page with every directive replaced.
	Content string `json:"content"`
	// Assets lists the resolved poster/gif pairs.
	Assets []tag.Asset `json:"assets"`
	// Uploads lists published files when publishing was requested.
	Uploads []publish.Upload `json:"uploads,omitempty"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
