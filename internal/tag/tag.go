// Package tag expands {% gif path %} directives in page content.
package tag

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/maauso/gifposter/internal/poster"
)

// Name is the directive name.
const Name = "gif"

// directive matches {% gif ... %} with optional whitespace trim markers.
var directive = regexp.MustCompile(`\{%-?\s*gif(?:\s+(.*?))?\s*-?%\}`)

// Resolver resolves a single image reference.
type Resolver interface {
	Resolve(ctx context.Context, imagePath string) poster.Result
}

// Asset is a poster/gif pair referenced by a successfully expanded directive.
type Asset struct {
	Poster    string `json:"poster"`
	Gif       string `json:"gif"`
	Generated bool   `json:"generated"`
}

// ParseMarkup returns the image argument of a directive: the last
// whitespace-separated token of markup, or "" when markup is blank.
func ParseMarkup(markup string) string {
	fields := strings.Fields(markup)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

// Expander rewrites documents by replacing every directive with the
// resolved figure or its inline error.
type Expander struct {
	resolver Resolver
	logger   *slog.Logger
}

// NewExpander creates an Expander.
func NewExpander(resolver Resolver, logger *slog.Logger) *Expander {
	if logger == nil {
		logger = slog.Default()
	}
	return &Expander{resolver: resolver, logger: logger}
}

// Render resolves a single directive argument.
func (e *Expander) Render(ctx context.Context, markup string) poster.Result {
	return e.resolver.Resolve(ctx, ParseMarkup(markup))
}

// Expand replaces all directives in doc. Failed directives are replaced by
// their inline error text; the remaining document is still processed.
// Assets lists the poster/gif pairs of successful directives in order.
func (e *Expander) Expand(ctx context.Context, doc string) (string, []Asset) {
	var assets []Asset
	failed := 0

	out := directive.ReplaceAllStringFunc(doc, func(m string) string {
		sub := directive.FindStringSubmatch(m)
		res := e.Render(ctx, sub[1])
		if res.Err != nil {
			failed++
			e.logger.Warn("gif directive failed",
				slog.String("directive", m),
				slog.String("error", res.Err.Error()),
			)
		} else {
			assets = append(assets, Asset{Poster: res.Poster, Gif: res.Gif, Generated: res.Generated})
		}
		return res.HTML()
	})

	e.logger.Debug("expanded document",
		slog.Int("resolved", len(assets)),
		slog.Int("failed", failed),
	)
	return out, assets
}
