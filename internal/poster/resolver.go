package poster

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/maauso/gifposter/internal/media"
	"github.com/maauso/gifposter/internal/storage"
)

// Options configures a Resolver.
type Options struct {
	// ConvertCmd is an explicit frame-extraction command. When empty,
	// "convert" is probed on PATH.
	ConvertCmd string
	// IdentifyCmd is an explicit measurement command. When empty,
	// "identify" and then "sips" are probed on PATH.
	IdentifyCmd string
	// CDNURL is prepended to the poster and gif URLs.
	CDNURL string
	// Caption is rendered as a figcaption inside the figure when set.
	Caption string
}

// Result is the outcome of resolving one image reference.
type Result struct {
	// Poster is the site-relative path of the still image.
	Poster string
	// Gif is the site-relative path of the animated image.
	Gif string
	// Size is the human-readable size of the gif, empty if unknown.
	Size string
	// Dimensions are the poster's measured size, nil if no tool was found.
	Dimensions *media.Dimensions
	// Generated is true when the poster was produced by the converter.
	Generated bool
	// Err is a *ResolveError when resolution failed.
	Err error

	html string
}

// HTML returns the figure fragment, or the inline error text on failure.
func (r Result) HTML() string {
	if r.Err != nil {
		var rerr *ResolveError
		if errors.As(r.Err, &rerr) {
			return rerr.Inline()
		}
		return SyntaxErrorText
	}
	return r.html
}

// String implements fmt.Stringer.
func (r Result) String() string {
	return r.HTML()
}

// Outcome classifies the result for logs and metrics.
func (r Result) Outcome() string {
	switch {
	case r.Err == nil:
		return "ok"
	case errors.Is(r.Err, ErrPosterNotFound):
		return "poster_not_found"
	case errors.Is(r.Err, ErrGifNotFound):
		return "gif_not_found"
	default:
		return "syntax_error"
	}
}

// Resolver turns image references into click-to-play figures. It holds no
// per-call state and is safe for concurrent use.
type Resolver struct {
	site   storage.Storage
	runner media.Runner
	opts   Options
	logger *slog.Logger
}

// NewResolver creates a Resolver over site that runs external tools via runner.
func NewResolver(site storage.Storage, runner media.Runner, opts Options, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	opts.CDNURL = strings.TrimSuffix(opts.CDNURL, "/")
	return &Resolver{
		site:   site,
		runner: runner,
		opts:   opts,
		logger: logger,
	}
}

// Resolve is a convenience wrapper building a Resolver over siteRoot with
// real external tools. An unusable siteRoot contains no files, so a valid
// reference reports its missing counterpart.
func Resolve(ctx context.Context, imagePath, siteRoot string, opts Options) Result {
	ref, err := ParseReference(imagePath)
	if err != nil {
		return Result{Err: err}
	}

	site, err := storage.NewLocalStorage(siteRoot)
	if err != nil {
		slog.Default().Warn("site root unavailable",
			slog.String("site_root", siteRoot),
			slog.String("error", err.Error()),
		)
		if ref.Kind == KindGif {
			return Result{Err: &ResolveError{Err: ErrPosterNotFound, Image: ref.Path}}
		}
		return Result{Err: &ResolveError{Err: ErrGifNotFound, Image: ref.Path}}
	}
	return NewResolver(site, media.NewExecRunner(0), opts, nil).Resolve(ctx, imagePath)
}

// Resolve resolves imagePath, relative to the site root, into a figure.
// Failures never panic or abort: they are reported in Result.Err and
// rendered inline by Result.HTML.
func (r *Resolver) Resolve(ctx context.Context, imagePath string) Result {
	start := time.Now()
	res := r.resolve(ctx, imagePath)

	r.logger.Debug("resolved gif",
		slog.String("image", imagePath),
		slog.String("outcome", res.Outcome()),
		slog.String("poster", res.Poster),
		slog.Duration("duration", time.Since(start)),
	)
	return res
}

func (r *Resolver) resolve(ctx context.Context, imagePath string) Result {
	ref, err := ParseReference(imagePath)
	if err != nil {
		return Result{Err: err}
	}

	var res Result
	switch ref.Kind {
	case KindGif:
		res.Gif = ref.Path
		res.Poster, res.Generated, err = r.findPoster(ctx, ref)
	case KindStill:
		res.Poster = ref.Path
		res.Gif = ref.Sibling(".gif")
		if !r.site.Exists(ctx, res.Gif) {
			err = &ResolveError{Err: ErrGifNotFound, Image: ref.Path}
		}
	}
	if err != nil {
		return Result{Err: err}
	}

	// An empty gif gets no size annotation.
	if n, sizeErr := r.site.Size(ctx, res.Gif); sizeErr == nil && n > 0 {
		res.Size = HumanSize(n)
	}

	if local, pathErr := r.site.LocalPath(res.Poster); pathErr == nil {
		if m := media.FindMeasurer(r.runner, r.opts.IdentifyCmd); m != nil {
			d := m.Measure(ctx, local)
			res.Dimensions = &d
		}
	}

	res.html = r.render(res)
	return res
}

// findPoster looks for a png, then a jpg, next to the gif. When neither
// exists it extracts the first frame into a jpg if a converter is available.
func (r *Resolver) findPoster(ctx context.Context, ref Reference) (string, bool, error) {
	for _, ext := range []string{".png", ".jpg"} {
		if p := ref.Sibling(ext); r.site.Exists(ctx, p) {
			return p, false, nil
		}
	}

	notFound := &ResolveError{Err: ErrPosterNotFound, Image: ref.Path}

	// Tools only ever see paths inside the site root.
	poster := ref.Sibling(".jpg")
	src, err := r.site.LocalPath(ref.Path)
	if err != nil {
		r.logger.Warn("gif outside site root",
			slog.String("gif", ref.Path),
			slog.String("error", err.Error()),
		)
		return "", false, notFound
	}
	dst, err := r.site.LocalPath(poster)
	if err != nil {
		return "", false, notFound
	}

	conv := media.FindConverter(r.runner, r.opts.ConvertCmd)
	if conv == nil {
		return "", false, notFound
	}

	// The derived path is used even if conversion fails.
	if err := conv.ExtractFirstFrame(ctx, src, dst); err != nil {
		r.logger.Warn("poster frame extraction failed",
			slog.String("gif", ref.Path),
			slog.String("poster", poster),
			slog.String("error", err.Error()),
		)
	} else {
		r.logger.Debug("generated poster frame",
			slog.String("gif", ref.Path),
			slog.String("poster", poster),
		)
	}
	return poster, true, nil
}
