package poster

import (
	"errors"
	"fmt"
)

// Static errors for poster resolution.
var (
	// ErrSyntax is returned when the argument is not an image path.
	ErrSyntax = errors.New("expected syntax: {% gif poster_path %}")
	// ErrPosterNotFound is returned when a gif has no poster image and
	// none can be generated.
	ErrPosterNotFound = errors.New("poster image not found")
	// ErrGifNotFound is returned when a still image has no sibling gif.
	ErrGifNotFound = errors.New("gif not found")
)

// ResolveError is a resolution failure for a single image reference.
type ResolveError struct {
	// Err is one of ErrSyntax, ErrPosterNotFound or ErrGifNotFound.
	Err error
	// Image is the reference the failure is reported against.
	Image string
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("%s: %v", e.Image, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// Inline returns the text rendered in place of the figure.
func (e *ResolveError) Inline() string {
	switch {
	case errors.Is(e.Err, ErrPosterNotFound):
		return fmt.Sprintf("<Poster image for %s not found>", e.Image)
	case errors.Is(e.Err, ErrGifNotFound):
		return fmt.Sprintf("<Gif for %s not found>", e.Image)
	default:
		return SyntaxErrorText
	}
}

// SyntaxErrorText is rendered for a malformed directive argument.
const SyntaxErrorText = "<Error processing input, expected syntax: {% gif poster_path %}>"
