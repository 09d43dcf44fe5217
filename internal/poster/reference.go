// Package poster resolves an animated image reference to a click-to-play
// figure: it finds or generates a still poster frame, measures it and
// renders the HTML fragment.
package poster

import (
	"path"
	"strings"
	"unicode"
)

// Kind is the role of the referenced file.
type Kind int

const (
	// KindGif means the reference names the animated image itself.
	KindGif Kind = iota + 1
	// KindStill means the reference names the still poster image.
	KindStill
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindGif:
		return "gif"
	case KindStill:
		return "still"
	default:
		return "unknown"
	}
}

// extensions maps normalized extensions to the role of the file.
var extensions = map[string]Kind{
	".gif":  KindGif,
	".png":  KindStill,
	".jpg":  KindStill,
	".jpeg": KindStill,
}

// Reference is a parsed image path.
type Reference struct {
	// Path is the path as given.
	Path string
	// Base is Path without its extension.
	Base string
	// Kind is chosen by the extension.
	Kind Kind
}

// ParseReference validates an image path. The path must end in .gif, .png,
// .jpg or .jpeg (any case), have a non-empty base name and contain no
// whitespace.
func ParseReference(p string) (Reference, error) {
	if p == "" || strings.IndexFunc(p, unicode.IsSpace) >= 0 {
		return Reference{}, &ResolveError{Err: ErrSyntax, Image: p}
	}

	ext := path.Ext(p)
	kind, ok := extensions[strings.ToLower(ext)]
	if !ok {
		return Reference{}, &ResolveError{Err: ErrSyntax, Image: p}
	}

	base := strings.TrimSuffix(p, ext)
	if base == "" || strings.HasSuffix(base, "/") {
		return Reference{}, &ResolveError{Err: ErrSyntax, Image: p}
	}

	return Reference{Path: p, Base: base, Kind: kind}, nil
}

// Sibling returns the reference's base name with ext appended.
func (r Reference) Sibling(ext string) string {
	return r.Base + ext
}
