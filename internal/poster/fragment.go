package poster

import "strings"

// render builds the figure markup:
//
//	<figure class="animated_gif_frame" data-caption="GIF (1.5KB)"><img class="animated_gif" src="a.png" data-source="a.gif" width="100" height="50"></figure>
func (r *Resolver) render(res Result) string {
	var b strings.Builder

	b.WriteString(`<figure class="animated_gif_frame" data-caption="GIF`)
	if res.Size != "" {
		b.WriteString(" (" + res.Size + ")")
	}
	b.WriteString(`"><img class="animated_gif" src="`)
	b.WriteString(r.opts.CDNURL + res.Poster)
	b.WriteString(`" data-source="`)
	b.WriteString(r.opts.CDNURL + res.Gif)
	b.WriteString(`"`)
	if d := res.Dimensions; d != nil {
		b.WriteString(` width="` + d.Width + `"`)
		b.WriteString(` height="` + d.Height + `"`)
	}
	b.WriteString(`>`)
	if r.opts.Caption != "" {
		b.WriteString("<figcaption>" + r.opts.Caption + "</figcaption>")
	}
	b.WriteString(`</figure>`)

	return b.String()
}
