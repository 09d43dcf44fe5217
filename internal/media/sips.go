package media

import (
	"context"
	"strings"
)

// SipsMeasurer implements Measurer using the macOS sips utility.
type SipsMeasurer struct {
	runner   Runner
	sipsPath string
}

// NewSipsMeasurer creates a SipsMeasurer.
// If sipsPath is empty, it defaults to "sips" (found via PATH).
func NewSipsMeasurer(r Runner, sipsPath string) *SipsMeasurer {
	if sipsPath == "" {
		sipsPath = SipsTool
	}
	return &SipsMeasurer{runner: r, sipsPath: sipsPath}
}

// Path returns the command used to invoke sips.
func (m *SipsMeasurer) Path() string {
	return m.sipsPath
}

// Measure queries pixelWidth and pixelHeight separately.
func (m *SipsMeasurer) Measure(ctx context.Context, path string) Dimensions {
	return Dimensions{
		Width:  m.query(ctx, "pixelWidth", path),
		Height: m.query(ctx, "pixelHeight", path),
	}
}

func (m *SipsMeasurer) query(ctx context.Context, property, path string) string {
	out, _ := m.runner.Run(ctx, m.sipsPath, "-g", property, path)
	return secondColumn(out.Stdout)
}

// secondColumn keeps the second whitespace-separated field of every line.
// sips prints the file path on its own line followed by "  key: value".
func secondColumn(output string) string {
	lines := strings.Split(output, "\n")
	cols := make([]string, 0, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			cols = append(cols, fields[1])
		} else {
			cols = append(cols, "")
		}
	}
	return strings.TrimSpace(strings.Join(cols, "\n"))
}
