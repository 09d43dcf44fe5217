package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNonZeroExit is returned when a tool ran but reported failure.
var ErrNonZeroExit = errors.New("tool exited with non-zero status")

// MagickConverter implements Converter using ImageMagick's convert.
type MagickConverter struct {
	runner Runner
	// convertPath is the command used to invoke convert.
	convertPath string
}

// NewMagickConverter creates a MagickConverter.
// If convertPath is empty, it defaults to "convert" (found via PATH).
// A command with arguments, such as "magick convert", is split on whitespace.
func NewMagickConverter(r Runner, convertPath string) *MagickConverter {
	if convertPath == "" {
		convertPath = ConvertTool
	}
	return &MagickConverter{runner: r, convertPath: convertPath}
}

// Path returns the command used to invoke convert.
func (c *MagickConverter) Path() string {
	return c.convertPath
}

// ExtractFirstFrame writes frame 0 of src to dst.
func (c *MagickConverter) ExtractFirstFrame(ctx context.Context, src, dst string) error {
	name, args := splitCommand(c.convertPath)
	args = append(args,
		src+"[0]", // First frame only
		dst,
	)

	out, err := c.runner.Run(ctx, name, args...)
	if err != nil {
		return fmt.Errorf("extract first frame: %w", err)
	}
	if out.ExitCode != 0 {
		return fmt.Errorf("%w: %s exited %d: %s", ErrNonZeroExit, c.convertPath, out.ExitCode, strings.TrimSpace(out.Stderr))
	}
	return nil
}

// IdentifyMeasurer implements Measurer using ImageMagick's identify.
type IdentifyMeasurer struct {
	runner       Runner
	identifyPath string
}

// NewIdentifyMeasurer creates an IdentifyMeasurer.
// If identifyPath is empty, it defaults to "identify" (found via PATH).
func NewIdentifyMeasurer(r Runner, identifyPath string) *IdentifyMeasurer {
	if identifyPath == "" {
		identifyPath = IdentifyTool
	}
	return &IdentifyMeasurer{runner: r, identifyPath: identifyPath}
}

// Path returns the command used to invoke identify.
func (m *IdentifyMeasurer) Path() string {
	return m.identifyPath
}

// Measure queries width and height with two separate fx expressions.
func (m *IdentifyMeasurer) Measure(ctx context.Context, path string) Dimensions {
	return Dimensions{
		Width:  m.query(ctx, "%[fx:w]", path),
		Height: m.query(ctx, "%[fx:h]", path),
	}
}

func (m *IdentifyMeasurer) query(ctx context.Context, format, path string) string {
	// Exit status and stderr are ignored; whatever reached stdout is the answer.
	name, args := splitCommand(m.identifyPath)
	out, _ := m.runner.Run(ctx, name, append(args, "-format", format, path)...)
	return strings.TrimSpace(out.Stdout)
}
