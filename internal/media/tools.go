// Package media wraps the external image tools used to build poster frames:
// ImageMagick's convert and identify, and the macOS sips utility.
package media

import (
	"context"
	"strconv"
	"strings"
)

// Tool names probed on PATH when no explicit command is configured.
const (
	ConvertTool  = "convert"
	IdentifyTool = "identify"
	SipsTool     = "sips"
)

// Runner executes external commands. It is injected into every tool so
// tests can substitute a fake and so exit-status handling stays visible
// at the call site.
type Runner interface {
	// LookPath reports the resolved path of an executable on PATH.
	LookPath(name string) (string, error)

	// Run executes name with args and returns its captured output.
	// A non-zero exit status is reported in Output.ExitCode and is not
	// an error; err is only set when the process could not be run.
	Run(ctx context.Context, name string, args ...string) (Output, error)
}

// Output is the captured result of a finished command.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Converter extracts a still frame from an animated image.
type Converter interface {
	// ExtractFirstFrame writes the first frame of src to dst. The format of
	// dst is chosen by the tool from its extension.
	ExtractFirstFrame(ctx context.Context, src, dst string) error
}

// Measurer reports the pixel dimensions of an image.
type Measurer interface {
	// Measure returns the raw width and height reported by the tool.
	// Values are not validated: a failing tool yields empty strings.
	Measure(ctx context.Context, path string) Dimensions
}

// Dimensions holds the width and height exactly as a measurement tool
// printed them, trimmed of surrounding whitespace.
type Dimensions struct {
	Width  string
	Height string
}

// Ints parses both values as positive integers. ok is false if either value
// is missing, non-numeric or not positive.
func (d Dimensions) Ints() (w, h int, ok bool) {
	w, errW := strconv.Atoi(d.Width)
	h, errH := strconv.Atoi(d.Height)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

// FindConverter returns a converter using explicit when it is set, otherwise
// the convert tool found on PATH. It returns nil when neither is available.
func FindConverter(r Runner, explicit string) Converter {
	if explicit != "" {
		return NewMagickConverter(r, explicit)
	}
	if _, err := r.LookPath(ConvertTool); err == nil {
		return NewMagickConverter(r, ConvertTool)
	}
	return nil
}

// FindMeasurer returns a measurer in priority order: explicit identify
// command, identify on PATH, sips on PATH. It returns nil when none of them
// is available.
func FindMeasurer(r Runner, explicit string) Measurer {
	if explicit != "" {
		return NewIdentifyMeasurer(r, explicit)
	}
	if _, err := r.LookPath(IdentifyTool); err == nil {
		return NewIdentifyMeasurer(r, IdentifyTool)
	}
	if _, err := r.LookPath(SipsTool); err == nil {
		return NewSipsMeasurer(r, SipsTool)
	}
	return nil
}

// splitCommand separates a configured command such as "magick convert" into
// the executable and its leading arguments.
func splitCommand(cmd string) (string, []string) {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return cmd, nil
	}
	return fields[0], fields[1:]
}
