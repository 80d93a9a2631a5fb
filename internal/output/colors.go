package output

import (
	"github.com/fatih/color"
)

// ColorScheme defines the colors used for console output.
type ColorScheme struct {
	Success   *color.Color
	Failure   *color.Color
	Highlight *color.Color
	Label     *color.Color
}

// DefaultColorScheme returns the default color scheme. Colors are forced on;
// callers decide whether the output is a terminal.
func DefaultColorScheme() *ColorScheme {
	scheme := &ColorScheme{
		Success:   color.New(color.FgGreen),
		Failure:   color.New(color.FgRed),
		Highlight: color.New(color.FgCyan, color.Bold),
		Label:     color.New(color.FgMagenta, color.Bold),
	}

	scheme.Success.EnableColor()
	scheme.Failure.EnableColor()
	scheme.Highlight.EnableColor()
	scheme.Label.EnableColor()

	return scheme
}

// NoColorScheme returns a color scheme with all colors disabled.
func NoColorScheme() *ColorScheme {
	scheme := DefaultColorScheme()

	scheme.Success.DisableColor()
	scheme.Failure.DisableColor()
	scheme.Highlight.DisableColor()
	scheme.Label.DisableColor()

	return scheme
}
