package report

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/roach88/gramtest/internal/compare"
)

// Colour modes accepted on the command line.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// ValidColorModes lists the accepted colour modes.
var ValidColorModes = []string{ColorAuto, ColorAlways, ColorNever}

// UseColor decides whether output to w is coloured. In auto mode colour is
// used for terminals unless NO_COLOR is set.
func UseColor(mode string, w io.Writer) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Palette colours report fragments. It is a value handed to renderers; the
// colour setting never touches package state.
type Palette struct {
	pass    *color.Color
	fail    *color.Color
	dim     *color.Color
	outcome map[compare.Outcome]*color.Color
}

// NewPalette creates a palette that colours when enabled is true.
func NewPalette(enabled bool) Palette {
	p := Palette{
		pass: color.New(color.FgGreen, color.Bold),
		fail: color.New(color.FgRed, color.Bold),
		dim:  color.New(color.Faint),
		outcome: map[compare.Outcome]*color.Color{
			compare.TP:  color.New(color.FgGreen),
			compare.FP1: color.New(color.FgYellow),
			compare.FP2: color.New(color.FgMagenta),
			compare.FN1: color.New(color.FgCyan),
			compare.FN2: color.New(color.FgRed),
		},
	}
	for _, c := range p.all() {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// zero reports whether p was never built by NewPalette.
func (p Palette) zero() bool { return p.pass == nil }

func (p Palette) all() []*color.Color {
	out := []*color.Color{p.pass, p.fail, p.dim}
	for _, o := range compare.Outcomes {
		out = append(out, p.outcome[o])
	}
	return out
}

// Status renders a PASS/FAIL marker.
func (p Palette) Status(passed bool) string {
	if passed {
		return p.pass.Sprint("PASS")
	}
	return p.fail.Sprint("FAIL")
}

// Outcome renders s in the colour of o.
func (p Palette) Outcome(o compare.Outcome, s string) string {
	if c, ok := p.outcome[o]; ok {
		return c.Sprint(s)
	}
	return s
}

// Dim renders secondary text.
func (p Palette) Dim(s string) string {
	return p.dim.Sprint(s)
}
