// Package report renders run summaries, rule trees and UV scale estimates for
// the terminal.
package report

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Styles used by the printer.
type Styles struct {
	Title lipgloss.Style
	Label lipgloss.Style
	Good  lipgloss.Style
	Bad   lipgloss.Style
	Warn  lipgloss.Style
	Faint lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title: r.NewStyle().Bold(true),
		Label: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "238", Dark: "250"}),
		Good:  r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "42"}),
		Bad:   r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"}).Bold(true),
		Warn:  r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "136", Dark: "214"}),
		Faint: r.NewStyle().Faint(true),
	}
}

// Printer writes styled reports to w.
type Printer struct {
	w      io.Writer
	styles Styles
}

// NewPrinter creates a printer. With color off all styling is dropped.
func NewPrinter(w io.Writer, color bool) *Printer {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{w: w, styles: newStyles(r)}
}

// ColorEnabled reports whether output to f should be styled: f is a terminal
// and NO_COLOR is unset.
func ColorEnabled(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
