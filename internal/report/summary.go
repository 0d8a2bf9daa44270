package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Faultbox/nifpatch/internal/patch"
	"github.com/Faultbox/nifpatch/internal/runner"
)

// Summary prints the counters, diagnostics and failures of a run.
func (p *Printer) Summary(s *runner.Summary, dryRun bool) error {
	st := p.styles
	var b strings.Builder

	title := "Processing complete"
	if dryRun {
		title += " (dry run)"
	}
	b.WriteString(st.Title.Render(title) + "\n")

	row := func(label string, value string) {
		fmt.Fprintf(&b, "  %s %s\n", st.Label.Render(fmt.Sprintf("%-9s", label)), value)
	}
	row("Scanned", fmt.Sprint(s.Scanned))
	row("Modified", st.Good.Render(fmt.Sprint(s.Modified)))
	failed := fmt.Sprint(s.Failed)
	if s.Failed > 0 {
		failed = st.Bad.Render(failed)
	}
	row("Failed", failed)
	shapes := fmt.Sprint(s.Shapes)
	if s.Deleted > 0 {
		shapes += st.Faint.Render(fmt.Sprintf(" (%d deleted)", s.Deleted))
	}
	row("Shapes", shapes)
	row("Elapsed", s.Elapsed.Round(time.Millisecond).String())

	if len(s.Diagnostics) > 0 {
		fmt.Fprintf(&b, "\n%s\n", st.Title.Render(fmt.Sprintf("Diagnostics (%d)", len(s.Diagnostics))))
		for _, d := range s.Diagnostics {
			fmt.Fprintf(&b, "  %s %s\n", p.kind(d.Kind), d.Error())
		}
	}

	if len(s.Failures) > 0 {
		fmt.Fprintf(&b, "\n%s\n", st.Title.Render(fmt.Sprintf("Failures (%d)", len(s.Failures))))
		for _, f := range s.Failures {
			fmt.Fprintf(&b, "  %s %s: %v\n", st.Bad.Render("✗"), f.File, f.Err)
		}
	}

	_, err := io.WriteString(p.w, b.String())
	return err
}

func (p *Printer) kind(k patch.Kind) string {
	label := fmt.Sprintf("%-8s", k)
	if k == patch.KindSkipped {
		return p.styles.Faint.Render(label)
	}
	return p.styles.Warn.Render(label)
}
