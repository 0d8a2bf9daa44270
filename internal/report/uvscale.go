package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/Faultbox/nifpatch/pkg/math"
)

// ShapeScale is the UV scale estimate of one shape.
type ShapeScale struct {
	Name  string
	Scale math.Vec2
	Err   error
}

// UVScales prints the per-shape UV scale estimates of a mesh file.
func (p *Printer) UVScales(file string, scales []ShapeScale) error {
	var b strings.Builder
	b.WriteString(p.styles.Title.Render(file) + "\n")

	width := 0
	for _, s := range scales {
		width = max(width, len(s.Name))
	}
	for _, s := range scales {
		name := p.styles.Label.Render(fmt.Sprintf("%-*s", width, s.Name))
		if s.Err != nil {
			fmt.Fprintf(&b, "  %s %s\n", name, p.styles.Bad.Render(s.Err.Error()))
			continue
		}
		fmt.Fprintf(&b, "  %s %.4f\n", name, s.Scale.U)
	}

	_, err := io.WriteString(p.w, b.String())
	return err
}
