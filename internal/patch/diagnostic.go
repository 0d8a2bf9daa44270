package patch

import "fmt"

// Kind classifies a diagnostic raised while applying rules.
type Kind int

const (
	// KindSkipped: the shape lacks textures or a lighting shader and was not processed.
	KindSkipped Kind = iota
	// KindConflict: the entry asks for mutually exclusive effects; both were applied.
	KindConflict
	// KindPath: texture paths for the PBR switch could not be derived.
	KindPath
	// KindGeometry: the shape geometry cannot support a geometric effect.
	KindGeometry
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindSkipped:
		return "skipped"
	case KindConflict:
		return "conflict"
	case KindPath:
		return "path"
	case KindGeometry:
		return "geometry"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Diagnostic is a non-fatal problem found while patching a shape.
// Document is empty and Entry is -1 when the problem is not tied to a rule.
type Diagnostic struct {
	Kind     Kind
	File     string
	Shape    string
	Document string
	Entry    int
	Err      error
}

// Error implements error.
func (d Diagnostic) Error() string {
	if d.Document == "" {
		return fmt.Sprintf("%s: shape %q: %s: %v", d.File, d.Shape, d.Kind, d.Err)
	}
	return fmt.Sprintf("%s: shape %q: %s entry %d: %s: %v", d.File, d.Shape, d.Document, d.Entry, d.Kind, d.Err)
}

// Unwrap returns the underlying error.
func (d Diagnostic) Unwrap() error {
	return d.Err
}
