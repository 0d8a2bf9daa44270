package patch

import (
	"errors"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/nifpatch/internal/rules"
	"github.com/Faultbox/nifpatch/pkg/nif"
)

// Shape skip reasons.
var (
	ErrNoTextures        = errors.New("shape has no texture paths")
	ErrNoShader          = errors.New("shape has no shader property")
	ErrNotLightingShader = errors.New("shape is not using a lighting shader")
)

// Mesh is the mesh object the engine mutates.
type Mesh interface {
	GetShapes() []*nif.Shape
	DeleteShape(shape *nif.Shape) bool
}

// ShapeResult summarizes what happened to one shape.
type ShapeResult struct {
	Name     string
	Modified bool
	Deleted  bool
	Skipped  bool
}

// Result is the outcome of applying the rules to one mesh.
type Result struct {
	File        string
	Modified    bool
	Shapes      []ShapeResult
	Diagnostics []Diagnostic
}

// Engine applies normalized rule documents to meshes. It holds no mutable
// state and may be shared between goroutines working on different meshes.
type Engine struct {
	docs []rules.Document
	log  *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// New creates an engine for docs. The documents are normalized here, so
// callers may pass either raw or already normalized documents.
func New(docs []rules.Document, opts ...Option) *Engine {
	e := &Engine{
		docs: rules.Normalize(docs),
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Documents returns the normalized documents the engine applies.
func (e *Engine) Documents() []rules.Document {
	return e.docs
}

// Apply runs every rule entry, in document order, against every shape of
// mesh. filename is the mesh path used by nif_filter.
func (e *Engine) Apply(mesh Mesh, filename string) *Result {
	res := &Result{File: filename}
	lowerName := strings.ToLower(filename)

	// Deleting a shape edits the mesh's shape list.
	for _, shape := range slices.Clone(mesh.GetShapes()) {
		sr := e.applyShape(mesh, shape, lowerName, res)
		res.Shapes = append(res.Shapes, sr)
		if sr.Modified {
			res.Modified = true
		}
	}
	return res
}

func (e *Engine) applyShape(mesh Mesh, shape *nif.Shape, lowerName string, res *Result) ShapeResult {
	sr := ShapeResult{Name: shape.DisplayName()}

	shader, err := e.checkShape(shape)
	if err != nil {
		sr.Skipped = true
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Kind: KindSkipped, File: res.File, Shape: sr.Name, Entry: -1, Err: err,
		})
		e.log.Warn("Skipping shape", zap.String("shape", sr.Name), zap.String("file", res.File), zap.Error(err))
		return sr
	}

	mc := NewMatchContext(shape.Textures)

docs:
	for d := range e.docs {
		doc := &e.docs[d]
		for i := range doc.Entries {
			entry := &doc.Entries[i]
			m := Match(entry, mc, lowerName)
			if m.Gated {
				continue
			}

			a := applier{eng: e, mesh: mesh, shape: shape, shader: shader, doc: doc, entry: entry, res: res, sr: &sr}
			if a.apply(m) {
				break docs
			}
		}
	}

	if sr.Modified {
		e.log.Info("Shape updated", zap.String("shape", sr.Name), zap.String("file", res.File))
	}
	return sr
}

func (e *Engine) checkShape(shape *nif.Shape) (*nif.LightingShader, error) {
	if shape.Textures == nil {
		return nil, ErrNoTextures
	}
	if shape.Shader == nil {
		return nil, ErrNoShader
	}
	ls := shape.LightingShader()
	if ls == nil {
		return nil, ErrNotLightingShader
	}
	return ls, nil
}
