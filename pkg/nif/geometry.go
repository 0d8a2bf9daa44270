package nif

import (
	"errors"
	"fmt"

	"github.com/Faultbox/nifpatch/pkg/math"
)

// ErrTriangleIndex is returned when a triangle references a missing vertex.
var ErrTriangleIndex = errors.New("triangle index out of range")

// Triangle holds three vertex indices.
type Triangle struct {
	P1, P2, P3 uint16
}

// Color4 is an RGBA color.
type Color4 struct {
	R, G, B, A float32
}

// Geometry holds the per-vertex data of a shape.
type Geometry struct {
	Vertices   []math.Vec3 `yaml:"vertices"`
	UVs        []math.Vec2 `yaml:"uvs"`
	Normals    []math.Vec3 `yaml:"normals,omitempty"`
	Tangents   []math.Vec3 `yaml:"tangents,omitempty"`
	Bitangents []math.Vec3 `yaml:"bitangents,omitempty"`
	Colors     []Color4    `yaml:"colors,omitempty"`
	Triangles  []Triangle  `yaml:"triangles"`
}

// Validate checks that every triangle addresses existing vertices and UVs.
func (g *Geometry) Validate() error {
	n := min(len(g.Vertices), len(g.UVs))
	for i, t := range g.Triangles {
		if int(t.P1) >= n || int(t.P2) >= n || int(t.P3) >= n {
			return fmt.Errorf("%w: triangle %d (%d, %d, %d) with %d vertices and %d uvs",
				ErrTriangleIndex, i, t.P1, t.P2, t.P3, len(g.Vertices), len(g.UVs))
		}
	}
	return nil
}

// HasVertexColors reports whether the geometry carries vertex colors.
func (g *Geometry) HasVertexColors() bool {
	return len(g.Colors) > 0
}

// SetVertexColors adds white vertex colors or removes them.
func (g *Geometry) SetVertexColors(on bool) {
	if !on {
		g.Colors = nil
		return
	}
	if len(g.Colors) == len(g.Vertices) {
		return
	}
	g.Colors = make([]Color4, len(g.Vertices))
	for i := range g.Colors {
		g.Colors[i] = Color4{1, 1, 1, 1}
	}
}

// CalcNormals recomputes vertex normals from the triangles. Face normals are
// area weighted. When smoothSeams is set, vertices sharing a position are
// smoothed together if their normals are within smoothAngle degrees.
func (g *Geometry) CalcNormals(smoothSeams bool, smoothAngle float32) error {
	if err := g.validateVertices(); err != nil {
		return err
	}

	normals := make([]math.Vec3, len(g.Vertices))
	for _, t := range g.Triangles {
		v1, v2, v3 := g.Vertices[t.P1], g.Vertices[t.P2], g.Vertices[t.P3]
		n := v2.Sub(v1).Cross(v3.Sub(v1))
		normals[t.P1] = normals[t.P1].Add(n)
		normals[t.P2] = normals[t.P2].Add(n)
		normals[t.P3] = normals[t.P3].Add(n)
	}
	for i := range normals {
		normals[i] = normals[i].Normalize()
	}

	if smoothSeams {
		normals = smoothSeamNormals(g.Vertices, normals, smoothAngle)
	}
	g.Normals = normals
	return nil
}

// smoothSeamNormals averages normals of coincident vertices that lie within
// the smoothing angle of each other.
func smoothSeamNormals(verts, normals []math.Vec3, smoothAngle float32) []math.Vec3 {
	groups := make(map[math.Vec3][]int)
	for i, v := range verts {
		groups[v] = append(groups[v], i)
	}

	out := make([]math.Vec3, len(normals))
	copy(out, normals)
	for _, idx := range groups {
		if len(idx) < 2 {
			continue
		}
		for _, i := range idx {
			sum := normals[i]
			for _, j := range idx {
				if i != j && normals[i].AngleTo(normals[j]) <= smoothAngle {
					sum = sum.Add(normals[j])
				}
			}
			out[i] = sum.Normalize()
		}
	}
	return out
}

// CalcTangents recomputes tangents and bitangents from positions, UVs and normals.
func (g *Geometry) CalcTangents() error {
	if err := g.Validate(); err != nil {
		return err
	}

	tan := make([]math.Vec3, len(g.Vertices))
	bitan := make([]math.Vec3, len(g.Vertices))
	for _, t := range g.Triangles {
		v1, v2, v3 := g.Vertices[t.P1], g.Vertices[t.P2], g.Vertices[t.P3]
		w1, w2, w3 := g.UVs[t.P1], g.UVs[t.P2], g.UVs[t.P3]

		e1, e2 := v2.Sub(v1), v3.Sub(v1)
		d1, d2 := w2.Sub(w1), w3.Sub(w1)

		det := d1.U*d2.V - d2.U*d1.V
		if det == 0 {
			continue
		}
		r := 1 / det
		sdir := e1.Scale(d2.V).Sub(e2.Scale(d1.V)).Scale(r)
		tdir := e2.Scale(d1.U).Sub(e1.Scale(d2.U)).Scale(r)

		for _, p := range [3]uint16{t.P1, t.P2, t.P3} {
			tan[p] = tan[p].Add(sdir)
			bitan[p] = bitan[p].Add(tdir)
		}
	}

	for i := range tan {
		if i < len(g.Normals) {
			n := g.Normals[i]
			// Gram-Schmidt against the vertex normal.
			tan[i] = tan[i].Sub(n.Scale(n.Dot(tan[i])))
		}
		tan[i] = tan[i].Normalize()
		bitan[i] = bitan[i].Normalize()
	}
	g.Tangents = tan
	g.Bitangents = bitan
	return nil
}

func (g *Geometry) validateVertices() error {
	n := len(g.Vertices)
	for i, t := range g.Triangles {
		if int(t.P1) >= n || int(t.P2) >= n || int(t.P3) >= n {
			return fmt.Errorf("%w: triangle %d (%d, %d, %d) with %d vertices",
				ErrTriangleIndex, i, t.P1, t.P2, t.P3, n)
		}
	}
	return nil
}
