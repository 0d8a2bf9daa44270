package patch

import (
	"github.com/Faultbox/nifpatch/pkg/math"
	"github.com/Faultbox/nifpatch/pkg/nif"
)

// uvScaleFactor converts the mean texel density into a UV scale.
const uvScaleFactor = 10.0 / 4.0

// EstimateUVScale estimates a uniform UV scale for a shape from the ratio of
// UV edge length to world edge length of its triangles.
//
// For each triangle the UV deltas of the two edges leaving the first vertex
// are summed component-wise and divided by the sum of the matching world edge
// lengths. The reciprocals are averaged, scaled by 2.5 and the smaller
// component is used for both axes. Degenerate triangles yield Inf or NaN.
// Triangle indices must address both uvs and verts.
func EstimateUVScale(uvs []math.Vec2, verts []math.Vec3, tris []nif.Triangle) math.Vec2 {
	var sum math.Vec2
	for _, t := range tris {
		v1, v2, v3 := verts[t.P1], verts[t.P2], verts[t.P3]
		uv1, uv2, uv3 := uvs[t.P1], uvs[t.P2], uvs[t.P3]

		uvSpan := uv2.Sub(uv1).Abs().Add(uv3.Sub(uv1).Abs())
		span := v2.Sub(v1).Length() + v3.Sub(v1).Length()
		sum = sum.Add(uvSpan.Div(span).Recip())
	}
	sum = sum.Scale(uvScaleFactor).Div(float32(len(tris)))
	return math.Uniform(sum.Min())
}

// GeometryUVScale validates g and estimates its UV scale.
func GeometryUVScale(g *nif.Geometry) (math.Vec2, error) {
	if err := g.Validate(); err != nil {
		return math.Vec2{}, err
	}
	return EstimateUVScale(g.UVs, g.Vertices, g.Triangles), nil
}
