package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/nifpatch/internal/patch"
	"github.com/Faultbox/nifpatch/internal/rules"
	"github.com/Faultbox/nifpatch/pkg/math"
	"github.com/Faultbox/nifpatch/pkg/nif"
)

func shape(name, diffuse string) *nif.Shape {
	return &nif.Shape{
		Name: name,
		Geometry: nif.Geometry{
			Vertices:  []math.Vec3{{}, {X: 1}, {Y: 1}},
			UVs:       []math.Vec2{{}, {U: 1}, {V: 1}},
			Triangles: []nif.Triangle{{P1: 0, P2: 1, P3: 2}},
		},
		Textures: &nif.TextureSet{diffuse + ".dds", diffuse + "_n.dds"},
		Shader:   nif.NewLightingShader(),
	}
}

func writeMesh(t *testing.T, path string, shapes ...*nif.Shape) {
	t.Helper()
	require.NoError(t, nif.Save(path, &nif.File{Version: "20.2.0.7", Shapes: shapes}))
}

func engine(t *testing.T, raw ...map[string]any) *patch.Engine {
	t.Helper()
	doc, diags := rules.Decode("rules.json", raw)
	require.Empty(t, diags)
	return patch.New([]rules.Document{doc})
}

// fixture lays out a meshes tree and returns the meshes and output dirs.
func fixture(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	meshes := filepath.Join(root, "meshes")

	writeMesh(t, filepath.Join(meshes, "armor", "steel", "cuirass.nif.yaml"), shape("Cuirass", `textures\armor\steel\cuirass`))
	writeMesh(t, filepath.Join(meshes, "armor", "iron", "boots.nif.yaml"), shape("Boots", `textures\armor\iron\boots`))
	writeMesh(t, filepath.Join(meshes, "clutter", "bucket.nif.yaml"), shape("Bucket", `textures\clutter\bucket`))
	require.NoError(t, os.WriteFile(filepath.Join(meshes, "readme.txt"), []byte("not a mesh"), 0644))

	return meshes, filepath.Join(root, "pbr_output")
}

func TestFind(t *testing.T) {
	meshes, out := fixture(t)

	r := New(nil, Options{MeshesDir: meshes, OutputDir: out}, nil)
	files, err := r.Find()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("armor", "iron", "boots.nif.yaml"),
		filepath.Join("armor", "steel", "cuirass.nif.yaml"),
		filepath.Join("clutter", "bucket.nif.yaml"),
	}, files)
}

func TestFindSkipsOutputDir(t *testing.T) {
	meshes, _ := fixture(t)
	out := filepath.Join(meshes, "pbr_output")
	writeMesh(t, filepath.Join(out, "meshes", "old.nif.yaml"), shape("Old", `textures\old`))

	files, err := New(nil, Options{MeshesDir: meshes, OutputDir: out}, nil).Find()
	require.NoError(t, err)
	assert.Len(t, files, 3)
	assert.NotContains(t, files, filepath.Join("pbr_output", "meshes", "old.nif.yaml"))
}

func TestFindMissingDir(t *testing.T) {
	_, err := New(nil, Options{MeshesDir: filepath.Join(t.TempDir(), "nope")}, nil).Find()
	assert.ErrorIs(t, err, ErrNoMeshesDir)
}

func TestRun(t *testing.T) {
	meshes, out := fixture(t)
	eng := engine(t,
		map[string]any{"match_diffuse": "cuirass"},
		map[string]any{"nif_filter": `meshes\armor\iron`, "specular_level": 12.0},
	)

	sum, err := New(eng, Options{MeshesDir: meshes, OutputDir: out, Workers: 2}, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, sum.Scanned)
	assert.Equal(t, 2, sum.Modified)
	assert.Equal(t, 0, sum.Failed)
	assert.Equal(t, 2, sum.Shapes)
	assert.NoError(t, sum.Err())

	cuirass, err := nif.Load(filepath.Join(out, "meshes", "armor", "steel", "cuirass.nif.yaml"))
	require.NoError(t, err)
	require.Len(t, cuirass.Shapes, 1)
	assert.Equal(t, `textures\pbr\armor\steel\cuirass.dds`, cuirass.Shapes[0].Textures[nif.SlotDiffuse])
	assert.True(t, cuirass.Shapes[0].LightingShader().Flags2.Has(nif.SLSF2PBR))

	boots, err := nif.Load(filepath.Join(out, "meshes", "armor", "iron", "boots.nif.yaml"))
	require.NoError(t, err)
	assert.Equal(t, float32(12), boots.Shapes[0].LightingShader().Glossiness)

	assert.NoFileExists(t, filepath.Join(out, "meshes", "clutter", "bucket.nif.yaml"))

	// Sources untouched
	src, err := nif.Load(filepath.Join(meshes, "armor", "steel", "cuirass.nif.yaml"))
	require.NoError(t, err)
	assert.Equal(t, `textures\armor\steel\cuirass.dds`, src.Shapes[0].Textures[nif.SlotDiffuse])
}

func TestRunDryRun(t *testing.T) {
	meshes, out := fixture(t)
	eng := engine(t, map[string]any{"path_contains": "armor", "delete": true})

	sum, err := New(eng, Options{MeshesDir: meshes, OutputDir: out, DryRun: true}, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Modified)
	assert.Equal(t, 2, sum.Deleted)
	assert.NoDirExists(t, out)
}

func TestRunFailures(t *testing.T) {
	meshes, out := fixture(t)
	broken := filepath.Join(meshes, "broken.nif.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("shapes: [\n"), 0644))

	eng := engine(t, map[string]any{"specular_level": 1.0})
	sum, err := New(eng, Options{MeshesDir: meshes, OutputDir: out, Workers: 1}, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, sum.Scanned)
	assert.Equal(t, 3, sum.Modified)
	assert.Equal(t, 1, sum.Failed)
	require.Len(t, sum.Failures, 1)
	assert.Equal(t, `meshes\broken.nif.yaml`, sum.Failures[0].File)
	assert.ErrorContains(t, sum.Err(), "broken.nif.yaml")
}

func TestRunDiagnosticsSorted(t *testing.T) {
	root := t.TempDir()
	meshes := filepath.Join(root, "meshes")
	for _, name := range []string{"c", "a", "b"} {
		s := shape(name, `armor\`+name)
		writeMesh(t, filepath.Join(meshes, name+".nif.yaml"), s)
	}

	eng := engine(t, map[string]any{"match_diffuse": "a"}, map[string]any{"match_diffuse": "b"}, map[string]any{"match_diffuse": "c"})
	sum, err := New(eng, Options{MeshesDir: meshes, OutputDir: filepath.Join(root, "out"), Workers: 3}, nil).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, sum.Diagnostics, 3)
	for i, want := range []string{`meshes\a.nif.yaml`, `meshes\b.nif.yaml`, `meshes\c.nif.yaml`} {
		assert.Equal(t, want, sum.Diagnostics[i].File)
		assert.Equal(t, patch.KindPath, sum.Diagnostics[i].Kind)
	}
}

func TestRunCanceled(t *testing.T) {
	meshes, out := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sum, err := New(engine(t), Options{MeshesDir: meshes, OutputDir: out, Workers: 1}, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, sum)
	assert.LessOrEqual(t, sum.Scanned, 3)
}

func TestMatchName(t *testing.T) {
	tests := []struct {
		dir, rel, want string
	}{
		{"meshes", filepath.Join("armor", "a.nif.yaml"), `meshes\armor\a.nif.yaml`},
		{filepath.Join("data", "meshes") + string(filepath.Separator), "b.nif.yaml", `meshes\b.nif.yaml`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchName(tt.dir, tt.rel))
	}
}

func TestOutputPath(t *testing.T) {
	r := New(nil, Options{MeshesDir: filepath.Join("data", "meshes"), OutputDir: "out"}, nil)
	assert.Equal(t, filepath.Join("out", "meshes", "armor", "a.nif.yaml"), r.OutputPath(filepath.Join("armor", "a.nif.yaml")))
}
