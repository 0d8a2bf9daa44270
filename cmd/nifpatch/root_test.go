package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/nifpatch/internal/rules"
	"github.com/Faultbox/nifpatch/pkg/math"
	"github.com/Faultbox/nifpatch/pkg/nif"
)

// workspace lays out a game data folder and makes it the working directory.
func workspace(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	dir := t.TempDir()
	t.Chdir(dir)

	writeFile(t, filepath.Join(dir, "PBRNifPatcher", "armor.json"),
		`[{"match_diffuse": "steel", "emissive": true}]`)

	mesh := &nif.File{Shapes: []*nif.Shape{{
		Name: "Cuirass",
		Geometry: nif.Geometry{
			Vertices:  []math.Vec3{{}, {X: 1}, {Y: 1}},
			UVs:       []math.Vec2{{}, {U: 1}, {V: 1}},
			Triangles: []nif.Triangle{{P1: 0, P2: 1, P3: 2}},
		},
		Textures: &nif.TextureSet{`textures\armor\steel.dds`, `textures\armor\steel_n.dds`},
		Shader:   nif.NewLightingShader(),
	}}}
	require.NoError(t, nif.Save(filepath.Join(dir, "meshes", "armor", "cuirass.nif.yaml"), mesh))
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-file", filepath.Join(t.TempDir(), "nifpatch.log")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRunDefault(t *testing.T) {
	dir := workspace(t)

	out, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, "Processing complete")

	patched, err := nif.Load(filepath.Join(dir, "pbr_output", "meshes", "armor", "cuirass.nif.yaml"))
	require.NoError(t, err)
	assert.Equal(t, `textures\pbr\armor\steel_g.dds`, patched.Shapes[0].Textures[nif.SlotGlow])
}

func TestRunDryRun(t *testing.T) {
	dir := workspace(t)

	out, err := execute(t, "run", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "(dry run)")
	assert.NoDirExists(t, filepath.Join(dir, "pbr_output"))
}

func TestRunFailedFile(t *testing.T) {
	dir := workspace(t)
	writeFile(t, filepath.Join(dir, "meshes", "broken.nif.yaml"), "shapes: {")

	out, err := execute(t, "run")
	assert.ErrorIs(t, err, errFailedFiles)
	assert.Contains(t, out, "Failures (1)")
}

func TestRunLogsToFile(t *testing.T) {
	dir := workspace(t)
	writeFile(t, filepath.Join(dir, "meshes", "broken.nif.yaml"), "shapes: {")
	logPath := filepath.Join(dir, "run.log")

	_, err := execute(t, "run", "--log-file", logPath)
	require.ErrorIs(t, err, errFailedFiles)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	log := string(data)
	assert.Contains(t, log, "Patching meshes")
	assert.Contains(t, log, "Rules loaded")
	assert.Contains(t, log, "Meshes failed")
}

func TestRunCanceled(t *testing.T) {
	dir := workspace(t)
	logPath := filepath.Join(dir, "run.log")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--log-file", logPath})
	err := cmd.ExecuteContext(ctx)
	require.ErrorIs(t, err, context.Canceled)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Run interrupted")
}

func TestRunBadRules(t *testing.T) {
	dir := workspace(t)
	writeFile(t, filepath.Join(dir, "PBRNifPatcher", "broken.json"), `[{"match_diffuse": }]`)

	_, err := execute(t, "run")
	assert.ErrorIs(t, err, rules.ErrParse)
	assert.NoDirExists(t, filepath.Join(dir, "pbr_output"))
}

func TestRunMissingDirs(t *testing.T) {
	workspace(t)

	_, err := execute(t, "--rules", "nope")
	assert.ErrorIs(t, err, rules.ErrNoRulesDir)

	_, err = execute(t, "--meshes", "nope")
	assert.Error(t, err)
}

func TestRulesCommand(t *testing.T) {
	dir := workspace(t)

	out, err := execute(t, "rules", "--check")
	require.NoError(t, err)
	assert.Contains(t, out, "armor.json (1)")
	assert.Contains(t, out, `#0 match_diffuse="steel"`)

	writeFile(t, filepath.Join(dir, "PBRNifPatcher", "extra.yaml"), "- match_normal: iron\n  shiny: true\n")
	out, err = execute(t, "rules", "--check")
	assert.ErrorIs(t, err, errRuleDiagnostics)
	assert.Contains(t, out, "unknown key")
}

func TestUVScaleCommand(t *testing.T) {
	dir := workspace(t)

	logPath := filepath.Join(dir, "uvscale.log")
	out, err := execute(t, "uvscale", "--debug", "--log-file", logPath,
		filepath.Join(dir, "meshes", "armor", "cuirass.nif.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "Cuirass 5.0000")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Estimating UV scale of 1 shapes")

	_, err = execute(t, "uvscale")
	assert.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	dir := workspace(t)

	out, err := execute(t, "config", "-j", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "workers: 3")

	path := filepath.Join(dir, "saved.yaml")
	_, err = execute(t, "config", "save", path, "--meshes", "data/meshes")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "meshes: data/meshes")
}
