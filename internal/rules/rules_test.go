package rules

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/nifpatch/pkg/math"
	"github.com/Faultbox/nifpatch/pkg/nif"
)

func TestDecodeTypedEntry(t *testing.T) {
	raw := []map[string]any{{
		"match_normal":     "Steel",
		"specular_level":   json.Number("0.5"),
		"smooth_angle":     60,
		"subsurface_color": []any{1.0, int64(0), 0.5},
		"emissive_color":   []any{1, 1, 1, 0.5},
		"lock_rmaos":       true,
		"multilayer":       false,
		"slot8":            `textures\sss.dds`,
	}}

	doc, diags := Decode("armor.json", raw)
	require.Empty(t, diags)
	require.Len(t, doc.Entries, 1)

	e := doc.Entries[0]
	assert.Equal(t, "armor.json", doc.Name)
	require.NotNil(t, e.MatchNormal)
	assert.Equal(t, "Steel", *e.MatchNormal)
	require.NotNil(t, e.SpecularLevel)
	assert.Equal(t, float32(0.5), *e.SpecularLevel)
	assert.Equal(t, float32(60), *e.SmoothAngle)
	assert.Equal(t, math.Vec3{X: 1, Y: 0, Z: 0.5}, *e.SubsurfaceColor)
	assert.Equal(t, nif.Color4{R: 1, G: 1, B: 1, A: 0.5}, *e.EmissiveColor)
	assert.True(t, e.LockRMAOS)
	assert.True(t, IsFalse(e.Multilayer))
	assert.False(t, IsTrue(e.Multilayer))
	require.NotNil(t, e.Slots[7])
	assert.Equal(t, `textures\sss.dds`, *e.Slots[7])
	assert.Nil(t, e.Slots[0])
	assert.True(t, e.Has(KeyLockRMAOS))
	assert.False(t, e.Has(KeyDelete))
}

func TestDecodeMalformedKeysAreDropped(t *testing.T) {
	raw := []map[string]any{{
		"match_diffuse":    "steel",
		"subsurface_color": "red",
		"emissive_color":   []any{1, 1, 1},
		"delete":           "yes",
		"uv_scale":         2,
		"shiny":            true,
	}}

	doc, diags := Decode("bad.yaml", raw)
	require.Len(t, doc.Entries, 1)
	e := doc.Entries[0]

	assert.Nil(t, e.SubsurfaceColor)
	assert.Nil(t, e.EmissiveColor)
	assert.Nil(t, e.Delete)
	require.NotNil(t, e.UVScale)
	assert.Equal(t, float32(2), *e.UVScale)
	assert.Equal(t, []string{KeyMatchDiffuse, KeyUVScale}, e.Keys)

	byKey := map[string]Diagnostic{}
	for _, d := range diags {
		byKey[d.Key] = d
	}
	require.Len(t, byKey, 4)
	assert.ErrorIs(t, byKey[KeySubsurfaceColor], ErrWrongType)
	assert.ErrorIs(t, byKey[KeyEmissiveColor], ErrShortArray)
	assert.ErrorIs(t, byKey[KeyDelete], ErrWrongType)
	assert.ErrorIs(t, byKey["shiny"], ErrUnknownKey)
	assert.Equal(t, SeverityWarning, byKey["shiny"].Severity)
	assert.Equal(t, SeverityError, byKey[KeyDelete].Severity)
	assert.Contains(t, byKey[KeyDelete].Error(), `bad.yaml: entry 0: key "delete"`)
}

func strp(s string) *string { return &s }

func TestNormalize(t *testing.T) {
	in := []Document{{
		Name: "a.json",
		Entries: []Entry{{
			Keys:         []string{KeyNifFilter, KeyPathContains, KeyRename, KeyTexture},
			Texture:      strp("Armor\\Steel"),
			Rename:       strp("_V2"),
			PathContains: strp("Armor\\"),
			NifFilter:    strp("Meshes\\Armor"),
		}, {
			Keys:        []string{KeyMatchNormal},
			MatchNormal: strp(`\Foo`),
		}},
	}}

	out := Normalize(in)

	e := out[0].Entries[0]
	assert.Equal(t, `\armor\steel`, *e.MatchDiffuse)
	assert.Equal(t, `\_v2`, *e.Rename)
	assert.Equal(t, `armor\`, *e.PathContains)
	assert.Equal(t, `meshes\armor`, *e.NifFilter)
	assert.Equal(t, "Armor\\Steel", *e.Texture, "texture alias is kept")
	assert.True(t, e.Has(KeyMatchDiffuse))
	assert.True(t, e.Has(KeyTexture))

	assert.Equal(t, `\foo`, *out[0].Entries[1].MatchNormal, "existing separator is not doubled")

	// Input is untouched.
	assert.Nil(t, in[0].Entries[0].MatchDiffuse)
	assert.Equal(t, "_V2", *in[0].Entries[0].Rename)
	assert.Len(t, in[0].Entries[0].Keys, 4)
}

func TestNormalizeIdempotent(t *testing.T) {
	doc, diags := Decode("x.json", []map[string]any{
		{"texture": "Steel", "match_normal": "Steel_N", "rename": "New", "nif_filter": "Armor"},
		{"path_contains": "Clutter\\", "specular_level": 1.0},
		{},
	})
	require.Empty(t, diags)

	once := Normalize([]Document{doc})
	twice := Normalize(once)
	assert.Equal(t, once, twice)
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
		want   int
	}{
		{"json array", FormatJSON, `[{"texture": "a"}, {"texture": "b"}]`, 2},
		{"json object", FormatJSON, `{"rules": [{"texture": "a"}]}`, 1},
		{"yaml list", FormatYAML, "- texture: a\n  auto_uv: 2\n", 1},
		{"yaml empty", FormatYAML, "", 0},
		{"yaml document marker", FormatYAML, "---\n- texture: a\n", 1},
		{"json trailing space", FormatJSON, "[{\"texture\": \"a\"}]\n\n", 1},
		{"toml tables", FormatTOML, "[[rules]]\ntexture = \"a\"\n\n[[rules]]\ntexture = \"b\"\nsmooth_angle = 60\n", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Parse(tt.format, []byte(tt.data))
			require.NoError(t, err)
			assert.Len(t, raw, tt.want)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		data    string
		wantErr error
	}{
		{"json syntax", FormatJSON, `[{"texture": }]`, ErrParse},
		{"yaml syntax", FormatYAML, "- texture: [a\n", ErrParse},
		{"toml syntax", FormatTOML, "[[rules]\n", ErrParse},
		{"scalar document", FormatJSON, `42`, ErrNotRuleList},
		{"list of scalars", FormatYAML, "- 1\n- 2\n", ErrNotRuleList},
		{"mapping without rules", FormatTOML, "texture = \"a\"\n", ErrNotRuleList},
		{"unknown format", Format("ini"), "", ErrParse},
		{"json trailing delimiter", FormatJSON, `[{"match_diffuse": "steel"}] }`, ErrParse},
		{"json two arrays", FormatJSON, `[{"match_diffuse": "steel"}] [{"delete": true}]`, ErrParse},
		{"yaml two documents", FormatYAML, "- texture: a\n---\n- delete: true\n", ErrParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.format, []byte(tt.data))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseJSONReportsOffset(t *testing.T) {
	_, err := Parse(FormatJSON, []byte(`[{"a": 1,}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at byte")
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.yaml"), "- texture: b\n")
	writeFile(t, filepath.Join(dir, "a.json"), `[{"texture": "a"}, {"texture": "a2", "bogus": 1}]`)
	writeFile(t, filepath.Join(dir, "sub", "c.toml"), "[[rules]]\ntexture = \"c\"\n")
	writeFile(t, filepath.Join(dir, "readme.txt"), "not a rule document")

	res, err := LoadDir(dir)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Files)
	require.Len(t, res.Documents, 3)
	assert.Equal(t, filepath.Join(dir, "a.json"), res.Documents[0].Name)
	assert.Equal(t, filepath.Join(dir, "b.yaml"), res.Documents[1].Name)
	assert.Equal(t, filepath.Join(dir, "sub", "c.toml"), res.Documents[2].Name)
	assert.Equal(t, 4, CountEntries(res.Documents))
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "bogus", res.Diagnostics[0].Key)
	assert.Equal(t, 1, res.Diagnostics[0].Entry)
}

func TestLoadDirFatal(t *testing.T) {
	t.Run("missing dir", func(t *testing.T) {
		_, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
		assert.ErrorIs(t, err, ErrNoRulesDir)
	})

	t.Run("broken document", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.json"), `[{"texture": "a"}]`)
		writeFile(t, filepath.Join(dir, "b.json"), `[{"texture": `)

		_, err := LoadDir(dir)
		require.ErrorIs(t, err, ErrParse)
		assert.Contains(t, err.Error(), "b.json")
	})
}

func TestLoadFileEncodings(t *testing.T) {
	dir := t.TempDir()

	// UTF-16LE with BOM, as saved by Notepad
	utf16 := []byte{0xFF, 0xFE}
	for _, r := range `[{"texture": "steel"}]` {
		utf16 = append(utf16, byte(r), 0)
	}
	path := filepath.Join(dir, "notepad.json")
	require.NoError(t, os.WriteFile(path, utf16, 0644))

	doc, diags, err := LoadFile(path)
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Len(t, doc.Entries, 1)
	assert.Equal(t, "steel", *doc.Entries[0].Texture)

	// Windows-1252 without BOM
	path = filepath.Join(dir, "cp1252.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- texture: \"\xe9p\xe9e\"\n"), 0644))

	doc, _, err = LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "épée", *doc.Entries[0].Texture)
}
