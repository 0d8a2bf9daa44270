package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/Faultbox/nifpatch/pkg/math"
	"github.com/Faultbox/nifpatch/pkg/nif"
)

// Decode errors.
var (
	ErrWrongType  = errors.New("wrong value type")
	ErrShortArray = errors.New("too few components")
	ErrUnknownKey = errors.New("unknown key")
)

// Severity of a decode diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// String returns the severity name.
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic reports a key dropped while decoding an entry.
type Diagnostic struct {
	Document string
	Entry    int
	Key      string
	Severity Severity
	Err      error
}

// Error implements error.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: entry %d: key %q: %v", d.Document, d.Entry, d.Key, d.Err)
}

// Unwrap returns the underlying error.
func (d Diagnostic) Unwrap() error {
	return d.Err
}

type setter func(e *Entry, v any) error

var fields = map[string]setter{
	KeyNifFilter:    stringField(func(e *Entry) **string { return &e.NifFilter }),
	KeyPathContains: stringField(func(e *Entry) **string { return &e.PathContains }),
	KeyMatchNormal:  stringField(func(e *Entry) **string { return &e.MatchNormal }),
	KeyMatchDiffuse: stringField(func(e *Entry) **string { return &e.MatchDiffuse }),
	KeyTexture:      stringField(func(e *Entry) **string { return &e.Texture }),

	KeyDelete:       boolField(func(e *Entry) **bool { return &e.Delete }),
	KeySmoothAngle:  numberField(func(e *Entry) **float32 { return &e.SmoothAngle }),
	KeyAutoUV:       numberField(func(e *Entry) **float32 { return &e.AutoUV }),
	KeyVertexColors: boolField(func(e *Entry) **bool { return &e.VertexColors }),

	KeySpecularLevel:          numberField(func(e *Entry) **float32 { return &e.SpecularLevel }),
	KeySubsurfaceColor:        vec3Field(func(e *Entry) **math.Vec3 { return &e.SubsurfaceColor }),
	KeyRoughnessScale:         numberField(func(e *Entry) **float32 { return &e.RoughnessScale }),
	KeySubsurfaceOpacity:      numberField(func(e *Entry) **float32 { return &e.SubsurfaceOpacity }),
	KeyDisplacementScale:      numberField(func(e *Entry) **float32 { return &e.DisplacementScale }),
	KeyEnvMapping:             boolField(func(e *Entry) **bool { return &e.EnvMapping }),
	KeyEnvMapScale:            numberField(func(e *Entry) **float32 { return &e.EnvMapScale }),
	KeyEnvMapScaleMult:        numberField(func(e *Entry) **float32 { return &e.EnvMapScaleMult }),
	KeyCubemap:                stringField(func(e *Entry) **string { return &e.Cubemap }),
	KeyLockCubemap:            flagField(func(e *Entry) *bool { return &e.LockCubemap }),
	KeyEmissiveScale:          numberField(func(e *Entry) **float32 { return &e.EmissiveScale }),
	KeyEmissiveColor:          colorField(func(e *Entry) **nif.Color4 { return &e.EmissiveColor }),
	KeyUVScale:                numberField(func(e *Entry) **float32 { return &e.UVScale }),
	KeyParallaxEnvmapStrength: numberField(func(e *Entry) **float32 { return &e.ParallaxEnvmapStrength }),

	KeyPBR:            boolField(func(e *Entry) **bool { return &e.PBR }),
	KeyRename:         stringField(func(e *Entry) **string { return &e.Rename }),
	KeyLockDiffuse:    flagField(func(e *Entry) *bool { return &e.LockDiffuse }),
	KeyLockNormal:     flagField(func(e *Entry) *bool { return &e.LockNormal }),
	KeyLockEmissive:   flagField(func(e *Entry) *bool { return &e.LockEmissive }),
	KeyLockParallax:   flagField(func(e *Entry) *bool { return &e.LockParallax }),
	KeyLockRMAOS:      flagField(func(e *Entry) *bool { return &e.LockRMAOS }),
	KeyLockCNR:        flagField(func(e *Entry) *bool { return &e.LockCNR }),
	KeyLockSubsurface: flagField(func(e *Entry) *bool { return &e.LockSubsurface }),

	KeyEmissive:          boolField(func(e *Entry) **bool { return &e.Emissive }),
	KeyParallax:          boolField(func(e *Entry) **bool { return &e.Parallax }),
	KeyCoatNormal:        boolField(func(e *Entry) **bool { return &e.CoatNormal }),
	KeySubsurfaceFoliage: boolField(func(e *Entry) **bool { return &e.SubsurfaceFoliage }),
	KeySubsurface:        boolField(func(e *Entry) **bool { return &e.Subsurface }),
	KeyCoatDiffuse:       boolField(func(e *Entry) **bool { return &e.CoatDiffuse }),
	KeyMultilayer:        boolField(func(e *Entry) **bool { return &e.Multilayer }),
	KeyCoatColor:         vec3Field(func(e *Entry) **math.Vec3 { return &e.CoatColor }),
	KeyCoatSpecularLevel: numberField(func(e *Entry) **float32 { return &e.CoatSpecularLevel }),
	KeyCoatRoughness:     numberField(func(e *Entry) **float32 { return &e.CoatRoughness }),
	KeyCoatStrength:      numberField(func(e *Entry) **float32 { return &e.CoatStrength }),
	KeyCoatParallax:      boolField(func(e *Entry) **bool { return &e.CoatParallax }),
	KeyInnerUVScale:      numberField(func(e *Entry) **float32 { return &e.InnerUVScale }),
}

func init() {
	for i := range nif.TextureSlots {
		fields[fmt.Sprintf("slot%d", i+1)] = stringField(func(e *Entry) **string { return &e.Slots[i] })
	}
}

// Decode converts the raw entries of one document into typed entries.
// A key with a malformed value is dropped and reported; the rest of the
// entry is kept.
func Decode(name string, raw []map[string]any) (Document, []Diagnostic) {
	doc := Document{Name: name, Entries: make([]Entry, 0, len(raw))}
	var diags []Diagnostic

	for i, m := range raw {
		e := Entry{Index: i}
		for _, key := range sortedKeys(m) {
			set, ok := fields[key]
			if !ok {
				diags = append(diags, Diagnostic{
					Document: name, Entry: i, Key: key, Severity: SeverityWarning, Err: ErrUnknownKey,
				})
				continue
			}
			if err := set(&e, m[key]); err != nil {
				diags = append(diags, Diagnostic{
					Document: name, Entry: i, Key: key, Severity: SeverityError, Err: err,
				})
				continue
			}
			e.Keys = append(e.Keys, key)
		}
		doc.Entries = append(doc.Entries, e)
	}
	return doc, diags
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func stringField(ptr func(*Entry) **string) setter {
	return func(e *Entry, v any) error {
		s, ok := v.(string)
		if !ok {
			return typeError("string", v)
		}
		*ptr(e) = &s
		return nil
	}
}

func boolField(ptr func(*Entry) **bool) setter {
	return func(e *Entry, v any) error {
		b, ok := v.(bool)
		if !ok {
			return typeError("bool", v)
		}
		*ptr(e) = &b
		return nil
	}
}

func flagField(ptr func(*Entry) *bool) setter {
	return func(e *Entry, v any) error {
		b, ok := v.(bool)
		if !ok {
			return typeError("bool", v)
		}
		*ptr(e) = b
		return nil
	}
}

func numberField(ptr func(*Entry) **float32) setter {
	return func(e *Entry, v any) error {
		f, err := toFloat(v)
		if err != nil {
			return err
		}
		*ptr(e) = &f
		return nil
	}
}

func vec3Field(ptr func(*Entry) **math.Vec3) setter {
	return func(e *Entry, v any) error {
		c, err := toFloats(v, 3)
		if err != nil {
			return err
		}
		*ptr(e) = &math.Vec3{X: c[0], Y: c[1], Z: c[2]}
		return nil
	}
}

func colorField(ptr func(*Entry) **nif.Color4) setter {
	return func(e *Entry, v any) error {
		c, err := toFloats(v, 4)
		if err != nil {
			return err
		}
		*ptr(e) = &nif.Color4{R: c[0], G: c[1], B: c[2], A: c[3]}
		return nil
	}
}

func toFloat(v any) (float32, error) {
	switch n := v.(type) {
	case float64:
		return float32(n), nil
	case float32:
		return n, nil
	case int:
		return float32(n), nil
	case int64:
		return float32(n), nil
	case uint64:
		return float32(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrWrongType, err)
		}
		return float32(f), nil
	default:
		return 0, typeError("number", v)
	}
}

// toFloats reads at least n numbers from an array value. Extra components are ignored.
func toFloats(v any, n int) ([]float32, error) {
	arr, ok := v.([]any)
	if !ok {
		return nil, typeError("array", v)
	}
	if len(arr) < n {
		return nil, fmt.Errorf("%w: got %d, want at least %d", ErrShortArray, len(arr), n)
	}
	out := make([]float32, n)
	for i := range out {
		f, err := toFloat(arr[i])
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}

func typeError(want string, v any) error {
	return fmt.Errorf("%w: want %s, got %T", ErrWrongType, want, v)
}
