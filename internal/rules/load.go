package rules

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/nifpatch/pkg/encoding"
)

// Load errors. Any of them aborts the run before a mesh is touched.
var (
	ErrParse       = errors.New("rule document parse error")
	ErrNotRuleList = errors.New("rule document is not a list of mappings")
	ErrNoRulesDir  = errors.New("rules directory does not exist")
)

// RulesKey is the top-level key holding the entry list in mapping-shaped documents.
const RulesKey = "rules"

// Format is a rule document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf returns the document format for path, or "" if the extension is not a rule document.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return ""
	}
}

// LoadResult is the outcome of loading a rules directory.
type LoadResult struct {
	Documents   []Document
	Diagnostics []Diagnostic
	Files       int
}

// LoadDir loads every rule document below dir in lexical walk order.
// Documents are returned decoded but not normalized.
func LoadDir(dir string) (*LoadResult, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNoRulesDir, dir)
	}

	res := &LoadResult{}
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || FormatOf(path) == "" {
			return nil
		}
		res.Files++

		doc, diags, err := LoadFile(path)
		if err != nil {
			return err
		}
		res.Documents = append(res.Documents, doc)
		res.Diagnostics = append(res.Diagnostics, diags...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// LoadFile reads and decodes a single rule document.
func LoadFile(path string) (Document, []Diagnostic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, nil, fmt.Errorf("reading rule document %s: %w", path, err)
	}
	data, err = encoding.ToUTF8(data)
	if err != nil {
		return Document{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	raw, err := Parse(FormatOf(path), data)
	if err != nil {
		return Document{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	doc, diags := Decode(path, raw)
	return doc, diags, nil
}

// Parse turns document bytes into the generic entry list.
func Parse(format Format, data []byte) ([]map[string]any, error) {
	var v any
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&v); err != nil {
			var se *json.SyntaxError
			if errors.As(err, &se) {
				return nil, fmt.Errorf("%w at byte %d: %v", ErrParse, se.Offset, err)
			}
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		if err := dec.Decode(&json.RawMessage{}); err != io.EOF {
			return nil, fmt.Errorf("%w at byte %d: trailing data after the rule list", ErrParse, dec.InputOffset())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&v); err != nil && err != io.EOF {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		if err := dec.Decode(&yaml.Node{}); err != io.EOF {
			return nil, fmt.Errorf("%w: more than one YAML document", ErrParse)
		}
	case FormatTOML:
		var m map[string]any
		if err := toml.Unmarshal(data, &m); err != nil {
			var de *toml.DecodeError
			if errors.As(err, &de) {
				row, col := de.Position()
				return nil, fmt.Errorf("%w at line %d column %d: %v", ErrParse, row, col, err)
			}
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		v = m
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrParse, format)
	}
	return entryList(v)
}

func entryList(v any) ([]map[string]any, error) {
	if m, ok := v.(map[string]any); ok {
		list, found := m[RulesKey]
		if !found {
			return nil, fmt.Errorf("%w: mapping without %q key", ErrNotRuleList, RulesKey)
		}
		v = list
	}

	switch list := v.(type) {
	case nil:
		return nil, nil
	case []map[string]any:
		return list, nil
	case []any:
		out := make([]map[string]any, 0, len(list))
		for i, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: entry %d is %T", ErrNotRuleList, i, item)
			}
			out = append(out, m)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrNotRuleList, v)
	}
}
