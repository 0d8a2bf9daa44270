package rules

import (
	"slices"
	"strings"
)

// Separator is the path separator used by texture paths.
const Separator = `\`

// Normalize returns canonical copies of docs. The input is not modified.
//
// texture is copied into match_diffuse. match_normal, match_diffuse and
// rename are lower-cased and get a leading separator; path_contains and
// nif_filter are lower-cased. Normalizing twice yields the same result.
func Normalize(docs []Document) []Document {
	out := make([]Document, len(docs))
	for i, d := range docs {
		entries := make([]Entry, len(d.Entries))
		for j := range d.Entries {
			entries[j] = normalizeEntry(d.Entries[j])
		}
		out[i] = Document{Name: d.Name, Entries: entries}
	}
	return out
}

func normalizeEntry(e Entry) Entry {
	e.Keys = slices.Clone(e.Keys)

	if e.Texture != nil {
		e.MatchDiffuse = e.Texture
		if !slices.Contains(e.Keys, KeyMatchDiffuse) {
			e.Keys = append(e.Keys, KeyMatchDiffuse)
			slices.Sort(e.Keys)
		}
	}

	e.MatchNormal = separated(e.MatchNormal)
	e.MatchDiffuse = separated(e.MatchDiffuse)
	e.Rename = separated(e.Rename)
	e.PathContains = lowered(e.PathContains)
	e.NifFilter = lowered(e.NifFilter)
	return e
}

func lowered(s *string) *string {
	if s == nil {
		return nil
	}
	l := strings.ToLower(*s)
	return &l
}

func separated(s *string) *string {
	if s == nil {
		return nil
	}
	l := strings.ToLower(*s)
	if !strings.HasPrefix(l, Separator) {
		l = Separator + l
	}
	return &l
}
