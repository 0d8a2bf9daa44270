package report

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"github.com/disiqueira/gotree/v3"

	"github.com/Faultbox/nifpatch/internal/rules"
)

// matchKeys are shown in the entry label; every other key is an effect.
var matchKeys = []string{
	rules.KeyNifFilter,
	rules.KeyPathContains,
	rules.KeyMatchNormal,
	rules.KeyMatchDiffuse,
	rules.KeyTexture,
}

// RuleTree builds the tree of rule documents loaded from root: one node per
// document, one per entry with its match keys, effects and decode
// diagnostics below it.
func RuleTree(root string, docs []rules.Document, diags []rules.Diagnostic) gotree.Tree {
	tree := gotree.New(fmt.Sprintf("%s (%d documents, %d entries)", root, len(docs), rules.CountEntries(docs)))

	for _, doc := range docs {
		node := tree.Add(fmt.Sprintf("%s (%d)", docName(root, doc.Name), len(doc.Entries)))
		for i := range doc.Entries {
			e := &doc.Entries[i]
			en := node.Add(entryLabel(e))
			if effects := effectKeys(e); len(effects) > 0 {
				en.Add(strings.Join(effects, ", "))
			}
			for _, d := range diags {
				if d.Document == doc.Name && d.Entry == e.Index {
					en.Add(fmt.Sprintf("%s: %s: %v", d.Severity, d.Key, d.Err))
				}
			}
		}
	}
	return tree
}

// Rules prints the rule tree and the decode diagnostics.
func (p *Printer) Rules(root string, res *rules.LoadResult) error {
	var b strings.Builder
	b.WriteString(RuleTree(root, res.Documents, res.Diagnostics).Print())

	if len(res.Diagnostics) > 0 {
		fmt.Fprintf(&b, "\n%s\n", p.styles.Title.Render(fmt.Sprintf("Diagnostics (%d)", len(res.Diagnostics))))
		for _, d := range res.Diagnostics {
			sev := fmt.Sprintf("%-8s", d.Severity)
			if d.Severity == rules.SeverityError {
				sev = p.styles.Bad.Render(sev)
			} else {
				sev = p.styles.Warn.Render(sev)
			}
			fmt.Fprintf(&b, "  %s %s\n", sev, d.Error())
		}
	}

	_, err := io.WriteString(p.w, b.String())
	return err
}

func docName(root, name string) string {
	if rel, err := filepath.Rel(root, name); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return name
}

func entryLabel(e *rules.Entry) string {
	var parts []string
	add := func(key string, v *string) {
		if v != nil {
			parts = append(parts, fmt.Sprintf("%s=%q", key, *v))
		}
	}
	add(rules.KeyNifFilter, e.NifFilter)
	add(rules.KeyPathContains, e.PathContains)
	add(rules.KeyMatchNormal, e.MatchNormal)
	if e.Has(rules.KeyTexture) {
		add(rules.KeyTexture, e.Texture)
	} else {
		add(rules.KeyMatchDiffuse, e.MatchDiffuse)
	}

	label := fmt.Sprintf("#%d", e.Index)
	if len(parts) == 0 {
		return label + " any shape"
	}
	return label + " " + strings.Join(parts, " ")
}

func effectKeys(e *rules.Entry) []string {
	var keys []string
	for _, k := range e.Keys {
		if !slices.Contains(matchKeys, k) {
			keys = append(keys, k)
		}
	}
	return keys
}
