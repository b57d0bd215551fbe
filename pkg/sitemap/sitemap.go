// Package sitemap renders the canonical SKILLS.md artifact from a
// registry. Rendering is deterministic: identical registries produce
// byte-identical output because every emission order comes from sorted
// ids, never from filesystem enumeration order.
package sitemap

import (
	"fmt"
	"strings"

	"github.com/jingkaihe/skilltree/pkg/registry"
)

// ArtifactName is the sitemap's filename at the skills root.
const ArtifactName = "SKILLS.md"

// Render serializes the registry into the canonical sitemap text. A
// partially valid registry still renders; the driver decides whether
// the result may be written.
func Render(reg *registry.Registry) string {
	var b strings.Builder

	b.WriteString("# Skill Tree\n\n")
	b.WriteString("Generated by skilltree. Do not edit by hand; run `skilltree` to regenerate.\n\n")

	b.WriteString("## Navigation\n\n")
	for _, catID := range reg.CategoryOrder {
		cat := reg.Categories[catID]
		label := categoryLabel(catID)
		if cat.RouterID == "" {
			fmt.Fprintf(&b, "- **%s** — no router\n", label)
			continue
		}
		router := reg.Skills[cat.RouterID]
		fmt.Fprintf(&b, "- **%s** — [`%s`](%s): %s\n", label, router.ID, router.Path, cell(router.Description))
	}
	b.WriteString("\n")

	for _, catID := range reg.CategoryOrder {
		cat := reg.Categories[catID]
		fmt.Fprintf(&b, "## %s\n\n", categoryLabel(catID))
		b.WriteString("| Skill | Path | Description |\n")
		b.WriteString("|-------|------|-------------|\n")
		for _, id := range cat.MemberIDs {
			s := reg.Skills[id]
			fmt.Fprintf(&b, "| `%s` | %s | %s |\n", s.ID, s.Path, cell(s.Description))
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func categoryLabel(catID string) string {
	if catID == registry.RootCategoryID {
		return registry.RootLabel
	}
	return catID
}

// cell flattens a value into a single markdown table cell.
func cell(v string) string {
	v = strings.ReplaceAll(v, "\n", " ")
	v = strings.ReplaceAll(v, "|", "\\|")
	return strings.TrimSpace(v)
}
