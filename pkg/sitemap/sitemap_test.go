package sitemap

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/skilltree/pkg/registry"
	"github.com/jingkaihe/skilltree/pkg/types/tree"
)

func records() []*tree.Skill {
	return []*tree.Skill{
		{ID: "skills-index", Path: "SKILL.md", Role: tree.RoleRouter, Description: "Entry point"},
		{ID: "go-dev", Path: "golang/SKILL.md", Category: "golang", Role: tree.RoleRouter, Description: "Go router"},
		{ID: "error-handling", Path: "golang/error-handling/SKILL.md", Category: "golang", Parent: "go-dev", Description: "Error wrapping"},
		{ID: "testing", Path: "golang/testing/SKILL.md", Category: "golang", Parent: "go-dev", Description: "Table tests"},
		{ID: "ansible", Path: "infra/ansible/SKILL.md", Category: "infra", Role: tree.RoleRouter, Description: "Infra router"},
	}
}

func TestRenderStructure(t *testing.T) {
	out := Render(registry.Build(records()))

	assert.Contains(t, out, "# Skill Tree\n")
	assert.Contains(t, out, "## Navigation\n")
	assert.Contains(t, out, "## All Skills\n")
	assert.Contains(t, out, "## golang\n")
	assert.Contains(t, out, "## infra\n")

	// Quick navigation lists each category's router.
	assert.Contains(t, out, "- **All Skills** — [`skills-index`](SKILL.md): Entry point")
	assert.Contains(t, out, "- **golang** — [`go-dev`](golang/SKILL.md): Go router")

	// One table row per skill.
	assert.Contains(t, out, "| `error-handling` | golang/error-handling/SKILL.md | Error wrapping |")
	assert.Contains(t, out, "| `testing` | golang/testing/SKILL.md | Table tests |")

	// Single trailing newline.
	require.True(t, len(out) > 2)
	assert.Equal(t, byte('\n'), out[len(out)-1])
	assert.NotEqual(t, byte('\n'), out[len(out)-2])
}

func TestRenderDeterministicUnderShuffle(t *testing.T) {
	base := Render(registry.Build(records()))

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffled := records()
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.Equal(t, base, Render(registry.Build(shuffled)))
	}
}

func TestRenderEscapesTableCells(t *testing.T) {
	recs := records()
	recs[2].Description = "pipes | and\nnewlines"

	out := Render(registry.Build(recs))
	assert.Contains(t, out, `pipes \| and newlines`)
}

func TestRenderRouterlessCategory(t *testing.T) {
	recs := append(records(), &tree.Skill{
		ID: "stranded", Path: "misc/stranded/SKILL.md", Category: "misc", Description: "d",
	})

	out := Render(registry.Build(recs))
	assert.Contains(t, out, "- **misc** — no router")
	assert.Contains(t, out, "| `stranded` | misc/stranded/SKILL.md | d |")
}
