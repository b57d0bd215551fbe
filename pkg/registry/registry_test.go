package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/skilltree/pkg/types/tree"
)

func skill(id, path, category, parent string, role tree.Role) *tree.Skill {
	return &tree.Skill{
		ID:          id,
		Path:        path,
		Category:    category,
		Parent:      parent,
		Role:        role,
		Description: "d",
	}
}

func diagsOfKind(diags []tree.Diagnostic, kind tree.Kind) []tree.Diagnostic {
	var out []tree.Diagnostic
	for _, d := range diags {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

func TestBuildCategories(t *testing.T) {
	reg := Build([]*tree.Skill{
		skill("zeta-router", "zeta/SKILL.md", "zeta", "", tree.RoleRouter),
		skill("alpha-router", "alpha/SKILL.md", "alpha", "", tree.RoleRouter),
		skill("alpha-two", "alpha/two/SKILL.md", "alpha", "alpha-router", tree.RoleNone),
		skill("alpha-one", "alpha/one/SKILL.md", "alpha", "alpha-router", tree.RoleNone),
		skill("index", "SKILL.md", "", "", tree.RoleRouter),
	})

	assert.Empty(t, reg.Diagnostics)
	assert.Equal(t, []string{RootCategoryID, "alpha", "zeta"}, reg.CategoryOrder)

	root := reg.Categories[RootCategoryID]
	require.NotNil(t, root)
	assert.Equal(t, []string{"index"}, root.MemberIDs)
	assert.Equal(t, "index", root.RouterID)

	alpha := reg.Categories["alpha"]
	require.NotNil(t, alpha)
	assert.Equal(t, []string{"alpha-one", "alpha-router", "alpha-two"}, alpha.MemberIDs)
	assert.Equal(t, "alpha-router", alpha.RouterID)

	assert.Equal(t, []string{"alpha-one", "alpha-two"}, reg.DerivedChildren["alpha-router"])
}

func TestBuildDuplicateNames(t *testing.T) {
	reg := Build([]*tree.Skill{
		skill("sentry-foo", "b/SKILL.md", "c", "", tree.RoleNone),
		skill("sentry-foo", "a/SKILL.md", "c", "", tree.RoleNone),
	})

	dups := diagsOfKind(reg.Diagnostics, tree.KindDuplicateName)
	require.Len(t, dups, 1)
	assert.Equal(t, []string{"sentry-foo"}, dups[0].SkillIDs)
	assert.Contains(t, dups[0].Message, "a/SKILL.md")
	assert.Contains(t, dups[0].Message, "b/SKILL.md")

	// Lexically first document wins so the rest of the pipeline has a record.
	assert.Equal(t, "a/SKILL.md", reg.Skills["sentry-foo"].Path)
}

func TestBuildDanglingParent(t *testing.T) {
	reg := Build([]*tree.Skill{
		skill("orphan", "c/orphan/SKILL.md", "c", "ghost-router", tree.RoleNone),
	})

	dangling := diagsOfKind(reg.Diagnostics, tree.KindDanglingParent)
	require.Len(t, dangling, 1)
	assert.Equal(t, []string{"orphan"}, dangling[0].SkillIDs)
	assert.Contains(t, dangling[0].Message, "ghost-router")
	assert.Empty(t, reg.DerivedChildren)
}

func TestBuildNonRouterParent(t *testing.T) {
	reg := Build([]*tree.Skill{
		skill("plain", "c/plain/SKILL.md", "c", "", tree.RoleNone),
		skill("child", "c/child/SKILL.md", "c", "plain", tree.RoleNone),
	})

	bad := diagsOfKind(reg.Diagnostics, tree.KindNonRouterParent)
	require.Len(t, bad, 1)
	assert.Equal(t, []string{"child"}, bad[0].SkillIDs)
	assert.Empty(t, reg.DerivedChildren["plain"])
}

func TestBuildDetectsCycle(t *testing.T) {
	reg := Build([]*tree.Skill{
		skill("a", "a/SKILL.md", "c", "b", tree.RoleRouter),
		skill("b", "b/SKILL.md", "c", "a", tree.RoleRouter),
	})

	cycles := diagsOfKind(reg.Diagnostics, tree.KindCycle)
	require.Len(t, cycles, 1)
	assert.Contains(t, cycles[0].Message, "a -> b -> a")
	assert.ElementsMatch(t, []string{"a", "b"}, cycles[0].SkillIDs)
}

func TestBuildDetectsLongerCycleOnce(t *testing.T) {
	reg := Build([]*tree.Skill{
		skill("a", "a/SKILL.md", "c", "b", tree.RoleRouter),
		skill("b", "b/SKILL.md", "c", "x", tree.RoleRouter),
		skill("x", "x/SKILL.md", "c", "a", tree.RoleRouter),
	})

	cycles := diagsOfKind(reg.Diagnostics, tree.KindCycle)
	require.Len(t, cycles, 1)
	assert.Len(t, cycles[0].SkillIDs, 3)
}

func TestBuildMissingCategory(t *testing.T) {
	reg := Build([]*tree.Skill{
		skill("floating", "floating/SKILL.md", "", "", tree.RoleNone),
	})

	missing := diagsOfKind(reg.Diagnostics, tree.KindMissingCategory)
	require.Len(t, missing, 1)
	assert.Equal(t, []string{"floating"}, missing[0].SkillIDs)

	// Still filed under the root category so it renders.
	assert.Contains(t, reg.Categories[RootCategoryID].MemberIDs, "floating")
}

func TestDeclaredChildren(t *testing.T) {
	router := skill("r", "r/SKILL.md", "c", "", tree.RoleRouter)
	router.Table = []tree.RouterEntry{
		{SkillID: "z"},
		{SkillID: "a"},
		{SkillID: "z"}, // duplicate row
	}
	reg := Build([]*tree.Skill{router})

	assert.Equal(t, []string{"a", "z"}, reg.DeclaredChildren("r"))
	assert.Nil(t, reg.DeclaredChildren("unknown"))
}
