package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{
		Kind:     KindBreadcrumbMismatch,
		Severity: SeverityError,
		SkillIDs: []string{"error-handling"},
		Message:  "breadcrumb does not match the category/parent chain",
		Expected: "> All Skills > golang > error-handling",
		Actual:   "> All Skills > Wrong Category > error-handling",
	}

	s := d.String()
	assert.Contains(t, s, "error[BreadcrumbMismatch] error-handling:")
	assert.Contains(t, s, `expected "> All Skills > golang > error-handling"`)
	assert.Contains(t, s, `got "> All Skills > Wrong Category > error-handling"`)
}

func TestSortDiagnosticsGroupsBySkill(t *testing.T) {
	diags := []Diagnostic{
		Errorf(KindMissingDescription, []string{"zz"}, "m"),
		Errorf(KindMissingBreadcrumb, []string{"aa"}, "m"),
		Warnf(KindCategorySize, []string{"aa"}, "m"),
	}
	SortDiagnostics(diags)

	assert.Equal(t, []string{"aa"}, diags[0].SkillIDs)
	assert.Equal(t, []string{"aa"}, diags[1].SkillIDs)
	assert.Equal(t, []string{"zz"}, diags[2].SkillIDs)
	// Stable: pipeline order preserved within a group.
	assert.Equal(t, KindMissingBreadcrumb, diags[0].Kind)
	assert.Equal(t, KindCategorySize, diags[1].Kind)
}

func TestHasErrors(t *testing.T) {
	assert.False(t, HasErrors(nil))
	assert.False(t, HasErrors([]Diagnostic{Warnf(KindCategorySize, []string{"c"}, "m")}))
	assert.True(t, HasErrors([]Diagnostic{Errorf(KindCycle, []string{"a"}, "m")}))
}
