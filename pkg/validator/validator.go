// Package validator runs the consistency checks over a built registry.
// Every check is independent and collecting: a failure in one never
// suppresses the others, so a contributor sees the complete set of
// problems in a single run.
package validator

import (
	"strings"

	"github.com/jingkaihe/skilltree/pkg/registry"
	"github.com/jingkaihe/skilltree/pkg/types/tree"
)

// DefaultCategoryWarnThreshold is the category size above which the
// advisory warning fires. Kept non-fatal on purpose: the source
// guidance treats oversized categories as an authoring smell, not a
// correctness problem.
const DefaultCategoryWarnThreshold = 10

// Options tunes the validator.
type Options struct {
	// CategoryWarnThreshold overrides DefaultCategoryWarnThreshold when
	// positive.
	CategoryWarnThreshold int
}

// Validate inspects the registry and returns every diagnostic found,
// ordered by skill id then category id. It never fails.
func Validate(reg *registry.Registry, opts Options) []tree.Diagnostic {
	threshold := opts.CategoryWarnThreshold
	if threshold <= 0 {
		threshold = DefaultCategoryWarnThreshold
	}

	var diags []tree.Diagnostic
	for _, id := range reg.SkillIDs() {
		s := reg.Skills[id]
		diags = append(diags, checkRequiredFields(s)...)
		diags = append(diags, checkRole(s)...)
		diags = append(diags, checkBreadcrumb(s)...)
		if s.Role == tree.RoleRouter {
			diags = append(diags, checkRouterSymmetry(reg, s)...)
		}
	}
	for _, catID := range reg.CategoryOrder {
		diags = append(diags, checkCategory(reg, reg.Categories[catID], threshold)...)
	}
	return diags
}

func checkRequiredFields(s *tree.Skill) []tree.Diagnostic {
	if strings.TrimSpace(s.Description) != "" {
		return nil
	}
	return []tree.Diagnostic{tree.Errorf(tree.KindMissingDescription, []string{s.ID},
		"frontmatter must declare a non-empty description")}
}

func checkRole(s *tree.Skill) []tree.Diagnostic {
	if s.Role == tree.RoleRouter && s.Hidden {
		return []tree.Diagnostic{tree.Errorf(tree.KindHiddenRouter, []string{s.ID},
			"a router cannot disable model invocation; children would become unreachable")}
	}
	return nil
}

// checkBreadcrumb reconstructs the expected chain from the graph and
// compares it with the first body line. Skills in the synthetic root
// category may omit the breadcrumb; everyone else must carry one.
func checkBreadcrumb(s *tree.Skill) []tree.Diagnostic {
	expected := ExpectedBreadcrumb(s)
	if s.Breadcrumb == "" {
		if s.Category == "" {
			return nil
		}
		return []tree.Diagnostic{{
			Kind:     tree.KindMissingBreadcrumb,
			Severity: tree.SeverityError,
			SkillIDs: []string{s.ID},
			Message:  "document body is missing its breadcrumb line",
			Expected: expected,
		}}
	}
	if s.Breadcrumb != expected {
		return []tree.Diagnostic{{
			Kind:     tree.KindBreadcrumbMismatch,
			Severity: tree.SeverityError,
			SkillIDs: []string{s.ID},
			Message:  "breadcrumb does not match the category/parent chain",
			Expected: expected,
			Actual:   s.Breadcrumb,
		}}
	}
	return nil
}

// ExpectedBreadcrumb derives the canonical breadcrumb for a skill from
// its graph position: root label, category, parent when present, own id.
func ExpectedBreadcrumb(s *tree.Skill) string {
	parts := []string{registry.RootLabel}
	if s.Category != "" {
		parts = append(parts, s.Category)
	}
	if s.Parent != "" {
		parts = append(parts, s.Parent)
	}
	parts = append(parts, s.ID)
	return "> " + strings.Join(parts, " > ")
}

// checkRouterSymmetry compares a router's declared table against the
// derived child set, one diagnostic per extra or missing id on either
// side.
func checkRouterSymmetry(reg *registry.Registry, router *tree.Skill) []tree.Diagnostic {
	declared := reg.DeclaredChildren(router.ID)
	derived := reg.DerivedChildren[router.ID]

	declaredSet := toSet(declared)
	derivedSet := toSet(derived)

	var diags []tree.Diagnostic
	for _, id := range derived {
		if !declaredSet[id] {
			diags = append(diags, tree.Errorf(tree.KindMissingRouterEntry, []string{router.ID, id},
				"skill %q declares parent %q but the routing table omits it", id, router.ID))
		}
	}
	for _, id := range declared {
		if !derivedSet[id] {
			diags = append(diags, tree.Errorf(tree.KindStaleRouterEntry, []string{router.ID, id},
				"routing table lists %q but no such skill declares parent %q", id, router.ID))
		}
	}
	return diags
}

func checkCategory(reg *registry.Registry, cat *tree.Category, threshold int) []tree.Diagnostic {
	var diags []tree.Diagnostic

	var routers []string
	for _, id := range cat.MemberIDs {
		if reg.Skills[id].Role == tree.RoleRouter {
			routers = append(routers, id)
		}
	}
	if cat.ID != registry.RootCategoryID {
		switch {
		case len(routers) == 0:
			diags = append(diags, tree.Errorf(tree.KindRouterlessCategory, cat.MemberIDs,
				"category %q has no router skill", cat.ID))
		case len(routers) > 1:
			diags = append(diags, tree.Errorf(tree.KindMultipleRouters, routers,
				"category %q has %d router skills; exactly one is allowed", cat.ID, len(routers)))
		}
	}

	if len(cat.MemberIDs) > threshold {
		diags = append(diags, tree.Warnf(tree.KindCategorySize, []string{cat.ID},
			"category holds %d skills (threshold %d); consider splitting it", len(cat.MemberIDs), threshold))
	}

	return diags
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
