// Package registry assembles parsed skill records into the category and
// router graph consumed by the validator and the sitemap renderer. The
// graph is rebuilt from scratch on every run and holds skills in an
// id-addressed map with parent edges kept as id references, so broken
// links surface as diagnostics instead of dangling pointers.
package registry

import (
	"sort"
	"strings"

	"github.com/jingkaihe/skilltree/pkg/types/tree"
)

const (
	// RootCategoryID is the synthetic category holding top-level routers.
	RootCategoryID = "root"
	// RootLabel is the display name of the root category, and the first
	// element of every breadcrumb chain.
	RootLabel = "All Skills"
)

// Registry is the linked skill graph for one run. Build never fails
// fast: structural problems accumulate in Diagnostics and the partial
// graph stays usable for the remaining independent checks.
type Registry struct {
	Skills          map[string]*tree.Skill
	Categories      map[string]*tree.Category
	CategoryOrder   []string            // root first, then ascending category id
	DerivedChildren map[string][]string // router id -> sorted ids of skills declaring it as parent
	Diagnostics     []tree.Diagnostic
}

// Build links the parsed records into a registry.
func Build(records []*tree.Skill) *Registry {
	r := &Registry{
		Skills:          make(map[string]*tree.Skill),
		Categories:      make(map[string]*tree.Category),
		DerivedChildren: make(map[string][]string),
	}

	r.dedupe(records)
	ids := r.sortedSkillIDs()
	r.buildCategories(ids)
	r.resolveParents(ids)
	r.detectCycles(ids)

	return r
}

// dedupe indexes records by id, reporting every name collision with all
// of the paths involved. The lexically first document wins so the rest
// of the pipeline still has a record to work with.
func (r *Registry) dedupe(records []*tree.Skill) {
	byID := make(map[string][]*tree.Skill)
	for _, s := range records {
		byID[s.ID] = append(byID[s.ID], s)
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		group := byID[id]
		sort.Slice(group, func(i, j int) bool { return group[i].Path < group[j].Path })
		if len(group) > 1 {
			paths := make([]string, len(group))
			for i, s := range group {
				paths[i] = s.Path
			}
			r.Diagnostics = append(r.Diagnostics, tree.Errorf(tree.KindDuplicateName, []string{id},
				"name declared by multiple documents: %s", strings.Join(paths, ", ")))
		}
		r.Skills[id] = group[0]
	}
}

// buildCategories creates categories implicitly from the distinct
// category values observed, plus the synthetic root category for
// top-level routers. A skill without category that is not a router is
// an error, but it is still filed under the root category so it shows
// up in the rendered tree.
func (r *Registry) buildCategories(ids []string) {
	r.Categories[RootCategoryID] = &tree.Category{ID: RootCategoryID}

	for _, id := range ids {
		s := r.Skills[id]
		catID := s.Category
		if catID == "" {
			if s.Role != tree.RoleRouter {
				r.Diagnostics = append(r.Diagnostics, tree.Errorf(tree.KindMissingCategory, []string{id},
					"skill declares no category and is not a top-level router"))
			}
			catID = RootCategoryID
		}
		cat, ok := r.Categories[catID]
		if !ok {
			cat = &tree.Category{ID: catID}
			r.Categories[catID] = cat
		}
		cat.MemberIDs = append(cat.MemberIDs, id)
	}

	catIDs := make([]string, 0, len(r.Categories))
	for id := range r.Categories {
		if id != RootCategoryID {
			catIDs = append(catIDs, id)
		}
	}
	sort.Strings(catIDs)
	r.CategoryOrder = append([]string{RootCategoryID}, catIDs...)

	for _, cat := range r.Categories {
		sort.Strings(cat.MemberIDs)
		for _, id := range cat.MemberIDs {
			if r.Skills[id].Role == tree.RoleRouter {
				cat.RouterID = id
				break
			}
		}
	}
}

// resolveParents checks every parent reference and records the derived
// child sets the validator compares against declared router tables.
func (r *Registry) resolveParents(ids []string) {
	for _, id := range ids {
		s := r.Skills[id]
		if s.Parent == "" {
			continue
		}
		parent, ok := r.Skills[s.Parent]
		if !ok {
			r.Diagnostics = append(r.Diagnostics, tree.Errorf(tree.KindDanglingParent, []string{id},
				"parent %q does not exist", s.Parent))
			continue
		}
		if parent.Role != tree.RoleRouter {
			r.Diagnostics = append(r.Diagnostics, tree.Errorf(tree.KindNonRouterParent, []string{id},
				"parent %q is not a router", s.Parent))
			continue
		}
		r.DerivedChildren[parent.ID] = append(r.DerivedChildren[parent.ID], id)
	}
	for _, children := range r.DerivedChildren {
		sort.Strings(children)
	}
}

// Three-color DFS over parent edges. Each skill has at most one parent,
// so a walk from any white node is a simple chain and a gray hit is a
// back-edge closing a cycle.
const (
	white = iota
	gray
	black
)

func (r *Registry) detectCycles(ids []string) {
	state := make(map[string]int, len(ids))

	for _, id := range ids {
		if state[id] != white {
			continue
		}
		var stack []string
		cur := id
		for {
			state[cur] = gray
			stack = append(stack, cur)

			next := r.Skills[cur].Parent
			if next == "" {
				break
			}
			if _, ok := r.Skills[next]; !ok {
				break // dangling parent, already diagnosed
			}
			if state[next] == black {
				break
			}
			if state[next] == gray {
				r.reportCycle(stack, next)
				break
			}
			cur = next
		}
		for _, v := range stack {
			state[v] = black
		}
	}
}

func (r *Registry) reportCycle(stack []string, backEdge string) {
	start := 0
	for i, v := range stack {
		if v == backEdge {
			start = i
			break
		}
	}
	cycle := append(append([]string{}, stack[start:]...), backEdge)
	r.Diagnostics = append(r.Diagnostics, tree.Errorf(tree.KindCycle, stack[start:],
		"parent chain forms a cycle: %s", strings.Join(cycle, " -> ")))
}

// DeclaredChildren returns the deduplicated, sorted target ids from a
// router's routing table.
func (r *Registry) DeclaredChildren(routerID string) []string {
	router, ok := r.Skills[routerID]
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var ids []string
	for _, entry := range router.Table {
		if !seen[entry.SkillID] {
			seen[entry.SkillID] = true
			ids = append(ids, entry.SkillID)
		}
	}
	sort.Strings(ids)
	return ids
}

// SkillIDs returns every skill id in ascending order.
func (r *Registry) SkillIDs() []string {
	return r.sortedSkillIDs()
}

func (r *Registry) sortedSkillIDs() []string {
	ids := make([]string, 0, len(r.Skills))
	for id := range r.Skills {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
