// Package tree defines the shared record types for the skill tree:
// parsed skill documents, the categories they form, and the diagnostics
// emitted by the builder pipeline.
package tree

import (
	"fmt"
	"sort"
	"strings"
)

// Role is the declared role of a skill document.
type Role string

const (
	// RoleNone marks an ordinary skill with no routing responsibilities.
	RoleNone Role = ""
	// RoleRouter marks a skill that owns a routing table for its category.
	RoleRouter Role = "router"
)

// Metadata is the typed view of a SKILL.md frontmatter block. Keys the
// builder does not understand are retained in Extra untouched.
type Metadata struct {
	Name        string         `mapstructure:"name"`
	Description string         `mapstructure:"description"`
	Category    string         `mapstructure:"category"`
	Parent      string         `mapstructure:"parent"`
	Role        string         `mapstructure:"role"`
	Hidden      bool           `mapstructure:"disable-model-invocation"`
	Extra       map[string]any `mapstructure:",remain"`
}

// RouterEntry is one row of a router skill's routing table.
type RouterEntry struct {
	SkillID     string
	Path        string
	Description string
}

// Skill is one parsed skill document.
type Skill struct {
	ID          string
	Path        string // repo-relative path of the SKILL.md document
	Category    string
	Parent      string
	Role        Role
	Hidden      bool
	Description string
	Breadcrumb  string // first non-blank body line, verbatim
	Extra       map[string]any
	Table       []RouterEntry // declared routing table, routers only
}

// Category groups the skills that declare it. MemberIDs is kept sorted
// by the registry so downstream consumers render deterministically.
type Category struct {
	ID        string
	RouterID  string
	MemberIDs []string
}

// Severity classifies a diagnostic. Only errors affect the exit code.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Kind identifies the rule a diagnostic reports on.
type Kind string

const (
	// Parse failures (malformed document).
	KindUnterminatedHeader Kind = "UnterminatedHeader"
	KindDuplicateField     Kind = "DuplicateField"
	KindInvalidFrontmatter Kind = "InvalidFrontmatter"

	// Schema failures (missing or invalid required fields).
	KindMissingName        Kind = "MissingName"
	KindInvalidRole        Kind = "InvalidRole"
	KindInvalidField       Kind = "InvalidField"
	KindMissingDescription Kind = "MissingDescription"
	KindMissingCategory    Kind = "MissingCategory"

	// Graph failures (broken references and structure).
	KindDanglingParent  Kind = "DanglingParent"
	KindNonRouterParent Kind = "NonRouterParent"
	KindDuplicateName   Kind = "DuplicateName"
	KindCycle           Kind = "Cycle"

	// Consistency failures (declared vs. derived drift).
	KindStaleRouterEntry   Kind = "StaleRouterEntry"
	KindMissingRouterEntry Kind = "MissingRouterEntry"
	KindMissingBreadcrumb  Kind = "MissingBreadcrumb"
	KindBreadcrumbMismatch Kind = "BreadcrumbMismatch"
	KindHiddenRouter       Kind = "HiddenRouter"
	KindRouterlessCategory Kind = "RouterlessCategory"
	KindMultipleRouters    Kind = "MultipleRouters"

	// Advisory only, never fatal.
	KindCategorySize Kind = "CategorySize"
)

// Diagnostic is one finding about one or more skills. SkillIDs holds the
// offending skill ids, or document paths when no id could be parsed.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	SkillIDs []string
	Message  string
	Expected string
	Actual   string
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s[%s] %s: %s", d.Severity, d.Kind, strings.Join(d.SkillIDs, ", "), d.Message)
	if d.Expected != "" || d.Actual != "" {
		s += fmt.Sprintf(" (expected %q, got %q)", d.Expected, d.Actual)
	}
	return s
}

// Errorf builds an error-level diagnostic.
func Errorf(kind Kind, skillIDs []string, format string, args ...any) Diagnostic {
	return Diagnostic{Kind: kind, Severity: SeverityError, SkillIDs: skillIDs, Message: fmt.Sprintf(format, args...)}
}

// Warnf builds a warning-level diagnostic.
func Warnf(kind Kind, skillIDs []string, format string, args ...any) Diagnostic {
	return Diagnostic{Kind: kind, Severity: SeverityWarning, SkillIDs: skillIDs, Message: fmt.Sprintf(format, args...)}
}

// SortDiagnostics groups diagnostics by skill id so a contributor sees
// all findings for one document together. The sort is stable, so checks
// keep their pipeline order within a group.
func SortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		return strings.Join(diags[i].SkillIDs, ", ") < strings.Join(diags[j].SkillIDs, ", ")
	})
}

// HasErrors reports whether any diagnostic is error-level.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
