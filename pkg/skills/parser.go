package skills

import (
	"bytes"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
	"gopkg.in/yaml.v3"

	"github.com/jingkaihe/skilltree/pkg/types/tree"
)

// Parse converts one SKILL.md document into a skill record. Problems
// with the document are returned as diagnostics; a nil skill means no
// usable record could be built. Parse never touches the filesystem.
func Parse(path string, content []byte) (*tree.Skill, []tree.Diagnostic) {
	raw, body, ok := splitFrontmatter(string(content))
	if !ok {
		return nil, []tree.Diagnostic{tree.Errorf(tree.KindUnterminatedHeader, []string{path},
			"document must start with a frontmatter block delimited by --- lines")}
	}

	if d := checkDuplicateKeys(path, raw); d != nil {
		return nil, []tree.Diagnostic{*d}
	}

	md := goldmark.New(goldmark.WithExtensions(meta.Meta))
	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, []tree.Diagnostic{tree.Errorf(tree.KindInvalidFrontmatter, []string{path},
			"failed to parse document: %v", err)}
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return nil, []tree.Diagnostic{tree.Errorf(tree.KindInvalidFrontmatter, []string{path},
			"frontmatter is not a valid YAML mapping")}
	}

	var m tree.Metadata
	if err := mapstructure.Decode(metaData, &m); err != nil {
		return nil, []tree.Diagnostic{tree.Errorf(tree.KindInvalidField, []string{path},
			"frontmatter field has wrong shape: %v", err)}
	}

	if strings.TrimSpace(m.Name) == "" {
		return nil, []tree.Diagnostic{tree.Errorf(tree.KindMissingName, []string{path},
			"frontmatter must declare a non-empty name")}
	}

	var diags []tree.Diagnostic

	role := tree.RoleNone
	switch m.Role {
	case "", "none":
	case string(tree.RoleRouter):
		role = tree.RoleRouter
	default:
		diags = append(diags, tree.Errorf(tree.KindInvalidRole, []string{m.Name},
			"role %q is not recognized; expected \"router\" or \"none\"", m.Role))
	}

	skill := &tree.Skill{
		ID:          m.Name,
		Path:        path,
		Category:    m.Category,
		Parent:      m.Parent,
		Role:        role,
		Hidden:      m.Hidden,
		Description: m.Description,
		Breadcrumb:  firstBodyLine(body),
		Extra:       m.Extra,
	}
	if role == tree.RoleRouter {
		skill.Table = parseRouterTable(body)
	}

	return skill, diags
}

// splitFrontmatter separates the raw frontmatter block from the body.
// ok is false when the opening or closing --- marker is missing.
func splitFrontmatter(content string) (raw, body string, ok bool) {
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return "", "", false
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.Join(lines[1:i], "\n"), strings.Join(lines[i+1:], "\n"), true
		}
	}
	return "", "", false
}

// checkDuplicateKeys re-decodes the raw frontmatter with yaml.v3, which
// rejects duplicate mapping keys that lenient decoders silently drop.
func checkDuplicateKeys(path, raw string) *tree.Diagnostic {
	var m map[string]any
	if err := yaml.Unmarshal([]byte(raw), &m); err != nil {
		if strings.Contains(err.Error(), "already defined") {
			d := tree.Errorf(tree.KindDuplicateField, []string{path}, "frontmatter declares a field twice: %v", err)
			return &d
		}
		d := tree.Errorf(tree.KindInvalidFrontmatter, []string{path}, "invalid frontmatter: %v", err)
		return &d
	}
	return nil
}

// firstBodyLine returns the first non-blank body line verbatim, which by
// convention is the skill's breadcrumb.
func firstBodyLine(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) != "" {
			return strings.TrimRight(line, " \t\r")
		}
	}
	return ""
}

// parseRouterTable extracts routing table rows from a router body.
// Rows are markdown table lines whose first cell is the target skill id;
// header and separator rows are skipped.
func parseRouterTable(body string) []tree.RouterEntry {
	var entries []tree.RouterEntry
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "|") {
			continue
		}
		cells := splitTableRow(line)
		if len(cells) == 0 {
			continue
		}
		id := strings.Trim(cells[0], "`")
		if id == "" || id == "Skill" || isSeparatorCell(id) {
			continue
		}
		entry := tree.RouterEntry{SkillID: id}
		if len(cells) > 1 {
			entry.Path = cells[1]
		}
		if len(cells) > 2 {
			entry.Description = cells[2]
		}
		entries = append(entries, entry)
	}
	return entries
}

func splitTableRow(line string) []string {
	parts := strings.Split(strings.Trim(line, "|"), "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}
	return cells
}

func isSeparatorCell(cell string) bool {
	if cell == "" {
		return false
	}
	for _, r := range cell {
		if r != '-' && r != ':' {
			return false
		}
	}
	return true
}
