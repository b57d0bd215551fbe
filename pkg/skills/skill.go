// Package skills parses SKILL.md documents and discovers them beneath a
// skills root. Skills are directories containing a SKILL.md file with
// YAML frontmatter describing the skill and its place in the tree; the
// first non-blank body line is the skill's breadcrumb.
package skills

// SkillFileName is the document name every skill directory must contain.
const SkillFileName = "SKILL.md"
