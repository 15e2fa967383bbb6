package template

import (
	"regexp"

	"ai-support-be/pkg/sanitize"
)

// Vars maps placeholder names to raw values. Values are sanitized during
// substitution, so callers must pass them unescaped.
type Vars map[string]string

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// Render replaces every {{name}} found in vars with its sanitized value.
// Unknown placeholders stay verbatim.
func Render(content string, vars Vars) string {
	if content == "" || len(vars) == 0 {
		return content
	}
	return placeholderPattern.ReplaceAllStringFunc(content, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		value, ok := vars[name]
		if !ok {
			return match
		}
		return sanitize.Text(value)
	})
}

// Placeholders lists the distinct placeholder names used by content, in order of appearance.
func Placeholders(content string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(content, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
