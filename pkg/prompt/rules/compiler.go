package rules

import (
	"fmt"
	"strings"

	"ai-support-be/pkg/sanitize"
)

// Compile renders a selection as the <response_rules> block.
// A nil selection compiles the default one. The length constraint is always present.
func Compile(sel *Selection) string {
	if sel == nil {
		sel = DefaultSelection()
	}

	length := sel.ResponseLength
	if _, ok := lengthInstructions[length]; !ok {
		length = LengthMedium
	}

	var b strings.Builder
	b.WriteString("<response_rules>\n")

	b.WriteString(`<length_constraint priority="CRITICAL">` + "\n")
	b.WriteString(lengthInstructions[length])
	b.WriteString("\n</length_constraint>\n")

	persona := make([]string, 0, 2)
	if text, ok := styleInstructions[sel.SpeakingStyle]; ok {
		persona = append(persona, text)
	}
	if text, ok := dialectInstructions[sel.Dialect]; ok {
		persona = append(persona, text)
	}
	if len(persona) > 0 {
		b.WriteString("<persona>\n")
		b.WriteString(strings.Join(persona, "\n"))
		b.WriteString("\n</persona>\n")
	}

	operational := operationalRules(sel)
	if len(operational) > 0 {
		b.WriteString("<operational_rules>\n")
		for i, line := range operational {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, line))
		}
		b.WriteString("</operational_rules>\n")
	}

	b.WriteString("</response_rules>")
	return b.String()
}

func operationalRules(sel *Selection) []string {
	seen := make(map[string]bool, len(sel.Rules))
	lines := make([]string, 0, len(sel.Rules)+1)
	for _, id := range sel.Rules {
		if seen[id] {
			continue
		}
		seen[id] = true
		if text, ok := Lookup(id); ok {
			lines = append(lines, text)
		}
	}

	if custom := strings.TrimSpace(sel.CustomRules); custom != "" {
		lines = append(lines, "<custom_instruction>"+sanitize.Text(custom)+"</custom_instruction>")
	}
	return lines
}
