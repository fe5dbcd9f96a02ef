package prompts

import (
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{\.([a-zA-Z0-9_]+)\}\}`)

// PromptTemplate is a text template with `{{.name}}` placeholders.
type PromptTemplate struct {
	Template string
}

func NewPromptTemplate(template string) PromptTemplate {
	return PromptTemplate{Template: template}
}

// Format substitutes vars into the template. Placeholders without a value are
// replaced with the empty string and surrounding whitespace is trimmed.
func (p PromptTemplate) Format(vars map[string]string) string {
	out := placeholderPattern.ReplaceAllStringFunc(p.Template, func(m string) string {
		name := placeholderPattern.FindStringSubmatch(m)[1]
		return vars[name]
	})
	return strings.TrimSpace(out)
}

// Variables lists the placeholder names in order of first appearance.
func (p PromptTemplate) Variables() []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(p.Template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
