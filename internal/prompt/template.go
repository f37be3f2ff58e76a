package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

var variablePattern = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// Render replaces {{variable}} placeholders in tmpl with values from vars.
// Every placeholder must have a value; substituted values are not rescanned.
func Render(tmpl string, vars map[string]string) (string, error) {
	if missing := missingVars(tmpl, vars); len(missing) > 0 {
		return "", fmt.Errorf("missing template variables: %s", strings.Join(missing, ", "))
	}

	return variablePattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		return vars[variablePattern.FindStringSubmatch(match)[1]]
	}), nil
}

// ExtractVariables returns the distinct variable names in tmpl in order of
// first appearance.
func ExtractVariables(tmpl string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range variablePattern.FindAllStringSubmatch(tmpl, -1) {
		if !seen[m[1]] {
			names = append(names, m[1])
			seen[m[1]] = true
		}
	}
	return names
}

func missingVars(tmpl string, vars map[string]string) []string {
	var missing []string
	for _, v := range ExtractVariables(tmpl) {
		if _, ok := vars[v]; !ok {
			missing = append(missing, v)
		}
	}
	return missing
}
