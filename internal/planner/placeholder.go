package planner

import (
	"fmt"
	"regexp"
	"strings"
)

// [$NAME] resolves from global variables, [#NAME] from job-local ones.
var placeholderRe = regexp.MustCompile(`\[(\$|#)(\w+)\]`)

// Resolve substitutes every placeholder in template. All missing variables
// are reported together, and the template is returned untouched on failure.
func Resolve(template string, globals, locals map[string]string) (string, error) {
	if missing := MissingPlaceholders(template, globals, locals); len(missing) > 0 {
		return template, fmt.Errorf("%s", strings.Join(missing, "; "))
	}

	return placeholderRe.ReplaceAllStringFunc(template, func(token string) string {
		m := placeholderRe.FindStringSubmatch(token)
		if m[1] == "$" {
			return globals[m[2]]
		}
		return locals[m[2]]
	}), nil
}

// MissingPlaceholders lists every placeholder in template that has no
// backing variable.
func MissingPlaceholders(template string, globals, locals map[string]string) []string {
	var missing []string
	for _, m := range placeholderRe.FindAllStringSubmatch(template, -1) {
		prefix, name := m[1], m[2]
		if prefix == "$" {
			if _, ok := globals[name]; !ok {
				missing = append(missing, fmt.Sprintf("global variable %q not found for placeholder [$%s]", name, name))
			}
			continue
		}
		if _, ok := locals[name]; !ok {
			missing = append(missing, fmt.Sprintf("local variable %q not found for placeholder [#%s]", name, name))
		}
	}
	return missing
}
