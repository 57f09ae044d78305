// Package varsubst implements the plain ${KEY} textual substitution used
// throughout the engine (spec §4.8, Design Notes §9): unresolved
// references are left literal, deliberately simpler than a general
// templating engine.
package varsubst

import "regexp"

var refPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Resolve replaces every ${KEY} occurrence in s with vars[KEY]. A
// reference to a key not present in vars is left literal.
func Resolve(s string, vars map[string]string) string {
	return refPattern.ReplaceAllStringFunc(s, func(match string) string {
		key := refPattern.FindStringSubmatch(match)[1]
		if value, ok := vars[key]; ok {
			return value
		}
		return match
	})
}

// References returns the set of distinct ${KEY} names referenced in s, in
// first-occurrence order.
func References(s string) []string {
	matches := refPattern.FindAllStringSubmatch(s, -1)
	seen := make(map[string]bool, len(matches))
	var names []string
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
