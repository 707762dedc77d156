// Package template substitutes {name} placeholders in request templates.
package template

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hypernetix/rclib/domain"
)

// Placeholder identifiers are letters/digits/underscore, starting with a
// letter or underscore. Anything else (unbalanced braces, non-identifier
// content) is not a placeholder and stays verbatim.
var placeholderRE = regexp.MustCompile(`\{[A-Za-z_][A-Za-z0-9_]*\}`)

// Substitute replaces every {identifier} occurrence with the bound value, or
// the empty string when unbound. No recursive expansion, no failure mode.
func Substitute(input string, vars domain.Vars) string {
	if input == "" || !strings.Contains(input, "{") {
		return input
	}
	return placeholderRE.ReplaceAllStringFunc(input, func(m string) string {
		return vars[m[1:len(m)-1]]
	})
}

// SubstituteHeaders substitutes placeholders in header values and flattens
// the map into "Key: Value" lines in a stable order.
func SubstituteHeaders(headers map[string]string, vars domain.Vars) []string {
	if len(headers) == 0 {
		return nil
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+": "+Substitute(headers[k], vars))
	}
	return out
}
