package scenario

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"github.com/hypernetix/rclib/domain"
)

// Apply resolves every extraction rule (variable name -> JSONPath) against
// the response body and stores the first scalar match into vars. A rule that
// resolves to nothing is fatal for the whole scenario.
func Apply(body []byte, rules map[string]string, vars domain.Vars) error {
	if len(rules) == 0 {
		return nil
	}

	doc, err := parseJSON(body)
	if err != nil {
		return &domain.OpError{
			Op:   "scenario.extract",
			Kind: domain.KindParse,
			Err:  fmt.Errorf("response body is not valid JSON: %w", err),
		}
	}

	// Stable rule order keeps failure messages deterministic.
	names := make([]string, 0, len(rules))
	for n := range rules {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, name := range names {
		expr := strings.TrimSpace(rules[name])
		val, ok := Lookup(doc, expr)
		if !ok {
			return &domain.OpError{
				Op:   "scenario.extract",
				Kind: domain.KindScenario,
				Err:  fmt.Errorf("no value for variable %q at %s", name, expr),
			}
		}
		vars[name] = val
	}
	return nil
}

// Lookup resolves a JSONPath expression against a decoded document and
// returns the first match converted to a string.
func Lookup(doc any, expr string) (string, bool) {
	if expr == "" {
		return "", false
	}
	val, err := jsonpath.Get(expr, doc)
	if err != nil {
		return "", false
	}
	if val == nil {
		return "", false
	}
	return toString(val)
}

func parseJSON(body []byte) (any, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func toString(v any) (string, bool) {
	// Wildcard/filter paths yield a slice; take the first match.
	if arr, ok := v.([]any); ok {
		if len(arr) == 0 {
			return "", false
		}
		return toString(arr[0])
	}

	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		// JSON numbers decode as float64; render integers without the
		// trailing ".0" so ids stay usable in endpoints.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t)), true
		}
		return fmt.Sprintf("%v", t), true
	case bool:
		return fmt.Sprintf("%t", t), true
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}
