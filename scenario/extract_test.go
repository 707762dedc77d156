package scenario

import (
	"testing"

	"github.com/hypernetix/rclib/domain"
)

func TestApplyExtractsScalars(t *testing.T) {
	body := []byte(`{"id":"42","job":{"attempt":3},"done":true}`)
	vars := domain.Vars{}
	rules := map[string]string{
		"job_id":  "$.id",
		"attempt": "$.job.attempt",
		"done":    "$.done",
	}
	if err := Apply(body, rules, vars); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vars["job_id"] != "42" {
		t.Fatalf("expected job_id=42, got %q", vars["job_id"])
	}
	if vars["attempt"] != "3" {
		t.Fatalf("expected integer without decimal point, got %q", vars["attempt"])
	}
	if vars["done"] != "true" {
		t.Fatalf("expected done=true, got %q", vars["done"])
	}
}

func TestApplyMissingPathIsFatal(t *testing.T) {
	vars := domain.Vars{"keep": "me"}
	err := Apply([]byte(`{"id":"42"}`), map[string]string{"job_id": "$.missing"}, vars)
	if !domain.IsKind(err, domain.KindScenario) {
		t.Fatalf("expected scenario kind, got %v", err)
	}
	if vars["keep"] != "me" {
		t.Fatalf("existing bindings must survive a failed extraction")
	}
}

func TestApplyInvalidJSON(t *testing.T) {
	err := Apply([]byte(`not json`), map[string]string{"x": "$.x"}, domain.Vars{})
	if !domain.IsKind(err, domain.KindParse) {
		t.Fatalf("expected parse kind, got %v", err)
	}
}

func TestApplyNoRulesIsNoop(t *testing.T) {
	if err := Apply([]byte(`not even json`), nil, domain.Vars{}); err != nil {
		t.Fatalf("no rules must not touch the body: %v", err)
	}
}

func TestLookupWildcardTakesFirstMatch(t *testing.T) {
	doc := map[string]any{
		"items": []any{
			map[string]any{"id": "a"},
			map[string]any{"id": "b"},
		},
	}
	got, ok := Lookup(doc, "$.items[*].id")
	if !ok || got != "a" {
		t.Fatalf("expected first match a, got %q ok=%v", got, ok)
	}
}

func TestLookupAbsentValue(t *testing.T) {
	if _, ok := Lookup(map[string]any{"a": 1.0}, "$.b"); ok {
		t.Fatalf("expected no match")
	}
}
