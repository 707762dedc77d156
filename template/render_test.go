package template

import (
	"reflect"
	"testing"

	"github.com/hypernetix/rclib/domain"
)

func TestSubstituteRepeatedVar(t *testing.T) {
	out := Substitute("{a}{a}", domain.Vars{"a": "X"})
	if out != "XX" {
		t.Fatalf("expected XX, got %q", out)
	}
}

func TestSubstituteMissingVarIsEmpty(t *testing.T) {
	out := Substitute("{missing}", domain.Vars{})
	if out != "" {
		t.Fatalf("expected empty string, got %q", out)
	}
}

func TestSubstituteMixedContent(t *testing.T) {
	out := Substitute("/users/{id}?limit={limit}", domain.Vars{"id": "42", "limit": "10"})
	if out != "/users/42?limit=10" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestSubstituteUnderscoreIdentifiers(t *testing.T) {
	out := Substitute("{_private}/{job_id}", domain.Vars{"_private": "p", "job_id": "7"})
	if out != "p/7" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestSubstituteMalformedPlaceholdersStayVerbatim(t *testing.T) {
	cases := []string{
		"{not closed",
		"not opened}",
		"{}",
		"{9starts_with_digit}",
		"{has space}",
		"{has-dash}",
	}
	for _, in := range cases {
		if out := Substitute(in, domain.Vars{"not closed": "x"}); out != in {
			t.Fatalf("expected %q verbatim, got %q", in, out)
		}
	}
}

func TestSubstituteNoRecursiveExpansion(t *testing.T) {
	out := Substitute("{a}", domain.Vars{"a": "{b}", "b": "inner"})
	if out != "{b}" {
		t.Fatalf("expected single expansion, got %q", out)
	}
}

func TestSubstituteEmptyInput(t *testing.T) {
	if out := Substitute("", domain.Vars{"a": "x"}); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}

func TestSubstituteHeadersStableOrder(t *testing.T) {
	got := SubstituteHeaders(map[string]string{
		"X-Trace":       "{trace}",
		"Authorization": "Bearer {token}",
	}, domain.Vars{"token": "abc", "trace": "1"})
	want := []string{"Authorization: Bearer abc", "X-Trace: 1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
