package filter

import (
	"strings"
	"testing"
)

func TestExpression_Build(t *testing.T) {
	base := Tag("type", "business")
	a := base.Not("has_events", "false")
	b := base.And("city", "austin")

	if got := len(base.Terms()); got != 1 {
		t.Fatalf("base terms = %d, want 1", got)
	}
	if ta := a.Terms(); len(ta) != 2 || !ta[1].Negated || ta[1].Field != "has_events" {
		t.Errorf("a terms: %+v", ta)
	}
	if tb := b.Terms(); len(tb) != 2 || tb[1].Negated || tb[1].Value != "austin" {
		t.Errorf("b terms: %+v", tb)
	}
}

func TestExpression_Value(t *testing.T) {
	e := Tag("type", "event").Not("source", "spam")
	if v, ok := e.Value("type"); !ok || v != "event" {
		t.Errorf("Value(type) = %q, %v", v, ok)
	}
	if _, ok := e.Value("source"); ok {
		t.Error("negated terms are not required values")
	}
	if _, ok := (Expression{}).Value("type"); ok {
		t.Error("zero expression has no values")
	}
}

func TestExpression_TermsIsCopy(t *testing.T) {
	e := Tag("type", "event")
	e.Terms()[0].Value = "business"
	if v, _ := e.Value("type"); v != "event" {
		t.Errorf("expression mutated through Terms: %q", v)
	}
}

func TestExpression_IsEmpty(t *testing.T) {
	if !(Expression{}).IsEmpty() {
		t.Error("zero expression should be empty")
	}
	if Tag("type", "business").IsEmpty() {
		t.Error("tag expression should not be empty")
	}
}

func TestExpression_Validate(t *testing.T) {
	tests := []struct {
		name string
		expr Expression
		want []string
	}{
		{"empty", Expression{}, nil},
		{"ok", Tag("type", "event").Not("has_events", "false"), nil},
		{"no field", Tag("", "event"), []string{"term 0: field is required"}},
		{"no value", Tag("type", "").Not("", "x"), []string{`term 0: value is required for "type"`, "term 1: field is required"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.expr.Validate()
			if len(tt.want) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			for _, w := range tt.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("error %q should mention %q", err, w)
				}
			}
		})
	}
}

func TestExpression_TooManyTerms(t *testing.T) {
	e := Expression{}
	for range MaxTerms + 1 {
		e = e.And("type", "event")
	}
	if err := e.Validate(); err == nil || !strings.Contains(err.Error(), "max 16") {
		t.Errorf("expected term limit error, got %v", err)
	}
}
