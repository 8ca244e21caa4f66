package document

import (
	"testing"

	"github.com/kailas-cloud/concierge/internal/domain/entity"
)

func TestDocument_TypeDefaultsToBusiness(t *testing.T) {
	d := New("1", "", map[string]string{KeyName: "Husk"})
	if d.Type() != entity.Business {
		t.Errorf("expected business, got %q", d.Type())
	}

	d = New("2", "", map[string]string{KeyName: "Jazz", KeyType: "event"})
	if d.Type() != entity.Event {
		t.Errorf("expected event, got %q", d.Type())
	}
}

func TestDocument_Bool(t *testing.T) {
	tests := []struct {
		val  string
		want bool
	}{
		{"true", true},
		{"True", true},
		{"1", true},
		{"false", false},
		{"", false},
		{"yes", false},
	}
	for _, tt := range tests {
		d := New("x", "", map[string]string{KeyHasEvents: tt.val})
		if got := d.HasEvents(); got != tt.want {
			t.Errorf("HasEvents(%q) = %v, want %v", tt.val, got, tt.want)
		}
	}
}

func TestDocument_Int(t *testing.T) {
	d := New("x", "", map[string]string{KeyEventCount: "3", KeyBusinessID: "abc"})
	if d.Int(KeyEventCount) != 3 {
		t.Errorf("expected 3, got %d", d.Int(KeyEventCount))
	}
	if d.Int(KeyBusinessID) != 0 {
		t.Errorf("expected 0 for unparsable int, got %d", d.Int(KeyBusinessID))
	}
	if d.Int("missing") != 0 {
		t.Error("expected 0 for missing key")
	}
}

func TestNew_NilMetadata(t *testing.T) {
	d := New("x", "text", nil)
	if d.Metadata() == nil {
		t.Fatal("expected non-nil metadata")
	}
	if _, ok := d.Get(KeyName); ok {
		t.Error("expected missing name")
	}
}

func TestSortByScore(t *testing.T) {
	matches := []Match{
		{Document: New("a", "", nil), Score: 0.2},
		{Document: New("b", "", nil), Score: 0.9},
		{Document: New("c", "", nil), Score: 0.5},
	}
	SortByScore(matches)

	want := []string{"b", "c", "a"}
	for i, id := range want {
		if matches[i].Document.ID() != id {
			t.Errorf("position %d: got %q, want %q", i, matches[i].Document.ID(), id)
		}
	}
}
