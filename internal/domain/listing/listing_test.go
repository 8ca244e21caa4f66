package listing

import "testing"

func TestOptional(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"N/A", ""},
		{" n/a ", ""},
		{" 555-0100 ", "555-0100"},
	}
	for _, tt := range tests {
		if got := Optional(tt.in); got != tt.want {
			t.Errorf("Optional(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIDs(t *testing.T) {
	if BusinessID(3) != "b-3" {
		t.Errorf("BusinessID(3) = %q", BusinessID(3))
	}
	if EventID(0) != "e-0" {
		t.Errorf("EventID(0) = %q", EventID(0))
	}
}
