package util

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"disabled", "a long line of notes", 0, "a long line of notes"},
		{"fits", "short", 10, "short"},
		{"exact", "12345", 5, "12345"},
		{"cut", "a long line of notes", 10, "a long ..."},
		{"runes", "Café crème brûlée", 8, "Café ..."},
		{"tiny", "abcdef", 2, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.width); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
		})
	}
}
