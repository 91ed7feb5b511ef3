package chunk

import "testing"

func TestPreview(t *testing.T) {
	tests := []struct {
		name string
		text string
		n    int
		want string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"cut", "hello world", 5, "hello..."},
		{"runes", "привет мир", 6, "привет..."},
		{"disabled", "hello", 0, "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Preview(tt.text, tt.n); got != tt.want {
				t.Errorf("Preview(%q, %d) = %q, want %q", tt.text, tt.n, got, tt.want)
			}
		})
	}
}

func TestChunkLen(t *testing.T) {
	c := Chunk{Start: 800, End: 1800}
	if c.Len() != 1000 {
		t.Errorf("Len() = %d", c.Len())
	}
}
