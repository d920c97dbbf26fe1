package sanitizer

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "already clean",
			input: "Ada Lovelace",
			want:  "Ada Lovelace",
		},
		{
			name:  "leading and trailing spaces",
			input: "  Ada Lovelace  ",
			want:  "Ada Lovelace",
		},
		{
			name:  "inner whitespace collapsed",
			input: "Ada \t\n  Lovelace",
			want:  "Ada Lovelace",
		},
		{
			name:  "unicode letters kept",
			input: " José   Saramago ",
			want:  "José Saramago",
		},
		{
			name:  "control characters dropped",
			input: "Ada\x00 Lovelace",
			want:  "Ada Lovelace",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeName(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := NormalizeName(got); again != got {
				t.Errorf("NormalizeName is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Guest@Example.COM "); got != "guest@example.com" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}

func TestNormalizeReferenceCode(t *testing.T) {
	if got := NormalizeReferenceCode(" rsv-1a2b3c4d\n"); got != "RSV-1A2B3C4D" {
		t.Errorf("NormalizeReferenceCode() = %q", got)
	}
}

func TestPipeline_AppliesInOrder(t *testing.T) {
	p := Pipeline{
		func(s string) string { return s + "a" },
		func(s string) string { return s + "b" },
	}
	if got := p.Apply("x"); got != "xab" {
		t.Errorf("Apply() = %q, want xab", got)
	}
}
