package service

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantValid bool
		wantNorm  string
	}{
		{"simple", "octocat", true, "octocat"},
		{"single char", "a", true, "a"},
		{"digits", "1234", true, "1234"},
		{"internal hyphen", "mona-lisa", true, "mona-lisa"},
		{"several single hyphens", "a-b-c-d", true, "a-b-c-d"},
		{"uppercase is lowercased", "OctoCat", true, "octocat"},
		{"max length", strings.Repeat("a", 39), true, strings.Repeat("a", 39)},
		{"max length with hyphens", strings.Repeat("ab-", 12) + "abc", true, strings.Repeat("ab-", 12) + "abc"},

		{"empty", "", false, ""},
		{"too long", strings.Repeat("a", 40), false, strings.Repeat("a", 40)},
		{"leading hyphen", "-octocat", false, "-octocat"},
		{"trailing hyphen", "octocat-", false, "octocat-"},
		{"double hyphen", "octo--cat", false, "octo--cat"},
		{"only hyphen", "-", false, "-"},
		{"punctuation", "!!!", false, "!!!"},
		{"underscore", "octo_cat", false, "octo_cat"},
		{"space", "octo cat", false, "octo cat"},
		{"surrounding whitespace", " octocat ", false, " octocat "},
		{"non-ascii letter", "ñandú", false, "ñandú"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.raw)
			if got.Valid != tt.wantValid {
				t.Errorf("Validate(%q).Valid = %v, want %v", tt.raw, got.Valid, tt.wantValid)
			}
			if got.Normalized != tt.wantNorm {
				t.Errorf("Validate(%q).Normalized = %q, want %q", tt.raw, got.Normalized, tt.wantNorm)
			}
		})
	}
}

// Every string of length 1-39 built from [a-z0-9] with isolated internal
// hyphens is accepted.
func TestValidate_GeneratedValidHandles(t *testing.T) {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

	for n := 1; n <= MaxHandleLength; n++ {
		var b strings.Builder
		for i := 0; i < n; i++ {
			// hyphen at every third position, never first or last
			if i%3 == 2 && i != n-1 {
				b.WriteByte('-')
				continue
			}
			b.WriteByte(alphabet[(i*7+n)%len(alphabet)])
		}
		handle := b.String()
		if !Validate(handle).Valid {
			t.Errorf("Validate(%q) = invalid, want valid", handle)
		}
	}
}

func TestValidate_Idempotent(t *testing.T) {
	inputs := []string{"", "octocat", "OctoCat", "a--b", strings.Repeat("z", 40), "mona-lisa"}

	for _, in := range inputs {
		first := Validate(in)
		second := Validate(in)
		if first != second {
			t.Errorf("Validate(%q) not stable: %+v then %+v", in, first, second)
		}
		if first.Valid && Validate(first.Normalized) != first {
			t.Errorf("re-validating normalized %q changed the result", first.Normalized)
		}
	}
}
