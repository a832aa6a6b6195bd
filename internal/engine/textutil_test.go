package engine

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateRunes(t *testing.T) {
	t.Run("short strings pass through", func(t *testing.T) {
		if got := TruncateRunes("short", 10, "…"); got != "short" {
			t.Errorf("got %q, want unchanged", got)
		}
	})

	t.Run("multibyte cut lands on a rune boundary", func(t *testing.T) {
		s := strings.Repeat("знач", 3) // 12 runes, 24 bytes
		got := TruncateRunes(s, 6, "")
		if got != "значзн" {
			t.Errorf("got %q, want first 6 runes", got)
		}
		if !utf8.ValidString(got) {
			t.Error("truncation split a rune")
		}
	})

	t.Run("long notes are capped with the suffix", func(t *testing.T) {
		s := strings.Repeat("a", MaxNoteChars+100)
		got := TruncateRunes(s, MaxNoteChars, "…")
		if got == s {
			t.Fatal("expected truncation")
		}
		if !strings.HasSuffix(got, "…") {
			t.Errorf("missing suffix on truncated string: %q", got)
		}
		if n := utf8.RuneCountInString(got); n > MaxNoteChars+1 {
			t.Errorf("result is %d runes, cap is %d", n, MaxNoteChars)
		}
	})
}

func TestNormName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  Toddler TV ", "toddler tv"},
		{"ALL CAPS", "all caps"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormName(tc.in); got != tc.want {
			t.Errorf("NormName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
