package engine

import (
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
)

// Text bounds applied before maturity scoring. These affect scoring
// outcomes, so they are named and must stay stable for reproducible runs.
const (
	MaxScoredDescriptionChars = 500 // per-video description slice fed to the scorer
	MaxNoteChars              = 200 // rationale strings in decisions
)

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Rune-based so multibyte channel names
// and descriptions are never cut mid-character.
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}

// NormName lowercases and trims a channel name for case-insensitive
// matching against published listings.
func NormName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
