package engine

import "encoding/json"

// Signal names carried in an EvidenceBag. The vocabulary is fixed:
// official flags, third-party flags, then maturity-analysis outputs.
const (
	SigMadeForKids   = "made_for_kids"
	SigAgeRestricted = "yt_agerestricted"
	SigBoardMaxAge   = "video_board_max_age"

	SigCommonSenseAge = "common_sense_age"
	SigKidsafe        = "kidsafe"

	SigEducational     = "is_educational_content"
	SigExplicitAdult   = "is_explicit_adult_content"
	SigDramaHeavy      = "is_drama_controversy_heavy"
	SigMatureGaming    = "is_mature_gaming_focused"
	SigAdultLifestyle  = "is_adult_personality_heavy"
	SigMatureThemes    = "is_mature_themes_heavy"
	SigMatureLanguage  = "mature_language_detected"
	SigAdultKeywords   = "adult_keywords_detected"
	SigGamingMature    = "gaming_mature_rating"
	SigProfanityFreq   = "profanity_frequency"
	SigAdultKWFreq     = "adult_keyword_frequency"
	SigMatureGameCount = "mature_game_count"
	SigEducationalScr  = "educational_score"
	SigDramaScore      = "drama_score"
	SigLifestyleScore  = "adult_personality_score"
	SigThemesScore     = "mature_themes_score"
	SigAdultScore      = "total_adult_content_score"
)

// EvidenceBag accumulates named signals about one channel. Append-only
// within an enrichment pass; adjudication sees the full picture.
type EvidenceBag map[string]any

// Bool returns a boolean signal; absent or mistyped reads as false.
func (b EvidenceBag) Bool(key string) bool {
	v, ok := b[key].(bool)
	return ok && v
}

// Int returns a numeric signal as an int. Tolerates float64 values so a
// bag survives a JSON round trip.
func (b EvidenceBag) Int(key string) (int, bool) {
	switch v := b[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}

// Float returns a numeric signal as a float64.
func (b EvidenceBag) Float(key string) (float64, bool) {
	switch v := b[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Merge copies every signal from other into b.
func (b EvidenceBag) Merge(other EvidenceBag) {
	for k, v := range other {
		b[k] = v
	}
}

// JSON serializes the bag for the audit trail. A bag always serializes;
// values are restricted to bools, numbers, and strings.
func (b EvidenceBag) JSON() []byte {
	data, err := json.Marshal(b)
	if err != nil {
		return []byte("{}")
	}
	return data
}

// Evidence is the gatherer's output: the raw signal bag plus the free
// text needed by the maturity scorer.
type Evidence struct {
	Bag         EvidenceBag
	Videos      []VideoSnippet
	Description string
}
