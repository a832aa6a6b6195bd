package engine

import "fmt"

// Adjudication — a strictly ordered precedence table. The first matching
// rule wins and short-circuits everything below it. The order encodes a
// trust hierarchy: official sources outrank third-party certification,
// which outranks heuristic text signals, which outrank the default.
// Reordering changes outcomes for channels with conflicting signals, so
// the table must be preserved exactly.

// Rule labels, one per precedence slot.
const (
	LabelOfficialKids  = "official-kids-flag"
	LabelExpertReview  = "expert-review"
	LabelCertification = "certification"
	LabelRestricted    = "official-restricted"
	LabelRegionalBoard = "regional-board"
	LabelEducational   = "educational"
	LabelExplicit      = "explicit"
	LabelDrama         = "drama"
	LabelLifestyle     = "lifestyle"
	LabelMatureThemes  = "mature-themes"
	LabelMatureGaming  = "mature-gaming"
	LabelComposite     = "composite-score"
	LabelKeywordFreq   = "keyword-frequency"
	LabelProfanity     = "profanity"
	LabelGamingCount   = "gaming-count"
	LabelDefault       = "default"
)

// rule evaluates one precedence slot against the evidence bag.
// ok=false means the rule does not apply and evaluation continues.
type rule struct {
	label string
	eval  func(p *Policy, bag EvidenceBag) (age int, note string, ok bool)
}

var rules = []rule{
	{LabelOfficialKids, func(p *Policy, bag EvidenceBag) (int, string, bool) {
		if bag.Bool(SigMadeForKids) {
			return p.Ages.Kids, "channel flagged Made for Kids by the official API", true
		}
		return 0, "", false
	}},
	{LabelExpertReview, func(p *Policy, bag EvidenceBag) (int, string, bool) {
		if age, ok := bag.Int(SigCommonSenseAge); ok && age > 0 {
			return age, fmt.Sprintf("expert review recommends age %d", age), true
		}
		return 0, "", false
	}},
	{LabelCertification, func(p *Policy, bag EvidenceBag) (int, string, bool) {
		if bag.Bool(SigKidsafe) {
			return p.Ages.Certification, "listed on the kidSAFE certified-products list", true
		}
		return 0, "", false
	}},
	{LabelRestricted, func(p *Policy, bag EvidenceBag) (int, string, bool) {
		if bag.Bool(SigAgeRestricted) {
			return p.Ages.Restricted, "sampled uploads carry the official age-restricted flag", true
		}
		return 0, "", false
	}},
	{LabelRegionalBoard, func(p *Policy, bag EvidenceBag) (int, string, bool) {
		if age, ok := bag.Int(SigBoardMaxAge); ok && age > 0 {
			return age, fmt.Sprintf("max regional board rating %d across recent uploads", age), true
		}
		return 0, "", false
	}},
	{LabelEducational, func(p *Policy, bag EvidenceBag) (int, string, bool) {
		if bag.Bool(SigEducational) {
			return p.Ages.Educational, "educational/instructional content detected", true
		}
		return 0, "", false
	}},
	{LabelExplicit, func(p *Policy, bag EvidenceBag) (int, string, bool) {
		if bag.Bool(SigExplicitAdult) {
			return p.Ages.Explicit, "explicit adult content detected", true
		}
		return 0, "", false
	}},
	{LabelDrama, func(p *Policy, bag EvidenceBag) (int, string, bool) {
		if bag.Bool(SigDramaHeavy) {
			return p.Ages.Drama, "heavy drama/controversy content detected", true
		}
		return 0, "", false
	}},
	{LabelLifestyle, func(p *Policy, bag EvidenceBag) (int, string, bool) {
		if bag.Bool(SigAdultLifestyle) {
			return p.Ages.Lifestyle, "adult lifestyle content detected", true
		}
		return 0, "", false
	}},
	{LabelMatureThemes, func(p *Policy, bag EvidenceBag) (int, string, bool) {
		if bag.Bool(SigMatureThemes) {
			return p.Ages.MatureThemes, "mature themes (violence, mental health) detected", true
		}
		return 0, "", false
	}},
	{LabelMatureGaming, func(p *Policy, bag EvidenceBag) (int, string, bool) {
		if bag.Bool(SigMatureGaming) {
			return p.Ages.MatureGaming, "mature gaming focus detected", true
		}
		return 0, "", false
	}},
	{LabelComposite, func(p *Policy, bag EvidenceBag) (int, string, bool) {
		if score, ok := bag.Float(SigAdultScore); ok && score >= p.Thresholds.CompositeScore {
			return p.Ages.Composite, fmt.Sprintf("high composite adult content score: %.1f", score), true
		}
		return 0, "", false
	}},
	{LabelKeywordFreq, func(p *Policy, bag EvidenceBag) (int, string, bool) {
		freq, _ := bag.Int(SigAdultKWFreq)
		if bag.Bool(SigAdultKeywords) && freq >= p.Thresholds.AdultKWFreq {
			return p.Ages.AdultKeywords, fmt.Sprintf("%d adult-oriented keyword hits", freq), true
		}
		return 0, "", false
	}},
	{LabelProfanity, func(p *Policy, bag EvidenceBag) (int, string, bool) {
		freq, _ := bag.Int(SigProfanityFreq)
		if bag.Bool(SigMatureLanguage) && freq >= p.Thresholds.ProfanityFreq {
			return p.Ages.Profanity, fmt.Sprintf("frequent mature language: %d hits", freq), true
		}
		return 0, "", false
	}},
	{LabelGamingCount, func(p *Policy, bag EvidenceBag) (int, string, bool) {
		count, _ := bag.Int(SigMatureGameCount)
		if bag.Bool(SigGamingMature) && count >= p.Thresholds.GamingCount {
			return p.Ages.GamingCount, fmt.Sprintf("%d mature-rated game references", count), true
		}
		return 0, "", false
	}},
}

// Decide reduces an evidence bag to a single decision. Total and
// deterministic: it always returns something, never fails, and a fixed
// bag always yields the same answer. Timestamp is left zero for the
// driver to stamp.
func Decide(p *Policy, bag EvidenceBag) Decision {
	for _, r := range rules {
		if age, note, ok := r.eval(p, bag); ok {
			return Decision{MinimumAge: age, Source: r.label, Note: TruncateRunes(note, MaxNoteChars, "…")}
		}
	}
	return Decision{
		MinimumAge: p.Ages.Default,
		Source:     LabelDefault,
		Note:       "no decisive evidence, platform minimum age applies",
	}
}
