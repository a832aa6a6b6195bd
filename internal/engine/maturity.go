package engine

import "strings"

// Maturity scoring — deterministic keyword-frequency analysis over the
// sampled free text. Pattern matching, not semantic understanding:
// false positives and negatives are expected, and adjudication keeps a
// deterministic fallback below these signals.

// Weights applied per text unit. The channel description signals intent
// more strongly than any single video, explicit hits most of all.
const (
	descriptionWeight         = 2
	descriptionExplicitWeight = 3
	videoWeight               = 1
)

// countHits counts keywords contained in text, once per keyword.
func countHits(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			n++
		}
	}
	return n
}

// floorOrFrac returns the sample-scaled trigger threshold:
// max(floor, frac × samples). Robust to small and large samples alike.
func floorOrFrac(floor int, frac float64, samples int) float64 {
	scaled := frac * float64(samples)
	if float64(floor) > scaled {
		return float64(floor)
	}
	return scaled
}

// ScoreMaturity analyzes the sampled videos and channel description for
// maturity indicators. Pure function of its inputs: no I/O, no clock,
// no randomness.
func ScoreMaturity(p *Policy, videos []VideoSnippet, channelDescription string) EvidenceBag {
	kw := p.Keywords

	var educational, explicit, drama, gaming, profanity, lifestyle, themes int

	descText := strings.ToLower(channelDescription)
	educational += countHits(descText, kw.Educational) * descriptionWeight
	explicit += countHits(descText, kw.Explicit) * descriptionExplicitWeight
	drama += countHits(descText, kw.Drama) * descriptionWeight
	lifestyle += countHits(descText, kw.AdultLifestyle) * descriptionWeight
	themes += countHits(descText, kw.MatureThemes) * descriptionWeight

	for _, v := range videos {
		text := strings.ToLower(v.Title) + " " +
			strings.ToLower(TruncateRunes(v.Description, MaxScoredDescriptionChars, "")) + " " +
			strings.ToLower(strings.Join(v.Tags, " "))

		educational += countHits(text, kw.Educational) * videoWeight
		explicit += countHits(text, kw.Explicit) * videoWeight
		drama += countHits(text, kw.Drama) * videoWeight
		gaming += countHits(text, kw.MatureGaming) * videoWeight
		profanity += countHits(text, kw.Profanity) * videoWeight
		lifestyle += countHits(text, kw.AdultLifestyle) * videoWeight
		themes += countHits(text, kw.MatureThemes) * videoWeight
	}

	samples := len(videos)
	if samples == 0 {
		samples = 1
	}

	adultScore := float64(explicit) + float64(lifestyle)*0.5 + float64(themes)*0.7

	t := p.Thresholds
	return EvidenceBag{
		SigEducational:    float64(educational) >= floorOrFrac(t.EducationalFloor, t.EducationalFrac, samples),
		SigExplicitAdult:  explicit >= t.ExplicitMin || adultScore >= t.ExplicitScoreMin,
		SigDramaHeavy:     float64(drama) >= floorOrFrac(t.DramaFloor, t.DramaFrac, samples),
		SigMatureGaming:   float64(gaming) >= floorOrFrac(t.GamingFloor, t.GamingFrac, samples),
		SigAdultLifestyle: float64(lifestyle) >= floorOrFrac(t.LifestyleFloor, t.LifestyleFrac, samples),
		SigMatureThemes:   float64(themes) >= floorOrFrac(t.ThemesFloor, t.ThemesFrac, samples),

		SigMatureLanguage: profanity >= 1,
		SigAdultKeywords:  explicit >= t.ExplicitMin || adultScore >= t.ExplicitScoreMin,
		SigGamingMature:   gaming >= 1,

		SigProfanityFreq:   profanity,
		SigAdultKWFreq:     explicit,
		SigMatureGameCount: gaming,
		SigEducationalScr:  educational,
		SigDramaScore:      drama,
		SigLifestyleScore:  lifestyle,
		SigThemesScore:     themes,
		SigAdultScore:      adultScore,
	}
}
