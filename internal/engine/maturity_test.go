package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreMaturityEmpty(t *testing.T) {
	p := DefaultPolicy()
	bag := ScoreMaturity(p, nil, "")

	assert.False(t, bag.Bool(SigEducational))
	assert.False(t, bag.Bool(SigExplicitAdult))
	assert.False(t, bag.Bool(SigDramaHeavy))
	assert.False(t, bag.Bool(SigMatureLanguage))

	score, _ := bag.Float(SigAdultScore)
	assert.Zero(t, score)
}

func TestScoreMaturityDescriptionWeight(t *testing.T) {
	p := DefaultPolicy()

	// One explicit keyword in the channel description carries triple
	// weight, enough for the composite score on its own.
	bag := ScoreMaturity(p, nil, "onlyfans promo channel")

	freq, _ := bag.Int(SigAdultKWFreq)
	assert.Equal(t, 3, freq, "description explicit hits weigh x3")
	assert.True(t, bag.Bool(SigExplicitAdult))

	score, _ := bag.Float(SigAdultScore)
	assert.InDelta(t, 3.0, score, 0.001)
}

func TestScoreMaturityEducational(t *testing.T) {
	p := DefaultPolicy()
	videos := []VideoSnippet{
		{Title: "physics tutorial: gravity explained"},
		{Title: "learn chemistry basics", Tags: []string{"science", "education"}},
	}
	bag := ScoreMaturity(p, videos, "")

	count, _ := bag.Int(SigEducationalScr)
	assert.GreaterOrEqual(t, count, 3)
	assert.True(t, bag.Bool(SigEducational))
}

func TestScoreMaturityProfanity(t *testing.T) {
	p := DefaultPolicy()
	videos := []VideoSnippet{{Title: "damn this shit is a fucking disaster"}}
	bag := ScoreMaturity(p, videos, "")

	assert.True(t, bag.Bool(SigMatureLanguage))
	freq, _ := bag.Int(SigProfanityFreq)
	assert.Equal(t, 3, freq)
}

func TestScoreMaturityThresholdScalesWithSample(t *testing.T) {
	p := DefaultPolicy()

	// Two drama hits flip the flag on a small sample but not on a
	// large one, where the fractional threshold dominates.
	small := []VideoSnippet{
		{Title: "the scandal continues"},
		{Title: "exposed at last"},
	}
	bag := ScoreMaturity(p, small, "")
	assert.True(t, bag.Bool(SigDramaHeavy))

	large := append([]VideoSnippet{}, small...)
	for i := 0; i < 10; i++ {
		large = append(large, VideoSnippet{Title: "minecraft build timelapse"})
	}
	bag = ScoreMaturity(p, large, "")
	assert.False(t, bag.Bool(SigDramaHeavy), "2 hits across 12 videos is below 0.3x sample")
}

func TestScoreMaturityMonotonic(t *testing.T) {
	p := DefaultPolicy()
	base := []VideoSnippet{{Title: "vlog from the party"}}

	before := ScoreMaturity(p, base, "")
	after := ScoreMaturity(p, append(base, VideoSnippet{Title: "drunk at the casino again", Tags: []string{"alcohol"}}), "")

	bLife, _ := before.Int(SigLifestyleScore)
	aLife, _ := after.Int(SigLifestyleScore)
	assert.GreaterOrEqual(t, aLife, bLife, "adding keyword occurrences must not decrease the count")

	bScore, _ := before.Float(SigAdultScore)
	aScore, _ := after.Float(SigAdultScore)
	assert.GreaterOrEqual(t, aScore, bScore, "composite score is monotonic in keyword hits")
}

func TestScoreMaturityDeterministic(t *testing.T) {
	p := DefaultPolicy()
	videos := []VideoSnippet{
		{Title: "GTA gameplay", Description: "shooter fps run", Tags: []string{"rated m"}},
	}
	a := ScoreMaturity(p, videos, "gaming channel")
	b := ScoreMaturity(p, videos, "gaming channel")
	assert.Equal(t, a, b)
}

func TestScoreMaturityDescriptionRuneWindow(t *testing.T) {
	p := DefaultPolicy()

	// Multibyte padding: 300 runes is 600 bytes, so a byte-based cut
	// would drop the keyword while the rune window keeps it.
	pad := strings.Repeat("я", 300)
	bag := ScoreMaturity(p, []VideoSnippet{{Description: pad + " onlyfans"}}, "")
	freq, _ := bag.Int(SigAdultKWFreq)
	assert.Equal(t, 1, freq, "keyword inside the scored window must count")

	far := strings.Repeat("я", MaxScoredDescriptionChars) + " onlyfans"
	bag = ScoreMaturity(p, []VideoSnippet{{Description: far}}, "")
	freq, _ = bag.Int(SigAdultKWFreq)
	assert.Equal(t, 0, freq, "keyword past the scored window must not count")
}
