package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy externalizes the scoring and adjudication data: keyword sets,
// trigger thresholds, and the ages assigned per rule. It is data, not
// algorithm — edit the YAML, not the scorer.
type Policy struct {
	Keywords   KeywordSets `yaml:"keywords"`
	Thresholds Thresholds  `yaml:"thresholds"`
	Ages       Ages        `yaml:"ages"`
}

// KeywordSets holds the seven maturity categories.
type KeywordSets struct {
	Educational    []string `yaml:"educational"`
	Explicit       []string `yaml:"explicit"`
	Drama          []string `yaml:"drama"`
	AdultLifestyle []string `yaml:"adult_lifestyle"`
	MatureThemes   []string `yaml:"mature_themes"`
	MatureGaming   []string `yaml:"mature_gaming"`
	Profanity      []string `yaml:"profanity"`
}

// Thresholds control when category counts flip flags and when the
// low-precedence count rules fire. Floor/Frac pairs trigger when a
// count reaches max(Floor, Frac × sample size).
type Thresholds struct {
	EducationalFloor int     `yaml:"educational_floor"`
	EducationalFrac  float64 `yaml:"educational_frac"`
	DramaFloor       int     `yaml:"drama_floor"`
	DramaFrac        float64 `yaml:"drama_frac"`
	GamingFloor      int     `yaml:"gaming_floor"`
	GamingFrac       float64 `yaml:"gaming_frac"`
	LifestyleFloor   int     `yaml:"lifestyle_floor"`
	LifestyleFrac    float64 `yaml:"lifestyle_frac"`
	ThemesFloor      int     `yaml:"themes_floor"`
	ThemesFrac       float64 `yaml:"themes_frac"`

	// is_explicit_adult_content: explicit count >= ExplicitMin OR
	// composite score >= ExplicitScoreMin.
	ExplicitMin      int     `yaml:"explicit_min"`
	ExplicitScoreMin float64 `yaml:"explicit_score_min"`

	// Low-precedence count rules.
	CompositeScore float64 `yaml:"composite_score"`
	AdultKWFreq    int     `yaml:"adult_keyword_freq"`
	ProfanityFreq  int     `yaml:"profanity_freq"`
	GamingCount    int     `yaml:"gaming_count"`
}

// Ages assigned by each adjudication rule.
type Ages struct {
	Kids          int `yaml:"kids"`
	Certification int `yaml:"certification"`
	Restricted    int `yaml:"restricted"`
	Educational   int `yaml:"educational"`
	Explicit      int `yaml:"explicit"`
	Drama         int `yaml:"drama"`
	Lifestyle     int `yaml:"lifestyle"`
	MatureThemes  int `yaml:"mature_themes"`
	MatureGaming  int `yaml:"mature_gaming"`
	Composite     int `yaml:"composite"`
	AdultKeywords int `yaml:"adult_keywords"`
	Profanity     int `yaml:"profanity"`
	GamingCount   int `yaml:"gaming_count"`
	Default       int `yaml:"default"`
}

// DefaultPolicy returns the reference policy. Thresholds and ages match
// the historical adjudication behavior; changing them silently changes
// outcomes for channels with conflicting signals.
func DefaultPolicy() *Policy {
	return &Policy{
		Keywords: KeywordSets{
			Educational: []string{
				"tutorial", "learn", "education", "lesson", "course", "study", "school", "university",
				"science", "history", "math", "physics", "chemistry", "biology", "geography",
				"recipe", "cooking", "how to", "diy", "instructions", "guide", "explained",
				"documentary", "facts", "research", "analysis", "academic", "scholarly",
			},
			Explicit: []string{
				"porn", "sex", "nude", "naked", "explicit", "nsfw", "adult only", "18+",
				"onlyfans", "escort", "prostitute", "stripper", "cam girl", "xxx", "sexy",
				"bikini", "underwear", "lingerie", "fetish", "erotic", "seduction",
			},
			Drama: []string{
				"drama", "exposed", "controversy", "scandal", "beef", "calling out", "destroyed",
				"roasted", "cancelled", "toxic", "problematic", "allegations", "lawsuit",
				"predator", "grooming", "harassment", "abuse", "assault", "criminal", "arrest",
				"court", "police", "investigation", "victim", "stalking", "threatening",
			},
			AdultLifestyle: []string{
				"drunk", "drinking", "alcohol", "party", "club", "bar", "wasted", "hangover",
				"smoking", "vape", "weed", "drugs", "high", "stoned", "pills", "cocaine",
				"gambling", "casino", "bet", "poker", "strip club", "hookup", "dating app",
				"tinder", "bumble", "relationship drama", "cheating", "affair", "breakup",
			},
			MatureThemes: []string{
				"depression", "suicide", "self harm", "cutting", "mental health crisis",
				"eating disorder", "anorexia", "bulimia", "addiction", "rehab", "therapy",
				"violence", "fight", "beating", "blood", "gore", "murder", "death", "kill",
			},
			MatureGaming: []string{
				"call of duty", "grand theft auto", "gta", "mortal kombat", "resident evil",
				"doom", "battlefield", "dead space", "outlast", "horror game", "rated m",
				"mature rating", "violent game", "shooter", "fps",
			},
			Profanity: []string{
				"fuck", "shit", "damn", "hell", "ass", "bitch", "bastard", "piss", "crap",
			},
		},
		Thresholds: Thresholds{
			EducationalFloor: 3,
			EducationalFrac:  0.4,
			DramaFloor:       2,
			DramaFrac:        0.3,
			GamingFloor:      2,
			GamingFrac:       0.3,
			LifestyleFloor:   2,
			LifestyleFrac:    0.2,
			ThemesFloor:      2,
			ThemesFrac:       0.2,
			ExplicitMin:      1,
			ExplicitScoreMin: 2,
			CompositeScore:   3,
			AdultKWFreq:      2,
			ProfanityFreq:    3,
			GamingCount:      3,
		},
		Ages: Ages{
			Kids:          3,
			Certification: 4,
			Restricted:    18,
			Educational:   13,
			Explicit:      18,
			Drama:         18,
			Lifestyle:     18,
			MatureThemes:  17,
			MatureGaming:  17,
			Composite:     18,
			AdultKeywords: 18,
			Profanity:     17,
			GamingCount:   17,
			Default:       13, // YouTube platform minimum
		},
	}
}

// LoadPolicy reads a YAML policy file over the defaults, so a partial
// file only overrides what it names.
func LoadPolicy(path string) (*Policy, error) {
	p := DefaultPolicy()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("policy: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("policy: parse %s: %w", path, err)
	}
	return p, nil
}
