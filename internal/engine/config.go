package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	YouTubeAPIKey string

	// Quota budgets for the metered API. Conservative defaults below
	// the official limits leave headroom for other consumers of the key.
	DailyCallLimit     int
	PerMinuteCallLimit int
	BurstDelay         time.Duration

	CacheDir string
	CacheTTL time.Duration

	AuditDBPath string

	// Sample sizes for evidence gathering.
	RatingSampleSize  int // recent videos checked for board ratings
	SnippetSampleSize int // recent videos sampled for maturity scoring

	PolitenessDelay time.Duration // pause between entities
	FetchTimeout    time.Duration

	EntityColumn string // input CSV column holding channel names

	HTTPClient *http.Client
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		DailyCallLimit:     9000, // YouTube allows 10,000/day
		PerMinuteCallLimit: 2500,
		BurstDelay:         100 * time.Millisecond,
		CacheDir:           "cache/youtube_api",
		CacheTTL:           24 * time.Hour,
		AuditDBPath:        "viewguard.db",
		RatingSampleSize:   15,
		SnippetSampleSize:  10,
		PolitenessDelay:    200 * time.Millisecond,
		FetchTimeout:       15 * time.Second,
		EntityColumn:       "YouTube_Channel",
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
}
