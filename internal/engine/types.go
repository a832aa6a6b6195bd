package engine

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors surfaced by the metered API client. The gatherer maps
// them onto governor state: ErrQuotaExceeded trips the breaker,
// ErrRateLimited earns one backoff-and-retry.
var (
	ErrQuotaExceeded = errors.New("remote quota exceeded")
	ErrRateLimited   = errors.New("remote rate limited")
)

// ChannelStatus is the official status record for a resolved channel.
type ChannelStatus struct {
	MadeForKids bool `json:"made_for_kids"`
}

// ChannelMeta is the free-text metadata used for maturity scoring.
type ChannelMeta struct {
	Description     string   `json:"description"`
	Topics          []string `json:"topics"`
	CreatedYear     string   `json:"created_year"`
	VideoCount      string   `json:"video_count"`
	SubscriberCount string   `json:"subscriber_count"`
}

// VideoSnippet is the per-video free text sampled for maturity scoring.
type VideoSnippet struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// YouTubeAPI is the metered remote API consumed by the gatherer.
// Implementations return ErrQuotaExceeded / ErrRateLimited for the
// corresponding remote conditions; any other error is generic.
type YouTubeAPI interface {
	ResolveChannelID(ctx context.Context, name string) (string, error)
	ChannelStatus(ctx context.Context, channelID string) (ChannelStatus, error)
	ChannelMeta(ctx context.Context, channelID string) (ChannelMeta, error)
	RecentVideos(ctx context.Context, channelID string, limit int) ([]string, error)
	VideoRating(ctx context.Context, videoID string) (map[string]string, error)
	VideoSnippet(ctx context.Context, videoID string) (VideoSnippet, error)
}

// AgeLookup is a best-effort third-party age recommendation keyed by
// channel name. ok=false means no match or lookup failure.
type AgeLookup func(ctx context.Context, name string) (age int, ok bool)

// ListingLookup is a best-effort third-party certification-listing
// membership check. false on failure.
type ListingLookup func(ctx context.Context, name string) bool

// Decision is the single adjudicated outcome for one channel.
// Timestamp is stamped by the driver at persist time; Decide itself is
// a pure function of the evidence bag.
type Decision struct {
	MinimumAge int       `json:"minimum_age"`
	Source     string    `json:"source"`
	Note       string    `json:"note"`
	Timestamp  time.Time `json:"timestamp"`
}
