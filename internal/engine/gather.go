package engine

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
)

// Gatherer collects the evidence bag for one channel. Every metered
// sub-call is gated cache-first, then through the governor; a cache hit
// consumes no quota. Any single remote failure degrades that field to
// absent and gathering continues — partial evidence is valid input to
// adjudication.
type Gatherer struct {
	API         YouTubeAPI
	CommonSense AgeLookup
	Kidsafe     ListingLookup
	Governor    *Governor
	Cache       *Cache

	RatingSampleSize  int
	SnippetSampleSize int
}

// NewGatherer wires a gatherer from the engine config and its services.
func NewGatherer(cfg Config, api YouTubeAPI, csm AgeLookup, kidsafe ListingLookup, gov *Governor, cache *Cache) *Gatherer {
	return &Gatherer{
		API:               api,
		CommonSense:       csm,
		Kidsafe:           kidsafe,
		Governor:          gov,
		Cache:             cache,
		RatingSampleSize:  cfg.RatingSampleSize,
		SnippetSampleSize: cfg.SnippetSampleSize,
	}
}

// gated runs one metered sub-call: cache lookup first, then governor
// admission, then fetch with exactly one backoff-and-retry on a
// rate-limit signal. A quota-exceeded signal trips the breaker.
func gated[T any](ctx context.Context, g *Gatherer, endpoint string, params map[string]string, fetch func(context.Context) (T, error)) (T, bool) {
	var out T

	if payload, ok := g.Cache.Get(endpoint, params); ok {
		if json.Unmarshal(payload, &out) == nil {
			return out, true
		}
		// corrupt payload: fall through to a fresh fetch
	}

	if !g.Governor.Admit() {
		return out, false
	}

	result, err := fetch(ctx)
	if errors.Is(err, ErrRateLimited) {
		g.Governor.Backoff()
		if !g.Governor.Admit() {
			return out, false
		}
		result, err = fetch(ctx)
	}
	if err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			g.Governor.Trip()
		}
		IncrGatherFailures()
		slog.Debug("gather: sub-call failed", slog.String("endpoint", endpoint), slog.Any("error", err))
		return out, false
	}

	if payload, merr := json.Marshal(result); merr == nil {
		g.Cache.Put(endpoint, params, payload)
	}
	return result, true
}

// Gather returns the evidence for one channel name: the raw signal bag
// plus the free text the maturity scorer needs. Never fails — the
// worst case is an empty bag.
func (g *Gatherer) Gather(ctx context.Context, name string) Evidence {
	ev := Evidence{Bag: EvidenceBag{}}

	id, _ := gated(ctx, g, "search", map[string]string{
		"q": name, "type": "channel", "part": "snippet", "maxResults": "1",
	}, func(ctx context.Context) (string, error) {
		IncrResolveRequests()
		return g.API.ResolveChannelID(ctx, name)
	})

	if id != "" {
		g.gatherOfficial(ctx, id, &ev)
	}

	if g.CommonSense != nil {
		if age, ok := g.CommonSense(ctx, name); ok {
			ev.Bag[SigCommonSenseAge] = age
		}
	}
	if g.Kidsafe != nil {
		ev.Bag[SigKidsafe] = g.Kidsafe(ctx, name)
	}

	if id != "" {
		g.gatherText(ctx, id, &ev)
	}
	return ev
}

// gatherOfficial collects the official-source signals for a resolved id:
// the Made-for-Kids flag, the age-restricted flag across recent uploads,
// and the maximum numeric regional board rating found in any of them.
func (g *Gatherer) gatherOfficial(ctx context.Context, id string, ev *Evidence) {
	if status, ok := gated(ctx, g, "channels_status", map[string]string{
		"id": id, "part": "status",
	}, func(ctx context.Context) (ChannelStatus, error) {
		IncrStatusRequests()
		return g.API.ChannelStatus(ctx, id)
	}); ok {
		ev.Bag[SigMadeForKids] = status.MadeForKids
	}

	// Resolved channels always carry the flag, so the evidence records
	// "checked and negative" even when upload sampling fails.
	ev.Bag[SigAgeRestricted] = false

	vids, ok := g.recentVideos(ctx, id, g.RatingSampleSize)
	if !ok {
		return
	}

	restricted := false
	boardMax := 0
	for _, vid := range vids {
		rating, ok := gated(ctx, g, "videos_rating", map[string]string{
			"id": vid, "part": "contentDetails",
		}, func(ctx context.Context) (map[string]string, error) {
			IncrRatingRequests()
			return g.API.VideoRating(ctx, vid)
		})
		if !ok {
			continue
		}
		if rating["ytRating"] == "ytAgeRestricted" {
			restricted = true
		}
		// Regional boards publish plain numeric minimums ("7", "16").
		for _, val := range rating {
			if n, err := strconv.Atoi(val); err == nil && n > boardMax {
				boardMax = n
			}
		}
	}
	ev.Bag[SigAgeRestricted] = restricted
	if boardMax > 0 {
		ev.Bag[SigBoardMaxAge] = boardMax
	}
}

// gatherText collects the free text for maturity scoring: the channel
// description plus a sample of recent videos' title/description/tags.
func (g *Gatherer) gatherText(ctx context.Context, id string, ev *Evidence) {
	if meta, ok := gated(ctx, g, "channels_meta", map[string]string{
		"id": id, "part": "snippet,topicDetails,statistics",
	}, func(ctx context.Context) (ChannelMeta, error) {
		IncrMetaRequests()
		return g.API.ChannelMeta(ctx, id)
	}); ok {
		ev.Description = meta.Description
	}

	vids, ok := g.recentVideos(ctx, id, g.SnippetSampleSize)
	if !ok {
		return
	}
	for _, vid := range vids {
		if g.Governor.Tripped() {
			break
		}
		if snip, ok := gated(ctx, g, "videos_snippet", map[string]string{
			"id": vid, "part": "snippet",
		}, func(ctx context.Context) (VideoSnippet, error) {
			IncrSnippetRequests()
			return g.API.VideoSnippet(ctx, vid)
		}); ok {
			ev.Videos = append(ev.Videos, snip)
		}
	}
}

func (g *Gatherer) recentVideos(ctx context.Context, id string, limit int) ([]string, bool) {
	return gated(ctx, g, "search_videos", map[string]string{
		"channelId": id, "order": "date", "type": "video",
		"part": "id", "maxResults": strconv.Itoa(limit),
	}, func(ctx context.Context) ([]string, error) {
		IncrVideoListReqs()
		return g.API.RecentVideos(ctx, id, limit)
	})
}
