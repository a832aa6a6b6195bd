package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/viewguard/viewguard/internal/engine"
)

// YouTube Data API v3 client. Thin I/O: one HTTP request per method, no
// retries — throttling and quota signals are surfaced as sentinel errors
// for the gatherer to handle through the governor.

const (
	ytDataAPIBase = "https://www.googleapis.com/youtube/v3"
	userAgentBot  = "ViewGuard/1.0"
)

// YouTubeClient implements engine.YouTubeAPI against the real Data API.
type YouTubeClient struct {
	apiKey string
	hc     *http.Client
	base   string // overrides ytDataAPIBase in tests
}

// NewYouTubeClient builds a client with the given key and HTTP client.
func NewYouTubeClient(apiKey string, hc *http.Client) *YouTubeClient {
	return &YouTubeClient{apiKey: apiKey, hc: hc}
}

// get issues one API request and decodes the response into out.
// 403 quotaExceeded → engine.ErrQuotaExceeded; 429 → engine.ErrRateLimited.
func (c *YouTubeClient) get(ctx context.Context, resource string, params url.Values, out any) error {
	params.Set("key", c.apiKey)
	base := c.base
	if base == "" {
		base = ytDataAPIBase
	}
	apiURL := base + "/" + resource + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("youtube %s: build request: %w", resource, err)
	}
	req.Header.Set("User-Agent", userAgentBot)

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("youtube %s: %w", resource, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return fmt.Errorf("youtube %s: %w", resource, engine.ErrRateLimited)
	case http.StatusForbidden:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if strings.Contains(string(body), "quotaExceeded") {
			return fmt.Errorf("youtube %s: %w", resource, engine.ErrQuotaExceeded)
		}
		return fmt.Errorf("youtube %s: forbidden: %s", resource, string(body))
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("youtube %s: status %d: %s", resource, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("youtube %s: decode: %w", resource, err)
	}
	return nil
}

type ytSearchResp struct {
	Items []struct {
		ID struct {
			ChannelID string `json:"channelId"`
			VideoID   string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			ChannelID string `json:"channelId"`
		} `json:"snippet"`
	} `json:"items"`
}

// ResolveChannelID resolves a human channel name to its canonical id
// via the search endpoint. Empty id means no match.
func (c *YouTubeClient) ResolveChannelID(ctx context.Context, name string) (string, error) {
	params := url.Values{}
	params.Set("q", name)
	params.Set("type", "channel")
	params.Set("part", "snippet")
	params.Set("maxResults", "1")

	var resp ytSearchResp
	if err := c.get(ctx, "search", params, &resp); err != nil {
		return "", err
	}
	if len(resp.Items) == 0 {
		return "", nil
	}
	if id := resp.Items[0].Snippet.ChannelID; id != "" {
		return id, nil
	}
	return resp.Items[0].ID.ChannelID, nil
}

type ytChannelsResp struct {
	Items []struct {
		Status struct {
			MadeForKids bool `json:"madeForKids"`
		} `json:"status"`
		Snippet struct {
			Description string `json:"description"`
			PublishedAt string `json:"publishedAt"`
		} `json:"snippet"`
		TopicDetails struct {
			TopicCategories []string `json:"topicCategories"`
		} `json:"topicDetails"`
		Statistics struct {
			VideoCount      string `json:"videoCount"`
			SubscriberCount string `json:"subscriberCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// ChannelStatus fetches the official status flags for a channel.
func (c *YouTubeClient) ChannelStatus(ctx context.Context, channelID string) (engine.ChannelStatus, error) {
	params := url.Values{}
	params.Set("id", channelID)
	params.Set("part", "status")

	var resp ytChannelsResp
	if err := c.get(ctx, "channels", params, &resp); err != nil {
		return engine.ChannelStatus{}, err
	}
	if len(resp.Items) == 0 {
		return engine.ChannelStatus{}, nil
	}
	return engine.ChannelStatus{MadeForKids: resp.Items[0].Status.MadeForKids}, nil
}

// ChannelMeta fetches the free-text metadata used for maturity scoring.
func (c *YouTubeClient) ChannelMeta(ctx context.Context, channelID string) (engine.ChannelMeta, error) {
	params := url.Values{}
	params.Set("id", channelID)
	params.Set("part", "snippet,topicDetails,statistics")

	var resp ytChannelsResp
	if err := c.get(ctx, "channels", params, &resp); err != nil {
		return engine.ChannelMeta{}, err
	}
	if len(resp.Items) == 0 {
		return engine.ChannelMeta{}, nil
	}
	item := resp.Items[0]
	meta := engine.ChannelMeta{
		Description:     item.Snippet.Description,
		Topics:          item.TopicDetails.TopicCategories,
		VideoCount:      item.Statistics.VideoCount,
		SubscriberCount: item.Statistics.SubscriberCount,
	}
	if len(item.Snippet.PublishedAt) >= 4 {
		meta.CreatedYear = item.Snippet.PublishedAt[:4]
	}
	return meta, nil
}

// RecentVideos lists up to limit recent video ids, newest first.
func (c *YouTubeClient) RecentVideos(ctx context.Context, channelID string, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("channelId", channelID)
	params.Set("order", "date")
	params.Set("type", "video")
	params.Set("part", "id")
	params.Set("maxResults", strconv.Itoa(limit))

	var resp ytSearchResp
	if err := c.get(ctx, "search", params, &resp); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	return ids, nil
}

type ytVideosResp struct {
	Items []struct {
		ContentDetails struct {
			ContentRating map[string]any `json:"contentRating"`
		} `json:"contentDetails"`
		Snippet struct {
			Title       string   `json:"title"`
			Description string   `json:"description"`
			Tags        []string `json:"tags"`
		} `json:"snippet"`
	} `json:"items"`
}

// VideoRating fetches a video's content-rating object. Only string
// values survive: regional boards publish plain strings, and the
// occasional reason-code array carries no numeric minimum.
func (c *YouTubeClient) VideoRating(ctx context.Context, videoID string) (map[string]string, error) {
	params := url.Values{}
	params.Set("id", videoID)
	params.Set("part", "contentDetails")

	var resp ytVideosResp
	if err := c.get(ctx, "videos", params, &resp); err != nil {
		return nil, err
	}
	rating := map[string]string{}
	if len(resp.Items) == 0 {
		return rating, nil
	}
	for k, v := range resp.Items[0].ContentDetails.ContentRating {
		if s, ok := v.(string); ok {
			rating[k] = s
		}
	}
	return rating, nil
}

// VideoSnippet fetches a video's title, description, and tags.
func (c *YouTubeClient) VideoSnippet(ctx context.Context, videoID string) (engine.VideoSnippet, error) {
	params := url.Values{}
	params.Set("id", videoID)
	params.Set("part", "snippet")

	var resp ytVideosResp
	if err := c.get(ctx, "videos", params, &resp); err != nil {
		return engine.VideoSnippet{}, err
	}
	if len(resp.Items) == 0 {
		return engine.VideoSnippet{}, nil
	}
	s := resp.Items[0].Snippet
	return engine.VideoSnippet{Title: s.Title, Description: s.Description, Tags: s.Tags}, nil
}
