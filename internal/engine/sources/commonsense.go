package sources

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/viewguard/viewguard/internal/engine"
)

// Common Sense Media — independent expert age recommendations, found by
// scraping the search page for the green age badge. Best effort: any
// failure or missing badge reads as absent, never an error.

const csmSearchBase = "https://www.commonsensemedia.org/search/"

// NewCommonSenseLookup returns an AgeLookup backed by the CSM search
// page. overrideURL replaces the base URL in tests; pass "" for the
// real site.
func NewCommonSenseLookup(hc *http.Client, overrideURL string) engine.AgeLookup {
	base := csmSearchBase
	if overrideURL != "" {
		base = overrideURL
	}
	return func(ctx context.Context, name string) (int, bool) {
		engine.IncrCSMRequests()

		searchURL := base + url.PathEscape(name)
		resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("User-Agent", userAgentBot)
			return hc.Do(req)
		})
		if err != nil {
			slog.Debug("commonsense: fetch failed", slog.Any("error", err))
			return 0, false
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return 0, false
		}

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return 0, false
		}
		return extractCSMAge(doc)
	}
}

// extractCSMAge finds the first green age badge and parses its number.
func extractCSMAge(doc *goquery.Document) (int, bool) {
	age := 0
	found := false
	doc.Find("span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		if !strings.Contains(class, "csm-green") {
			return true
		}
		text := strings.TrimSpace(s.Text())
		text = strings.TrimSuffix(text, "+") // badges render as "7+"
		n, err := strconv.Atoi(text)
		if err != nil || n <= 0 {
			return true
		}
		age = n
		found = true
		return false
	})
	return age, found
}
