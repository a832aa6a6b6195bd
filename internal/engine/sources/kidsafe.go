package sources

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/net/html"

	"github.com/viewguard/viewguard/internal/engine"
)

// kidSAFE Seal Program — a published certification list. Membership is
// a case-insensitive substring match of the channel name against the
// listing's text. Best effort: false on any failure.

const kidsafeListURL = "https://www.kidsafeseal.com/certifiedproducts.html"

// NewKidsafeLookup returns a ListingLookup backed by the published
// certified-products page. overrideURL replaces the URL in tests.
func NewKidsafeLookup(hc *http.Client, overrideURL string) engine.ListingLookup {
	listURL := kidsafeListURL
	if overrideURL != "" {
		listURL = overrideURL
	}
	return func(ctx context.Context, name string) bool {
		engine.IncrKidsafeRequests()

		needle := engine.NormName(name)
		if needle == "" {
			return false
		}

		resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("User-Agent", userAgentBot)
			return hc.Do(req)
		})
		if err != nil {
			slog.Debug("kidsafe: fetch failed", slog.Any("error", err))
			return false
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return false
		}

		doc, err := html.Parse(io.LimitReader(resp.Body, 8*1024*1024))
		if err != nil {
			return false
		}
		return strings.Contains(strings.ToLower(textContent(doc)), needle)
	}
}

// textContent flattens the rendered text of a parsed document.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
