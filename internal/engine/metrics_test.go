package engine

import (
	"context"
	"strings"
	"testing"
)

func TestCountersTrackGatherTraffic(t *testing.T) {
	before := GetMetrics()

	api := newFakeAPI()
	api.channelID = "UC123"
	api.videos = []string{"v1", "v2"}
	api.snippets["v1"] = VideoSnippet{Title: "one"}
	api.snippets["v2"] = VideoSnippet{Title: "two"}

	g := testGatherer(t, api)
	g.Gather(context.Background(), "Counted Channel")

	after := GetMetrics()
	want := map[string]int64{
		"resolve_requests":    1,
		"status_requests":     1,
		"video_list_requests": 2, // one listing per sample pass
		"rating_requests":     2,
		"meta_requests":       1,
		"snippet_requests":    2,
	}
	for k, delta := range want {
		if got := after[k] - before[k]; got != delta {
			t.Errorf("%s moved by %d, want %d", k, got, delta)
		}
	}
}

func TestFormatMetricsListsEveryCounter(t *testing.T) {
	out := FormatMetrics()
	for k := range GetMetrics() {
		if !strings.Contains(out, k+" ") {
			t.Errorf("report missing counter %q", k)
		}
	}
}
