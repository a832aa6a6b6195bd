package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across one run.
var metrics struct {
	ResolveRequests  atomic.Int64
	StatusRequests   atomic.Int64
	MetaRequests     atomic.Int64
	VideoListReqs    atomic.Int64
	RatingRequests   atomic.Int64
	SnippetRequests  atomic.Int64
	CSMRequests      atomic.Int64
	KidsafeRequests  atomic.Int64
	EntitiesEnriched atomic.Int64
	GatherFailures   atomic.Int64
}

// Incrementors for the sources/ sub-package and the gatherer.
func IncrResolveRequests() { metrics.ResolveRequests.Add(1) }
func IncrStatusRequests()  { metrics.StatusRequests.Add(1) }
func IncrMetaRequests()    { metrics.MetaRequests.Add(1) }
func IncrVideoListReqs()   { metrics.VideoListReqs.Add(1) }
func IncrRatingRequests()  { metrics.RatingRequests.Add(1) }
func IncrSnippetRequests() { metrics.SnippetRequests.Add(1) }
func IncrCSMRequests()     { metrics.CSMRequests.Add(1) }
func IncrKidsafeRequests() { metrics.KidsafeRequests.Add(1) }
func IncrEntitiesEnriched() { metrics.EntitiesEnriched.Add(1) }
func IncrGatherFailures()   { metrics.GatherFailures.Add(1) }

// GetMetrics returns a snapshot of all counters.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"resolve_requests":  metrics.ResolveRequests.Load(),
		"status_requests":   metrics.StatusRequests.Load(),
		"meta_requests":     metrics.MetaRequests.Load(),
		"video_list_requests": metrics.VideoListReqs.Load(),
		"rating_requests":   metrics.RatingRequests.Load(),
		"snippet_requests":  metrics.SnippetRequests.Load(),
		"csm_requests":      metrics.CSMRequests.Load(),
		"kidsafe_requests":  metrics.KidsafeRequests.Load(),
		"entities_enriched": metrics.EntitiesEnriched.Load(),
		"gather_failures":   metrics.GatherFailures.Load(),
	}
}

// FormatMetrics renders counters as simple text for the run summary.
func FormatMetrics() string {
	m := GetMetrics()
	keys := []string{
		"resolve_requests", "status_requests", "meta_requests",
		"video_list_requests", "rating_requests", "snippet_requests",
		"csm_requests", "kidsafe_requests",
		"entities_enriched", "gather_failures",
	}
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}
