package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Pipeline is the enrichment driver: entities are processed strictly
// one at a time, in input order. The governor's counters and the remote
// quota are shared resources, so there is no parallel fan-out.
type Pipeline struct {
	cfg      Config
	policy   *Policy
	gatherer *Gatherer
	governor *Governor
	cache    *Cache
	audit    *AuditStore // nil disables the audit store

	now   func() time.Time
	sleep func(time.Duration)
}

// Summary is the end-of-run report.
type Summary struct {
	Entities    int
	APICalls    int
	DailyLimit  int
	CacheHits   int64
	CacheMisses int64
}

// HitRate returns the cache hit percentage for the run.
func (s Summary) HitRate() float64 {
	total := s.CacheHits + s.CacheMisses
	if total == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(total) * 100
}

func (s Summary) String() string {
	return fmt.Sprintf("%d entities enriched, %d/%d API calls, cache %d hits / %d misses (%.1f%% hit rate)",
		s.Entities, s.APICalls, s.DailyLimit, s.CacheHits, s.CacheMisses, s.HitRate())
}

// NewPipeline assembles the driver from its services.
func NewPipeline(cfg Config, policy *Policy, gatherer *Gatherer, gov *Governor, cache *Cache, audit *AuditStore) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		policy:   policy,
		gatherer: gatherer,
		governor: gov,
		cache:    cache,
		audit:    audit,
		now:      time.Now,
		sleep:    time.Sleep,
	}
}

// Run enriches every row of ds, writing one output row per entity as it
// goes — an interrupted run keeps all rows enriched so far. limit > 0
// caps the number of rows (test runs). A single entity's data problems
// never abort the run; only context cancellation does.
func (p *Pipeline) Run(ctx context.Context, ds *Dataset, out *EnrichedWriter, limit int) (Summary, error) {
	rows := ds.Rows
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
		slog.Info("pipeline: limiting run", slog.Int("rows", limit))
	}

	processed := 0
	for _, rec := range rows {
		if err := ctx.Err(); err != nil {
			slog.Warn("pipeline: interrupted", slog.Int("processed", processed))
			return p.summary(processed), err
		}

		d, bagJSON := p.enrichOne(ctx, rec.Name)
		if err := out.Write(rec, d, bagJSON); err != nil {
			return p.summary(processed), fmt.Errorf("pipeline: persist %s: %w", rec.Name, err)
		}
		if p.audit != nil {
			if err := p.audit.Record(ctx, rec.Name, d, bagJSON); err != nil {
				slog.Warn("pipeline: audit write failed", slog.Any("error", err))
			}
		}
		IncrEntitiesEnriched()
		processed++

		if processed%5 == 0 {
			slog.Info("pipeline: progress",
				slog.Int("processed", processed),
				slog.Int("total", len(rows)),
				slog.Int("api_calls", p.governor.CallsMade()),
				slog.Int("daily_limit", p.governor.DailyLimit()))
		}

		// politeness delay between entities
		p.sleep(p.cfg.PolitenessDelay)
	}

	s := p.summary(processed)
	slog.Info("pipeline: run complete", slog.String("summary", s.String()))
	return s, nil
}

// enrichOne runs gather → score → adjudicate for a single channel.
// Always yields exactly one decision, whatever evidence was available.
func (p *Pipeline) enrichOne(ctx context.Context, name string) (Decision, []byte) {
	ev := p.gatherer.Gather(ctx, name)

	if len(ev.Videos) > 0 || ev.Description != "" {
		ev.Bag.Merge(ScoreMaturity(p.policy, ev.Videos, ev.Description))
	}

	d := Decide(p.policy, ev.Bag)
	d.Timestamp = p.now().UTC()

	slog.Debug("pipeline: decided",
		slog.String("entity", name),
		slog.Int("age", d.MinimumAge),
		slog.String("source", d.Source))
	return d, ev.Bag.JSON()
}

func (p *Pipeline) summary(processed int) Summary {
	hits, misses := p.cache.Stats()
	return Summary{
		Entities:    processed,
		APICalls:    p.governor.CallsMade(),
		DailyLimit:  p.governor.DailyLimit(),
		CacheHits:   hits,
		CacheMisses: misses,
	}
}
