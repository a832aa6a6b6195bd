// viewguard — minimum-viewing-age enrichment for YouTube channels.
//
// Reads a CSV of channel names, gathers evidence from the YouTube Data
// API and third-party rating sites under a quota governor and response
// cache, scores free text for maturity indicators, adjudicates every
// signal into one age decision per channel, and writes the enriched
// dataset plus a full evidence audit trail.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/urfave/cli/v2"

	"github.com/viewguard/viewguard/internal/engine"
	"github.com/viewguard/viewguard/internal/engine/sources"
)

var version = "dev"

func main() {
	initLogging()

	app := &cli.App{
		Name:    "viewguard",
		Usage:   "estimate minimum viewing ages for YouTube channels",
		Version: version,
		Commands: []*cli.Command{
			enrichCommand(),
			cacheCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		slog.Error("run failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func initLogging() {
	level := slog.LevelInfo
	if env.Str("LOG_LEVEL", "") == "debug" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func enrichCommand() *cli.Command {
	return &cli.Command{
		Name:  "enrich",
		Usage: "enrich a channel dataset with age decisions",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "in", Usage: "input CSV path", Required: true},
			&cli.StringFlag{Name: "out", Usage: "output CSV path", Required: true},
			&cli.IntFlag{Name: "limit", Usage: "process only the first N rows"},
			&cli.StringFlag{Name: "policy", Usage: "YAML policy file overriding the defaults"},
			&cli.StringFlag{Name: "cache-dir", Usage: "response cache directory"},
			&cli.StringFlag{Name: "audit-db", Usage: "SQLite audit database path (empty disables)"},
			&cli.StringFlag{Name: "column", Usage: "input column holding channel names"},
		},
		Action: runEnrich,
	}
}

func runEnrich(c *cli.Context) error {
	cfg := loadConfig(c)

	// Configuration errors are fatal before any processing starts.
	apiKey, err := loadAPIKey()
	if err != nil {
		return err
	}
	cfg.YouTubeAPIKey = apiKey

	policy := engine.DefaultPolicy()
	if path := c.String("policy"); path != "" {
		policy, err = engine.LoadPolicy(path)
		if err != nil {
			return err
		}
		slog.Info("policy loaded", slog.String("path", path))
	}

	cache, err := engine.NewCache(cfg.CacheDir, cfg.CacheTTL)
	if err != nil {
		return err
	}
	gov := engine.NewGovernor(cfg.DailyCallLimit, cfg.PerMinuteCallLimit, cfg.BurstDelay)

	var audit *engine.AuditStore
	if cfg.AuditDBPath != "" {
		audit, err = engine.OpenAuditStore(cfg.AuditDBPath)
		if err != nil {
			return err
		}
		defer audit.Close()
	}

	yt := sources.NewYouTubeClient(cfg.YouTubeAPIKey, cfg.HTTPClient)
	csm := sources.NewCommonSenseLookup(cfg.HTTPClient, "")
	kidsafe := sources.NewKidsafeLookup(cfg.HTTPClient, "")
	gatherer := engine.NewGatherer(cfg, yt, csm, kidsafe, gov, cache)

	ds, err := engine.ReadDataset(c.String("in"), cfg.EntityColumn)
	if err != nil {
		return err
	}
	out, err := engine.NewEnrichedWriter(c.String("out"), ds.Header)
	if err != nil {
		return err
	}
	defer out.Close()

	slog.Info("starting enrichment",
		slog.Int("rows", len(ds.Rows)),
		slog.String("in", c.String("in")),
		slog.String("out", c.String("out")))

	// Interruptible at entity granularity; rows written so far survive.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := engine.NewPipeline(cfg, policy, gatherer, gov, cache, audit)
	summary, err := pipeline.Run(ctx, ds, out, c.Int("limit"))
	fmt.Println(summary.String())
	fmt.Print(engine.FormatMetrics())
	return err
}

func cacheCommand() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "response cache maintenance",
		Subcommands: []*cli.Command{
			{
				Name:  "clear",
				Usage: "remove every cached response",
				Action: func(c *cli.Context) error {
					cache, err := engine.NewCache(cacheDir(c), engine.DefaultConfig().CacheTTL)
					if err != nil {
						return err
					}
					before := cache.Len()
					removed, err := cache.Clear()
					if err != nil {
						return err
					}
					fmt.Printf("cache entries before: %d, removed: %d, remaining: %d\n",
						before, removed, cache.Len())
					return nil
				},
			},
			{
				Name:  "stats",
				Usage: "count cached responses on disk",
				Action: func(c *cli.Context) error {
					cache, err := engine.NewCache(cacheDir(c), engine.DefaultConfig().CacheTTL)
					if err != nil {
						return err
					}
					fmt.Printf("cache entries: %d\n", cache.Len())
					return nil
				},
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "cache-dir", Usage: "response cache directory"},
		},
	}
}

func loadConfig(c *cli.Context) engine.Config {
	cfg := engine.DefaultConfig()
	cfg.DailyCallLimit = env.Int("DAILY_CALL_LIMIT", cfg.DailyCallLimit)
	cfg.PerMinuteCallLimit = env.Int("PER_MINUTE_CALL_LIMIT", cfg.PerMinuteCallLimit)
	cfg.CacheDir = env.Str("CACHE_DIR", cfg.CacheDir)
	cfg.CacheTTL = env.Duration("CACHE_TTL", cfg.CacheTTL)
	cfg.PolitenessDelay = env.Duration("POLITENESS_DELAY", cfg.PolitenessDelay)

	if v := c.String("cache-dir"); v != "" {
		cfg.CacheDir = v
	}
	if c.IsSet("audit-db") {
		cfg.AuditDBPath = c.String("audit-db")
	}
	if v := c.String("column"); v != "" {
		cfg.EntityColumn = v
	}
	return cfg
}

func cacheDir(c *cli.Context) string {
	if v := c.String("cache-dir"); v != "" {
		return v
	}
	return env.Str("CACHE_DIR", engine.DefaultConfig().CacheDir)
}

// loadAPIKey reads the YouTube Data API key from the environment, then
// from the key file. Missing key aborts the run before any processing.
func loadAPIKey() (string, error) {
	if key := env.Str("YT_API_KEY", ""); key != "" {
		return key, nil
	}

	path := env.Str("API_KEYS_FILE", "config/api_keys.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("no YT_API_KEY set and cannot read %s: %w", path, err)
	}
	var keys struct {
		YouTubeAPIKey string `json:"youtube_api_key"`
	}
	if err := json.Unmarshal(data, &keys); err != nil {
		return "", fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	if keys.YouTubeAPIKey == "" {
		return "", fmt.Errorf("youtube_api_key not found in %s", path)
	}
	return keys.YouTubeAPIKey, nil
}
