package engine

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeInputCSV(t *testing.T, rows [][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "channels.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func testPipeline(t *testing.T, api YouTubeAPI, audit *AuditStore) *Pipeline {
	t.Helper()
	g := testGatherer(t, api)
	cfg := DefaultConfig()
	cfg.PolitenessDelay = 0

	p := NewPipeline(cfg, DefaultPolicy(), g, g.Governor, g.Cache, audit)
	p.sleep = func(time.Duration) {}
	return p
}

func TestPipelineEnrichesEveryRow(t *testing.T) {
	in := writeInputCSV(t, [][]string{
		{"YouTube_Channel", "Category"},
		{"Toddler TV", "kids"},
		{"Unknown Channel", "misc"},
	})
	outPath := filepath.Join(t.TempDir(), "enriched.csv")

	api := newFakeAPI()
	api.channelID = "UC123"
	api.status = ChannelStatus{MadeForKids: true}

	ds, err := ReadDataset(in, "YouTube_Channel")
	if err != nil {
		t.Fatal(err)
	}
	out, err := NewEnrichedWriter(outPath, ds.Header)
	if err != nil {
		t.Fatal(err)
	}

	p := testPipeline(t, api, nil)
	summary, err := p.Run(context.Background(), ds, out, 0)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}

	if summary.Entities != 2 {
		t.Errorf("entities = %d, want 2", summary.Entities)
	}

	rows := readCSV(t, outPath)
	if len(rows) != 3 {
		t.Fatalf("output rows = %d, want header + 2", len(rows))
	}
	header := rows[0]
	if got := header[len(header)-4:]; got[0] != "enriched_age" || got[3] != "evidence_details" {
		t.Errorf("appended columns = %v", got)
	}

	// Row 1: official kids flag wins regardless of anything else.
	row := rows[1]
	if row[2] != "3" || row[3] != LabelOfficialKids {
		t.Errorf("row 1 decision = %s/%s, want 3/%s", row[2], row[3], LabelOfficialKids)
	}
	if _, err := time.Parse(time.RFC3339, row[4]); err != nil {
		t.Errorf("timestamp %q not RFC3339: %v", row[4], err)
	}
	var bag map[string]any
	if err := json.Unmarshal([]byte(row[5]), &bag); err != nil {
		t.Fatalf("evidence blob not JSON: %v", err)
	}
	if bag[SigMadeForKids] != true {
		t.Error("evidence blob missing made_for_kids")
	}
}

func TestPipelineNoSignalsFallsBack(t *testing.T) {
	in := writeInputCSV(t, [][]string{
		{"YouTube_Channel"},
		{"Ghost Channel"},
	})
	outPath := filepath.Join(t.TempDir(), "enriched.csv")

	api := newFakeAPI() // unresolved, no third-party matches

	ds, err := ReadDataset(in, "YouTube_Channel")
	if err != nil {
		t.Fatal(err)
	}
	out, err := NewEnrichedWriter(outPath, ds.Header)
	if err != nil {
		t.Fatal(err)
	}

	p := testPipeline(t, api, nil)
	if _, err := p.Run(context.Background(), ds, out, 0); err != nil {
		t.Fatal(err)
	}
	out.Close()

	rows := readCSV(t, outPath)
	row := rows[1]
	if row[1] != "13" || row[2] != LabelDefault {
		t.Errorf("decision = %s/%s, want 13/%s", row[1], row[2], LabelDefault)
	}
}

func TestPipelineWritesAuditTrail(t *testing.T) {
	in := writeInputCSV(t, [][]string{
		{"YouTube_Channel"},
		{"Toddler TV"},
	})
	outPath := filepath.Join(t.TempDir(), "enriched.csv")

	audit, err := OpenAuditStore(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer audit.Close()

	api := newFakeAPI()
	api.channelID = "UC123"
	api.status = ChannelStatus{MadeForKids: true}

	ds, _ := ReadDataset(in, "YouTube_Channel")
	out, err := NewEnrichedWriter(outPath, ds.Header)
	if err != nil {
		t.Fatal(err)
	}

	p := testPipeline(t, api, audit)
	if _, err := p.Run(context.Background(), ds, out, 0); err != nil {
		t.Fatal(err)
	}
	out.Close()

	d, found, err := audit.Latest(context.Background(), "Toddler TV")
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("no audit row recorded")
	}
	if d.MinimumAge != 3 || d.Source != LabelOfficialKids {
		t.Errorf("audit decision = %d/%s", d.MinimumAge, d.Source)
	}
}

func TestPipelineRowLimit(t *testing.T) {
	in := writeInputCSV(t, [][]string{
		{"YouTube_Channel"},
		{"One"}, {"Two"}, {"Three"},
	})
	outPath := filepath.Join(t.TempDir(), "enriched.csv")

	ds, _ := ReadDataset(in, "YouTube_Channel")
	out, err := NewEnrichedWriter(outPath, ds.Header)
	if err != nil {
		t.Fatal(err)
	}

	p := testPipeline(t, newFakeAPI(), nil)
	summary, err := p.Run(context.Background(), ds, out, 2)
	if err != nil {
		t.Fatal(err)
	}
	out.Close()

	if summary.Entities != 2 {
		t.Errorf("entities = %d, want 2", summary.Entities)
	}
	if rows := readCSV(t, outPath); len(rows) != 3 {
		t.Errorf("output rows = %d, want header + 2", len(rows))
	}
}

func TestPipelineInterruptKeepsPartialOutput(t *testing.T) {
	in := writeInputCSV(t, [][]string{
		{"YouTube_Channel"},
		{"One"}, {"Two"},
	})
	outPath := filepath.Join(t.TempDir(), "enriched.csv")

	ds, _ := ReadDataset(in, "YouTube_Channel")
	out, err := NewEnrichedWriter(outPath, ds.Header)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := testPipeline(t, newFakeAPI(), nil)
	if _, err := p.Run(ctx, ds, out, 0); err == nil {
		t.Fatal("expected context error")
	}
	out.Close()

	// Header is still intact; no partial row corruption.
	rows := readCSV(t, outPath)
	if len(rows) != 1 {
		t.Errorf("rows = %d, want header only for immediate cancellation", len(rows))
	}
}
