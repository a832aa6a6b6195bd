package engine

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Columns appended to every input row by the enrichment run.
var enrichedColumns = []string{
	"enriched_age", "evidence_source", "evidence_timestamp", "evidence_details",
}

// Record is one input row: the full original fields plus the extracted
// channel name.
type Record struct {
	Name   string
	Fields []string
}

// Dataset is the tabular input listing entities, one row per channel.
type Dataset struct {
	Header []string
	Rows   []Record
}

// ReadDataset loads the input CSV. entityColumn must exist in the
// header; every row contributes one record in input order.
func ReadDataset(path, entityColumn string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("dataset: parse %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset: %s is empty", path)
	}

	header := rows[0]
	col := -1
	for i, name := range header {
		if name == entityColumn {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("dataset: column %q not found in %s", entityColumn, path)
	}

	ds := &Dataset{Header: header}
	for _, row := range rows[1:] {
		// ragged row: keep it with an empty name so it still gets a
		// decision row downstream
		name := ""
		if col < len(row) {
			name = row[col]
		}
		ds.Rows = append(ds.Rows, Record{Name: name, Fields: row})
	}
	return ds, nil
}

// EnrichedWriter appends decision columns to input rows and flushes
// after every write, so an interrupted run keeps everything enriched
// so far.
type EnrichedWriter struct {
	f *os.File
	w *csv.Writer
}

// NewEnrichedWriter creates the output CSV and writes its header: the
// input header plus the four enrichment columns.
func NewEnrichedWriter(path string, inputHeader []string) (*EnrichedWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: create %s: %w", path, err)
	}
	w := csv.NewWriter(f)

	header := append(append([]string{}, inputHeader...), enrichedColumns...)
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("dataset: write header: %w", err)
	}
	w.Flush()
	return &EnrichedWriter{f: f, w: w}, nil
}

// Write appends one enriched row and flushes it to disk.
func (ew *EnrichedWriter) Write(rec Record, d Decision, evidence []byte) error {
	row := append(append([]string{}, rec.Fields...),
		strconv.Itoa(d.MinimumAge),
		d.Source,
		d.Timestamp.UTC().Format(time.RFC3339),
		string(evidence),
	)
	if err := ew.w.Write(row); err != nil {
		return fmt.Errorf("dataset: write row: %w", err)
	}
	ew.w.Flush()
	return ew.w.Error()
}

// Close flushes and closes the output file.
func (ew *EnrichedWriter) Close() error {
	ew.w.Flush()
	if err := ew.w.Error(); err != nil {
		ew.f.Close()
		return err
	}
	return ew.f.Close()
}
