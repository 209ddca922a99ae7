// Package report serialises aggregated rows into the resource report.
//
// An empty row set still produces a valid report holding only the header
// line, so a run that found no datasets leaves an artifact behind that is
// distinguishable from a failed write.
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"datascout/internal/artifact"
	"datascout/internal/types"
)

// WriteCSV writes the header followed by one record per row.
func WriteCSV(w io.Writer, rows []types.AggregatedRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(types.ReportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.Columns()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save renders rows and stores them as the run's resource_links.csv.
func Save(ctx context.Context, store artifact.Store, runID string, rows []types.AggregatedRow) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if err := store.Put(ctx, runID, artifact.ResourceLinks, buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", artifact.ResourceLinks, err)
	}
	return nil
}

// ReadCSV parses a report written by WriteCSV.
func ReadCSV(r io.Reader) ([]types.AggregatedRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(types.ReportHeader)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("report is missing its header")
	}
	rows := make([]types.AggregatedRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		rows = append(rows, types.AggregatedRow{
			Title:        rec[0],
			Description:  rec[1],
			Keywords:     rec[2],
			DatasetNames: rec[3],
			DatasetLinks: rec[4],
			Sources:      rec[5],
		})
	}
	return rows, nil
}
