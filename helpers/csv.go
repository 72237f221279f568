package helpers

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/tabulon-io/tabulon/engine"
)

// ============================================================================
// CSV HELPERS — Ingestion and export collaborators
// ============================================================================
// The engine consumes already-parsed rows; these helpers are the in-repo
// collaborators that produce and serialize them. Delimiter/encoding
// detection and streaming for very large inputs stay outside the engine.
// ============================================================================

// ParseCSV parses CSV bytes into a Table. The header row defines the
// column order; cells are kept as trimmed strings and classified by the
// type-inference pass inside NewTable. Malformed rows are skipped.
func ParseCSV(data []byte, name string) (*engine.Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read CSV headers")
	}
	if len(headers) == 0 {
		return nil, errors.New("CSV has no columns")
	}

	columns := make([]string, len(headers))
	for i, h := range headers {
		columns[i] = strings.TrimSpace(h)
	}

	var rows []engine.Row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}
		row := make(engine.Row, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}

	return engine.NewTable(name, columns, rows), nil
}

// WriteCSV serializes a table back to delimited text, columns in Table
// order, absent cells as empty strings.
func WriteCSV(t *engine.Table) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(t.Columns); err != nil {
		return nil, errors.Wrap(err, "failed to write CSV header")
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, col := range t.Columns {
			record[i] = row[col]
		}
		if err := writer.Write(record); err != nil {
			return nil, errors.Wrap(err, "failed to write CSV row")
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, errors.Wrap(err, "failed to flush CSV output")
	}
	return buf.Bytes(), nil
}
