package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Dataset defines tabular export content. Meta lines describe the document
// (statement period, family name); Footer renders as a trailing totals row.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
	Meta    []string
	Footer  map[string]string
}

// CSVExporter renders Dataset records into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the dataset. Meta lines become
// leading single-column records so spreadsheets show them above the table.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)

	for _, line := range data.Meta {
		if err := writer.Write([]string{line}); err != nil {
			return nil, fmt.Errorf("write csv meta: %w", err)
		}
	}

	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = row[header]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	if len(data.Footer) > 0 {
		record := make([]string, len(data.Headers))
		for i, header := range data.Headers {
			record[i] = data.Footer[header]
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv footer: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
