package exporter

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"agridash/pkg/contracts/domain"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnknownFormat is returned for formats other than csv and xlsx.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat accepts "csv" or "xlsx", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// ContentType is the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Extension is the file extension including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Table is a header plus rows of cells.
type Table struct {
	Sheet   string
	Headers []string
	Records [][]string
}

// Write renders table to out in the given format. CSV output carries a BOM.
func Write(out io.Writer, format Format, table Table) error {
	switch format {
	case FormatCSV:
		return writeCSV(out, table.Headers, table.Records, true)
	case FormatXLSX:
		return writeXLSX(out, table.Sheet, table.Headers, table.Records)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// ObservationHeaders lists the export columns, with the normalized value
// appended when requested.
func ObservationHeaders(normalized bool) []string {
	headers := make([]string, 0, len(domain.Fields)+1)
	for _, f := range domain.Fields {
		headers = append(headers, string(f))
	}
	if normalized {
		headers = append(headers, "normalized_value")
	}
	return headers
}

// ObservationRecords renders rows in export column order.
func ObservationRecords(rows []domain.Observation) [][]string {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = r.Record()
	}
	return records
}

// NormalizedRecords renders rows with the normalized value as last column,
// left empty when the row has none.
func NormalizedRecords(rows []domain.NormalizedObservation) [][]string {
	records := make([][]string, len(rows))
	for i, r := range rows {
		normalized := ""
		if r.Normalized != nil {
			normalized = formatFloat(*r.Normalized)
		}
		records[i] = append(r.Record(), normalized)
	}
	return records
}

// KPIHeaders are the columns of a KPI snapshot.
var KPIHeaders = []string{"page", "kpi", "title", "value", "placeholder", "computed_at"}

// KPIRecords renders the KPIs of computed pages as snapshot rows.
func KPIRecords(pages []*domain.PageResult, computedAt string) [][]string {
	var records [][]string
	for _, p := range pages {
		for _, k := range p.KPIs {
			records = append(records, []string{
				string(p.Page), k.ID, k.Title, k.Value, formatBool(k.Placeholder), computedAt,
			})
		}
	}
	return records
}

// formatFloat keeps full precision so exports round-trip.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
