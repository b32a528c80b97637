package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"agridash/pkg/contracts/domain"
)

// Format names a dataset source kind.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatXLSX   Format = "xlsx"
	FormatSQLite Format = "sqlite"
)

// DetectFormat picks the source kind from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Load reads the dataset at path.
func Load(ctx context.Context, path string, logger *slog.Logger) (*Dataset, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "dataset"))

	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	var (
		rows    []domain.Observation
		skipped int
	)
	switch format {
	case FormatCSV:
		rows, skipped, err = loadCSVFile(path)
	case FormatXLSX:
		rows, skipped, err = loadXLSX(path)
	case FormatSQLite:
		rows, skipped, err = loadSQLite(ctx, path)
	}
	if err != nil {
		return nil, fmt.Errorf("loading %s dataset %s: %w", format, path, err)
	}

	if skipped > 0 {
		logger.WarnContext(ctx, "skipped unparseable rows",
			slog.String("path", path),
			slog.Int("skipped", skipped))
	}

	ds := New(rows, path, string(format))
	logger.InfoContext(ctx, "dataset loaded",
		slog.String("path", path),
		slog.String("format", string(format)),
		slog.Int("rows", ds.Len()),
		slog.Int("min_year", ds.info.MinYear),
		slog.Int("max_year", ds.info.MaxYear))
	return ds, nil
}

func loadCSVFile(path string) ([]domain.Observation, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses an observation table in CSV form. The first record is the
// header.
func ReadCSV(r io.Reader) ([]domain.Observation, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, 0, ErrNoHeader
	}
	if err != nil {
		return nil, 0, fmt.Errorf("reading header: %w", err)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("reading records: %w", err)
	}
	return rowsFromRecords(header, records)
}

// loadXLSX reads the first sheet whose first row has a country column.
func loadXLSX(path string) ([]domain.Observation, int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		if _, err := mapHeader(rows[0]); err != nil {
			continue
		}
		return rowsFromRecords(rows[0], rows[1:])
	}
	return nil, 0, ErrNoHeader
}
