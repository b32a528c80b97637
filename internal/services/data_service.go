package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"agridash/internal/analytics"
	"agridash/internal/config"
	"agridash/internal/exporter"
	"agridash/pkg/contracts/domain"
)

// MaxExportRows bounds a single export download.
const MaxExportRows = 1_000_000

// DataService provides raw data access: filter options, filtered rows and
// downloads.
type DataService struct {
	data   Dataset
	paths  *config.Paths
	logger *slog.Logger
}

// ObservationPage is one page of filtered rows.
type ObservationPage struct {
	Total  int                            `json:"total"`
	Limit  int                            `json:"limit"`
	Offset int                            `json:"offset"`
	Rows   []domain.NormalizedObservation `json:"rows"`
}

// ReportFile describes a file in the reports directory.
type ReportFile struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Format   string    `json:"format"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// NewDataService creates a new data service
func NewDataService(data Dataset, paths *config.Paths, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "data_service"))

	if paths != nil {
		logger.Info("DataService initialized with paths",
			slog.String("dataset_file", paths.DatasetFile),
			slog.String("reports_dir", paths.ReportsDir))
	}

	return &DataService{
		data:   data,
		paths:  paths,
		logger: logger,
	}
}

// Filters returns the filter choices derived from the dataset.
func (ds *DataService) Filters(ctx context.Context) domain.FilterOptions {
	return ds.data.Options()
}

// Info describes the loaded dataset.
func (ds *DataService) Info(ctx context.Context) domain.DatasetInfo {
	return ds.data.Info()
}

// Observations returns the rows matching sel, paged by limit and offset. The
// normalized value is filled only when normalize is set; otherwise it equals
// the raw value.
func (ds *DataService) Observations(ctx context.Context, sel domain.Selection, normalize bool, limit, offset int) (*ObservationPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = config.DefaultPageSize
	}
	if limit > config.MaxPageSize {
		limit = config.MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	rows := analytics.Apply(ds.data.Observations(), sel)
	page := &ObservationPage{Total: len(rows), Limit: limit, Offset: offset}

	if offset >= len(rows) {
		page.Rows = []domain.NormalizedObservation{}
		return page, nil
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	page.Rows = ds.withNormalized(rows[offset:end], normalize)

	ds.logger.DebugContext(ctx, "observations served",
		slog.Int("total", page.Total),
		slog.Int("returned", len(page.Rows)),
		slog.Bool("normalize", normalize))

	return page, nil
}

// Export writes every row matching sel to out. It returns the number of rows
// written.
func (ds *DataService) Export(ctx context.Context, out io.Writer, sel domain.Selection, format exporter.Format, normalize bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	rows := analytics.Apply(ds.data.Observations(), sel)
	if len(rows) > MaxExportRows {
		return 0, fmt.Errorf("%w: %d rows", ErrExportTooLarge, len(rows))
	}

	table := exporter.Table{
		Sheet:   "observations",
		Headers: exporter.ObservationHeaders(normalize),
	}
	if normalize {
		table.Records = exporter.NormalizedRecords(analytics.Normalize(rows, ds.data.Observations()))
	} else {
		table.Records = exporter.ObservationRecords(rows)
	}

	if err := exporter.Write(out, format, table); err != nil {
		return 0, fmt.Errorf("writing %s export: %w", format, err)
	}

	ds.logger.InfoContext(ctx, "export written",
		slog.String("format", string(format)),
		slog.Int("rows", len(rows)),
		slog.Bool("normalize", normalize))

	return len(rows), nil
}

// GetReports lists the snapshot files in the reports directory, newest first.
func (ds *DataService) GetReports(ctx context.Context) ([]ReportFile, error) {
	reports := []ReportFile{}
	if ds.paths == nil {
		return reports, nil
	}
	reportsDir := ds.paths.ReportsDir

	ds.logger.DebugContext(ctx, "GetReports: scanning directory",
		slog.String("reports_dir", reportsDir))

	err := filepath.Walk(reportsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Log but continue with other files
			ds.logger.Debug("Error accessing path",
				slog.String("path", path),
				slog.String("error", err.Error()))
			return nil
		}
		if info.IsDir() {
			return nil
		}

		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(info.Name())), ".")
		if _, err := exporter.ParseFormat(ext); err != nil {
			return nil
		}

		relPath, err := filepath.Rel(reportsDir, path)
		if err != nil {
			return nil
		}

		reports = append(reports, ReportFile{
			Name:     info.Name(),
			Path:     filepath.ToSlash(relPath),
			Format:   ext,
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning reports: %w", err)
	}

	// Sort by modification time (newest first)
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Modified.After(reports[j].Modified)
	})

	ds.logger.DebugContext(ctx, "GetReports: found reports",
		slog.Int("count", len(reports)))

	return reports, nil
}

// ReportPath resolves a report name, as listed by GetReports, to a file
// inside the reports directory.
func (ds *DataService) ReportPath(name string) (string, error) {
	if ds.paths == nil {
		return "", fmt.Errorf("%w: %s", ErrReportNotFound, name)
	}

	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidReportPath, name)
	}
	if _, err := exporter.ParseFormat(strings.TrimPrefix(filepath.Ext(clean), ".")); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidReportPath, name)
	}

	full := filepath.Join(ds.paths.ReportsDir, clean)
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrReportNotFound, name)
	}
	return full, nil
}

func (ds *DataService) withNormalized(rows []domain.Observation, normalize bool) []domain.NormalizedObservation {
	if normalize {
		return analytics.Normalize(rows, ds.data.Observations())
	}
	out := make([]domain.NormalizedObservation, len(rows))
	for i, r := range rows {
		v := r.ObsValue
		out[i] = domain.NormalizedObservation{Observation: r, Normalized: &v}
	}
	return out
}
