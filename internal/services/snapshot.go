package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"agridash/internal/config"
	"agridash/internal/exporter"
	"agridash/internal/infrastructure"
	"agridash/pkg/contracts/domain"
)

// HistoryFile collects the rows of every CSV snapshot.
const HistoryFile = "kpi_history.csv"

// SnapshotService exports the KPIs of every page for the unrestricted
// selection into the reports directory.
type SnapshotService struct {
	dashboard *DashboardService
	paths     *config.Paths
	csv       *exporter.CSVWriter
	format    exporter.Format
	metrics   *infrastructure.BusinessMetrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewSnapshotService creates a snapshot service writing format files.
func NewSnapshotService(dashboard *DashboardService, paths *config.Paths, format exporter.Format, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *SnapshotService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotService{
		dashboard: dashboard,
		paths:     paths,
		csv:       exporter.NewCSVWriter(paths),
		format:    format,
		metrics:   metrics,
		logger:    logger.With(slog.String("component", "snapshot_service")),
		now:       time.Now,
	}
}

// Run computes all pages and writes one snapshot file. It returns the path
// of the file written.
func (s *SnapshotService) Run(ctx context.Context) (string, error) {
	start := s.now().UTC()

	pages := make([]*domain.PageResult, 0, len(domain.Pages))
	for _, id := range domain.Pages {
		res, err := s.dashboard.Compute(ctx, id, domain.Selection{})
		if err != nil {
			return "", fmt.Errorf("snapshot page %s: %w", id, err)
		}
		pages = append(pages, res)
	}

	records := exporter.KPIRecords(pages, start.Format(time.RFC3339))
	name := "kpi_snapshot_" + start.Format("20060102T150405") + s.format.Extension()

	var (
		path string
		err  error
	)
	switch s.format {
	case exporter.FormatXLSX:
		path, err = s.writeXLSX(name, records)
	default:
		path, err = s.writeCSV(name, records)
	}
	if err != nil {
		return "", err
	}

	if s.metrics != nil {
		s.metrics.SnapshotRuns.Add(ctx, 1)
	}
	s.logger.InfoContext(ctx, "snapshot written",
		slog.String("path", path),
		slog.Int("kpis", len(records)),
		slog.Duration("duration", s.now().UTC().Sub(start)))

	return path, nil
}

func (s *SnapshotService) writeCSV(name string, records [][]string) (string, error) {
	if err := s.csv.WriteSimpleCSV(name, exporter.KPIHeaders, records); err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}

	history := s.paths.GetReportPath(HistoryFile)
	if config.FileExists(history) {
		if err := s.csv.AppendToCSV(HistoryFile, records); err != nil {
			return "", fmt.Errorf("appending snapshot history: %w", err)
		}
	} else if err := s.csv.WriteSimpleCSV(HistoryFile, exporter.KPIHeaders, records); err != nil {
		return "", fmt.Errorf("writing snapshot history: %w", err)
	}

	return s.paths.GetReportPath(name), nil
}

func (s *SnapshotService) writeXLSX(name string, records [][]string) (string, error) {
	path := s.paths.GetReportPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating snapshot: %w", err)
	}
	defer f.Close()

	table := exporter.Table{Sheet: "kpis", Headers: exporter.KPIHeaders, Records: records}
	if err := exporter.Write(f, exporter.FormatXLSX, table); err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}
	return path, f.Close()
}
