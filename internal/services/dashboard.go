package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"agridash/internal/analytics"
	"agridash/internal/config"
	"agridash/internal/infrastructure"
	"agridash/pkg/contracts/domain"
)

// Dataset is the read-only observation table the dashboard computes over.
type Dataset interface {
	Observations() []domain.Observation
	Options() domain.FilterOptions
	Info() domain.DatasetInfo
}

// pageContext is everything one KPI or chart sees while computing.
type pageContext struct {
	sel domain.Selection
	// source is the full dataset, used for land-area normalization.
	source []domain.Observation
	// rows is the page's base set after applying the selection.
	rows      []domain.Observation
	yearStart int
	yearEnd   int
}

// yearSpan renders the selected year range for chart titles.
func (pc *pageContext) yearSpan() string {
	return fmt.Sprintf("(%d–%d)", pc.yearStart, pc.yearEnd)
}

type kpiDef struct {
	id    string
	title string
	// fallback is shown when the computation fails.
	fallback string
	compute  func(pc *pageContext) domain.KPI
}

type chartDef struct {
	id      string
	kind    domain.ChartType
	compute func(pc *pageContext) domain.Chart
}

type pageDef struct {
	info domain.PageInfo
	// base narrows the full dataset to what the page works on.
	base   func(source []domain.Observation, sel domain.Selection) []domain.Observation
	kpis   []kpiDef
	charts []chartDef
}

func (p *pageDef) kpi(id string) (kpiDef, bool) {
	for _, k := range p.kpis {
		if k.id == id {
			return k, true
		}
	}
	return kpiDef{}, false
}

func (p *pageDef) chart(id string) (chartDef, bool) {
	for _, c := range p.charts {
		if c.id == id {
			return c, true
		}
	}
	return chartDef{}, false
}

// DashboardService computes the KPIs and charts of every dashboard page from
// the shared dataset.
type DashboardService struct {
	data    Dataset
	pages   map[domain.PageID]*pageDef
	logger  *slog.Logger
	metrics *infrastructure.BusinessMetrics
	tracer  trace.Tracer
}

// NewDashboardService creates the dashboard service. metrics and tracer may
// be nil.
func NewDashboardService(data Dataset, logger *slog.Logger, metrics *infrastructure.BusinessMetrics, tracer trace.Tracer) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("dashboard")
	}

	pages := make(map[domain.PageID]*pageDef, len(domain.Pages))
	for _, p := range []*pageDef{overviewPage(), nutrientsPage(), manurePage(), erosionPage(), waterPage()} {
		p.info.KPIs = make([]string, len(p.kpis))
		for i, k := range p.kpis {
			p.info.KPIs[i] = k.id
		}
		p.info.Charts = make([]string, len(p.charts))
		for i, c := range p.charts {
			p.info.Charts[i] = c.id
		}
		pages[p.info.ID] = p
	}

	return &DashboardService{
		data:    data,
		pages:   pages,
		logger:  logger.With(slog.String("component", "dashboard_service")),
		metrics: metrics,
		tracer:  tracer,
	}
}

// Pages lists the pages in navigation order.
func (s *DashboardService) Pages() []domain.PageInfo {
	out := make([]domain.PageInfo, 0, len(domain.Pages))
	for _, id := range domain.Pages {
		out = append(out, s.pages[id].info)
	}
	return out
}

// Page describes one page.
func (s *DashboardService) Page(id domain.PageID) (domain.PageInfo, error) {
	p, ok := s.pages[id]
	if !ok {
		return domain.PageInfo{}, fmt.Errorf("%w: %s", ErrUnknownPage, id)
	}
	return p.info, nil
}

// Options returns the filter choices derived from the dataset.
func (s *DashboardService) Options() domain.FilterOptions {
	return s.data.Options()
}

// Compute evaluates every KPI and chart of a page for the selection. Items
// are computed concurrently and independently: a failing item degrades to
// its placeholder without affecting the others.
func (s *DashboardService) Compute(ctx context.Context, id domain.PageID, sel domain.Selection) (*domain.PageResult, error) {
	p, ok := s.pages[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPage, id)
	}

	ctx, span := s.tracer.Start(ctx, "dashboard.compute",
		trace.WithAttributes(attribute.String("page", string(id))))
	defer span.End()

	start := time.Now()
	pc := s.newPageContext(p, sel)

	result := &domain.PageResult{
		Page:      id,
		Selection: sel,
		RowCount:  len(pc.rows),
		KPIs:      make([]domain.KPI, len(p.kpis)),
		Charts:    make([]domain.Chart, len(p.charts)),
	}
	failures := make([]bool, len(p.kpis)+len(p.charts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, k := range p.kpis {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result.KPIs[i], failures[i] = s.evalKPI(gctx, id, k, pc)
			return nil
		})
	}
	for i, c := range p.charts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result.Charts[i], failures[len(p.kpis)+i] = s.evalChart(gctx, id, c, pc)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("computing page %s: %w", id, err)
	}

	placeholders, failed := 0, 0
	for _, k := range result.KPIs {
		if k.Placeholder {
			placeholders++
		}
	}
	for _, c := range result.Charts {
		if c.Empty {
			placeholders++
		}
	}
	for _, f := range failures {
		if f {
			failed++
		}
	}

	span.SetAttributes(
		attribute.Int("rows", len(pc.rows)),
		attribute.Int("placeholders", placeholders),
		attribute.Int("failures", failed),
	)
	infrastructure.RecordPageMetrics(ctx, s.metrics, string(id), time.Since(start), len(pc.rows), placeholders, failed)

	s.logger.DebugContext(ctx, "page computed",
		slog.String("page", string(id)),
		slog.Int("rows", len(pc.rows)),
		slog.Int("placeholders", placeholders),
		slog.Int("failures", failed),
		slog.Duration("duration", time.Since(start)))

	return result, nil
}

// KPI computes a single KPI of a page.
func (s *DashboardService) KPI(ctx context.Context, id domain.PageID, kpiID string, sel domain.Selection) (*domain.KPI, error) {
	p, ok := s.pages[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPage, id)
	}
	k, ok := p.kpi(kpiID)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownKPI, id, kpiID)
	}
	out, _ := s.evalKPI(ctx, id, k, s.newPageContext(p, sel))
	return &out, nil
}

// Chart computes a single chart of a page.
func (s *DashboardService) Chart(ctx context.Context, id domain.PageID, chartID string, sel domain.Selection) (*domain.Chart, error) {
	p, ok := s.pages[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPage, id)
	}
	c, ok := p.chart(chartID)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownChart, id, chartID)
	}
	out, _ := s.evalChart(ctx, id, c, s.newPageContext(p, sel))
	return &out, nil
}

func (s *DashboardService) newPageContext(p *pageDef, sel domain.Selection) *pageContext {
	source := s.data.Observations()
	sel = restrictTo(sel, p.info.Dimensions)

	info := s.data.Info()
	pc := &pageContext{
		sel:       sel,
		source:    source,
		rows:      p.base(source, sel),
		yearStart: info.MinYear,
		yearEnd:   info.MaxYear,
	}
	if r := sel.YearRange; r != nil {
		pc.yearStart, pc.yearEnd = r.Start, r.End
		// Open bounds are filled with placeholder years; show the data's.
		if info.Rows > 0 {
			pc.yearStart = max(pc.yearStart, info.MinYear)
			pc.yearEnd = min(pc.yearEnd, info.MaxYear)
			if pc.yearStart > pc.yearEnd {
				pc.yearStart, pc.yearEnd = r.Start, r.End
			}
		}
	}
	return pc
}

// evalKPI runs one KPI, turning a panic into the KPI's fallback value. The
// second result reports whether the computation failed.
func (s *DashboardService) evalKPI(ctx context.Context, page domain.PageID, k kpiDef, pc *pageContext) (out domain.KPI, failed bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logItemFailure(ctx, page, "kpi", k.id, r)
			out = domain.KPI{ID: k.id, Title: k.title, Value: k.fallback, Placeholder: true}
			failed = true
		}
	}()

	out = k.compute(pc)
	out.ID = k.id
	if out.Title == "" {
		out.Title = k.title
	}
	return out, false
}

// evalChart runs one chart, turning a panic into an empty annotated chart.
func (s *DashboardService) evalChart(ctx context.Context, page domain.PageID, c chartDef, pc *pageContext) (out domain.Chart, failed bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logItemFailure(ctx, page, "chart", c.id, r)
			out = emptyChart(c.id, c.kind, "")
			failed = true
		}
	}()

	out = c.compute(pc)
	if out.Empty || !hasData(out) {
		return emptyChart(c.id, c.kind, out.Title), false
	}
	if !finiteChart(out) {
		s.logItemFailure(ctx, page, "chart", c.id, ErrNonFiniteValue)
		return emptyChart(c.id, c.kind, out.Title), true
	}
	out.ID = c.id
	out.Type = c.kind
	out.Title = WrapTitle(out.Title)
	return out, false
}

func (s *DashboardService) logItemFailure(ctx context.Context, page domain.PageID, kind, id string, cause interface{}) {
	err := fmt.Errorf("%s %s/%s: %v", kind, page, id, cause)
	infrastructure.RecordError(ctx, err)
	if s.metrics != nil {
		s.metrics.SystemErrors.Add(ctx, 1)
	}
	s.logger.ErrorContext(ctx, "dashboard item failed",
		slog.String("page", string(page)),
		slog.String("kind", kind),
		slog.String("item", id),
		slog.Any("cause", cause),
		slog.String("stack", string(debug.Stack())))
}

func hasData(c domain.Chart) bool {
	if c.Heatmap != nil && len(c.Heatmap.Rows) > 0 {
		return true
	}
	for _, series := range c.Series {
		if len(series.Data) > 0 {
			return true
		}
	}
	return false
}

// finiteChart reports whether every number in c can be encoded as JSON.
func finiteChart(c domain.Chart) bool {
	for _, series := range c.Series {
		for _, p := range series.Data {
			if !analytics.Finite(p.Y) {
				return false
			}
			if x, ok := p.X.(float64); ok && !analytics.Finite(x) {
				return false
			}
		}
	}
	if c.Heatmap != nil {
		for _, row := range c.Heatmap.Values {
			for _, v := range row {
				if v != nil && !analytics.Finite(*v) {
					return false
				}
			}
		}
	}
	return true
}

// emptyChart is the placeholder for a chart with nothing to plot.
func emptyChart(id string, kind domain.ChartType, title string) domain.Chart {
	if title == "" {
		title = "No Data Available"
	}
	return domain.Chart{
		ID:         id,
		Type:       kind,
		Title:      WrapTitle(title),
		Annotation: config.NoDataAnnotation,
		Empty:      true,
	}
}

// restrictTo drops the selection dimensions a page does not offer.
func restrictTo(sel domain.Selection, dims []domain.Dimension) domain.Selection {
	var out domain.Selection
	for _, d := range dims {
		switch d {
		case domain.DimCountries:
			out.Countries = sel.Countries
		case domain.DimYearRange:
			out.YearRange = sel.YearRange
			out.Years = sel.Years
		case domain.DimCategories:
			out.Categories = sel.Categories
		case domain.DimNutrients:
			out.Nutrients = sel.Nutrients
		case domain.DimUnits:
			out.Units = sel.Units
		case domain.DimWaterTypes:
			out.WaterTypes = sel.WaterTypes
		case domain.DimErosionLevels:
			out.ErosionLevels = sel.ErosionLevels
		case domain.DimStatuses:
			out.Statuses = sel.Statuses
		case domain.DimContaminationTypes:
			out.ContaminationTypes = sel.ContaminationTypes
		}
	}
	return out
}

// applyBase is the base set of pages that only filter the full dataset.
func applyBase(source []domain.Observation, sel domain.Selection) []domain.Observation {
	return analytics.Apply(source, sel)
}
