// Package services implements the business logic layer of the dashboard.
// It sits between the HTTP handlers and the shared, read-only dataset and
// keeps every page computation out of the transport layer.
//
// # Available Services
//
//   - DashboardService: computes the KPIs and charts of the five pages
//     (overview, nutrients, manure, erosion, water) for a selection
//   - DataService: filter options, paged observations and exports
//   - HealthService: liveness, readiness and version information
//   - SnapshotService: writes the KPIs of every page to the reports directory
//
// # Page Computation
//
// Each page is a table of KPI and chart definitions over a base row set.
// A request narrows the selection to the page's dimensions, derives the base
// rows once, and evaluates the items concurrently:
//
//	res, err := dashboard.Compute(ctx, domain.PageWater, domain.Selection{
//	    Countries:          []string{"France"},
//	    ContaminationTypes: []string{"Nitrate"},
//	})
//
// An empty row set never fails: KPIs report their placeholder ("0", "N/A",
// "0%") and charts come back empty with an annotation. A KPI or chart that
// panics is logged with its id, counted, and degraded to the same
// placeholder while the rest of the page is unaffected.
//
// # Error Handling
//
// Lookup failures wrap the sentinel errors ErrUnknownPage, ErrUnknownKPI and
// ErrUnknownChart so handlers can map them with errors.Is. Context
// cancellation is returned as is.
package services
