// Package http implements the HTTP and WebSocket handlers of the agridash
// service. Handlers stay thin: they parse the request into a selection,
// call a service, and render the result or an RFC 7807 problem.
//
// # Routes
//
//	GET  /api/dashboard/pages                        page catalogue
//	GET  /api/dashboard/{page}                       full page for ?selection
//	POST /api/dashboard/{page}                       full page, selection in body
//	GET  /api/dashboard/{page}/kpis/{kpi}            one KPI card
//	GET  /api/dashboard/{page}/charts/{chart}        one chart
//	GET  /api/data/filters                           selectable values
//	GET  /api/data/info                              dataset summary
//	GET  /api/data/observations                      paged filtered rows
//	GET  /api/data/export.{csv,xlsx}                 filtered download
//	GET  /api/data/reports                           snapshot files
//	GET  /api/data/reports/{path}                    snapshot download
//	GET  /api/health, /api/health/ready, /api/health/live, /api/version
//	GET  /ws/dashboard                               live session
//
// # Selections
//
// Selection-aware endpoints accept repeated query parameters, one per
// value: ?country=France&country=Japan&year_start=2000&year_end=2010.
// The value "All" in a dimension disables its restriction.
//
// # Errors
//
// Every failure is rendered by the shared ErrorHandler as a problem
// document:
//
//	{
//	    "type": "/errors/dashboard/page-not-found",
//	    "title": "Not Found",
//	    "status": 404,
//	    "detail": "dashboard page \"forestry\" not found",
//	    "instance": "/api/dashboard/forestry"
//	}
package http
