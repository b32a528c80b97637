// Package analytics implements the filter-aggregate pipeline shared by every
// dashboard page: the selection filter engine, land-area normalization and
// the group-by helpers used to build KPIs and chart series.
//
// Every function is pure. Input slices are never modified and the returned
// slices never alias caller memory, so the loaded dataset can be shared by
// concurrent requests without locking.
package analytics
