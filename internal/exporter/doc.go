// Package exporter writes observation tables and KPI snapshots as CSV or
// XLSX.
//
// CSVWriter handles files under the reports directory, with an optional
// UTF-8 BOM for Excel compatibility. Write streams any table to an
// io.Writer in either format, which is how HTTP downloads and the agrictl
// export command produce their output.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(paths)
//	err := w.WriteSimpleCSV("snapshot_20240101.csv", exporter.KPIHeaders, records)
//
//	err = exporter.Write(resp, exporter.FormatXLSX, exporter.Table{
//	    Sheet:   "observations",
//	    Headers: exporter.ObservationHeaders(true),
//	    Records: exporter.NormalizedRecords(rows),
//	})
package exporter
