// Package dataset loads the agri-environmental observation table and holds
// it as an immutable, shared, read-only value for the lifetime of the
// process.
//
// Sources are chosen by file extension: .csv, .xlsx, and .db/.sqlite/.sqlite3.
// Column headers are matched case-insensitively and a few common aliases
// (TIME_PERIOD, OBS_STATUS, UNIT_MEASURE, ...) are understood.
package dataset
