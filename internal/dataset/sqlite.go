package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"agridash/pkg/contracts/domain"
)

// TableName is the SQLite table holding observations.
const TableName = "observations"

func fieldNames() []string {
	names := make([]string, len(domain.Fields))
	for i, f := range domain.Fields {
		names[i] = string(f)
	}
	return names
}

func loadSQLite(ctx context.Context, path string) ([]domain.Observation, int, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, 0, err
	}
	defer db.Close()

	query := fmt.Sprintf(`SELECT %s FROM %q ORDER BY rowid`, strings.Join(fieldNames(), ", "), TableName)
	rs, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("querying %s: %w", TableName, err)
	}
	defer rs.Close()

	var (
		rows    []domain.Observation
		skipped int
	)
	for rs.Next() {
		var (
			o     domain.Observation
			year  sql.NullInt64
			value sql.NullFloat64
			text  [7]sql.NullString
		)
		if err := rs.Scan(&o.Country, &year, &text[0], &text[1], &text[2], &text[3], &text[4], &text[5], &text[6], &value); err != nil {
			return nil, 0, fmt.Errorf("scanning row: %w", err)
		}
		if !year.Valid || !value.Valid {
			skipped++
			continue
		}
		o.Year = int(year.Int64)
		o.ObsValue = value.Float64
		o.MeasureCategory = text[0].String
		o.Nutrients = text[1].String
		o.MeasureUnit = text[2].String
		o.UnitMultiplier = text[3].String
		o.WaterType = text[4].String
		o.ErosionRiskLevel = text[5].String
		o.ObservationStatus = text[6].String
		rows = append(rows, o)
	}
	if err := rs.Err(); err != nil {
		return nil, 0, err
	}
	return rows, skipped, nil
}

// WriteSQLite stores rows in a fresh observations table at path, replacing
// any existing table.
func WriteSQLite(ctx context.Context, path string, rows []domain.Observation) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		fmt.Sprintf(`DROP TABLE IF EXISTS %q`, TableName),
		fmt.Sprintf(`CREATE TABLE %q (
			country TEXT NOT NULL,
			year INTEGER NOT NULL,
			measure_category TEXT,
			nutrients TEXT,
			measure_unit TEXT,
			unit_multiplier TEXT,
			water_type TEXT,
			erosion_risk_level TEXT,
			observation_status TEXT,
			obs_value REAL NOT NULL
		)`, TableName),
	}
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("creating table: %w", err)
		}
	}

	placeholders := strings.TrimRight(strings.Repeat("?,", len(domain.Fields)), ",")
	insert, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %q (%s) VALUES (%s)`,
		TableName, strings.Join(fieldNames(), ", "), placeholders))
	if err != nil {
		return err
	}
	defer insert.Close()

	for _, o := range rows {
		if _, err := insert.ExecContext(ctx,
			o.Country, o.Year, nullable(o.MeasureCategory), nullable(o.Nutrients),
			nullable(o.MeasureUnit), nullable(o.UnitMultiplier), nullable(o.WaterType),
			nullable(o.ErosionRiskLevel), nullable(o.ObservationStatus), o.ObsValue,
		); err != nil {
			return fmt.Errorf("inserting %s/%d: %w", o.Country, o.Year, err)
		}
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(
		`CREATE INDEX IF NOT EXISTS idx_observations_country_year ON %q(country, year)`, TableName)); err != nil {
		return err
	}
	return tx.Commit()
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
