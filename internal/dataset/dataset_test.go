package dataset

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"agridash/pkg/contracts/domain"
)

const sampleCSV = "\ufeffCountry,Year,Measure_Category,Nutrients,Measure_Unit,Water_Type,Erosion_Risk_Level,Observation_Status,Obs_Value\n" +
	"France,2000,Nutrient inputs,Nitrogen,Tonnes,,,Normal value,12.5\n" +
	"Japan,2003,Agriculture freshwater abstraction,,Cubic metres,Groundwater,,Estimated value,7\n" +
	"Peru,n/a,Nutrient inputs,Nitrogen,Tonnes,,,Normal value,1\n" +
	"\n" +
	"Chile,2010,Water erosion,,Percentage,,High,Normal value,3\n"

func discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestReadCSV(t *testing.T) {
	rows, skipped, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 1, skipped)
	require.Len(t, rows, 3)
	assert.Equal(t, domain.Observation{
		Country:           "France",
		Year:              2000,
		MeasureCategory:   "Nutrient inputs",
		Nutrients:         "Nitrogen",
		MeasureUnit:       "Tonnes",
		ObservationStatus: "Normal value",
		ObsValue:          12.5,
	}, rows[0])
	assert.Equal(t, "Groundwater", rows[1].WaterType)
	assert.Equal(t, "High", rows[2].ErosionRiskLevel)
}

func TestReadCSVAliases(t *testing.T) {
	in := "REF_AREA,TIME_PERIOD,MEASURE,UNIT_MEASURE,OBS_STATUS,OBS_VALUE\nItaly,2015,Nutrient outputs,Tonnes,Break,4\n"

	rows, _, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Italy", rows[0].Country)
	assert.Equal(t, 2015, rows[0].Year)
	assert.Equal(t, "Nutrient outputs", rows[0].MeasureCategory)
	assert.Equal(t, "Break", rows[0].ObservationStatus)
}

func TestReadCSVErrors(t *testing.T) {
	_, _, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoHeader)

	_, _, err = ReadCSV(strings.NewReader("country,year\nFrance,2000\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		"a.csv":           FormatCSV,
		"A.CSV":           FormatCSV,
		"b.xlsx":          FormatXLSX,
		"c.db":            FormatSQLite,
		"d.sqlite3":       FormatSQLite,
		"nested/e.sqlite": FormatSQLite,
	}
	for path, want := range tests {
		got, err := DetectFormat(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := DetectFormat("data.parquet")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDatasetInfoAndOptions(t *testing.T) {
	rows, _, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	ds := New(rows, "memory", "csv")
	assert.Equal(t, 3, ds.Len())

	info := ds.Info()
	assert.Equal(t, 2000, info.MinYear)
	assert.Equal(t, 2010, info.MaxYear)
	assert.NotEmpty(t, info.LoadedAt)

	opts := ds.Options()
	assert.Equal(t, []string{"Chile", "France", "Japan"}, opts.Countries)
	assert.Equal(t, []string{"Groundwater"}, opts.WaterTypes)
	assert.Equal(t, []string{"High"}, opts.ErosionLevels)
	assert.Equal(t, []string{"Estimated value", "Normal value"}, opts.Statuses)
	assert.Equal(t, domain.ContaminationTypes, opts.ContaminationTypes)
}

func TestLoadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "indicators.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	ds, err := Load(context.Background(), path, discard())
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, "csv", ds.Info().Format)
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "indicators.xlsx")

	f := excelize.NewFile()
	_, err := f.NewSheet("Notes")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Notes", "A1", &[]interface{}{"generated", "by", "hand"}))
	_, err = f.NewSheet("Data")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Data", "A1", &[]interface{}{"country", "year", "measure_category", "obs_value"}))
	require.NoError(t, f.SetSheetRow("Data", "A2", &[]interface{}{"France", 2001, "Land area", 999}))
	require.NoError(t, f.SetSheetRow("Data", "A3", &[]interface{}{"Spain", 2002, "Nutrient inputs", 3.5}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	ds, err := Load(context.Background(), path, discard())
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, "Land area", ds.Observations()[0].MeasureCategory)
	assert.Equal(t, 3.5, ds.Observations()[1].ObsValue)
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	rows, _, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "indicators.db")
	require.NoError(t, WriteSQLite(ctx, path, rows))
	// a second import replaces the table
	require.NoError(t, WriteSQLite(ctx, path, rows))

	ds, err := Load(ctx, path, discard())
	require.NoError(t, err)
	assert.Equal(t, rows, ds.Observations())
	assert.Equal(t, "sqlite", ds.Info().Format)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.csv"), discard())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
