package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SampleCSV is a four-row indicator table: France has a balance row and a
// land area of 50 thousand hectares, Japan has a balance row without land
// area and one high erosion observation.
const SampleCSV = "Country,Year,Measure_Category,Nutrients,Measure_Unit,Water_Type,Erosion_Risk_Level,Observation_Status,Obs_Value\n" +
	"France,2000,Balance (inputs minus outputs),Nitrogen,Tonnes,,,Normal value,100\n" +
	"France,2000,Total agricultural land area,,Thousand hectares,,,Normal value,50\n" +
	"Japan,2001,Balance (inputs minus outputs),Phosphorus,Tonnes,,,Estimated value,30\n" +
	"Japan,2001,Water erosion,,Percentage,,High,Normal value,4\n"

// SampleRows is the number of observations in SampleCSV.
const SampleRows = 4

// WriteDataset writes SampleCSV to dir/name and returns the full path.
func WriteDataset(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(SampleCSV), 0o644); err != nil {
		t.Fatalf("writing sample dataset: %v", err)
	}
	return path
}
