package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agridash/internal/shared/testutil"
	"agridash/pkg/contracts"
	"agridash/pkg/contracts/domain"
)

// setup writes the sample dataset into a fresh base directory.
func setup(t *testing.T) (dir, datasetPath string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("AGRI_PATHS_BASE_DIR", dir)
	t.Setenv("AGRI_CONFIG_FILE", filepath.Join(dir, "absent.yaml"))
	return dir, testutil.WriteDataset(t, dir, "indicators.csv")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestKPICommand(t *testing.T) {
	_, ds := setup(t)

	out, err := run(t, "kpi", "--dataset", ds)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "PAGE"))
	assert.Contains(t, out, "total_indicators")

	out, err = run(t, "kpi", "--dataset", ds, "--page", "all", "--json")
	require.NoError(t, err)
	var results []domain.PageResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, len(domain.Pages))
	for i, id := range domain.Pages {
		assert.Equal(t, id, results[i].Page)
	}
}

func TestKPICommandErrors(t *testing.T) {
	_, ds := setup(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "unknown page", args: []string{"--page", "forestry"}, wantErr: "forestry"},
		{name: "bad contamination", args: []string{"--contamination-type", "Arsenic"}, wantErr: "contamination_types"},
		{name: "inverted years", args: []string{"--year-start", "2010", "--year-end", "2000"}, wantErr: "invalid selection"},
		{name: "positional args", args: []string{"overview"}, wantErr: "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append([]string{"kpi", "--dataset", ds}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExportCommand(t *testing.T) {
	dir, ds := setup(t)

	out, err := run(t, "export", "--dataset", ds, "--country", "Japan")
	require.NoError(t, err)
	assert.Contains(t, out, "Japan")
	assert.NotContains(t, out, "France")

	target := filepath.Join(dir, "all.xlsx")
	_, err = run(t, "export", "--dataset", ds, "--format", "xlsx", "--out", target, "--normalize")
	require.NoError(t, err)
	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())

	_, err = run(t, "export", "--dataset", ds, "--format", "pdf")
	assert.Error(t, err)
}

func TestImportCommand(t *testing.T) {
	dir, ds := setup(t)
	db := filepath.Join(dir, "indicators.db")

	out, err := run(t, "import", "--from", ds, "--to", db)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 4 rows")

	fromCSV, err := run(t, "export", "--dataset", ds)
	require.NoError(t, err)
	fromDB, err := run(t, "export", "--dataset", db)
	require.NoError(t, err)
	assert.Equal(t, fromCSV, fromDB)

	_, err = run(t, "import", "--from", ds, "--to", filepath.Join(dir, "out.csv"))
	assert.Error(t, err)
}

func TestSnapshotCommand(t *testing.T) {
	dir, ds := setup(t)

	out, err := run(t, "snapshot", "--dataset", ds)
	require.NoError(t, err)

	path := strings.TrimSpace(out)
	assert.Equal(t, filepath.Join(dir, "data", "reports"), filepath.Dir(path))
	assert.FileExists(t, path)
	assert.True(t, strings.HasSuffix(path, ".csv"))
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, contracts.Version)

	out, err = run(t, "version", "--json")
	require.NoError(t, err)
	var info contracts.VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, contracts.APIVersion, info.APIVersion)
}
