package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/birdwell/trading-cards/internal/domain"
)

// runCLI executes cardctl against the data directory and returns stdout.
func runCLI(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{
		"--data-path", dataDir,
		"--env-file=",
		"--env", "development",
		"--db-driver", "sqlite",
	}, args...))

	err := root.Execute()
	return out.String(), err
}

func writeChecklist(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const toppsChrome = "card_number,player_name,card_type\n1,Patrick Mahomes,Base\n2,Josh Allen,Base\n"

func TestImport_CreatesThenSkips(t *testing.T) {
	dataDir := t.TempDir()
	file := writeChecklist(t, "2024-Topps-Chrome-Football-Checklist.csv", toppsChrome)

	out, err := runCLI(t, dataDir, "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, `imported set 1 "Topps Chrome" (2024 Football): 2 cards`)

	out, err = runCLI(t, dataDir, "import", "--no-index", file)
	require.NoError(t, err)
	assert.Contains(t, out, "already imported as set 1")
}

func TestImport_UnsupportedFile(t *testing.T) {
	file := writeChecklist(t, "2024-Topps-Chrome-Football-Checklist.txt", "x")

	_, err := runCLI(t, t.TempDir(), "import", file)
	require.Error(t, err)
}

func TestCollectionWorkflow(t *testing.T) {
	dataDir := t.TempDir()
	file := writeChecklist(t, "2024-Topps-Chrome-Football-Checklist.csv", toppsChrome)

	_, err := runCLI(t, dataDir, "import", file)
	require.NoError(t, err)

	out, err := runCLI(t, dataDir, "own", "1")
	require.NoError(t, err)
	assert.Equal(t, "#1 Patrick Mahomes (Base): owned\n", out)

	out, err = runCLI(t, dataDir, "-o", "json", "brands")
	require.NoError(t, err)
	var brands []domain.BrandSummary
	require.NoError(t, json.Unmarshal([]byte(out), &brands))
	require.Len(t, brands, 1)
	assert.Equal(t, "Topps Chrome", brands[0].Brand)
	assert.Equal(t, 50, brands[0].OverallStats.CompletionPercentage)

	out, err = runCLI(t, dataDir, "-o", "yaml", "stats", "1")
	require.NoError(t, err)
	var stats map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 50, stats["completionPercentage"])
	assert.Equal(t, 1, stats["setId"])

	out, err = runCLI(t, dataDir, "brand", "topps", "chrome")
	require.NoError(t, err)
	assert.Contains(t, out, "Topps Chrome")
	assert.Contains(t, out, "1/2 cards owned (50%)")

	out, err = runCLI(t, dataDir, "sets", "--year", "2024")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-Topps-Chrome-Football-Checklist.csv")

	_, err = runCLI(t, dataDir, "own", "--remove", "1")
	require.NoError(t, err)
	out, err = runCLI(t, dataDir, "-o", "json", "stats", "1")
	require.NoError(t, err)
	assert.Contains(t, out, `"completionPercentage": 0`)
}

func TestBrand_NotFoundSuggests(t *testing.T) {
	dataDir := t.TempDir()
	file := writeChecklist(t, "2024-Topps-Chrome-Football-Checklist.csv", toppsChrome)
	_, err := runCLI(t, dataDir, "import", file)
	require.NoError(t, err)

	_, err = runCLI(t, dataDir, "brand", "Topps Chrom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did you mean: Topps Chrome?")
}

func TestStats_Errors(t *testing.T) {
	dataDir := t.TempDir()

	_, err := runCLI(t, dataDir, "stats", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid set id "abc"`)

	_, err = runCLI(t, dataDir, "stats", "42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "set 42 not found")
}

func TestOutputFormat_Invalid(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "-o", "xml", "brands")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown output format "xml"`)
}

func TestMigrate(t *testing.T) {
	dataDir := t.TempDir()

	out, err := runCLI(t, dataDir, "migrate", "up")
	require.NoError(t, err)
	assert.Regexp(t, `^schema version [1-9]\d*\n$`, out)

	out, err = runCLI(t, dataDir, "migrate", "down")
	require.NoError(t, err)
	assert.Equal(t, "schema version 0\n", out)
}

func TestReindex(t *testing.T) {
	dataDir := t.TempDir()
	file := writeChecklist(t, "2023-24-Panini-Prizm-Basketball-Checklist.csv", toppsChrome)

	_, err := runCLI(t, dataDir, "import", "--no-index", file)
	require.NoError(t, err)

	out, err := runCLI(t, dataDir, "reindex")
	require.NoError(t, err)
	assert.Equal(t, "indexed 2 cards\n", out)
}
