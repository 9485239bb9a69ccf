package dataprocessing

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, sheets map[string][][]interface{}) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	return f
}

func TestLoadGridFromReader_NamedSheet(t *testing.T) {
	f := buildWorkbook(t, map[string][][]interface{}{
		"コスト管理": {
			{"項目CD", "内容"},
			{"", ""},
			{"A.1", "売上"},
		},
	})
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	grid, err := LoadGridFromReader(&buf, "コスト管理")
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(grid), 3)
	assert.Equal(t, "項目CD", grid[0][0])
	assert.Equal(t, "A.1", grid[2][0])
}

func TestLoadGridFromReader_UnknownSheet(t *testing.T) {
	f := buildWorkbook(t, map[string][][]interface{}{
		"Sheet1": {{"項目CD"}},
	})
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	_, err := LoadGridFromReader(&buf, "nope")
	assert.Error(t, err)
}

func TestLoadGridFromReader_AnchorSheetWins(t *testing.T) {
	f := buildWorkbook(t, map[string][][]interface{}{
		"表紙": {{"コスト管理表", "2023年度"}},
		"明細": {
			{"項目CD", "内容"},
			{"", ""},
			{"B.1", "外注費"},
		},
	})
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))

	grid, err := LoadGridFromReader(&buf, "")
	require.NoError(t, err)

	require.NotEmpty(t, grid)
	assert.Equal(t, "項目CD", grid[0][0], "the sheet carrying the header anchor is selected")
}

func TestLoadGrid_File(t *testing.T) {
	f := buildWorkbook(t, map[string][][]interface{}{
		"Sheet1": {
			{"項目CD", "内容"},
			{"", ""},
			{"A.1", "売上"},
		},
	})
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, f.SaveAs(path))

	grid, err := LoadGrid(path, "")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(grid), 3)

	// The loaded grid feeds straight into ingestion.
	p := NewProcessor(nil)
	result, _, err := p.Ingest(context.Background(), grid, path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ValidRows)
}

func TestLoadGrid_MissingFile(t *testing.T) {
	_, err := LoadGrid(filepath.Join(t.TempDir(), "missing.xlsx"), "")
	assert.Error(t, err)
}
