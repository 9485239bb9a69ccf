package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0644))
}

func TestFileValidator_ValidateWorkbookName(t *testing.T) {
	v := NewFileValidator(nil, 0)

	assert.NoError(t, v.ValidateWorkbookName("report.xlsx"))
	assert.NoError(t, v.ValidateWorkbookName("REPORT.XLSX"))
	assert.NoError(t, v.ValidateWorkbookName("macro.xlsm"))
	assert.Error(t, v.ValidateWorkbookName("report.csv"))
	assert.Error(t, v.ValidateWorkbookName("report"))
	assert.Error(t, v.ValidateWorkbookName("report.xls"))
}

func TestFileValidator_ValidateWorkbookFile(t *testing.T) {
	dir := t.TempDir()
	v := NewFileValidator(nil, 100)

	good := filepath.Join(dir, "report.xlsx")
	writeFile(t, good, 50)
	assert.NoError(t, v.ValidateWorkbookFile(good))

	missing := filepath.Join(dir, "missing.xlsx")
	assert.Error(t, v.ValidateWorkbookFile(missing))

	empty := filepath.Join(dir, "empty.xlsx")
	writeFile(t, empty, 0)
	assert.Error(t, v.ValidateWorkbookFile(empty))

	big := filepath.Join(dir, "big.xlsx")
	writeFile(t, big, 200)
	assert.Error(t, v.ValidateWorkbookFile(big))

	dirAsWorkbook := filepath.Join(dir, "folder.xlsx")
	require.NoError(t, os.Mkdir(dirAsWorkbook, 0755))
	assert.Error(t, v.ValidateWorkbookFile(dirAsWorkbook), "directories are rejected")
}

func TestFileValidator_NoSizeLimit(t *testing.T) {
	dir := t.TempDir()
	v := NewFileValidator(nil, 0)

	big := filepath.Join(dir, "big.xlsx")
	writeFile(t, big, 4096)
	assert.NoError(t, v.ValidateWorkbookFile(big))
}

func TestFileValidator_ValidateInputDirectory(t *testing.T) {
	dir := t.TempDir()
	v := NewFileValidator(nil, 0)

	writeFile(t, filepath.Join(dir, "a.xlsx"), 10)

	assert.NoError(t, v.ValidateInputDirectory(dir, ""))
	assert.NoError(t, v.ValidateInputDirectory(dir, "*.xlsx"))
	assert.Error(t, v.ValidateInputDirectory(dir, "*.xlsm"), "no matching workbooks")
	assert.Error(t, v.ValidateInputDirectory(filepath.Join(dir, "missing"), ""))
	assert.Error(t, v.ValidateInputDirectory(filepath.Join(dir, "a.xlsx"), ""), "file is not a directory")
}
