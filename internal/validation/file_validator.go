// Package validation checks workbook inputs before they reach the
// ingestion pipeline.
package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// workbookExtensions lists the spreadsheet formats excelize can open.
var workbookExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xltx": true,
	".xltm": true,
}

// FileValidator validates workbook files and upload names.
type FileValidator struct {
	logger   *slog.Logger
	maxBytes int64
}

// NewFileValidator creates a validator. maxBytes of 0 disables the size check.
func NewFileValidator(logger *slog.Logger, maxBytes int64) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger, maxBytes: maxBytes}
}

// ValidateWorkbookName checks that the file name carries a spreadsheet
// extension. Used for uploads, where only the name is known up front.
func (v *FileValidator) ValidateWorkbookName(name string) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !workbookExtensions[ext] {
		return fmt.Errorf("unsupported file type %q (want a .xlsx workbook)", ext)
	}
	return nil
}

// ValidateWorkbookFile checks that the path exists, is a regular file with
// a spreadsheet extension, and is within the size limit.
func (v *FileValidator) ValidateWorkbookFile(path string) error {
	if err := v.ValidateWorkbookName(path); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("workbook %s does not exist", path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a workbook", path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("workbook %s is empty", path)
	}
	if v.maxBytes > 0 && info.Size() > v.maxBytes {
		v.logger.Warn("workbook exceeds size limit",
			slog.String("path", path),
			slog.Int64("size", info.Size()),
			slog.Int64("limit", v.maxBytes))
		return fmt.Errorf("workbook %s exceeds size limit (%d > %d bytes)", path, info.Size(), v.maxBytes)
	}
	return nil
}

// ValidateInputDirectory checks that dir exists and, when pattern is non
// empty, contains at least one matching workbook.
func (v *FileValidator) ValidateInputDirectory(dir, pattern string) error {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return fmt.Errorf("input directory %s does not exist", dir)
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	if pattern != "" {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return fmt.Errorf("failed to check for workbooks: %w", err)
		}
		if len(matches) == 0 {
			return fmt.Errorf("no workbooks matching %q in %s", pattern, dir)
		}
	}
	return nil
}
