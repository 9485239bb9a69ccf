package dataprocessing

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "costlens/internal/errors"
)

// LoadGrid reads the cell grid from an Excel workbook on disk. The sheet
// is chosen by name when given; otherwise the first sheet containing a
// header anchor token wins, falling back to the first sheet.
func LoadGrid(filePath, sheetName string) ([][]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return gridFromWorkbook(f, sheetName)
}

// LoadGridFromReader reads the cell grid from workbook bytes, used for
// uploaded files that never touch disk.
func LoadGridFromReader(r io.Reader, sheetName string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return gridFromWorkbook(f, sheetName)
}

func gridFromWorkbook(f *excelize.File, sheetName string) ([][]string, error) {
	if sheetName != "" {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
		}
		return rows, nil
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewMalformedInput("workbook has no sheets")
	}

	for _, name := range sheets {
		rows, err := f.GetRows(name)
		if err != nil {
			continue
		}
		if sheetHasAnchor(rows) {
			slog.Debug("selected sheet by anchor token", slog.String("sheet", name))
			return rows, nil
		}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func sheetHasAnchor(rows [][]string) bool {
	for _, row := range rows {
		for _, cell := range row {
			for _, anchor := range headerAnchors {
				if strings.Contains(cell, anchor) {
					return true
				}
			}
		}
	}
	return false
}
