package dataprocessing

import (
	"strings"

	apperrors "costlens/internal/errors"
)

// headerAnchors are the column labels that identify the header row. The
// source reports always carry the item code column (項目CD) and the
// content/description column (内容).
var headerAnchors = []string{"項目CD", "内容"}

// DetectHeader scans the grid top-down and returns the index of the first
// header row. The header occupies two consecutive rows (group labels and
// sub labels); data begins two rows after the returned index.
//
// When no row carries an anchor token the first row is assumed to be the
// header. An empty grid is the one fatal condition: ingestion cannot
// proceed without any cells.
func DetectHeader(grid [][]string) (int, error) {
	if len(grid) == 0 {
		return 0, apperrors.NewMalformedInput("grid has no rows")
	}

	empty := true
	for _, row := range grid {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				empty = false
				break
			}
		}
		if !empty {
			break
		}
	}
	if empty {
		return 0, apperrors.NewMalformedInput("grid has no cells")
	}

	for i, row := range grid {
		for _, cell := range row {
			text := strings.TrimSpace(cell)
			if text == "" {
				continue
			}
			for _, anchor := range headerAnchors {
				if strings.Contains(text, anchor) {
					return i, nil
				}
			}
		}
	}

	return 0, nil
}
