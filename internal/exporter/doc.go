// Package exporter renders result sets to portable text forms.
//
// Any tabular result can be rendered as CSV (fields quoted and escaped when
// they contain a comma, quote or newline) and the raw item collection can be
// serialized to JSON and parsed back without loss. File output goes through
// CSVWriter, which prefixes a UTF-8 BOM so Excel opens the files correctly.
package exporter
