// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package csv

import (
	"encoding/json"
	"fmt"
	"strings"

	"pdftext/internal/extractor"
	"pdftext/internal/formatters"
)

// Formatter implements CSV output formatting
type Formatter struct{}

// NewFormatter creates a new CSV formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "csv"
}

func (f *Formatter) Description() string {
	return "Comma-separated values for spreadsheet import"
}

func (f *Formatter) FileExtension() string {
	return ".csv"
}

func (f *Formatter) Format(result *extractor.Result, options formatters.FormatterOptions) (string, error) {
	headers := []string{"File", "Success", "Pages", "Length", "Error", "Text"}
	if options.Verbose && result.Metadata != nil {
		headers = append(headers, "Metadata")
	}

	row := []string{
		f.escapeCSVField(options.SourcePath),
		fmt.Sprintf("%t", result.Success),
		fmt.Sprintf("%d", result.Pages),
		fmt.Sprintf("%d", result.Length),
		f.escapeCSVField(result.Error),
		f.escapeCSVField(result.Text),
	}

	if options.Verbose && result.Metadata != nil {
		metadataJSON, err := json.Marshal(result.Metadata)
		if err != nil {
			row = append(row, f.escapeCSVField("Error serializing metadata"))
		} else {
			row = append(row, f.escapeCSVField(string(metadataJSON)))
		}
	}

	return strings.Join(headers, ",") + "\n" + strings.Join(row, ","), nil
}

// escapeCSVField properly escapes a field for CSV format and prevents CSV injection
func (f *Formatter) escapeCSVField(field string) string {
	// Prevent CSV injection by sanitizing formula characters
	field = f.sanitizeFormulaInjection(field)

	// If field contains comma, quote, or newline, wrap in quotes and escape internal quotes
	if strings.Contains(field, ",") || strings.Contains(field, "\"") || strings.Contains(field, "\n") || strings.Contains(field, "\r") {
		escaped := strings.ReplaceAll(field, "\"", "\"\"")
		return fmt.Sprintf("\"%s\"", escaped)
	}
	return field
}

// sanitizeFormulaInjection prevents CSV injection attacks by sanitizing formula characters
func (f *Formatter) sanitizeFormulaInjection(field string) string {
	if len(field) == 0 {
		return field
	}

	// Formula characters are dangerous when the CSV lands in a spreadsheet
	firstChar := field[0]
	if firstChar == '=' || firstChar == '+' || firstChar == '-' || firstChar == '@' {
		return "'" + field
	}

	return field
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
