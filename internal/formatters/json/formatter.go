// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package json

import (
	"encoding/json"
	"fmt"

	"pdftext/internal/extractor"
	"pdftext/internal/formatters"
)

// Formatter implements JSON output formatting
type Formatter struct{}

// NewFormatter creates a new JSON formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "json"
}

func (f *Formatter) Description() string {
	return "Structured JSON output for programmatic consumption (default)"
}

func (f *Formatter) FileExtension() string {
	return ".json"
}

// Format renders the result as one JSON object. Output is a compact single
// line unless Pretty is set; consumers parsing stdout rely on the compact
// form.
func (f *Formatter) Format(result *extractor.Result, options formatters.FormatterOptions) (string, error) {
	var jsonData []byte
	var err error

	if options.Pretty {
		jsonData, err = json.MarshalIndent(result, "", "  ")
	} else {
		jsonData, err = json.Marshal(result)
	}

	if err != nil {
		return "", fmt.Errorf("error formatting JSON: %v", err)
	}

	return string(jsonData), nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
