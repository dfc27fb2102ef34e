// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package extractor

import (
	"pdftext/internal/metadata"
)

// Result is the outcome of one extraction run. It is always fully
// populated, on failure too, so callers can serialize it unconditionally.
type Result struct {
	Success  bool               `json:"success" yaml:"success"`
	Text     string             `json:"text" yaml:"text"`
	Pages    int                `json:"pages" yaml:"pages"`
	Length   int                `json:"length" yaml:"length"`
	Error    string             `json:"error,omitempty" yaml:"error,omitempty"`
	Metadata *metadata.Document `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Failure converts an error into the failure-shaped result: empty text,
// zero counts, the error message as data. No partial text survives a
// failure.
func Failure(err error) *Result {
	return &Result{
		Success: false,
		Error:   err.Error(),
	}
}
