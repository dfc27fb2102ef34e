// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package metadata

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// ValidateFile checks that the file at path exists and is a structurally
// valid PDF.
func ValidateFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", path)
	}

	if err := api.ValidateFile(path, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("invalid PDF file: %w", err)
	}

	return nil
}

// censusFromContext loads the document into a pdfcpu context and fills the
// page count and embedded-image count.
func censusFromContext(path string, doc *Document) error {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return fmt.Errorf("failed to read PDF context: %w", err)
	}

	doc.PageCount = ctx.PageCount
	doc.ImageCount = countImageStreams(ctx)

	return nil
}

// countImageStreams counts image XObjects in the document.
func countImageStreams(ctx *model.Context) int {
	if ctx.Optimize != nil {
		count := 0
		for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
			count += len(pdfcpu.ImageObjNrs(ctx, pageNr))
		}
		if count > 0 {
			return count
		}
	}

	// Fallback: scan the xref table for image subtype stream objects.
	count := 0
	for _, entry := range ctx.Table {
		if entry == nil || entry.Free || entry.Compressed {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if subtype, found := sd.Find("Subtype"); found {
			if name, isName := subtype.(types.Name); isName && name == "Image" {
				count++
			}
		}
	}
	return count
}
