// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pdftextlib

import (
	"bytes"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// rowLayoutText extracts page text using row-based positioning for better
// spacing than the plain text stream gives.
func rowLayoutText(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		// Fall back to plain extraction when row data is unavailable.
		return p.GetPlainText(nil)
	}

	sortedRows := make([]*pdf.Row, 0, len(rows))
	for _, row := range rows {
		if row != nil && len(row.Content) > 0 {
			sortedRows = append(sortedRows, row)
		}
	}

	// Order rows for top-to-bottom reading. PDF Y coordinates increase
	// from bottom to top, so higher Y means higher on the page.
	sort.Slice(sortedRows, func(i, j int) bool {
		return averageY(sortedRows[i].Content) > averageY(sortedRows[j].Content)
	})

	var buf bytes.Buffer
	for _, row := range sortedRows {
		rowText := joinRowText(row.Content)
		if strings.TrimSpace(rowText) != "" {
			buf.WriteString(rowText)
			buf.WriteString("\n")
		}
	}

	return buf.String(), nil
}

// averageY calculates the average Y coordinate for text elements in a row
func averageY(textElements []pdf.Text) float64 {
	if len(textElements) == 0 {
		return 0
	}

	var totalY float64
	for _, element := range textElements {
		totalY += element.Y
	}

	return totalY / float64(len(textElements))
}

// joinRowText joins a row's fragments left-to-right, inserting spaces where
// the horizontal gap between fragments is significant.
func joinRowText(textElements []pdf.Text) string {
	if len(textElements) == 0 {
		return ""
	}

	sortedElements := make([]pdf.Text, len(textElements))
	copy(sortedElements, textElements)

	sort.Slice(sortedElements, func(i, j int) bool {
		return sortedElements[i].X < sortedElements[j].X
	})

	var buf bytes.Buffer
	for i, element := range sortedElements {
		buf.WriteString(element.S)

		if i < len(sortedElements)-1 {
			next := sortedElements[i+1]
			gap := next.X - (element.X + element.W)

			// A gap above 20% of the font size reads as a word break.
			fontSize := element.FontSize
			if fontSize <= 0 {
				fontSize = 12
			}
			if gap > fontSize*0.2 {
				buf.WriteString(" ")
			}
		}
	}

	return buf.String()
}

// LooksReadable applies basic quality heuristics to extracted text:
// mostly printable characters and plausible word lengths. Callers use it
// for diagnostics only; it never changes the extraction result.
func LooksReadable(text string) bool {
	if len(text) == 0 {
		return false
	}

	printableCount := 0
	for _, r := range text {
		if (r >= 32 && r <= 126) || r == '\n' || r == '\r' || r == '\t' {
			printableCount++
		}
	}

	if float64(printableCount)/float64(len(text)) < 0.8 {
		return false
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return false
	}

	totalWordLength := 0
	for _, word := range words {
		totalWordLength += len(word)
	}
	avgWordLength := float64(totalWordLength) / float64(len(words))

	// Reasonable average word length is between 2 and 15 characters
	return avgWordLength >= 2 && avgWordLength <= 15
}
