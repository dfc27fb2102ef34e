// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package helpers builds small PDF fixtures for tests. The files are
// written object by object with a correct cross-reference table, so real
// PDF parsers accept them.
package helpers

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WritePDF writes a minimal single-font PDF with one uncompressed content
// stream per page. Each page shows its text as a single line. An empty or
// whitespace-only page text produces a page with an empty content stream.
func WritePDF(t *testing.T, dir, name string, pageTexts []string) string {
	t.Helper()

	streams := make([]string, len(pageTexts))
	for i, text := range pageTexts {
		streams[i] = textContentStream(text)
	}
	return writePDF(t, dir, name, streams, nil)
}

// WriteRawContentPDF writes a PDF whose pages carry the given raw content
// streams verbatim. Used to test position-dependent extraction.
func WriteRawContentPDF(t *testing.T, dir, name string, contentStreams []string) string {
	t.Helper()
	return writePDF(t, dir, name, contentStreams, nil)
}

// WriteFormPDF writes a PDF whose catalog carries an AcroForm with the
// given text fields, each as a [name, value] pair.
func WriteFormPDF(t *testing.T, dir, name string, pageTexts []string, fields [][2]string) string {
	t.Helper()

	streams := make([]string, len(pageTexts))
	for i, text := range pageTexts {
		streams[i] = textContentStream(text)
	}
	return writePDF(t, dir, name, streams, fields)
}

func writePDF(t *testing.T, dir, name string, contentStreams []string, fields [][2]string) string {
	t.Helper()

	numPages := len(contentStreams)
	numFields := len(fields)

	// Object layout: 1 catalog, 2 page tree, 3 font, then one page object
	// and one content stream per page, then one object per form field.
	pageObj := func(i int) int { return 4 + 2*i }
	contentObj := func(i int) int { return 5 + 2*i }
	fieldObj := func(i int) int { return 4 + 2*numPages + i }

	var buf bytes.Buffer
	offsets := make([]int, 0, 3+2*numPages+numFields)

	writeObj := func(num int, body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, body)
	}

	buf.WriteString("%PDF-1.4\n")

	catalog := "<< /Type /Catalog /Pages 2 0 R"
	if numFields > 0 {
		refs := make([]string, numFields)
		for i := range fields {
			refs[i] = fmt.Sprintf("%d 0 R", fieldObj(i))
		}
		catalog += fmt.Sprintf(" /AcroForm << /Fields [%s] >>", strings.Join(refs, " "))
	}
	catalog += " >>"
	writeObj(1, catalog)

	kids := make([]string, numPages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", pageObj(i))
	}
	writeObj(2, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>",
		strings.Join(kids, " "), numPages))

	writeObj(3, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	for i, stream := range contentStreams {
		writeObj(pageObj(i), fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			contentObj(i)))
		writeObj(contentObj(i), fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream",
			len(stream), stream))
	}

	for i, field := range fields {
		writeObj(fieldObj(i), fmt.Sprintf("<< /FT /Tx /T (%s) /V (%s) >>",
			EscapePDFString(field[0]), EscapePDFString(field[1])))
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, xrefOffset)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		t.Fatalf("failed to write test PDF %s: %v", name, err)
	}
	return path
}

// textContentStream renders text as one visible line on the page
func textContentStream(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return fmt.Sprintf("BT\n/F1 12 Tf\n72 720 Td\n(%s) Tj\nET", EscapePDFString(text))
}

// EscapePDFString escapes the characters that end or escape a PDF literal string
func EscapePDFString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "(", "\\(")
	s = strings.ReplaceAll(s, ")", "\\)")
	return s
}
