// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pdftextlib is the default extraction engine, backed by
// github.com/ledongthuc/pdf.
package pdftextlib

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"

	"pdftext/internal/extractor"
	"pdftext/internal/observability"
)

// Options select the engine's optional behaviors.
type Options struct {
	// Layout reconstructs line spacing from glyph coordinates instead of
	// using the library's plain text stream.
	Layout bool

	// Forms appends AcroForm field names and values after the page text.
	Forms bool
}

// Engine opens PDF files with ledongthuc/pdf.
type Engine struct {
	opts     Options
	observer *observability.StandardObserver
}

// New creates the engine.
func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Name returns the engine identifier used in configuration and logs.
func (e *Engine) Name() string {
	return "pdftext"
}

// SetObserver sets the observability component
func (e *Engine) SetObserver(observer *observability.StandardObserver) {
	e.observer = observer
}

// Open loads the PDF at path. The returned document keeps the underlying
// file handle open until Close.
func (e *Engine) Open(path string) (extractor.Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening PDF: %v", err)
	}

	if e.observer != nil && e.observer.DebugObserver != nil {
		e.observer.DebugObserver.LogDetail("pdftextlib", fmt.Sprintf("opened %s: %d pages", path, r.NumPage()))
	}

	return &document{
		f:    f,
		r:    r,
		opts: e.opts,
	}, nil
}

// document is one open PDF file.
type document struct {
	f    *os.File
	r    *pdf.Reader
	opts Options
}

func (d *document) PageCount() int {
	return d.r.NumPage()
}

// PageText extracts the text of the 1-based page number.
func (d *document) PageText(page int) (string, error) {
	p := d.r.Page(page)
	if p.V.IsNull() {
		return "", fmt.Errorf("null page")
	}

	if d.opts.Layout {
		return rowLayoutText(p)
	}

	return p.GetPlainText(nil)
}

// FormText collects AcroForm field data when form extraction is enabled.
// Documents without interactive forms yield an empty string.
func (d *document) FormText() (string, error) {
	if !d.opts.Forms {
		return "", nil
	}

	var buf bytes.Buffer

	root := d.r.Trailer().Key("Root")
	if root.IsNull() {
		return "", fmt.Errorf("no document catalog found")
	}

	acroForm := root.Key("AcroForm")
	if acroForm.IsNull() {
		return "", nil // No forms in this PDF
	}

	fields := acroForm.Key("Fields")
	if fields.IsNull() {
		return "", nil
	}

	if fields.Kind() == pdf.Array {
		for i := 0; i < fields.Len(); i++ {
			field := fields.Index(i)
			if field.IsNull() {
				continue
			}
			name, value := fieldNameValue(field)
			if name != "" && value != "" {
				fmt.Fprintf(&buf, "Name: %s Value: %s\n", name, value)
			}
		}
	}

	if buf.Len() == 0 {
		return "", nil
	}

	return "--- PDF Form Data ---\n" + buf.String(), nil
}

func (d *document) Close() error {
	return d.f.Close()
}

// fieldNameValue extracts name and value from a single form field
func fieldNameValue(field pdf.Value) (string, string) {
	if field.Kind() != pdf.Dict {
		return "", ""
	}

	var fieldName, fieldValue string

	t := field.Key("T")
	if !t.IsNull() && t.Kind() == pdf.String {
		fieldName = t.Text()
	}

	v := field.Key("V")
	if !v.IsNull() {
		switch v.Kind() {
		case pdf.String:
			fieldValue = v.Text()
		case pdf.Name:
			fieldValue = v.Name()
		}
	}

	// If no value in V, fall back to DV (default value)
	if fieldValue == "" {
		dv := field.Key("DV")
		if !dv.IsNull() {
			switch dv.Kind() {
			case pdf.String:
				fieldValue = dv.Text()
			case pdf.Name:
				fieldValue = dv.Name()
			}
		}
	}

	return fieldName, fieldValue
}
