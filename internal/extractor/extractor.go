// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package extractor turns one PDF file into one Result. The PDF parsing
// itself is delegated to an Engine; this package owns the assembly
// contract: pages in document order, empty pages skipped, a blank line
// between pages, outer whitespace trimmed, and every failure converted
// into data instead of propagating.
package extractor

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"pdftext/internal/observability"
)

// Engine opens PDF documents for page-level text extraction.
type Engine interface {
	// Name identifies the engine in configuration and logs.
	Name() string

	// Open loads the file at path as a PDF document. The returned
	// document must be closed by the caller.
	Open(path string) (Document, error)
}

// Document is one open PDF file. Pages are numbered 1..PageCount in
// document order.
type Document interface {
	PageCount() int
	PageText(page int) (string, error)
	Close() error
}

// FormSource is implemented by documents that can surface interactive
// form field text in addition to page content. Form text is appended
// after the last page; errors from it never fail the run.
type FormSource interface {
	FormText() (string, error)
}

// Options tune a single extraction run.
type Options struct {
	// MaxPages caps how many pages are read. 0 reads every page. The
	// reported page count always reflects the full document.
	MaxPages int
}

// Extractor runs extractions against a fixed engine.
type Extractor struct {
	engine   Engine
	opts     Options
	observer *observability.StandardObserver
}

// New creates an extractor backed by the given engine.
func New(engine Engine, opts Options) *Extractor {
	return &Extractor{
		engine: engine,
		opts:   opts,
	}
}

// SetObserver sets the observability component
func (e *Extractor) SetObserver(observer *observability.StandardObserver) {
	e.observer = observer
}

// Extract reads the PDF at path and returns the assembled result. It
// never returns a Go error: open failures, page failures, and panics
// raised inside the parsing library all produce a failure-shaped Result.
func (e *Extractor) Extract(path string) (res *Result) {
	if e.observer != nil {
		finish := e.observer.StartTiming("extractor", "extract", path)
		defer func() {
			finish(res.Success, map[string]interface{}{
				"engine": e.engine.Name(),
				"pages":  res.Pages,
				"length": res.Length,
			})
		}()
	}

	// The parsing libraries are not panic-free on malformed input;
	// contain that here so the run still emits a valid result.
	defer func() {
		if r := recover(); r != nil {
			res = Failure(fmt.Errorf("PDF parsing panic: %v", r))
		}
	}()

	var debug *observability.DebugObserver
	if e.observer != nil {
		debug = e.observer.DebugObserver
	}
	if debug != nil {
		done := debug.StartStep("extractor", "extract text", path)
		defer func() {
			done(res.Success, fmt.Sprintf("pages=%d length=%d", res.Pages, res.Length))
		}()
	}

	doc, err := e.engine.Open(path)
	if err != nil {
		return Failure(err)
	}
	defer doc.Close()

	total := doc.PageCount()
	limit := total
	if e.opts.MaxPages > 0 && limit > e.opts.MaxPages {
		limit = e.opts.MaxPages
	}

	var buf bytes.Buffer
	for page := 1; page <= limit; page++ {
		pageText, err := doc.PageText(page)
		if err != nil {
			// No partial results: a failed page discards everything.
			return Failure(fmt.Errorf("error extracting page %d: %v", page, err))
		}

		// Empty and whitespace-only pages are skipped entirely, with no
		// placeholder separator. Non-empty page text is appended raw;
		// trimming gates only this check and the final result.
		if strings.TrimSpace(pageText) == "" {
			if debug != nil {
				debug.LogDetail("extractor", fmt.Sprintf("page %d: empty, skipped", page))
			}
			continue
		}

		buf.WriteString(pageText)
		buf.WriteString("\n\n")

		if debug != nil {
			debug.LogDetail("extractor", fmt.Sprintf("page %d: %d chars", page, len(pageText)))
		}
	}

	if fs, ok := doc.(FormSource); ok {
		formText, err := fs.FormText()
		if err == nil && strings.TrimSpace(formText) != "" {
			buf.WriteString(formText)
			buf.WriteString("\n\n")
		}
	}

	text := strings.TrimSpace(buf.String())

	return &Result{
		Success: true,
		Text:    text,
		Pages:   total,
		Length:  utf8.RuneCountInString(text),
	}
}
