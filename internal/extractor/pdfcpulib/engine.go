// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package pdfcpulib is the alternate extraction engine, backed by
// github.com/pdfcpu/pdfcpu. It reads page content streams directly and
// scans their text-showing operators, which produces plainer output than
// the default engine but survives some files the default engine mishandles.
package pdfcpulib

import (
	"fmt"
	"io"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"pdftext/internal/extractor"
	"pdftext/internal/observability"
)

// Engine opens PDF files with pdfcpu.
type Engine struct {
	observer *observability.StandardObserver
}

// New creates the engine.
func New() *Engine {
	return &Engine{}
}

// Name returns the engine identifier used in configuration and logs.
func (e *Engine) Name() string {
	return "pdfcpu"
}

// SetObserver sets the observability component
func (e *Engine) SetObserver(observer *observability.StandardObserver) {
	e.observer = observer
}

// Open reads, validates, and optimizes the PDF at path into a pdfcpu
// context.
func (e *Engine) Open(path string) (extractor.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening PDF: %v", err)
	}

	ctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("pdfcpu read: %v", err)
	}

	if e.observer != nil && e.observer.DebugObserver != nil {
		e.observer.DebugObserver.LogDetail("pdfcpulib", fmt.Sprintf("opened %s: %d pages", path, ctx.PageCount))
	}

	return &document{f: f, ctx: ctx}, nil
}

// document is one open PDF file loaded into a pdfcpu context.
type document struct {
	f   *os.File
	ctx *model.Context
}

func (d *document) PageCount() int {
	return d.ctx.PageCount
}

// PageText extracts the text of the 1-based page number from its content
// stream.
func (d *document) PageText(page int) (string, error) {
	r, err := pdfcpu.ExtractPageContent(d.ctx, page)
	if err != nil {
		return "", fmt.Errorf("extract page content: %v", err)
	}
	if r == nil {
		return "", nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read page content: %v", err)
	}
	if len(data) == 0 {
		return "", nil
	}

	return textFromStream(data), nil
}

func (d *document) Close() error {
	return d.f.Close()
}
