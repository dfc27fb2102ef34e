// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"pdftext/internal/extractor"
	"pdftext/internal/formatters"
)

// Formatter implements text-based output formatting
type Formatter struct {
	colors map[string]*color.Color
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: map[string]*color.Color{
			"green":   color.New(color.FgGreen),
			"yellow":  color.New(color.FgYellow),
			"red":     color.New(color.FgRed),
			"cyan":    color.New(color.FgCyan),
			"magenta": color.New(color.FgMagenta),
			"blue":    color.New(color.FgBlue),
			"white":   color.New(color.FgWhite, color.Bold),
		},
	}
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable text output with colors"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(result *extractor.Result, options formatters.FormatterOptions) (string, error) {
	// Disable colors if requested
	if options.NoColor {
		color.NoColor = true
	}

	var builder strings.Builder

	if !options.NoColor {
		f.colors["white"].Fprintf(&builder, "=== Extraction Result ===\n")
	} else {
		fmt.Fprintf(&builder, "=== Extraction Result ===\n")
	}

	if options.SourcePath != "" {
		f.appendField(&builder, options, "File", options.SourcePath)
	}

	if result.Success {
		if !options.NoColor {
			f.colors["cyan"].Fprintf(&builder, "Status: ")
			f.colors["green"].Fprintf(&builder, "success\n")
		} else {
			fmt.Fprintf(&builder, "Status: success\n")
		}
	} else {
		if !options.NoColor {
			f.colors["cyan"].Fprintf(&builder, "Status: ")
			f.colors["red"].Fprintf(&builder, "failed\n")
		} else {
			fmt.Fprintf(&builder, "Status: failed\n")
		}
	}

	f.appendField(&builder, options, "Pages", fmt.Sprintf("%d", result.Pages))
	f.appendField(&builder, options, "Length", fmt.Sprintf("%d characters", result.Length))

	if !result.Success {
		if !options.NoColor {
			f.colors["cyan"].Fprintf(&builder, "Error: ")
			f.colors["red"].Fprintf(&builder, "%s\n", result.Error)
		} else {
			fmt.Fprintf(&builder, "Error: %s\n", result.Error)
		}
	}

	if result.Metadata != nil {
		f.appendMetadata(&builder, result, options)
	}

	if result.Success {
		if !options.NoColor {
			f.colors["white"].Fprintf(&builder, "--- Extracted Text ---\n")
		} else {
			fmt.Fprintf(&builder, "--- Extracted Text ---\n")
		}
		if result.Text == "" {
			f.appendField(&builder, options, "", "(no text content)")
		} else {
			builder.WriteString(result.Text)
			builder.WriteString("\n")
		}
	}

	return builder.String(), nil
}

// appendMetadata adds the document metadata section to the string builder
func (f *Formatter) appendMetadata(builder *strings.Builder, result *extractor.Result, options formatters.FormatterOptions) {
	meta := result.Metadata

	if !options.NoColor {
		f.colors["white"].Fprintf(builder, "--- Document Metadata ---\n")
	} else {
		fmt.Fprintf(builder, "--- Document Metadata ---\n")
	}

	f.appendField(builder, options, "Title", meta.Title)
	f.appendField(builder, options, "Author", meta.Author)
	f.appendField(builder, options, "Subject", meta.Subject)
	f.appendField(builder, options, "Keywords", meta.Keywords)
	f.appendField(builder, options, "Creator", meta.Creator)
	f.appendField(builder, options, "Producer", meta.Producer)

	if meta.CreationDate != nil {
		f.appendField(builder, options, "Created", meta.CreationDate.Format(time.RFC3339))
	}
	if meta.ModificationDate != nil {
		f.appendField(builder, options, "Modified", meta.ModificationDate.Format(time.RFC3339))
	}

	f.appendField(builder, options, "PDF version", meta.Version)
	if meta.Encrypted {
		if !options.NoColor {
			f.colors["cyan"].Fprintf(builder, "Encrypted: ")
			f.colors["yellow"].Fprintf(builder, "yes\n")
		} else {
			fmt.Fprintf(builder, "Encrypted: yes\n")
		}
	}
	if meta.ImageCount > 0 {
		f.appendField(builder, options, "Embedded images", fmt.Sprintf("%d", meta.ImageCount))
	}

	// Raw properties only matter when the caller asked for detail
	if options.Verbose && len(meta.Properties) > 0 {
		for key, value := range meta.Properties {
			f.appendField(builder, options, key, value)
		}
	}
}

// appendField adds one "Label: value" line, skipping empty values
func (f *Formatter) appendField(builder *strings.Builder, options formatters.FormatterOptions, label, value string) {
	if value == "" {
		return
	}

	if label == "" {
		fmt.Fprintf(builder, "%s\n", value)
		return
	}

	if !options.NoColor {
		f.colors["cyan"].Fprintf(builder, "%s: ", label)
		f.colors["white"].Fprintf(builder, "%s\n", value)
	} else {
		fmt.Fprintf(builder, "%s: %s\n", label, value)
	}
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
