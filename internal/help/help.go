// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/fatih/color"

	"pdftext/internal/config"
	"pdftext/internal/formatters"
)

// System renders help content for the command line interface
type System struct {
	noColor bool
	colors  map[string]*color.Color
}

// NewSystem creates a new help system
func NewSystem(noColor bool) *System {
	// Disable colors if requested
	if noColor {
		color.NoColor = true
	}

	return &System{
		noColor: noColor,
		colors: map[string]*color.Color{
			"title":    color.New(color.FgWhite, color.Bold),
			"header":   color.New(color.FgBlue, color.Bold),
			"item":     color.New(color.FgCyan),
			"emphasis": color.New(color.FgWhite, color.Bold),
			"example":  color.New(color.FgMagenta),
		},
	}
}

// ShowGeneralHelp displays general help information
func (h *System) ShowGeneralHelp() {
	h.colors["title"].Println("pdftext - PDF Text Extraction Tool")
	fmt.Println("==================================")
	fmt.Println()
	h.colors["header"].Println("USAGE:")
	fmt.Println("  pdftext [options] <pdf_path>")
	fmt.Println()

	h.colors["header"].Println("OPTIONS:")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  --format\t<format>\tOutput format: json, text, csv, yaml (default: json)")
	fmt.Fprintln(w, "  --pretty\t\tIndent JSON output for readability")
	fmt.Fprintln(w, "  --output\t<path>\tPath to output file (if not specified, output to stdout)")
	fmt.Fprintln(w, "  --engine\t<name>\tExtraction engine: pdftext or pdfcpu (default: pdftext)")
	fmt.Fprintln(w, "  --metadata\t\tInclude document metadata (title, author, dates) in the result")
	fmt.Fprintln(w, "  --forms\t\tInclude AcroForm field names and values in the extracted text")
	fmt.Fprintln(w, "  --layout\t\tReconstruct reading order from glyph positions instead of raw content order")
	fmt.Fprintln(w, "  --validate\t\tValidate PDF structure before extracting")
	fmt.Fprintln(w, "  --max-pages\t<n>\tStop extracting after n pages (0 processes all pages)")
	fmt.Fprintln(w, "  --config\t<path>\tPath to configuration file (YAML)")
	fmt.Fprintln(w, "  --profile\t<name>\tProfile name to use from config file")
	fmt.Fprintln(w, "  --list-profiles\t\tList available profiles and exit")
	fmt.Fprintln(w, "  --verbose\t\tLog operation timing to stderr")
	fmt.Fprintln(w, "  --debug\t\tEnable debug logging of the extraction flow")
	fmt.Fprintln(w, "  --no-color\t\tDisable colored output")
	fmt.Fprintln(w, "  --version\t\tShow version information")
	fmt.Fprintln(w, "  --help\t\tShow this help message")
	fmt.Fprintln(w, "  --help formats\t\tShow details for each output format")
	w.Flush()

	fmt.Println()
	h.colors["header"].Println("OUTPUT:")
	fmt.Println("  The default JSON result always carries the same fields:")
	fmt.Println("    success  whether extraction completed")
	fmt.Println("    text     extracted text, pages separated by a blank line")
	fmt.Println("    pages    number of pages reported by the document")
	fmt.Println("    length   number of characters in text")
	fmt.Println("    error    failure reason, present only on failure")
	fmt.Println()

	h.colors["header"].Println("EXAMPLES:")
	fmt.Println("  Basic Usage:")
	h.colors["example"].Println("    pdftext document.pdf")
	h.colors["example"].Println("    pdftext --pretty --metadata document.pdf")
	fmt.Println("  Formats and Engines:")
	h.colors["example"].Println("    pdftext --format text document.pdf")
	h.colors["example"].Println("    pdftext --engine pdfcpu --validate document.pdf")
	fmt.Println("  Configuration and Profiles:")
	h.colors["example"].Println("    pdftext --config pdftext.yaml --profile full document.pdf")
	h.colors["example"].Println("    pdftext --list-profiles")

	fmt.Println()
	h.colors["header"].Println("CONFIGURATION:")
	fmt.Println("  Default config: ~/.pdftext/config.yaml")
	fmt.Println("  Project config: pdftext.yaml or .pdftext.yaml (in current directory)")
	fmt.Println("  Environment: PDFTEXT_CONFIG_DIR - Override config directory")
	fmt.Println("  Environment: PDFTEXT_DEBUG - Enable debug logging")
	fmt.Println()
	h.colors["header"].Println("EXIT STATUS:")
	fmt.Println("  0  a result was produced, including extraction failures reported in the result")
	fmt.Println("  1  usage or configuration error, no extraction attempted")
}

// ShowFormatsHelp displays information about all registered output formats
func (h *System) ShowFormatsHelp() {
	h.colors["title"].Println("Available Output Formats")
	fmt.Println("========================")
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	h.colors["header"].Fprintln(w, "  FORMAT\tEXTENSION\tDESCRIPTION")
	h.colors["header"].Fprintln(w, "  ------\t---------\t-----------")

	infos := formatters.GetSupportedFormats()
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })

	for _, info := range infos {
		fmt.Fprintf(w, "  ")
		h.colors["emphasis"].Fprintf(w, "%s", info.Name)
		fmt.Fprintf(w, "\t%s\t%s\n", info.Extension, info.Description)
	}
	w.Flush()

	fmt.Println()
	fmt.Println("Select a format with:")
	h.colors["example"].Println("  pdftext --format <format> document.pdf")
}

// ShowProfiles displays the profiles available in the given configuration
func (h *System) ShowProfiles(cfg *config.Config) {
	names := cfg.ListProfiles()
	if len(names) == 0 {
		fmt.Println("No profiles defined.")
		return
	}
	sort.Strings(names)

	fmt.Println("Available profiles:")
	for _, name := range names {
		profile := cfg.GetProfile(name)
		if profile != nil && profile.Description != "" {
			fmt.Print("  - ")
			h.colors["item"].Print(name)
			fmt.Printf(": %s\n", profile.Description)
		} else {
			fmt.Printf("  - %s\n", name)
		}
	}
}
