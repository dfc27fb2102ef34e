// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pdftext/internal/config"
	"pdftext/internal/extractor"
	"pdftext/internal/extractor/pdfcpulib"
	"pdftext/internal/extractor/pdftextlib"
	"pdftext/internal/help"
	"pdftext/internal/metadata"
	"pdftext/internal/observability"
	"pdftext/internal/version"

	"pdftext/internal/formatters"
	_ "pdftext/internal/formatters/csv"
	_ "pdftext/internal/formatters/json"
	_ "pdftext/internal/formatters/text"
	_ "pdftext/internal/formatters/yaml"

	"golang.org/x/term"
)

const usageMessage = "Usage: pdftext [options] <pdf_path>"

// commandLine is the flag set for the command. ContinueOnError keeps parse
// failures on the usage-error path, so stdout always carries a result.
var commandLine = flag.NewFlagSet("pdftext", flag.ContinueOnError)

// configFlags holds command line flag values
type configFlags struct {
	outputFormat string
	engineName   string
	pretty       bool
	metadata     bool
	forms        bool
	layout       bool
	validate     bool
	maxPages     int
	verbose      bool
	debug        bool
	noColor      bool
	outputFile   string
	configFile   string
	profileName  string
	listProfiles bool
}

// finalConfiguration holds resolved configuration values
type finalConfiguration struct {
	format   string
	engine   string
	pretty   bool
	metadata bool
	forms    bool
	layout   bool
	validate bool
	maxPages int
	verbose  bool
	debug    bool
	noColor  bool
	output   string
}

// loadConfiguration loads the configuration file or returns default config.
// A config file named explicitly on the command line must load; a discovered
// one falls back to defaults with a warning.
func loadConfiguration(configFile string) *config.Config {
	configPath := configFile
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		if configFile != "" {
			failUsage(err.Error())
		}
		fmt.Fprintf(os.Stderr, "Warning: Error loading config file: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration\n")
		cfg, _ = config.LoadConfig("")
	}
	return cfg
}

// resolveConfiguration resolves final configuration values from config file, profile, and command line flags
func resolveConfiguration(cfg *config.Config, activeProfile *config.Profile, flags *configFlags) *finalConfiguration {
	final := &finalConfiguration{}

	// Format
	final.format = "json" // default fallback
	if cfg != nil && cfg.Defaults.Format != "" {
		final.format = cfg.Defaults.Format
	}
	if activeProfile != nil && activeProfile.Format != "" {
		final.format = activeProfile.Format
	}
	if isFlagSet("format") && flags.outputFormat != "" {
		final.format = flags.outputFormat
	}

	// Engine
	final.engine = "pdftext" // default fallback
	if cfg != nil && cfg.Defaults.Engine != "" {
		final.engine = cfg.Defaults.Engine
	}
	if activeProfile != nil && activeProfile.Engine != "" {
		final.engine = activeProfile.Engine
	}
	if isFlagSet("engine") && flags.engineName != "" {
		final.engine = flags.engineName
	}

	// Pretty
	final.pretty = false // default fallback
	if cfg != nil {
		final.pretty = cfg.Defaults.Pretty
	}
	if activeProfile != nil {
		final.pretty = activeProfile.Pretty
	}
	if isFlagSet("pretty") {
		final.pretty = flags.pretty
	}

	// Metadata
	final.metadata = false // default fallback
	if cfg != nil {
		final.metadata = cfg.Defaults.Metadata
	}
	if activeProfile != nil {
		final.metadata = activeProfile.Metadata
	}
	if isFlagSet("metadata") {
		final.metadata = flags.metadata
	}

	// Forms
	final.forms = false // default fallback
	if cfg != nil {
		final.forms = cfg.Defaults.Forms
	}
	if activeProfile != nil {
		final.forms = activeProfile.Forms
	}
	if isFlagSet("forms") {
		final.forms = flags.forms
	}

	// Layout
	final.layout = false // default fallback
	if cfg != nil {
		final.layout = cfg.Defaults.Layout
	}
	if activeProfile != nil {
		final.layout = activeProfile.Layout
	}
	if isFlagSet("layout") {
		final.layout = flags.layout
	}

	// Validate
	final.validate = false // default fallback
	if cfg != nil {
		final.validate = cfg.Defaults.Validate
	}
	if activeProfile != nil {
		final.validate = activeProfile.Validate
	}
	if isFlagSet("validate") {
		final.validate = flags.validate
	}

	// Max pages
	final.maxPages = 0 // default fallback
	if cfg != nil {
		final.maxPages = cfg.Defaults.MaxPages
	}
	if activeProfile != nil {
		final.maxPages = activeProfile.MaxPages
	}
	if isFlagSet("max-pages") {
		final.maxPages = flags.maxPages
	}

	// Verbose
	final.verbose = false // default fallback
	if cfg != nil {
		final.verbose = cfg.Defaults.Verbose
	}
	if activeProfile != nil {
		final.verbose = activeProfile.Verbose
	}
	if isFlagSet("verbose") {
		final.verbose = flags.verbose
	}

	// Debug
	final.debug = false // default fallback
	if cfg != nil {
		final.debug = cfg.Defaults.Debug
	}
	if activeProfile != nil {
		final.debug = activeProfile.Debug
	}
	if isFlagSet("debug") {
		final.debug = flags.debug
	}

	// No color
	final.noColor = false // default fallback
	if cfg != nil {
		final.noColor = cfg.Defaults.NoColor
	}
	if activeProfile != nil {
		final.noColor = activeProfile.NoColor
	}
	if isFlagSet("no-color") {
		final.noColor = flags.noColor
	}

	// Output file
	final.output = "" // default fallback
	if cfg != nil && cfg.Defaults.Output != "" {
		final.output = cfg.Defaults.Output
	}
	if isFlagSet("output") && flags.outputFile != "" {
		final.output = flags.outputFile
	}

	return final
}

func main() {
	// Define command line flags
	outputFormat := commandLine.String("format", "", "Output format: json, text, csv, yaml (default: json)")
	pretty := commandLine.Bool("pretty", false, "Indent JSON output for readability")
	outputFile := commandLine.String("output", "", "Path to output file (if not specified, output to stdout)")
	engineName := commandLine.String("engine", "", "Extraction engine: pdftext or pdfcpu (default: pdftext)")
	includeMetadata := commandLine.Bool("metadata", false, "Include document metadata in the result")
	includeForms := commandLine.Bool("forms", false, "Include AcroForm field names and values in the extracted text")
	layoutMode := commandLine.Bool("layout", false, "Reconstruct reading order from glyph positions")
	validateFirst := commandLine.Bool("validate", false, "Validate PDF structure before extracting")
	maxPages := commandLine.Int("max-pages", 0, "Stop extracting after this many pages (0 processes all pages)")
	configFile := commandLine.String("config", "", "Path to configuration file (YAML)")
	profileName := commandLine.String("profile", "", "Profile name to use from config file")
	listProfiles := commandLine.Bool("list-profiles", false, "List available profiles and exit")
	verbose := commandLine.Bool("verbose", false, "Log operation timing to stderr")
	debug := commandLine.Bool("debug", false, "Enable debug logging of the extraction flow")
	noColor := commandLine.Bool("no-color", false, "Disable colored output")
	showHelp := commandLine.Bool("help", false, "Show help information")
	showVersion := commandLine.Bool("version", false, "Show version information")

	// The flag package would otherwise print its own errors and usage
	commandLine.SetOutput(io.Discard)

	if err := commandLine.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			help.NewSystem(!isTerminal(os.Stdout)).ShowGeneralHelp()
			return
		}
		fmt.Fprintln(os.Stderr, usageMessage)
		failUsage(err.Error())
	}

	// Extract all flag values once for consistency
	flags := &configFlags{
		outputFormat: *outputFormat,
		engineName:   *engineName,
		pretty:       *pretty,
		metadata:     *includeMetadata,
		forms:        *includeForms,
		layout:       *layoutMode,
		validate:     *validateFirst,
		maxPages:     *maxPages,
		verbose:      *verbose,
		debug:        *debug,
		noColor:      *noColor,
		outputFile:   *outputFile,
		configFile:   *configFile,
		profileName:  *profileName,
		listProfiles: *listProfiles,
	}

	// Handle version command
	if *showVersion {
		fmt.Println(version.Info())
		return
	}

	// Handle help commands
	if *showHelp {
		helpSystem := help.NewSystem(flags.noColor || !isTerminal(os.Stdout))
		if commandLine.Arg(0) == "formats" {
			helpSystem.ShowFormatsHelp()
		} else {
			helpSystem.ShowGeneralHelp()
		}
		return
	}

	// Create debug observer early for configuration logging
	var mainDebugObs *observability.DebugObserver
	if flags.debug {
		mainDebugObs = observability.NewDebugObserver(os.Stderr)
		mainDebugObs.LogDetail("main", fmt.Sprintf("Command line arguments: %v", os.Args))
	}

	// Load configuration
	cfg := loadConfiguration(flags.configFile)
	if mainDebugObs != nil && flags.configFile != "" {
		mainDebugObs.LogDetail("main", fmt.Sprintf("Loaded config file: %s", flags.configFile))
	}

	// Apply profile settings if specified
	var activeProfile *config.Profile
	if flags.profileName != "" {
		activeProfile = cfg.GetProfile(flags.profileName)
		if activeProfile == nil {
			failUsage(fmt.Sprintf("profile '%s' not found in config file", flags.profileName))
		}
	}

	// Resolve final configuration values using extracted flags
	finalConfig := resolveConfiguration(cfg, activeProfile, flags)

	// Auto-detect non-interactive environment
	if !isTerminal(os.Stdout) || os.Getenv("CI") != "" {
		finalConfig.noColor = true
	}

	// Check if PDFTEXT_DEBUG environment variable is set
	if os.Getenv("PDFTEXT_DEBUG") != "" {
		finalConfig.debug = true
	}

	// Set environment variable for subsystems to detect debug mode
	if finalConfig.debug {
		os.Setenv("PDFTEXT_DEBUG", "1")
	}

	// Handle profile listing
	if flags.listProfiles {
		help.NewSystem(finalConfig.noColor).ShowProfiles(cfg)
		return
	}

	// Exactly one input path is expected
	if commandLine.NArg() != 1 {
		failUsage(usageMessage)
	}
	pdfPath := commandLine.Arg(0)

	// Reject invalid settings before touching the document
	if _, exists := formatters.Get(finalConfig.format); !exists {
		failUsage(fmt.Sprintf("unsupported format '%s'. Available formats: %s",
			finalConfig.format, strings.Join(formatters.List(), ", ")))
	}
	if finalConfig.maxPages < 0 {
		failUsage(fmt.Sprintf("max-pages must not be negative, got %d", finalConfig.maxPages))
	}

	// Set up observability
	var observer *observability.StandardObserver
	if finalConfig.debug {
		observer = observability.NewStandardObserver(observability.ObservabilityDebug, os.Stderr)
	} else if finalConfig.verbose {
		observer = observability.NewStandardObserver(observability.ObservabilityMetrics, os.Stderr)
	}

	// Select the extraction engine
	var engine extractor.Engine
	switch finalConfig.engine {
	case "pdftext":
		eng := pdftextlib.New(pdftextlib.Options{
			Layout: finalConfig.layout,
			Forms:  finalConfig.forms,
		})
		if observer != nil {
			eng.SetObserver(observer)
		}
		engine = eng
	case "pdfcpu":
		if finalConfig.forms || finalConfig.layout {
			fmt.Fprintf(os.Stderr, "Warning: --forms and --layout are only supported by the pdftext engine\n")
		}
		eng := pdfcpulib.New()
		if observer != nil {
			eng.SetObserver(observer)
		}
		engine = eng
	default:
		failUsage(fmt.Sprintf("unknown engine %q (available: %v)", finalConfig.engine, config.EngineNames))
	}

	// Optional structural validation before extraction
	if finalConfig.validate {
		if err := metadata.ValidateFile(pdfPath); err != nil {
			writeResult(extractor.Failure(err), finalConfig, pdfPath)
			return
		}
	}

	// Run the extraction
	ext := extractor.New(engine, extractor.Options{MaxPages: finalConfig.maxPages})
	if observer != nil {
		ext.SetObserver(observer)
	}
	result := ext.Extract(pdfPath)

	// Attach document metadata on request, best effort
	if finalConfig.metadata && result.Success {
		doc, err := metadata.Inspect(pdfPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not read document metadata: %v\n", err)
		} else {
			result.Metadata = doc
		}
	}

	writeResult(result, finalConfig, pdfPath)
}

// writeResult renders the result and delivers it to stdout or the output file.
// Extraction failures are part of the result, so this path always exits zero.
func writeResult(result *extractor.Result, finalConfig *finalConfiguration, sourcePath string) {
	output, err := formatters.Export(finalConfig.format, result, formatters.FormatterOptions{
		SourcePath: sourcePath,
		Verbose:    finalConfig.verbose,
		NoColor:    finalConfig.noColor,
		Pretty:     finalConfig.pretty,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting results: %v\n", err)
		os.Exit(1)
	}

	if finalConfig.output != "" {
		// Validate and sanitize output file path
		cleanOutputPath := filepath.Clean(finalConfig.output)
		if strings.Contains(finalConfig.output, "..") || strings.Contains(cleanOutputPath, "..") {
			fmt.Fprintf(os.Stderr, "Error: path traversal not allowed in output path: %s\n", finalConfig.output)
			os.Exit(1)
		}
		abs, err := filepath.Abs(cleanOutputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid output file path: %s\n", finalConfig.output)
			os.Exit(1)
		}
		cleanOutputPath = abs
		if err := os.MkdirAll(filepath.Dir(cleanOutputPath), 0700); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(cleanOutputPath, []byte(output), 0600); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing to output file: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Println(output)
	}
}

// failUsage prints a failure result to stdout and exits with status 1.
// Invocation errors never reach the extraction phase, so the result reports
// zero pages and empty text.
func failUsage(message string) {
	result := &extractor.Result{Success: false, Error: message}
	out, err := json.Marshal(result)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
	os.Exit(1)
}

// isFlagSet checks if a flag was explicitly set on the command line
func isFlagSet(name string) bool {
	found := false
	commandLine.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isTerminal checks if the given file is a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
