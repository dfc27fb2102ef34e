// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package integration

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"pdftext/tests/helpers"
)

var (
	binaryPath  string
	scratchHome string
)

// TestMain builds the command once for every test in the package.
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "pdftext-cli-test")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp dir: %v\n", err)
		os.Exit(1)
	}

	binaryPath = filepath.Join(dir, "pdftext")
	if runtime.GOOS == "windows" {
		binaryPath += ".exe"
	}
	scratchHome = filepath.Join(dir, "home")
	if err := os.MkdirAll(scratchHome, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create scratch home: %v\n", err)
		os.RemoveAll(dir)
		os.Exit(1)
	}

	buildCmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd")
	if output, err := buildCmd.CombinedOutput(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to build binary: %v\n%s", err, output)
		os.RemoveAll(dir)
		os.Exit(1)
	}

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

type runOutcome struct {
	stdout   string
	stderr   string
	exitCode int
}

// run executes the built binary with a clean home directory so a developer's
// own config file cannot leak into assertions.
func run(t *testing.T, args ...string) runOutcome {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Dir = scratchHome
	cmd.Env = append(os.Environ(),
		"HOME="+scratchHome,
		"USERPROFILE="+scratchHome,
		"PDFTEXT_CONFIG_DIR=",
		"PDFTEXT_DEBUG=",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			t.Fatalf("failed to run %v: %v", args, err)
		}
	}

	return runOutcome{stdout: stdout.String(), stderr: stderr.String(), exitCode: exitCode}
}

type cliResult struct {
	Success  bool                   `json:"success"`
	Text     string                 `json:"text"`
	Pages    int                    `json:"pages"`
	Length   int                    `json:"length"`
	Error    string                 `json:"error"`
	Metadata map[string]interface{} `json:"metadata"`
}

func decodeResult(t *testing.T, stdout string) cliResult {
	t.Helper()
	var result cliResult
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("stdout is not valid JSON: %v\noutput: %q", err, stdout)
	}
	return result
}

func TestNoArguments(t *testing.T) {
	outcome := run(t)

	if outcome.exitCode != 1 {
		t.Errorf("exit code = %d, want 1", outcome.exitCode)
	}

	result := decodeResult(t, outcome.stdout)
	if result.Success {
		t.Error("Success = true, want false")
	}
	if result.Error != "Usage: pdftext [options] <pdf_path>" {
		t.Errorf("Error = %q, want usage message", result.Error)
	}
	if result.Text != "" || result.Pages != 0 || result.Length != 0 {
		t.Errorf("usage failure should report empty text and zero counts, got %+v", result)
	}
}

func TestTooManyArguments(t *testing.T) {
	outcome := run(t, "first.pdf", "second.pdf")

	if outcome.exitCode != 1 {
		t.Errorf("exit code = %d, want 1", outcome.exitCode)
	}
	result := decodeResult(t, outcome.stdout)
	if result.Success || result.Error != "Usage: pdftext [options] <pdf_path>" {
		t.Errorf("unexpected result for two positional arguments: %+v", result)
	}
}

func TestFlagsAfterPathAreRejected(t *testing.T) {
	// Flag parsing stops at the first positional argument, so trailing
	// flags surface as extra arguments.
	outcome := run(t, "doc.pdf", "--pretty")

	if outcome.exitCode != 1 {
		t.Errorf("exit code = %d, want 1", outcome.exitCode)
	}
	result := decodeResult(t, outcome.stdout)
	if result.Error != "Usage: pdftext [options] <pdf_path>" {
		t.Errorf("Error = %q, want usage message", result.Error)
	}
}

func TestUnknownFlag(t *testing.T) {
	outcome := run(t, "--bogus", "doc.pdf")

	if outcome.exitCode != 1 {
		t.Errorf("exit code = %d, want 1", outcome.exitCode)
	}
	result := decodeResult(t, outcome.stdout)
	if result.Success {
		t.Error("Success = true, want false")
	}
	if !strings.Contains(outcome.stderr, "Usage: pdftext") {
		t.Errorf("stderr should carry the usage line, got %q", outcome.stderr)
	}
}

func TestMissingFile(t *testing.T) {
	outcome := run(t, filepath.Join(t.TempDir(), "missing.pdf"))

	// A result was produced, so the process still exits zero.
	if outcome.exitCode != 0 {
		t.Errorf("exit code = %d, want 0", outcome.exitCode)
	}
	result := decodeResult(t, outcome.stdout)
	if result.Success {
		t.Error("Success = true, want false")
	}
	if !strings.Contains(result.Error, "error opening PDF") {
		t.Errorf("Error = %q, want it to mention the open failure", result.Error)
	}
	if result.Pages != 0 || result.Text != "" {
		t.Errorf("failure should carry zero pages and empty text, got %+v", result)
	}
}

func TestExtractsText(t *testing.T) {
	path := helpers.WritePDF(t, t.TempDir(), "doc.pdf", []string{"Alpha", "Beta"})
	outcome := run(t, path)

	if outcome.exitCode != 0 {
		t.Fatalf("exit code = %d, want 0; stderr: %s", outcome.exitCode, outcome.stderr)
	}
	result := decodeResult(t, outcome.stdout)
	if !result.Success {
		t.Fatalf("Success = false, error: %s", result.Error)
	}
	if result.Text != "Alpha\n\nBeta" {
		t.Errorf("Text = %q, want pages joined by a blank line", result.Text)
	}
	if result.Pages != 2 {
		t.Errorf("Pages = %d, want 2", result.Pages)
	}
	if result.Length != 11 {
		t.Errorf("Length = %d, want 11", result.Length)
	}
}

func TestSkipsEmptyPages(t *testing.T) {
	path := helpers.WritePDF(t, t.TempDir(), "doc.pdf", []string{"Alpha", "   ", "Beta"})
	outcome := run(t, path)

	result := decodeResult(t, outcome.stdout)
	if !result.Success {
		t.Fatalf("Success = false, error: %s", result.Error)
	}
	if result.Text != "Alpha\n\nBeta" {
		t.Errorf("Text = %q, want empty page skipped without separator", result.Text)
	}
	if result.Pages != 3 {
		t.Errorf("Pages = %d, want full document page count", result.Pages)
	}
}

func TestMaxPagesLimitsReading(t *testing.T) {
	path := helpers.WritePDF(t, t.TempDir(), "doc.pdf", []string{"Alpha", "Beta"})
	outcome := run(t, "--max-pages", "1", path)

	result := decodeResult(t, outcome.stdout)
	if !result.Success {
		t.Fatalf("Success = false, error: %s", result.Error)
	}
	if result.Text != "Alpha" {
		t.Errorf("Text = %q, want only the first page", result.Text)
	}
	if result.Pages != 2 {
		t.Errorf("Pages = %d, want full document page count", result.Pages)
	}
}

func TestNegativeMaxPages(t *testing.T) {
	outcome := run(t, "--max-pages", "-3", "doc.pdf")

	if outcome.exitCode != 1 {
		t.Errorf("exit code = %d, want 1", outcome.exitCode)
	}
	result := decodeResult(t, outcome.stdout)
	if !strings.Contains(result.Error, "max-pages must not be negative") {
		t.Errorf("Error = %q, want it to reject the negative limit", result.Error)
	}
}

func TestTextFormat(t *testing.T) {
	path := helpers.WritePDF(t, t.TempDir(), "doc.pdf", []string{"Alpha"})
	outcome := run(t, "--format", "text", path)

	if outcome.exitCode != 0 {
		t.Fatalf("exit code = %d, want 0", outcome.exitCode)
	}
	for _, want := range []string{"=== Extraction Result ===", "Status: success", "Alpha"} {
		if !strings.Contains(outcome.stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, outcome.stdout)
		}
	}
}

func TestPrettyOutput(t *testing.T) {
	path := helpers.WritePDF(t, t.TempDir(), "doc.pdf", []string{"Alpha"})
	outcome := run(t, "--pretty", path)

	if !strings.HasPrefix(outcome.stdout, "{\n  \"success\": true") {
		t.Errorf("pretty output should be indented, got %q", outcome.stdout)
	}
	// Indented JSON still decodes to the same result.
	result := decodeResult(t, outcome.stdout)
	if result.Text != "Alpha" {
		t.Errorf("Text = %q, want %q", result.Text, "Alpha")
	}
}

func TestOutputFile(t *testing.T) {
	dir := t.TempDir()
	path := helpers.WritePDF(t, dir, "doc.pdf", []string{"Alpha"})
	outFile := filepath.Join(dir, "result.json")

	outcome := run(t, "--output", outFile, path)
	if outcome.exitCode != 0 {
		t.Fatalf("exit code = %d, want 0; stderr: %s", outcome.exitCode, outcome.stderr)
	}
	if outcome.stdout != "" {
		t.Errorf("stdout should be empty when writing to a file, got %q", outcome.stdout)
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("output file was not written: %v", err)
	}
	result := decodeResult(t, string(data))
	if !result.Success || result.Text != "Alpha" {
		t.Errorf("unexpected result in output file: %+v", result)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	outcome := run(t, "--format", "bogus", "doc.pdf")

	if outcome.exitCode != 1 {
		t.Errorf("exit code = %d, want 1", outcome.exitCode)
	}
	result := decodeResult(t, outcome.stdout)
	if !strings.Contains(result.Error, "unsupported format 'bogus'") {
		t.Errorf("Error = %q, want it to name the unsupported format", result.Error)
	}
}

func TestUnknownProfile(t *testing.T) {
	outcome := run(t, "--profile", "nope", "doc.pdf")

	if outcome.exitCode != 1 {
		t.Errorf("exit code = %d, want 1", outcome.exitCode)
	}
	result := decodeResult(t, outcome.stdout)
	if !strings.Contains(result.Error, "profile 'nope' not found") {
		t.Errorf("Error = %q, want it to name the missing profile", result.Error)
	}
}

func TestBuiltinProfile(t *testing.T) {
	path := helpers.WritePDF(t, t.TempDir(), "doc.pdf", []string{"Alpha"})
	outcome := run(t, "--profile", "plain", path)

	if outcome.exitCode != 0 {
		t.Fatalf("exit code = %d, want 0", outcome.exitCode)
	}
	if !strings.Contains(outcome.stdout, "Status: success") {
		t.Errorf("plain profile should select the text format:\n%s", outcome.stdout)
	}
}

func TestUnknownEngine(t *testing.T) {
	outcome := run(t, "--engine", "mupdf", "doc.pdf")

	if outcome.exitCode != 1 {
		t.Errorf("exit code = %d, want 1", outcome.exitCode)
	}
	result := decodeResult(t, outcome.stdout)
	if !strings.Contains(result.Error, "unknown engine") {
		t.Errorf("Error = %q, want it to reject the engine", result.Error)
	}
}

func TestPdfcpuEngine(t *testing.T) {
	path := helpers.WritePDF(t, t.TempDir(), "doc.pdf", []string{"Alpha", "Beta"})
	outcome := run(t, "--engine", "pdfcpu", path)

	if outcome.exitCode != 0 {
		t.Fatalf("exit code = %d, want 0; stderr: %s", outcome.exitCode, outcome.stderr)
	}
	result := decodeResult(t, outcome.stdout)
	if !result.Success {
		t.Fatalf("Success = false, error: %s", result.Error)
	}
	if result.Text != "Alpha\n\nBeta" {
		t.Errorf("Text = %q, want %q", result.Text, "Alpha\n\nBeta")
	}
	if result.Pages != 2 {
		t.Errorf("Pages = %d, want 2", result.Pages)
	}
}

func TestValidateRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4\nnot a real document"), 0600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	outcome := run(t, "--validate", path)

	// Validation failures are extraction results, not usage errors.
	if outcome.exitCode != 0 {
		t.Errorf("exit code = %d, want 0", outcome.exitCode)
	}
	result := decodeResult(t, outcome.stdout)
	if result.Success {
		t.Error("Success = true, want false")
	}
	if !strings.Contains(result.Error, "invalid PDF file") {
		t.Errorf("Error = %q, want it to mention validation", result.Error)
	}
}

func TestValidateAcceptsWellFormedFile(t *testing.T) {
	path := helpers.WritePDF(t, t.TempDir(), "doc.pdf", []string{"Alpha"})
	outcome := run(t, "--validate", path)

	result := decodeResult(t, outcome.stdout)
	if !result.Success {
		t.Errorf("Success = false, error: %s", result.Error)
	}
}

func TestMetadataFlag(t *testing.T) {
	path := helpers.WritePDF(t, t.TempDir(), "doc.pdf", []string{"Alpha", "Beta"})
	outcome := run(t, "--metadata", path)

	result := decodeResult(t, outcome.stdout)
	if !result.Success {
		t.Fatalf("Success = false, error: %s", result.Error)
	}
	if result.Metadata == nil {
		t.Fatal("Metadata missing from result")
	}
	if pageCount, ok := result.Metadata["page_count"].(float64); !ok || pageCount != 2 {
		t.Errorf("metadata page_count = %v, want 2", result.Metadata["page_count"])
	}
	if version, ok := result.Metadata["pdf_version"].(string); !ok || version != "1.4" {
		t.Errorf("metadata pdf_version = %v, want 1.4", result.Metadata["pdf_version"])
	}
}

func TestFormsFlag(t *testing.T) {
	path := helpers.WriteFormPDF(t, t.TempDir(), "form.pdf", []string{"Body"},
		[][2]string{{"username", "alice"}})

	outcome := run(t, "--forms", path)

	result := decodeResult(t, outcome.stdout)
	if !result.Success {
		t.Fatalf("Success = false, error: %s", result.Error)
	}
	if !strings.Contains(result.Text, "--- PDF Form Data ---") {
		t.Errorf("Text = %q, want form data section", result.Text)
	}
	if !strings.Contains(result.Text, "Name: username Value: alice") {
		t.Errorf("Text = %q, want form field entry", result.Text)
	}
}

func TestConfigFileSetsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := helpers.WritePDF(t, dir, "doc.pdf", []string{"Alpha"})

	configPath := filepath.Join(dir, "config.yaml")
	configContent := "defaults:\n  format: text\n"
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	outcome := run(t, "--config", configPath, path)
	if !strings.Contains(outcome.stdout, "Status: success") {
		t.Errorf("config default format should apply:\n%s", outcome.stdout)
	}
}

func TestConfigProfileSelectsFormat(t *testing.T) {
	dir := t.TempDir()
	path := helpers.WritePDF(t, dir, "doc.pdf", []string{"Alpha"})

	configPath := filepath.Join(dir, "config.yaml")
	configContent := "profiles:\n  audit:\n    format: csv\n"
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	outcome := run(t, "--config", configPath, "--profile", "audit", path)
	lines := strings.Split(outcome.stdout, "\n")
	if lines[0] != "File,Success,Pages,Length,Error,Text" {
		t.Errorf("profile format should produce a CSV header, got %q", lines[0])
	}
}

func TestInvalidConfigFileFailsWhenExplicit(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("defaults: [not a mapping"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	outcome := run(t, "--config", configPath, "doc.pdf")
	if outcome.exitCode != 1 {
		t.Errorf("exit code = %d, want 1", outcome.exitCode)
	}
	result := decodeResult(t, outcome.stdout)
	if !strings.Contains(result.Error, "error parsing config file") {
		t.Errorf("Error = %q, want config parse failure", result.Error)
	}
}

func TestListProfiles(t *testing.T) {
	outcome := run(t, "--list-profiles")

	if outcome.exitCode != 0 {
		t.Errorf("exit code = %d, want 0", outcome.exitCode)
	}
	for _, want := range []string{"full", "strict", "plain"} {
		if !strings.Contains(outcome.stdout, want) {
			t.Errorf("profile listing missing %q:\n%s", want, outcome.stdout)
		}
	}
}

func TestVersionFlag(t *testing.T) {
	outcome := run(t, "--version")

	if outcome.exitCode != 0 {
		t.Errorf("exit code = %d, want 0", outcome.exitCode)
	}
	if !strings.HasPrefix(outcome.stdout, "pdftext ") {
		t.Errorf("version output = %q, want it to start with the command name", outcome.stdout)
	}
}

func TestHelpFlag(t *testing.T) {
	outcome := run(t, "--help")

	if outcome.exitCode != 0 {
		t.Errorf("exit code = %d, want 0", outcome.exitCode)
	}
	for _, want := range []string{"USAGE", "OPTIONS", "EXAMPLES"} {
		if !strings.Contains(outcome.stdout, want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestVerboseLogsOperations(t *testing.T) {
	path := helpers.WritePDF(t, t.TempDir(), "doc.pdf", []string{"Alpha"})
	outcome := run(t, "--verbose", path)

	if !strings.Contains(outcome.stderr, `"component":"extractor"`) {
		t.Errorf("stderr should carry the operation log, got %q", outcome.stderr)
	}
	// Logging must never contaminate the machine-readable stdout.
	result := decodeResult(t, outcome.stdout)
	if !result.Success {
		t.Errorf("Success = false, error: %s", result.Error)
	}
}

func TestDebugLogsSteps(t *testing.T) {
	path := helpers.WritePDF(t, t.TempDir(), "doc.pdf", []string{"Alpha"})
	outcome := run(t, "--debug", path)

	if !strings.Contains(outcome.stderr, "extract text") {
		t.Errorf("stderr should carry debug steps, got %q", outcome.stderr)
	}
	result := decodeResult(t, outcome.stdout)
	if !result.Success {
		t.Errorf("Success = false, error: %s", result.Error)
	}
}
