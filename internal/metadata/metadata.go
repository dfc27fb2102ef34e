// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package metadata inspects PDF document properties without fully parsing
// the file: the Info dictionary and header are read with targeted patterns
// over the raw bytes, while page and image counts come from pdfcpu.
package metadata

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Document represents PDF document metadata
type Document struct {
	Title            string            `json:"title,omitempty" yaml:"title,omitempty"`
	Author           string            `json:"author,omitempty" yaml:"author,omitempty"`
	Subject          string            `json:"subject,omitempty" yaml:"subject,omitempty"`
	Keywords         string            `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Creator          string            `json:"creator,omitempty" yaml:"creator,omitempty"`
	Producer         string            `json:"producer,omitempty" yaml:"producer,omitempty"`
	CreationDate     *time.Time        `json:"creation_date,omitempty" yaml:"creation_date,omitempty"`
	ModificationDate *time.Time        `json:"modification_date,omitempty" yaml:"modification_date,omitempty"`
	Version          string            `json:"pdf_version,omitempty" yaml:"pdf_version,omitempty"`
	Encrypted        bool              `json:"encrypted" yaml:"encrypted"`
	PageCount        int               `json:"page_count" yaml:"page_count"`
	ImageCount       int               `json:"image_count,omitempty" yaml:"image_count,omitempty"`
	Properties       map[string]string `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// Inspect extracts metadata from the PDF document at path. Inspection is
// best-effort: fields that cannot be recovered stay empty rather than
// failing the whole call.
func Inspect(path string) (*Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("file error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %v", err)
	}

	doc := &Document{
		Properties: make(map[string]string),
	}

	doc.Version = pdfVersion(data)
	if os.Getenv("PDFTEXT_DEBUG") != "" {
		fmt.Fprintf(os.Stderr, "[DEBUG] PDF Metadata: Extracted version: %s\n", doc.Version)
	}

	readInfoDictionary(data, doc)
	if os.Getenv("PDFTEXT_DEBUG") != "" {
		fmt.Fprintf(os.Stderr, "[DEBUG] PDF Metadata: After info dictionary - Creator: '%s', Producer: '%s'\n", doc.Creator, doc.Producer)
	}

	if doc.Creator == "" {
		doc.Creator = directField(data, "Creator")
	}
	if doc.Producer == "" {
		doc.Producer = directField(data, "Producer")
	}

	// Garbage guard: encrypted or malformed entries would otherwise leak
	// binary junk into the serialized result.
	if mostlyNonPrintable(doc.Creator) {
		doc.Creator = "[Encrypted or malformed data]"
	}
	if mostlyNonPrintable(doc.Producer) {
		doc.Producer = "[Encrypted or malformed data]"
	}

	if doc.Creator == "" || doc.Producer == "" {
		readXMPMetadata(data, doc)
	}

	doc.Encrypted = isEncrypted(data)

	// pdfcpu gives the authoritative page count and the image census;
	// the raw-bytes count is the fallback when the file will not load.
	if err := censusFromContext(path, doc); err != nil {
		doc.PageCount = countPages(data)
		if os.Getenv("PDFTEXT_DEBUG") != "" {
			fmt.Fprintf(os.Stderr, "[DEBUG] PDF Metadata: pdfcpu census unavailable (%v), counted %d pages from raw data\n", err, doc.PageCount)
		}
	}

	if len(doc.Properties) == 0 {
		doc.Properties = nil
	}

	return doc, nil
}

// pdfVersion extracts the PDF version from the header
func pdfVersion(data []byte) string {
	// PDF header format: %PDF-1.x
	headerPattern := regexp.MustCompile(`%PDF-(\d+\.\d+)`)

	// Check only the first 1KB or the entire file if smaller
	size := len(data)
	if size > 1024 {
		size = 1024
	}

	matches := headerPattern.FindSubmatch(data[:size])
	if len(matches) >= 2 {
		return string(matches[1])
	}

	return "Unknown"
}

// readInfoDictionary fills doc from the PDF Info dictionary
func readInfoDictionary(data []byte, doc *Document) {
	dict := locateInfoDictionary(data)

	doc.Title = stringField(dict, "Title")
	doc.Author = stringField(dict, "Author")
	doc.Subject = stringField(dict, "Subject")
	doc.Keywords = stringField(dict, "Keywords")
	doc.Creator = stringField(dict, "Creator")
	doc.Producer = stringField(dict, "Producer")

	if raw := stringField(dict, "CreationDate"); raw != "" {
		if date, err := ParseDate(raw); err == nil {
			doc.CreationDate = &date
		}
		doc.Properties["CreationDate"] = raw
	}

	if raw := stringField(dict, "ModDate"); raw != "" {
		if date, err := ParseDate(raw); err == nil {
			doc.ModificationDate = &date
		}
		doc.Properties["ModificationDate"] = raw
	}

	for _, field := range []string{"Trapped", "GTS_PDFXVersion", "GTS_PDFXConformance"} {
		if value := stringField(dict, field); value != "" {
			doc.Properties[field] = value
		}
	}
}

// locateInfoDictionary finds the raw text of the Info dictionary object
func locateInfoDictionary(data []byte) string {
	// First approach: follow the /Info object reference
	infoPattern := regexp.MustCompile(`/Info\s+(\d+)\s+\d+\s+R`)
	if infoMatches := infoPattern.FindSubmatch(data); len(infoMatches) >= 2 {
		objNum := string(infoMatches[1])
		objPattern := regexp.MustCompile(objNum + `\s+\d+\s+obj\s*<<(.*?)>>`)
		if objMatches := objPattern.FindSubmatch(data); len(objMatches) >= 2 {
			return string(objMatches[1])
		}
	}

	// Second approach: a dictionary carrying the common fields directly
	metaPattern := regexp.MustCompile(`<<\s*/(?:Title|Creator|Producer)[^>]*>>`)
	if metaMatches := metaPattern.FindSubmatch(data); len(metaMatches) >= 1 {
		dict := string(metaMatches[0])
		dict = strings.TrimPrefix(dict, "<<")
		dict = strings.TrimSuffix(dict, ">>")
		return dict
	}

	return ""
}

// stringField extracts a string field from the Info dictionary
func stringField(dictionary, fieldName string) string {
	// Pattern for string fields: /FieldName (Value) with escaped chars
	pattern := regexp.MustCompile(`/` + fieldName + `\s*\(((?:\\.|[^\\()])*)\)`)
	if matches := pattern.FindStringSubmatch(dictionary); len(matches) >= 2 {
		// Unescape PDF string
		value := matches[1]
		value = strings.ReplaceAll(value, "\\)", ")")
		value = strings.ReplaceAll(value, "\\(", "(")
		value = strings.ReplaceAll(value, "\\\\", "\\")
		return value
	}

	// Hex string format: /FieldName <HEXDATA>
	hexPattern := regexp.MustCompile(`/` + fieldName + `\s*<([0-9A-Fa-f]+)>`)
	if hexMatches := hexPattern.FindStringSubmatch(dictionary); len(hexMatches) >= 2 {
		return decodeHexString(hexMatches[1])
	}

	// Name format: /FieldName /Value
	namePattern := regexp.MustCompile(`/` + fieldName + `\s*/([^/\s<>()\[\]]+)`)
	if nameMatches := namePattern.FindStringSubmatch(dictionary); len(nameMatches) >= 2 {
		return nameMatches[1]
	}

	// Quoted format: /FieldName "Value"
	quotePattern := regexp.MustCompile(`/` + fieldName + `\s*"([^"]*)"`)
	if quoteMatches := quotePattern.FindStringSubmatch(dictionary); len(quoteMatches) >= 2 {
		return quoteMatches[1]
	}

	return ""
}

// directField searches for a field anywhere in the PDF content, outside a
// located Info dictionary
func directField(data []byte, fieldName string) string {
	patterns := []string{
		`/` + fieldName + `\s*\(([^)]+)\)`,
		`/` + fieldName + `\s*<([0-9A-Fa-f]+)>`,
		`/` + fieldName + `\s*/([^/\s<>()\[\]]+)`,
		`/` + fieldName + `\s*"([^"]*)"`,
	}

	for _, pattern := range patterns {
		re := regexp.MustCompile(pattern)
		matches := re.FindSubmatch(data)
		if len(matches) < 2 {
			continue
		}

		value := string(matches[1])
		if strings.Contains(pattern, `<(`) {
			value = decodeHexString(value)
		}
		return value
	}

	return ""
}

// decodeHexString converts a PDF hex string body to text
func decodeHexString(hexStr string) string {
	var result strings.Builder
	for i := 0; i+1 < len(hexStr); i += 2 {
		byteVal, err := strconv.ParseUint(hexStr[i:i+2], 16, 8)
		if err == nil {
			result.WriteByte(byte(byteVal))
		}
	}
	return result.String()
}

// countPages counts pages from the raw data when pdfcpu cannot load the file
func countPages(data []byte) int {
	// Look for /Type /Page entries
	pagePattern := regexp.MustCompile(`/Type\s*/Page[^s]`)
	if matches := pagePattern.FindAllSubmatch(data, -1); len(matches) > 0 {
		return len(matches)
	}

	// Alternative method: /Count in the Pages object
	countPattern := regexp.MustCompile(`/Count\s+(\d+)`)
	if countMatches := countPattern.FindSubmatch(data); len(countMatches) >= 2 {
		if count, err := strconv.Atoi(string(countMatches[1])); err == nil {
			return count
		}
	}

	return 0
}

// isEncrypted checks if the PDF is encrypted
func isEncrypted(data []byte) bool {
	encryptPattern := regexp.MustCompile(`/Encrypt\s+\d+\s+\d+\s+R`)
	return encryptPattern.Match(data)
}

// ParseDate parses a PDF date string of the form D:YYYYMMDDHHmmSSOHH'mm'
// where O is the offset direction (+ or -).
func ParseDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimPrefix(dateStr, "D:")

	if len(dateStr) < 4 {
		return time.Time{}, fmt.Errorf("invalid date format")
	}

	year := extractInt(dateStr, 0, 4, 0)
	month := extractInt(dateStr, 4, 2, 1)
	day := extractInt(dateStr, 6, 2, 1)
	hour := extractInt(dateStr, 8, 2, 0)
	minute := extractInt(dateStr, 10, 2, 0)
	second := extractInt(dateStr, 12, 2, 0)

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)

	// Timezone suffix if present
	if len(dateStr) >= 15 && (dateStr[14] == '+' || dateStr[14] == '-') {
		tzHour := extractInt(dateStr, 15, 2, 0)
		tzMinute := extractInt(dateStr, 18, 2, 0)

		tzOffset := tzHour*3600 + tzMinute*60
		if dateStr[14] == '-' {
			tzOffset = -tzOffset
		}

		t = t.In(time.FixedZone("", tzOffset))
	}

	return t, nil
}

// extractInt extracts an integer from a string with bounds checking
func extractInt(s string, start, length, defaultVal int) int {
	if start+length <= len(s) {
		val, err := strconv.Atoi(s[start : start+length])
		if err == nil {
			return val
		}
	}
	return defaultVal
}

// readXMPMetadata fills creator/producer from embedded XMP data
func readXMPMetadata(data []byte, doc *Document) {
	if doc.Creator == "" {
		creatorPattern := regexp.MustCompile(`<xmp:CreatorTool>(.*?)</xmp:CreatorTool>`)
		if matches := creatorPattern.FindSubmatch(data); len(matches) >= 2 {
			doc.Creator = string(matches[1])
		}
	}

	if doc.Producer == "" {
		producerPattern := regexp.MustCompile(`<pdf:Producer>(.*?)</pdf:Producer>`)
		if matches := producerPattern.FindSubmatch(data); len(matches) >= 2 {
			doc.Producer = string(matches[1])
		}
	}
}

// mostlyNonPrintable reports whether a string is dominated by non-printable
// characters
func mostlyNonPrintable(s string) bool {
	if s == "" {
		return false
	}

	nonPrintable := 0
	for _, r := range s {
		if r < 32 || r > 126 {
			nonPrintable++
		}
	}

	return float64(nonPrintable)/float64(len(s)) > 0.2
}
