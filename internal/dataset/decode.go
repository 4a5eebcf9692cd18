package dataset

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"comparador/internal/domain"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// InferFormat picks a format from a file name or URL path extension.
func InferFormat(name string) Format {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".csv":
		return FormatCSV
	}
	return ""
}

// Decode turns a payload into raw records.
func Decode(f Format, data []byte) ([]domain.RawRecord, error) {
	data, err := stripBOM(data)
	if err != nil {
		return nil, err
	}
	switch f {
	case FormatJSON:
		return DecodeJSON(data)
	case FormatCSV:
		return ParseDelimited(string(data)), nil
	}
	return nil, fmt.Errorf("unsupported format %q", f)
}

func stripBOM(data []byte) ([]byte, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), dec))
	if err != nil {
		return nil, fmt.Errorf("decode text: %w", err)
	}
	return out, nil
}

// DecodeJSON reads a top-level JSON array. Object elements become records;
// any other element becomes an empty record.
func DecodeJSON(data []byte) ([]domain.RawRecord, error) {
	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode json array: %w", err)
	}
	out := make([]domain.RawRecord, 0, len(items))
	for _, it := range items {
		m, _ := it.(map[string]any)
		out = append(out, domain.RawRecord(m))
	}
	return out, nil
}

var reLines = regexp.MustCompile(`\r?\n`)

// ParseDelimited reads comma-separated text with a header line. Cells are
// trimmed and lose one leading and one trailing double quote. Quoted commas
// are not supported: every comma splits. Missing cells read as "".
func ParseDelimited(text string) []domain.RawRecord {
	var lines []string
	for _, l := range reLines.Split(text, -1) {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return []domain.RawRecord{}
	}

	headers := cells(lines[0])
	out := make([]domain.RawRecord, 0, len(lines)-1)
	for _, line := range lines[1:] {
		cols := cells(line)
		rec := make(domain.RawRecord, len(headers))
		for i, h := range headers {
			v := ""
			if i < len(cols) {
				v = cols[i]
			}
			rec[h] = v
		}
		out = append(out, rec)
	}
	return out
}

func cells(line string) []string {
	parts := strings.Split(line, ",")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.TrimPrefix(p, `"`)
		p = strings.TrimSuffix(p, `"`)
		parts[i] = p
	}
	return parts
}
