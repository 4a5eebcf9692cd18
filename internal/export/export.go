// Package export writes the flat export projection of a product set.
package export

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"comparador/internal/domain"
)

const DefaultFilename = "resultados.csv"

// Header is the CSV column order, matching the JSON field names.
var Header = []string{"id", "title", "brand", "marketplace", "price_total", "shipping_time_days", "url"}

type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
)

// ParseFormat defaults to CSV for anything but "json".
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(JSON)) {
		return JSON
	}
	return CSV
}

func (f Format) ContentType() string {
	if f == JSON {
		return "application/json"
	}
	return "text/csv; charset=utf-8"
}

// Rows projects products in order.
func Rows(products []*domain.Product) []domain.ExportRow {
	rows := make([]domain.ExportRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, p.ExportRow())
	}
	return rows
}

// Write emits rows in the given format.
func Write(w io.Writer, f Format, rows []domain.ExportRow) error {
	if f == JSON {
		return WriteJSON(w, rows)
	}
	return WriteCSV(w, rows)
}

// WriteCSV quotes every cell, doubles embedded quotes and joins lines with
// "\n". No rows produce no output at all, not even a header.
func WriteCSV(w io.Writer, rows []domain.ExportRow) error {
	if len(rows) == 0 {
		return nil
	}
	bw := bufio.NewWriter(w)
	line(bw, Header)
	for _, r := range rows {
		bw.WriteByte('\n')
		line(bw, []string{
			r.ID,
			r.Title,
			r.Brand,
			string(r.Marketplace),
			number(r.PriceTotal),
			number(r.ShippingTimeDays),
			r.URL,
		})
	}
	return bw.Flush()
}

func line(w *bufio.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(c, `"`, `""`))
		w.WriteByte('"')
	}
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteJSON writes rows as one JSON array; no rows give "[]".
func WriteJSON(w io.Writer, rows []domain.ExportRow) error {
	if rows == nil {
		rows = []domain.ExportRow{}
	}
	return json.NewEncoder(w).Encode(rows)
}

// Filename appends ".csv" unless name already ends with it; blank names get
// the default.
func Filename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultFilename
	}
	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		name += ".csv"
	}
	return name
}
