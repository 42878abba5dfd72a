package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// headerIndex maps normalized header captions to their column position.
// Source spreadsheets vary in casing, spacing and column order, so lookups
// go through normalizeHeader instead of fixed positions.
type headerIndex map[string]int

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.ReplaceAll(h, " ", "")
	h = strings.ReplaceAll(h, "_", "")
	h = strings.ReplaceAll(h, "-", "")
	return h
}

func buildHeaderIndex(headerRow []string) headerIndex {
	idx := headerIndex{}
	for i, caption := range headerRow {
		key := normalizeHeader(caption)
		if key == "" {
			continue
		}
		if _, exists := idx[key]; !exists {
			idx[key] = i
		}
	}
	return idx
}

// cell returns the trimmed value under any of the given captions, or ""
// when none of them exists or the row is too short.
func (idx headerIndex) cell(row []string, captions ...string) string {
	for _, caption := range captions {
		i, ok := idx[normalizeHeader(caption)]
		if !ok || i >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[i]); v != "" {
			return v
		}
	}
	return ""
}

func (idx headerIndex) has(caption string) bool {
	_, ok := idx[normalizeHeader(caption)]
	return ok
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02-Jan-2006",
	"02-Jan-06",
	"1/2/2006",
	"01-02-06",
	time.RFC3339,
}

// parseDate accepts the date spellings seen in field spreadsheets plus the
// Excel serial number form. Empty and placeholder cells yield nil.
func parseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "nan") || value == "-" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	if serial, err := decimal.NewFromString(value); err == nil {
		f, _ := serial.Float64()
		if t, err := excelize.ExcelDateToTime(f, false); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", value)
}

// parseDecimal treats empty and placeholder cells as zero.
func parseDecimal(value string) (decimal.Decimal, error) {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if value == "" || strings.EqualFold(value, "nan") || value == "-" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(value)
}

// sheetRows reads the rows of the named sheet, falling back to the first
// sheet of the workbook when the preferred name is absent.
func sheetRows(f *excelize.File, preferred string) ([][]string, error) {
	rows, err := f.GetRows(preferred)
	if err == nil {
		return rows, nil
	}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}
