package catalog

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
)

// column is a header position looked up by one of its accepted names.
type column struct {
	name string
	idx  int
}

// readTable reads a whole CSV file; the first row is the header.
func readTable(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%w: %s is empty", ErrMissingColumn, path)
	}

	header := records[0]
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return header, records[1:], nil
}

func need(path string, cols ...column) error {
	for _, c := range cols {
		if c.idx < 0 {
			return fmt.Errorf("%w: %s has no %q", ErrMissingColumn, path, c.name)
		}
	}
	return nil
}

// cell returns row[idx], or "" when the column is absent or the row short.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// number parses a float cell. Empty cells read as NaN.
func number(row []string, idx int) (float64, error) {
	s := cell(row, idx)
	if s == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrParse, s)
	}
	return v, nil
}

// integer parses an integer cell, accepting float notation such as "12.0".
func integer(row []string, idx int) (int64, error) {
	s := cell(row, idx)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != math.Trunc(v) {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrParse, s)
	}
	return int64(v), nil
}

// numbers parses several float cells of one row at once.
func numbers(row []string, dst []*float64, idx []int) error {
	for i, p := range dst {
		v, err := number(row, idx[i])
		if err != nil {
			return err
		}
		*p = v
	}
	return nil
}
