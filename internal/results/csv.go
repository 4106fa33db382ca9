package results

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// WriteCSV writes header and rows to path, creating parent folders.
func WriteCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for _, row := range rows {
		if len(row) != len(header) {
			return fmt.Errorf("%w: %s row has %d fields, header %d", ErrShape, path, len(row), len(header))
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

func formatInt(x int64) string {
	return strconv.FormatInt(x, 10)
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}

// Floats formats a row of numbers for WriteCSV.
func Floats(x ...float64) []string {
	out := make([]string, len(x))
	for i, v := range x {
		out[i] = formatFloat(v)
	}
	return out
}
