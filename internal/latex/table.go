package latex

import (
	"fmt"
	"strings"
)

// Table is a small tabular environment with \hline rules.
type Table struct {
	// Align holds one column spec letter per column; empty means all "r".
	Align   string
	Columns []string
	Rows    [][]string
}

// AddRow appends a row. It must have one cell per column.
func (t *Table) AddRow(cells ...string) error {
	if len(cells) != len(t.Columns) {
		return fmt.Errorf("%w: %d cells for %d columns", ErrShape, len(cells), len(t.Columns))
	}
	t.Rows = append(t.Rows, cells)
	return nil
}

// String renders the table.
func (t *Table) String() string {
	align := t.Align
	if align == "" {
		align = strings.Repeat("r", len(t.Columns))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\\begin{tabular}{%s}\n", align)
	b.WriteString("\\hline\n")
	b.WriteString(strings.Join(t.Columns, " & "))
	b.WriteString(" \\\\\n\\hline\n")
	for _, row := range t.Rows {
		b.WriteString(strings.Join(row, " & "))
		b.WriteString(" \\\\\n")
	}
	b.WriteString("\\hline\n\\end{tabular}\n")
	return b.String()
}
