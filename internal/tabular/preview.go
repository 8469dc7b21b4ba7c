package tabular

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/vk/tabflow/internal/cells"
)

// Preview renders the first n rows of the sheet with column letters as the
// header.
func (s *Sheet) Preview(n int) string {
	header := make([]string, s.cols)
	for i := range header {
		header[i] = cells.ColumnName(i)
	}
	rows := s.data[:min(n, len(s.data))]
	return renderGrid(header, rows, len(s.data))
}

// Preview renders the first n rows of the table with column names as the
// header.
func (t *Table) Preview(n int) string {
	header := make([]string, len(t.columns))
	for i, c := range t.columns {
		header[i] = fmt.Sprintf("%s (%s)", c.Name, c.Type)
	}
	shown := min(n, len(t.rows))
	rows := make([][]string, shown)
	for i := 0; i < shown; i++ {
		rows[i] = make([]string, len(t.columns))
		for j, v := range t.rows[i] {
			rows[i][j] = DisplayValue(v)
		}
	}
	return renderGrid(header, rows, len(t.rows))
}

func renderGrid(header []string, rows [][]string, total int) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(w, strings.Join(r, "\t"))
	}
	_ = w.Flush()
	if total > len(rows) {
		fmt.Fprintf(&b, "... %d more row(s)\n", total-len(rows))
	}
	return b.String()
}
