package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// column is a table column; numeric columns are right aligned.
type column struct {
	title string
	right bool
}

// table lays out rows in aligned columns one space apart. Widths are
// measured in terminal cells.
type table struct {
	cols []column
	rows [][]string
}

func newTable(cols ...column) *table {
	return &table{cols: cols}
}

// add appends a row; missing cells are blank and extra cells are dropped.
func (t *table) add(cells ...string) {
	row := make([]string, len(t.cols))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

func (t *table) lines() []string {
	if len(t.cols) == 0 {
		return nil
	}
	widths := make([]int, len(t.cols))
	header := make([]string, len(t.cols))
	for i, c := range t.cols {
		header[i] = c.title
		widths[i] = runewidth.StringWidth(c.title)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	out := make([]string, 0, len(t.rows)+1)
	for _, row := range append([][]string{header}, t.rows...) {
		cells := make([]string, len(row))
		for i, cell := range row {
			if t.cols[i].right {
				cells[i] = runewidth.FillLeft(cell, widths[i])
			} else {
				cells[i] = runewidth.FillRight(cell, widths[i])
			}
		}
		out = append(out, strings.Join(cells, " "))
	}
	return out
}
