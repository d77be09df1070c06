package layout

import (
	"strconv"
	"strings"
)

// Section is part of table rows belong to.
type Section int

const (
	SectionBody Section = iota
	SectionHeader
	SectionFooter
)

type tableRow struct {
	section Section
	cells   []*Node
}

// TableWrapper collects table cells row by row and builds table element
// placing cells on grid with respect to row and column spans.
type TableWrapper struct {
	rows    []*tableRow
	widths  []string
	caption *Node
}

// NewTableWrapper returns empty wrapper.
func NewTableWrapper() *TableWrapper {
	return &TableWrapper{}
}

// NewRow starts row in given section.
func (t *TableWrapper) NewRow(section Section) {
	t.rows = append(t.rows, &tableRow{section: section})
}

// AddCell adds cell to current row, row is started when there is none.
func (t *TableWrapper) AddCell(cell *Node) {
	if len(t.rows) == 0 {
		t.NewRow(SectionBody)
	}
	r := t.rows[len(t.rows)-1]
	r.cells = append(r.cells, cell)
}

// AddColumn records width of span columns (from col element), empty width
// means automatic.
func (t *TableWrapper) AddColumn(width string, span int) {
	for range max(span, 1) {
		t.widths = append(t.widths, width)
	}
}

// SetCaption sets table caption.
func (t *TableWrapper) SetCaption(caption *Node) {
	t.caption = caption
}

// Caption returns table caption if any.
func (t *TableWrapper) Caption() *Node {
	return t.caption
}

// Empty reports whether no cell was added.
func (t *TableWrapper) Empty() bool {
	for _, r := range t.rows {
		if len(r.cells) > 0 {
			return false
		}
	}
	return true
}

func span(cell *Node, p Property) int {
	n, err := strconv.Atoi(cell.Get(p))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Build fills table with cells: header rows first, then body, then footer.
// Row and column of each cell are stored in its properties. Returns number
// of columns.
func (t *TableWrapper) Build(table *Node) int {
	var ordered []*tableRow
	for _, s := range []Section{SectionHeader, SectionBody, SectionFooter} {
		for _, r := range t.rows {
			if r.section == s {
				ordered = append(ordered, r)
			}
		}
	}

	var (
		occupied [][]bool
		columns  int
		header   int
		footer   int
	)
	mark := func(row, col int) {
		for len(occupied) <= row {
			occupied = append(occupied, nil)
		}
		for len(occupied[row]) <= col {
			occupied[row] = append(occupied[row], false)
		}
		occupied[row][col] = true
	}
	taken := func(row, col int) bool {
		return row < len(occupied) && col < len(occupied[row]) && occupied[row][col]
	}

	for ri, r := range ordered {
		switch r.section {
		case SectionHeader:
			header++
		case SectionFooter:
			footer++
		}
		col := 0
		for _, cell := range r.cells {
			for taken(ri, col) {
				col++
			}
			rs, cs := span(cell, PropRowSpan), span(cell, PropColSpan)
			// spans never cross section boundary
			rs = min(rs, sectionEnd(ordered, ri)-ri)
			for dr := range rs {
				for dc := range cs {
					mark(ri+dr, col+dc)
				}
			}
			cell.Set(PropRow, strconv.Itoa(ri))
			cell.Set(PropColumn, strconv.Itoa(col))
			if cell.Has(PropRowSpan) {
				cell.Set(PropRowSpan, strconv.Itoa(rs))
			}
			table.Add(cell)
			col += cs
			columns = max(columns, col)
		}
	}
	columns = max(columns, len(t.widths))

	table.Set(PropColumns, strconv.Itoa(columns))
	if header > 0 {
		table.Set(PropHeaderRows, strconv.Itoa(header))
	}
	if footer > 0 {
		table.Set(PropFooterRows, strconv.Itoa(footer))
	}
	if len(t.widths) > 0 && hasWidth(t.widths) {
		widths := make([]string, columns)
		for i := range widths {
			widths[i] = "auto"
			if i < len(t.widths) && t.widths[i] != "" {
				widths[i] = t.widths[i]
			}
		}
		table.Set(PropColumnWidths, strings.Join(widths, " "))
	}
	return columns
}

func sectionEnd(rows []*tableRow, from int) int {
	end := from + 1
	for end < len(rows) && rows[end].section == rows[from].section {
		end++
	}
	return end
}

func hasWidth(widths []string) bool {
	for _, w := range widths {
		if w != "" {
			return true
		}
	}
	return false
}
