package extract

import (
	"regexp"
	"strings"

	"github.com/katyLiminche/pdf-parser-app/model"
)

// minTableRows is the smallest run of consecutive tabular lines treated as
// a table: a header plus at least one data row.
const minTableRows = 2

var cellGapRe = regexp.MustCompile(`\t| {2,}`)

// RecoverTables finds table-shaped regions in a page's text: runs of
// consecutive lines that each split into two or more cells on tabs or
// multi-space gaps. Rows keep whatever column count they split into, so a
// misaligned region comes back as a ragged table and gets penalized during
// validation instead of being silently dropped.
func RecoverTables(pageText string, page int) []model.Table {
	var tables []model.Table
	var rows [][]string

	flush := func() {
		if len(rows) >= minTableRows {
			tables = append(tables, model.Table{Rows: rows, Page: page})
		}
		rows = nil
	}

	for _, line := range strings.Split(pageText, "\n") {
		cells := splitCells(line)
		if len(cells) >= 2 {
			rows = append(rows, cells)
			continue
		}
		flush()
	}
	flush()

	return tables
}

func splitCells(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	parts := cellGapRe.Split(line, -1)
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			cells = append(cells, p)
		}
	}
	return cells
}
