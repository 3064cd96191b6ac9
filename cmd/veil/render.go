package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"veil/internal/classify"
)

var titleCaser = cases.Title(language.English)

// categoryLabel turns a classifier category into a display label,
// e.g. "transient-server" -> "Transient Server".
func categoryLabel(category classify.Category) string {
	return titleCaser.String(strings.ReplaceAll(string(category), "-", " "))
}

// progressRenderer paints the displayed progress value. On a TTY the line
// is redrawn in place; otherwise each advance prints on its own line so
// logs stay readable.
type progressRenderer struct {
	out   io.Writer
	tty   bool
	label string
}

func newProgressRenderer(out io.Writer, label string) *progressRenderer {
	tty := false
	if f, ok := out.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &progressRenderer{out: out, tty: tty, label: label}
}

func (r *progressRenderer) Update(value int) {
	if r.tty {
		fmt.Fprintf(r.out, "\r%s %s %3d%%", r.label, progressBar(value), value)
		return
	}
	fmt.Fprintf(r.out, "%s %d%%\n", r.label, value)
}

func (r *progressRenderer) Finish() {
	if r.tty {
		fmt.Fprintln(r.out)
	}
}

func progressBar(value int) string {
	const width = 24
	filled := value * width / 100
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// renderTable lays out batch items, history records, and format listings.
// Rows shorter than the header are padded so ragged input never panics.
func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	if len(headers) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	configs := make([]table.ColumnConfig, len(headers))
	for i, name := range headers {
		header[i] = name
		configs[i] = table.ColumnConfig{Number: i + 1, Align: text.AlignLeft}
		if i < len(aligns) && aligns[i] == alignRight {
			configs[i].Align = text.AlignRight
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, cells := range rows {
		row := make(table.Row, len(headers))
		for i := range row {
			row[i] = ""
			if i < len(cells) {
				row[i] = cells[i]
			}
		}
		tw.AppendRow(row)
	}

	return tw.Render()
}
