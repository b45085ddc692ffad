package main

import (
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und)

// humanLabel turns a column label into a display heading.
func humanLabel(label string) string {
	cleaned := strings.ReplaceAll(strings.TrimPrefix(label, "CLINICAL_"), "_", " ")
	return titleCaser.String(cleaned)
}

func renderTable(headers []string, rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range header {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, len(headers))
	for i := range headers {
		configs[i] = table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignLeft}
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// renderRows writes a rounded table on terminals and tab-separated rows
// elsewhere, so command output stays scriptable.
func renderRows(w io.Writer, headers []string, rows [][]string) {
	if isTerminal(w) {
		io.WriteString(w, renderTable(headers, rows)+"\n")
		return
	}
	io.WriteString(w, strings.Join(headers, "\t")+"\n")
	for _, row := range rows {
		io.WriteString(w, strings.Join(row, "\t")+"\n")
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
