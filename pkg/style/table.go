package style

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// NewStatusTableStyle is the look shared by the diagnostic commands. Rounded
// box, highlighted header, no row striping so error text stays readable.
func NewStatusTableStyle() *table.Style {
	style := table.Style{
		Name:    "StatusRounded",
		Box:     table.StyleBoxRounded,
		Format:  table.FormatOptionsDefault,
		HTML:    table.DefaultHTMLOptions,
		Options: table.OptionsDefault,
		Title:   table.TitleOptionsDefault,
		Color:   table.ColorOptionsDefault,
	}
	style.Color.Header = text.Colors{text.FgHiCyan, text.Bold}
	return &style
}

// NewStatusTable builds the table a diagnostic command renders into.
func NewStatusTable(mirror io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(mirror)
	t.SetStyle(*NewStatusTableStyle())
	t.AppendHeader(header)
	return t
}
