package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"StockScreener/internal/model"
)

func newTableStyle() table.Style {
	style := table.StyleRounded
	style.Format.Header = text.FormatDefault
	return style
}

// RenderTable prints the matching symbols as a console table.
func RenderTable(w io.Writer, results []model.SignalResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(newTableStyle())

	header := table.Row{}
	for _, h := range ResultHeader {
		header = append(header, h)
	}
	t.AppendHeader(header)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})

	for _, r := range results {
		t.AppendRow(table.Row{
			r.Symbol,
			r.Name,
			formatFloat(r.CurrentPrice, "$"),
			formatFloat(r.EMA200, "$"),
			formatFloat(r.MACD.MACD, ""),
			formatFloat(r.MACD.Signal, ""),
		})
	}
	t.AppendFooter(table.Row{"", "Total", len(results)})
	t.Render()
}

func formatFloat(v float64, prefix string) string {
	if v < 0 {
		return fmt.Sprintf("-%s%.2f", prefix, -v)
	}
	return fmt.Sprintf("%s%.2f", prefix, v)
}
