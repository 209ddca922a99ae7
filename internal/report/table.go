package report

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"datascout/internal/types"
)

// RenderTable prints rows for a terminal, without the description column.
func RenderTable(w io.Writer, rows []types.AggregatedRow) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNormal},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
	)
	table.Header([]string{"Use Case", "Keywords", "Datasets", "Links", "Source"})
	for _, r := range rows {
		if err := table.Append([]string{r.Title, r.Keywords, r.DatasetNames, r.DatasetLinks, r.Sources}); err != nil {
			return err
		}
	}
	return table.Render()
}
