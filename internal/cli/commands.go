package cli

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"datascout/internal/artifact"
	"datascout/internal/pipeline"
	"datascout/internal/report"
)

func newScrapeCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "scrape <url>",
		Short: "Extract readable text from a company page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := o.build(ctx, stages{scrape: true})
			if err != nil {
				return err
			}
			defer d.Close()

			runID := pipeline.RunIDFor(o.runID, 0, 1)
			n, err := d.runner.Scrape.Run(ctx, runID, args[0])
			o.printer.Stage(pipeline.StageScrape, err, fmt.Sprintf("%d bytes extracted", n))
			if err != nil {
				return err
			}
			o.printer.Info("run id: %s", runID)
			return nil
		},
	}
}

func newGenerateCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate use cases and search keywords for a scraped run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := o.requireRunID()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			d, err := o.build(ctx, stages{generate: true})
			if err != nil {
				return err
			}
			defer d.Close()

			res, err := d.runner.Generate.Run(ctx, runID)
			o.printer.Stage(pipeline.StageGenerate, err, fmt.Sprintf("company %q", res.CompanyName))
			return err
		},
	}
}

func newCollectCmd(o *options) *cobra.Command {
	var table bool
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Search dataset catalogs for every use-case keyword and write the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := o.requireRunID()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			d, err := o.build(ctx, stages{collect: true})
			if err != nil {
				return err
			}
			defer d.Close()

			res, err := d.runner.Collect.Run(ctx, runID)
			o.printer.Stage(pipeline.StageCollect, err, res.String())
			if err != nil {
				return err
			}
			o.reportCollect(res)
			if table {
				return o.showReport(ctx, d.store, runID)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&table, "table", false, "print the report as a table")
	return cmd
}

func newRunCmd(o *options) *cobra.Command {
	var table bool
	cmd := &cobra.Command{
		Use:   "run <url>...",
		Short: "Run scrape, generate and collect for each URL",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d, err := o.build(ctx, stages{scrape: true, generate: true, collect: true})
			if err != nil {
				return err
			}
			defer d.Close()

			reports := d.runner.Run(ctx, args, o.runID)
			failed := 0
			for _, rep := range reports {
				o.printer.Header(fmt.Sprintf("%s (run %s)", rep.URL, rep.RunID))
				for _, st := range rep.Stages {
					o.printer.Stage(st.Stage, st.Err, st.Detail)
				}
				if !rep.OK() {
					failed++
					continue
				}
				if table {
					if err := o.showReport(ctx, d.store, rep.RunID); err != nil {
						return err
					}
				}
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d runs failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&table, "table", false, "print each report as a table")
	return cmd
}

func (o *options) reportCollect(res pipeline.CollectResult) {
	if res.Parse.UseCases == 0 {
		o.printer.Warning("no use cases found")
	}
	if res.Aggregate.SearchFailures > 0 {
		o.printer.Warning("%d searches failed and were treated as empty", res.Aggregate.SearchFailures)
	}
	if res.Empty {
		o.printer.Warning("no resources found; %s holds only the header", artifact.ResourceLinks)
	}
}

func (o *options) showReport(ctx context.Context, store artifact.Store, runID string) error {
	raw, err := store.Get(ctx, runID, artifact.ResourceLinks)
	if err != nil {
		return fmt.Errorf("read %s: %w", artifact.ResourceLinks, err)
	}
	rows, err := report.ReadCSV(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("parse %s: %w", artifact.ResourceLinks, err)
	}
	return report.RenderTable(o.printer.Out(), rows)
}
