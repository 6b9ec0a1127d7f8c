package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jengatower/pkg/pipeline"
)

// layoutCommand creates the layout command for computing block layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		sortKey string
		limit   int
		showAll bool
		refresh bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Compute the block layout for a sort key",
		Long: `Compute the block layout for a sort key.

The layout command loads the country and link tables, orders the countries
by the chosen metric and assigns each one a layer and one to three blocks.
Without --output it prints a table of layers, bottom first; with --output it
writes the full layout as JSON.

Sort keys are metric[:asc|desc] with metric one of companies, pagerank or
centrality. Results are cached for faster subsequent runs.`,
		Example: `  jengatower layout --sort pagerank:asc
  jengatower layout --limit 20 -o tower.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.pipelineOptions()
			if err != nil {
				return err
			}
			if opts.Key, err = c.sortKeyFlag(sortKey); err != nil {
				return err
			}
			if cmd.Flags().Changed("limit") {
				opts.Layout.Limit = limit
			}
			if cmd.Flags().Changed("show-all") {
				opts.Layout.ShowAll = showAll
			}
			opts.Refresh = refresh
			return c.runLayout(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the layout as JSON to this file")
	cmd.Flags().StringVarP(&sortKey, "sort", "s", "", "sort key, e.g. companies:desc (default from config)")
	_ = cmd.RegisterFlagCompletionFunc("sort", completeSortKeys)
	cmd.Flags().IntVar(&limit, "limit", 0, "keep only the first n countries (0 = all)")
	cmd.Flags().BoolVar(&showAll, "show-all", false, "give every country three blocks")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "reload the dataset even if cached")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runLayout runs the pipeline and prints or writes the result.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %s layout...", opts.Key))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if output == "" {
		fmt.Println(layerTable(result.Specs, result.Key))
		printStats(result.Stats.Countries, result.Stats.Links, result.Stats.Blocks, result.CacheInfo.LayoutHit)
		return nil
	}

	data, err := json.MarshalIndent(result.Export(opts.Layout), "", "  ")
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(result.Stats.Countries, result.Stats.Links, result.Stats.Blocks, result.CacheInfo.LayoutHit)
	printNewline()
	printNextStep("Simulate", "jengatower simulate --sort "+result.Key.String())
	return nil
}
