package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jengatower/pkg/pipeline"
)

// networkCommand creates the network command, which renders the country
// link graph with Graphviz.
func (c *CLI) networkCommand() *cobra.Command {
	var (
		format    string
		output    string
		highlight string
		detailed  bool
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "network",
		Short: "Render the country link network as SVG or DOT",
		Long: `Render the country link network as SVG or DOT.

Nodes are countries coloured by region; edges are the aggregated company
links between them. --highlight draws one country's neighbourhood in bold.`,
		Example: `  jengatower network -o network.svg
  jengatower network -f dot --highlight DE`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := pipeline.ValidateFormat(format); err != nil {
				return err
			}

			opts, err := c.pipelineOptions()
			if err != nil {
				return err
			}
			opts.Highlight = highlight
			opts.Detailed = detailed
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			spinner := newSpinnerWithContext(ctx, "Rendering network...")
			spinner.Start()
			ds, hash, _, err := runner.LoadWithCacheInfo(ctx, opts)
			if err != nil {
				spinner.StopWithError("Load failed")
				return err
			}
			out, hit, err := runner.NetworkWithCacheInfo(ctx, ds, hash, format, opts)
			if err != nil {
				spinner.StopWithError("Render failed")
				return err
			}
			spinner.Stop()

			if output == "" {
				_, err := cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("write output %s: %w", output, err)
			}
			printSuccess("Network rendered")
			printFile(output)
			printStats(ds.Len(), len(ds.Links()), 0, hit)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatSVG, "output format: svg or dot")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&highlight, "highlight", "", "country code to emphasise")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label nodes with their metrics")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
