package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jengatower/internal/server"
	"github.com/matzehuels/jengatower/pkg/metrics"
	rmem "github.com/matzehuels/jengatower/pkg/render/memory"
	"github.com/matzehuels/jengatower/pkg/tower"
)

// serveCommand creates the serve command, which runs a tower behind an
// HTTP and WebSocket API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		sortKey string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a tower behind an HTTP and WebSocket API",
		Long: `Run a tower behind an HTTP and WebSocket API.

The server owns one engine and advances it at the configured tick rate.
Clients read snapshots from /api/snapshot or subscribe on /ws, trigger
reconfigurations with POST /api/view and toggle physics with /api/physics.
Prometheus metrics are exposed on /metrics.`,
		Example: `  jengatower serve --addr :8080 --sort pagerank:desc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := c.Config.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			key, err := c.sortKeyFlag(sortKey)
			if err != nil {
				return err
			}

			reg := metrics.NewRegistry()
			reg.Install()

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			opts, err := c.pipelineOptions()
			if err != nil {
				return err
			}
			opts.Key = key
			result, err := runner.Execute(ctx, opts)
			if err != nil {
				return err
			}

			eng := tower.New(rmem.New(), c.newWorld(), result.Dataset, c.engineOptions()...)
			defer eng.Close()
			if err := eng.Build(key); err != nil {
				return err
			}

			srv := server.New(eng, server.Options{
				TickRate:    cfg.TickRate,
				Runner:      runner,
				DatasetHash: result.DatasetHash,
				Layout:      opts.Layout,
				Metrics:     reg,
				Logger:      c.Logger,
			})

			printSuccess("Serving %s on %s", key, cfg.Addr)
			printStats(result.Stats.Countries, result.Stats.Links, result.Stats.Blocks, result.CacheInfo.LayoutHit)
			return srv.ListenAndServe(ctx, cfg.Addr, cfg.ReadTimeout, cfg.WriteTimeout)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVarP(&sortKey, "sort", "s", "", "initial sort key (default from config)")
	_ = cmd.RegisterFlagCompletionFunc("sort", completeSortKeys)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
