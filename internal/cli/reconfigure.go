package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	rmem "github.com/matzehuels/jengatower/pkg/render/memory"
	"github.com/matzehuels/jengatower/pkg/tower/layout"
	"github.com/matzehuels/jengatower/pkg/tower/reconfig"
)

// reconfigureCommand creates the reconfigure command, which runs one
// reconfiguration cycle headlessly and reports what moved.
func (c *CLI) reconfigureCommand() *cobra.Command {
	var (
		from    string
		to      string
		fps     int
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "reconfigure",
		Short: "Reorder a built tower and report which blocks moved",
		Long: `Reorder a built tower and report which blocks moved.

The tower is built for --from and then reconfigured to --to. Blocks keep
their identity where the target has a block for the same country; the rest
are reassigned, removed or created. The cycle is driven at --fps until the
engine is idle again.`,
		Example: `  jengatower reconfigure --from companies:desc --to pagerank:asc`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, err := c.sortKeyFlag(from)
			if err != nil {
				return err
			}
			dst, err := layout.ParseSortKey(to)
			if err != nil {
				return err
			}
			if fps <= 0 {
				return fmt.Errorf("fps must be positive, got %d", fps)
			}

			eng, _, err := c.loadTower(ctx, rmem.New(), c.newWorld(), src, noCache)
			if err != nil {
				return err
			}
			defer eng.Close()

			if !eng.Reconfigure(dst) {
				return fmt.Errorf("reconfiguration to %s refused in phase %s", dst, eng.Phase())
			}

			frame := time.Second / time.Duration(fps)
			for eng.Phase() != reconfig.Idle {
				if err := ctx.Err(); err != nil {
					return err
				}
				eng.Tick(frame)
			}

			sum, _ := eng.LastReconfig()
			printSuccess("Reconfigured %s → %s", src, dst)
			printKeyValue("Kept", fmt.Sprintf("%d", sum.Kept))
			printKeyValue("Reassigned", fmt.Sprintf("%d", sum.Reassigned))
			printKeyValue("Removed", fmt.Sprintf("%d", sum.Removed))
			printKeyValue("Created", fmt.Sprintf("%d", sum.Created))
			printKeyValue("Blocks", fmt.Sprintf("%d", sum.Targets))
			printKeyValue("Duration", sum.Duration.Round(time.Millisecond).String())
			if sum.Failures > 0 {
				printWarning("%d blocks could not be rebuilt", sum.Failures)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "initial sort key (default from config)")
	cmd.Flags().StringVar(&to, "to", "", "target sort key")
	cmd.Flags().IntVar(&fps, "fps", 60, "frames per second")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.RegisterFlagCompletionFunc("from", completeSortKeys)
	_ = cmd.RegisterFlagCompletionFunc("to", completeSortKeys)

	return cmd
}
