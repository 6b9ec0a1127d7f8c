package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	rmem "github.com/matzehuels/jengatower/pkg/render/memory"
)

// simulateCommand creates the simulate command for headless physics runs.
func (c *CLI) simulateCommand() *cobra.Command {
	var (
		sortKey  string
		duration time.Duration
		fps      int
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Build the tower and let it settle without a window",
		Long: `Build the tower and let it settle without a window.

The simulate command builds the tower for a sort key, switches physics on and
advances the world at a fixed frame rate for the given wall-clock duration.
It then reports the top of the tower and how many bodies came to rest.`,
		Example: `  jengatower simulate --sort centrality:desc --duration 10s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			key, err := c.sortKeyFlag(sortKey)
			if err != nil {
				return err
			}
			if fps <= 0 {
				return fmt.Errorf("fps must be positive, got %d", fps)
			}

			world := c.newWorld()
			eng, result, err := c.loadTower(ctx, rmem.New(), world, key, noCache)
			if err != nil {
				return err
			}
			defer eng.Close()

			eng.SetPhysics(true)
			frame := time.Second / time.Duration(fps)
			frames := int(duration / frame)
			prog := newProgress(c.Logger)
			for i := 0; i < frames; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				eng.Tick(frame)
			}
			prog.done(fmt.Sprintf("simulated %d frames", frames))

			m := eng.Blocks()
			resting := 0
			for _, id := range m.IDs() {
				if body, ok := m.Body(id); ok && world.Sleeping(body) {
					resting++
				}
			}

			top := eng.Snapshot().Top(m.Brick().Height)
			printSuccess("Simulation complete")
			printKeyValue("Sort", key.String())
			printKeyValue("Frames", fmt.Sprintf("%d @ %d fps", frames, fps))
			printKeyValue("Steps", fmt.Sprintf("%d", world.Steps()))
			printKeyValue("Top", fmt.Sprintf("%.3f", top))
			printKeyValue("Resting", fmt.Sprintf("%d/%d", resting, m.Len()))
			printStats(result.Stats.Countries, result.Stats.Links, m.Len(), result.CacheInfo.LayoutHit)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sortKey, "sort", "s", "", "sort key, e.g. companies:desc (default from config)")
	_ = cmd.RegisterFlagCompletionFunc("sort", completeSortKeys)
	cmd.Flags().DurationVarP(&duration, "duration", "d", 5*time.Second, "simulated wall-clock time")
	cmd.Flags().IntVar(&fps, "fps", 60, "frames per second")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
