package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/jengatower/internal/viewer/window"
	rmem "github.com/matzehuels/jengatower/pkg/render/memory"
)

// viewCommand creates the view command, which opens the desktop viewer.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		sortKey string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Open the tower in a desktop window",
		Long: `Open the tower in a desktop window.

Controls:
  Space        rebuild the current view
  Enter        toggle physics
  Tab          next metric
  O            flip the sort order
  1-4          camera presets
  Left mouse   slow motion while held
  Right drag   orbit the camera
  Wheel        zoom`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			key, err := c.sortKeyFlag(sortKey)
			if err != nil {
				return err
			}

			scene := rmem.New()
			eng, _, err := c.loadTower(ctx, scene, c.newWorld(), key, noCache)
			if err != nil {
				return err
			}
			defer eng.Close()

			v := c.Config.Viewer
			return window.Run(ctx, eng, scene, window.Options{
				Width:  v.Width,
				Height: v.Height,
				FPS:    v.FPS,
				Title:  appName,
				Logger: c.Logger,
			})
		},
	}

	cmd.Flags().StringVarP(&sortKey, "sort", "s", "", "initial sort key (default from config)")
	_ = cmd.RegisterFlagCompletionFunc("sort", completeSortKeys)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
