package cli

import (
	"context"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/jengatower/pkg/buildinfo"
	"github.com/matzehuels/jengatower/pkg/cache"
	"github.com/matzehuels/jengatower/pkg/config"
	"github.com/matzehuels/jengatower/pkg/dataset"
	"github.com/matzehuels/jengatower/pkg/httputil"
	pmem "github.com/matzehuels/jengatower/pkg/physics/memory"
	"github.com/matzehuels/jengatower/pkg/pipeline"
	"github.com/matzehuels/jengatower/pkg/render"
	"github.com/matzehuels/jengatower/pkg/tower"
	"github.com/matzehuels/jengatower/pkg/tower/layout"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "jengatower"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Jengatower stacks countries into a physics-driven block tower",
		Long: `Jengatower turns a country dataset into a tower of blocks: one layer per
country, ordered by a metric, with up to three blocks per layer depending on
how central the country is. The tower can be simulated, reconfigured to a
different ordering, served over HTTP or explored in a desktop viewer.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (.toml, .yaml)")

	// Register all subcommands
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.simulateCommand())
	root.AddCommand(c.reconfigureCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.networkCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())
	root.AddCommand(c.versionCommand())

	return root
}

// loadConfig replaces the default configuration with the file and
// environment configuration.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	if c.Logger.GetLevel() > log.DebugLevel {
		if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil {
			c.Logger.SetLevel(lvl)
		}
	}
	c.Logger.Debug("configuration loaded", "path", c.configPath, "countries", cfg.Data.Countries, "cache", cfg.Cache.Backend)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	// Scope keys by version so cached layouts never outlive a format change.
	r := pipeline.NewRunner(cc, cache.NewScopedKeyer(nil, buildinfo.Version+":"), c.Logger)
	r.TTL = c.Config.Cache.TTL
	return r, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	cc := c.Config.Cache
	return cache.Open(ctx, cache.Options{
		Backend:    cc.Backend,
		Dir:        cc.Dir,
		URL:        cc.URL,
		Database:   cc.Database,
		Collection: cc.Collection,
		Prefix:     cc.Prefix,
	})
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the file cache directory: the configured one, else
// the user cache directory (~/.cache/jengatower/ on Linux).
func (c *CLI) cacheDir() (string, error) {
	if c.Config != nil && c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineOptions builds pipeline options from the configuration.
func (c *CLI) pipelineOptions() (pipeline.Options, error) {
	key, err := c.Config.SortKey()
	if err != nil {
		return pipeline.Options{}, err
	}
	d := c.Config.Data
	return pipeline.Options{
		Countries: d.Countries,
		Links:     d.Links,
		Source: dataset.SourceOptions{
			HTTP: &httputil.Client{
				HTTP:     &http.Client{Timeout: d.Timeout},
				Attempts: max(1, d.Retries),
				Delay:    httputil.NewClient().Delay,
			},
			S3Endpoint: d.S3Endpoint,
			S3Region:   d.S3Region,
		},
		Key:    key,
		Layout: c.Config.LayoutOptions(),
		Logger: c.Logger,
	}, nil
}

// engineOptions builds tower options from the configuration.
func (c *CLI) engineOptions() []tower.Option {
	cfg := c.Config
	return []tower.Option{
		tower.WithLayout(cfg.LayoutOptions()),
		tower.WithReconfigDuration(cfg.Reconfig.Duration),
		tower.WithTimeDivisor(cfg.Sim.TimeDivisor, cfg.Sim.BoostedDivisor),
		tower.WithMaxSubSteps(cfg.Sim.MaxSubSteps),
		tower.WithLogger(c.Logger),
	}
}

// newWorld creates the physics world for headless and served towers.
func (c *CLI) newWorld() *pmem.World {
	return pmem.New(pmem.WithGravity(c.Config.Sim.Gravity))
}

// loadTower runs the pipeline and builds an engine over scene at key.
func (c *CLI) loadTower(ctx context.Context, scene render.Scene, world *pmem.World, key layout.SortKey, noCache bool) (*tower.Engine, *pipeline.Result, error) {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, nil, err
	}
	defer runner.Close()

	opts, err := c.pipelineOptions()
	if err != nil {
		return nil, nil, err
	}
	opts.Key = key

	spinner := newSpinnerWithContext(ctx, "Loading dataset...")
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Load failed")
		return nil, nil, err
	}
	spinner.Stop()

	eng := tower.New(scene, world, result.Dataset, c.engineOptions()...)
	if err := eng.Build(key); err != nil {
		return nil, nil, err
	}
	return eng, result, nil
}

// sortKeyFlag resolves a --sort flag against the configured default.
func (c *CLI) sortKeyFlag(s string) (layout.SortKey, error) {
	if s == "" {
		return c.Config.SortKey()
	}
	return layout.ParseSortKey(s)
}
