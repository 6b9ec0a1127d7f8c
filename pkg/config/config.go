// Package config loads jengatower settings.
//
// Settings come from, in increasing precedence: built-in defaults, a TOML
// or YAML file (chosen by extension), a .env file and JENGA_* environment
// variables. The result is validated before it is returned.
//
//	cfg, err := config.Load("jengatower.toml")
//	if err != nil {
//		return err
//	}
//	engine := tower.New(scene, world, ds, cfg.EngineOptions()...)
package config

import (
	"time"

	"github.com/matzehuels/jengatower/pkg/tower/layout"
	"github.com/matzehuels/jengatower/pkg/tower/reconfig"
	"github.com/matzehuels/jengatower/pkg/tower/sim"
)

// Default data locations, relative to the working directory.
const (
	DefaultCountries = "./data/results_semicon.csv"
	DefaultLinks     = "./data/links_semicon.csv"
)

type Config struct {
	Data     DataConfig     `toml:"data" yaml:"data"`
	Layout   LayoutConfig   `toml:"layout" yaml:"layout"`
	Sim      SimConfig      `toml:"sim" yaml:"sim"`
	Reconfig ReconfigConfig `toml:"reconfig" yaml:"reconfig"`
	Cache    CacheConfig    `toml:"cache" yaml:"cache"`
	Server   ServerConfig   `toml:"server" yaml:"server"`
	Viewer   ViewerConfig   `toml:"viewer" yaml:"viewer"`
	Log      LogConfig      `toml:"log" yaml:"log"`
}

// DataConfig locates the two tabular sources. Locations may be paths or
// file, http(s), s3 or postgres URLs.
type DataConfig struct {
	Countries  string `toml:"countries" yaml:"countries" validate:"required"`
	Links      string `toml:"links" yaml:"links" validate:"required"`
	S3Endpoint string `toml:"s3_endpoint" yaml:"s3_endpoint" validate:"omitempty,url"`
	S3Region   string `toml:"s3_region" yaml:"s3_region"`
	// Retries for HTTP sources.
	Retries int           `toml:"retries" yaml:"retries" validate:"gte=0,lte=10"`
	Timeout time.Duration `toml:"timeout" yaml:"timeout" validate:"gte=0"`
}

type LayoutConfig struct {
	Sort         string       `toml:"sort" yaml:"sort" validate:"required"`
	Brick        layout.Brick `toml:"brick" yaml:"brick"`
	HeightOffset float64      `toml:"height_offset" yaml:"height_offset" validate:"lte=0"`
	Limit        int          `toml:"limit" yaml:"limit" validate:"gte=0"`
	ShowAll      bool         `toml:"show_all" yaml:"show_all"`
}

type SimConfig struct {
	TimeDivisor    float64 `toml:"time_divisor" yaml:"time_divisor" validate:"gt=0"`
	BoostedDivisor float64 `toml:"boosted_divisor" yaml:"boosted_divisor" validate:"gt=0"`
	MaxSubSteps    int     `toml:"max_sub_steps" yaml:"max_sub_steps" validate:"gt=0,lte=1000"`
	Gravity        float64 `toml:"gravity" yaml:"gravity" validate:"lt=0"`
}

type ReconfigConfig struct {
	Duration time.Duration `toml:"duration" yaml:"duration" validate:"gte=0"`
}

type CacheConfig struct {
	Backend    string        `toml:"backend" yaml:"backend" validate:"oneof=file none redis mongo"`
	Dir        string        `toml:"dir" yaml:"dir"`
	URL        string        `toml:"url" yaml:"url" validate:"required_if=Backend redis,required_if=Backend mongo"`
	Database   string        `toml:"database" yaml:"database"`
	Collection string        `toml:"collection" yaml:"collection"`
	Prefix     string        `toml:"prefix" yaml:"prefix"`
	TTL        time.Duration `toml:"ttl" yaml:"ttl" validate:"gte=0"`
}

type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr" validate:"required,hostname_port"`
	// TickRate is the engine frame rate in frames per second.
	TickRate     int           `toml:"tick_rate" yaml:"tick_rate" validate:"gt=0,lte=240"`
	ReadTimeout  time.Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout" yaml:"write_timeout"`
}

type ViewerConfig struct {
	Width  int32 `toml:"width" yaml:"width" validate:"gte=320"`
	Height int32 `toml:"height" yaml:"height" validate:"gte=240"`
	FPS    int32 `toml:"fps" yaml:"fps" validate:"gt=0,lte=240"`
}

type LogConfig struct {
	Level string `toml:"level" yaml:"level" validate:"oneof=debug info warn error"`
}

// Default returns a fully populated configuration.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()
	return c
}

// SetDefaults fills every zero field with its default.
func (c *Config) SetDefaults() {
	if c.Data.Countries == "" {
		c.Data.Countries = DefaultCountries
	}
	if c.Data.Links == "" {
		c.Data.Links = DefaultLinks
	}
	if c.Data.Retries == 0 {
		c.Data.Retries = 3
	}
	if c.Data.Timeout == 0 {
		c.Data.Timeout = 30 * time.Second
	}

	if c.Layout.Sort == "" {
		c.Layout.Sort = layout.DefaultSortKey().String()
	}
	if c.Layout.Brick == (layout.Brick{}) {
		c.Layout.Brick = layout.DefaultBrick()
		if c.Layout.HeightOffset == 0 {
			c.Layout.HeightOffset = layout.DefaultHeightOffset
		}
	}

	if c.Sim.TimeDivisor == 0 {
		c.Sim.TimeDivisor = sim.DefaultTimeDivisor
	}
	if c.Sim.BoostedDivisor == 0 {
		c.Sim.BoostedDivisor = sim.BoostedTimeDivisor
	}
	if c.Sim.MaxSubSteps == 0 {
		c.Sim.MaxSubSteps = 100
	}
	if c.Sim.Gravity == 0 {
		c.Sim.Gravity = -9.8
	}

	if c.Reconfig.Duration == 0 {
		c.Reconfig.Duration = reconfig.DefaultDuration
	}

	if c.Cache.Backend == "" {
		c.Cache.Backend = "file"
	}
	if c.Cache.Database == "" {
		c.Cache.Database = "jengatower"
	}
	if c.Cache.Collection == "" {
		c.Cache.Collection = "cache"
	}
	if c.Cache.Prefix == "" {
		c.Cache.Prefix = "jengatower:"
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 24 * time.Hour
	}

	if c.Server.Addr == "" {
		c.Server.Addr = "localhost:8080"
	}
	if c.Server.TickRate == 0 {
		c.Server.TickRate = 60
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}

	if c.Viewer.Width == 0 {
		c.Viewer.Width = 1280
	}
	if c.Viewer.Height == 0 {
		c.Viewer.Height = 800
	}
	if c.Viewer.FPS == 0 {
		c.Viewer.FPS = 60
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// SortKey parses Layout.Sort.
func (c *Config) SortKey() (layout.SortKey, error) {
	return layout.ParseSortKey(c.Layout.Sort)
}

// LayoutOptions converts the layout section.
func (c *Config) LayoutOptions() layout.Options {
	return layout.Options{
		Brick:        c.Layout.Brick,
		HeightOffset: c.Layout.HeightOffset,
		Limit:        c.Layout.Limit,
		ShowAll:      c.Layout.ShowAll,
	}
}
