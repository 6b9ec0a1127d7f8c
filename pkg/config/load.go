package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/jengatower/pkg/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "JENGA_"

// Load reads path (may be empty), applies .env and environment overrides
// and validates the result.
func Load(path string) (*Config, error) {
	c := &Config{}
	if path != "" {
		if err := decodeFile(path, c); err != nil {
			return nil, err
		}
	}
	// A missing .env is normal.
	_ = godotenv.Load()
	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func decodeFile(path string, c *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), c); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unsupported config format %q (want .toml, .yaml or .yml)", filepath.Ext(path))
	}
	return nil
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides fields from JENGA_* variables.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	str("COUNTRIES", &c.Data.Countries)
	str("LINKS", &c.Data.Links)
	str("S3_ENDPOINT", &c.Data.S3Endpoint)
	str("S3_REGION", &c.Data.S3Region)
	str("SORT", &c.Layout.Sort)
	str("CACHE_BACKEND", &c.Cache.Backend)
	str("CACHE_DIR", &c.Cache.Dir)
	str("CACHE_URL", &c.Cache.URL)
	str("ADDR", &c.Server.Addr)
	str("LOG_LEVEL", &c.Log.Level)

	if v, ok := lookup(EnvPrefix + "LIMIT"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%sLIMIT", EnvPrefix)
		}
		c.Layout.Limit = n
	}
	if v, ok := lookup(EnvPrefix + "SHOW_ALL"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%sSHOW_ALL", EnvPrefix)
		}
		c.Layout.ShowAll = b
	}
	if v, ok := lookup(EnvPrefix + "RECONFIG_DURATION"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%sRECONFIG_DURATION", EnvPrefix)
		}
		c.Reconfig.Duration = d
	}
	return nil
}

// Write encodes c as TOML or YAML, chosen by the extension of path.
func (c *Config) Write(path string) error {
	var data []byte
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		b, err := yaml.Marshal(c)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode yaml")
		}
		data = b
	default:
		var sb strings.Builder
		if err := toml.NewEncoder(&sb).Encode(c); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode toml")
		}
		data = []byte(sb.String())
	}
	return os.WriteFile(path, data, 0o644)
}
