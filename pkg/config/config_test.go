package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/jengatower/pkg/dataset"
	"github.com/matzehuels/jengatower/pkg/errors"
	"github.com/matzehuels/jengatower/pkg/tower/layout"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func noEnv(string) (string, bool) { return "", false }

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	key, err := c.SortKey()
	require.NoError(t, err)
	assert.Equal(t, layout.DefaultSortKey(), key)
	assert.Equal(t, layout.DefaultBrick(), c.Layout.Brick)
	assert.Equal(t, layout.DefaultHeightOffset, c.Layout.HeightOffset)
	assert.Equal(t, 2*time.Second, c.Reconfig.Duration)
	assert.Equal(t, "file", c.Cache.Backend)
}

func TestLoadTOML(t *testing.T) {
	path := writeConfig(t, "jenga.toml", `
[data]
countries = "https://example.com/results.csv"
links = "s3://bucket/links.csv"

[layout]
sort = "pagerank:asc"
limit = 12
show_all = true

[reconfig]
duration = "500ms"

[server]
addr = "0.0.0.0:9000"
`)
	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/results.csv", c.Data.Countries)
	assert.Equal(t, "s3://bucket/links.csv", c.Data.Links)
	assert.Equal(t, 12, c.Layout.Limit)
	assert.True(t, c.Layout.ShowAll)
	assert.Equal(t, 500*time.Millisecond, c.Reconfig.Duration)
	assert.Equal(t, "0.0.0.0:9000", c.Server.Addr)

	key, err := c.SortKey()
	require.NoError(t, err)
	assert.Equal(t, layout.SortKey{Metric: dataset.MetricPageRank, Ascending: true}, key)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "jenga.yaml", `
layout:
  sort: centrality
  brick:
    length: 3
    height: 1
    depth: 1
    mass: 10
cache:
  backend: redis
  url: redis://localhost:6379/0
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, layout.Brick{Length: 3, Height: 1, Depth: 1, Mass: 10}, c.Layout.Brick)
	assert.Equal(t, 0.0, c.Layout.HeightOffset)
	assert.Equal(t, "redis", c.Cache.Backend)

	opts := c.LayoutOptions()
	assert.Equal(t, c.Layout.Brick, opts.Brick)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{"unknown extension", "jenga.ini", "x=1"},
		{"bad toml", "jenga.toml", "[layout\nsort="},
		{"bad sort key", "jenga.toml", "[layout]\nsort = \"height\""},
		{"redis without url", "jenga.toml", "[cache]\nbackend = \"redis\""},
		{"unknown backend", "jenga.toml", "[cache]\nbackend = \"memcached\""},
		{"positive height offset", "jenga.toml", "[layout]\nheight_offset = 0.5"},
		{"bad source", "jenga.toml", "[data]\ncountries = \"ftp://host/x.csv\""},
		{"divisors inverted", "jenga.toml", "[sim]\ntime_divisor = 8.0\nboosted_divisor = 4.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.file, tt.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "code = %s", errors.GetCode(err))
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"JENGA_COUNTRIES":         "postgres://db/jenga?table=results",
		"JENGA_SORT":              "pagerank",
		"JENGA_LIMIT":             "7",
		"JENGA_SHOW_ALL":          "true",
		"JENGA_RECONFIG_DURATION": "3s",
		"JENGA_CACHE_BACKEND":     "none",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	c := &Config{}
	require.NoError(t, c.ApplyEnv(lookup))
	c.SetDefaults()
	require.NoError(t, c.Validate())

	assert.Equal(t, "postgres://db/jenga?table=results", c.Data.Countries)
	assert.Equal(t, DefaultLinks, c.Data.Links)
	assert.Equal(t, "pagerank", c.Layout.Sort)
	assert.Equal(t, 7, c.Layout.Limit)
	assert.True(t, c.Layout.ShowAll)
	assert.Equal(t, 3*time.Second, c.Reconfig.Duration)
	assert.Equal(t, "none", c.Cache.Backend)
}

func TestApplyEnvRejectsBadNumbers(t *testing.T) {
	for _, key := range []string{"JENGA_LIMIT", "JENGA_SHOW_ALL", "JENGA_RECONFIG_DURATION"} {
		t.Run(key, func(t *testing.T) {
			lookup := func(k string) (string, bool) {
				if k == key {
					return "lots", true
				}
				return noEnv(k)
			}
			err := (&Config{}).ApplyEnv(lookup)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	c := Default()
	c.Layout.Sort = "centrality:asc"
	c.Reconfig.Duration = 750 * time.Millisecond
	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, c.Write(path))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c.Layout, back.Layout)
	assert.Equal(t, c.Reconfig, back.Reconfig)
}
