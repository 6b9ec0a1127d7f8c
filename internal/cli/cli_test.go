package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/jengatower/pkg/dataset"
	"github.com/matzehuels/jengatower/pkg/pipeline"
	"github.com/matzehuels/jengatower/pkg/tower/layout"
)

const testCountries = `country,country_iso_code,macro_region,number_of_companies,mean_betweeness_centrality,mean_page_rank
Germany,DE,Europe,120,0.42,0.031
United States,US,Americas,340,0.91,0.08
Japan,JP,Asia,95,1.7,0.02
Kenya,KE,Africa,4,0.01,0.001
`

const testLinks = `source,target,value
DE,US,10
JP,US,4
KE,DE,1
`

// writeConfig writes the CSV fixtures and a config file pointing at them.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	countries := filepath.Join(dir, "results.csv")
	links := filepath.Join(dir, "links.csv")
	cfg := filepath.Join(dir, "jengatower.toml")

	files := map[string]string{
		countries: testCountries,
		links:     testLinks,
		cfg: "[data]\ncountries = " + quote(countries) + "\nlinks = " + quote(links) +
			"\n\n[cache]\nbackend = \"none\"\n",
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return cfg
}

func quote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(&bytes.Buffer{}, log.ErrorLevel)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, log.InfoLevel).RootCommand()

	want := []string{"layout", "simulate", "reconfigure", "serve", "view", "network", "tui", "cache", "config", "completion", "version"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("Find(%q) = %v, %v", name, cmd, err)
		}
	}
}

func TestLayoutCommandWritesJSON(t *testing.T) {
	cfg := writeConfig(t)
	output := filepath.Join(t.TempDir(), "tower.json")

	if _, err := run(t, "--config", cfg, "layout", "--sort", "companies:desc", "-o", output); err != nil {
		t.Fatalf("layout error: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	var doc pipeline.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("output is not a layout document: %v", err)
	}
	if doc.Key != "companies:desc" {
		t.Errorf("Key = %q, want companies:desc", doc.Key)
	}
	if doc.Layers != 4 {
		t.Errorf("Layers = %d, want 4", doc.Layers)
	}
	// Descending by companies puts US in layer 0.
	if doc.Blocks[0].Country != "US" || doc.Blocks[0].Layer != 0 {
		t.Errorf("first block = %s in layer %d, want US in layer 0", doc.Blocks[0].Country, doc.Blocks[0].Layer)
	}
}

func TestLayoutCommandRejectsBadSortKey(t *testing.T) {
	cfg := writeConfig(t)
	if _, err := run(t, "--config", cfg, "layout", "--sort", "gdp"); err == nil {
		t.Error("layout --sort gdp should fail")
	}
}

func TestReconfigureCommand(t *testing.T) {
	cfg := writeConfig(t)
	if _, err := run(t, "--config", cfg, "reconfigure", "--from", "companies:desc", "--to", "companies:asc"); err != nil {
		t.Fatalf("reconfigure error: %v", err)
	}
}

func TestNetworkCommandDOT(t *testing.T) {
	cfg := writeConfig(t)
	out, err := run(t, "--config", cfg, "network", "-f", "dot", "--highlight", "DE")
	if err != nil {
		t.Fatalf("network error: %v", err)
	}
	if !strings.Contains(out, "graph") || !strings.Contains(out, "DE") {
		t.Errorf("network output is not DOT:\n%s", out)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	if _, err := run(t, "config", "init", path); err != nil {
		t.Fatalf("config init error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config init did not write %s: %v", path, err)
	}
	if _, err := run(t, "config", "init", path); err == nil {
		t.Error("config init should refuse to overwrite without --force")
	}
	if _, err := run(t, "config", "init", "--force", path); err != nil {
		t.Errorf("config init --force error: %v", err)
	}

	out, err := run(t, "--config", path, "config", "show")
	if err != nil {
		t.Fatalf("config show error: %v", err)
	}
	if !strings.Contains(out, "[layout]") {
		t.Errorf("config show output missing [layout]:\n%s", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "version:") {
		t.Errorf("version output = %q", out)
	}
}

func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New([]dataset.CountryRecord{
		{Code: "DE", Name: "Germany", Region: dataset.ParseRegion("Europe"), Companies: 120, PageRank: 0.031},
		{Code: "US", Name: "United States", Region: dataset.ParseRegion("Americas"), Companies: 340, PageRank: 0.08},
		{Code: "KE", Name: "Kenya", Region: dataset.ParseRegion("Africa"), Companies: 4, PageRank: 0.001},
	}, []dataset.LinkRecord{
		{Source: "DE", Target: "US", Value: 10},
		{Source: "KE", Target: "DE", Value: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func TestTowerModel(t *testing.T) {
	key := layout.SortKey{Metric: dataset.MetricCompanies}
	m := newTowerModel(key, layout.DefaultOptions(), nil)
	if !strings.Contains(m.View(), "Loading") {
		t.Errorf("View() before load = %q, want loading message", m.View())
	}

	next, _ := m.Update(loadedMsg{ds: testDataset(t)})
	m = next.(towerModel)
	if len(m.layers) != 3 {
		t.Fatalf("layers = %d, want 3", len(m.layers))
	}
	// Rows are top first and descending order puts the smallest country on top.
	if got := m.selected(); got != "KE" {
		t.Errorf("selected() = %q, want KE", got)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(towerModel)
	if got := m.selected(); got != "DE" {
		t.Errorf("selected() after down = %q, want DE", got)
	}

	// Flipping the order keeps the selection on the same country.
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("o")})
	m = next.(towerModel)
	if !m.key.Ascending {
		t.Error("o should flip the order to ascending")
	}
	if got := m.selected(); got != "DE" {
		t.Errorf("selected() after flip = %q, want DE", got)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(towerModel)
	if m.key.Metric == dataset.MetricCompanies {
		t.Error("tab should switch the metric")
	}
	if !strings.Contains(m.View(), "Germany") {
		t.Error("View() should describe the selected country")
	}
}

func TestTopLinks(t *testing.T) {
	links := []dataset.LinkRecord{{Value: 1}, {Value: 5}, {Value: 3}, {Value: 4}}
	got := topLinks(links, 3)
	if len(got) != 3 || got[0].Value != 5 || got[2].Value != 3 {
		t.Errorf("topLinks() = %v, want values 5, 4, 3", got)
	}
	if got := topLinks(nil, 3); len(got) != 0 {
		t.Errorf("topLinks(nil) = %v, want empty", got)
	}
}

func TestSortKeysParse(t *testing.T) {
	keys := sortKeys()
	if len(keys) != 6 {
		t.Fatalf("sortKeys() = %v, want 6 keys", keys)
	}
	for _, k := range keys {
		parsed, err := layout.ParseSortKey(k)
		if err != nil {
			t.Errorf("ParseSortKey(%q) error: %v", k, err)
			continue
		}
		if parsed.String() != k {
			t.Errorf("ParseSortKey(%q).String() = %q", k, parsed.String())
		}
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, err := run(t, "completion", shell)
		if err != nil {
			t.Errorf("completion %s error: %v", shell, err)
		}
		if !strings.Contains(out, appName) {
			t.Errorf("completion %s output does not mention %s", shell, appName)
		}
	}
	if _, err := run(t, "completion", "tcsh"); err == nil {
		t.Error("completion tcsh should fail")
	}
}
