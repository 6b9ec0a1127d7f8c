package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/jengatower/internal/viewer"
	"github.com/matzehuels/jengatower/pkg/dataset"
	"github.com/matzehuels/jengatower/pkg/tower/layout"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// tuiCommand creates the tui command, a terminal browser for the layers of
// a tower.
func (c *CLI) tuiCommand() *cobra.Command {
	var (
		sortKey string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the tower layers in the terminal",
		Long: `Browse the tower layers in the terminal.

Each row is one layer, top first. Tab switches to the next metric, o flips
the sort order and the selected country's strongest links are listed below
the table.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			key, err := c.sortKeyFlag(sortKey)
			if err != nil {
				return err
			}
			opts, err := c.pipelineOptions()
			if err != nil {
				return err
			}
			opts.Key = key
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			load := func() tea.Msg {
				ds, err := runner.Load(ctx, opts)
				return loadedMsg{ds: ds, err: err}
			}
			final, err := tea.NewProgram(newTowerModel(key, opts.Layout, load), tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}
			if m, ok := final.(towerModel); ok && m.err != nil {
				return m.err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&sortKey, "sort", "s", "", "initial sort key (default from config)")
	_ = cmd.RegisterFlagCompletionFunc("sort", completeSortKeys)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// =============================================================================
// towerModel - Interactive layer browser
// =============================================================================

type loadedMsg struct {
	ds  *dataset.Dataset
	err error
}

// towerModel is the bubbletea model of the layer browser. Layers are held
// top first.
type towerModel struct {
	key     layout.SortKey
	opts    layout.Options
	load    tea.Cmd
	spinner spinner.Model

	ds     *dataset.Dataset
	layers [][]layout.BlockSpec
	err    error

	cursor int
	offset int
	height int
}

func newTowerModel(key layout.SortKey, opts layout.Options, load tea.Cmd) towerModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	s.Style = lipgloss.NewStyle().Foreground(colorCyan)
	return towerModel{key: key, opts: opts, load: load, spinner: s, height: 15}
}

func (m towerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load)
}

// relayout regenerates the layers for the current key, keeping the cursor
// on the same country where possible.
func (m *towerModel) relayout() {
	selected := m.selected()
	specs := layout.Generate(m.ds.Results(), m.key, layout.WithOptions(m.opts))
	layers := layout.Layers(specs)
	for i, j := 0, len(layers)-1; i < j; i, j = i+1, j-1 {
		layers[i], layers[j] = layers[j], layers[i]
	}
	m.layers = layers
	m.cursor = 0
	for i, l := range layers {
		if l[0].Record.Code == selected {
			m.cursor = i
			break
		}
	}
	m.scroll()
}

func (m *towerModel) selected() string {
	if m.cursor < len(m.layers) {
		return m.layers[m.cursor][0].Record.Code
	}
	return ""
}

func (m *towerModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

func (m towerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.ds = msg.ds
		m.relayout()
		return m, nil
	case spinner.TickMsg:
		if m.ds != nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		if m.ds == nil {
			return m, nil
		}
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.layers)-1 {
				m.cursor++
			}
		case "tab":
			m.key = viewer.NextView(m.key)
			m.relayout()
		case "o":
			m.key.Ascending = !m.key.Ascending
			m.relayout()
		}
		m.scroll()
	case tea.WindowSizeMsg:
		m.height = max(5, msg.Height-14)
		m.scroll()
	}
	return m, nil
}

func (m towerModel) View() string {
	if m.ds == nil {
		if m.err != nil {
			return ""
		}
		return m.spinner.View() + " " + StyleDim.Render("Loading dataset...") + "\n"
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render("Tower · " + m.key.Metric.Label()))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(m.key.String()))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  tab metric  o order  q quit"))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.layers))
	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		s := m.layers[i][0]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			fmt.Sprintf("%d", s.Layer),
			s.Record.Code,
			s.Record.Name,
			formatMetric(m.key.Metric.Value(s.Record)),
			slotGlyphs(s.Bucket),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Layer", "Code", "Country", m.key.Metric.Short(), "Slots").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.offset + row
			if idx >= len(m.layers) {
				return lipgloss.NewStyle()
			}
			base := lipgloss.NewStyle()
			if col == 2 || col == 3 {
				base = base.Foreground(lipgloss.Color(m.layers[idx][0].Color.Hex()))
			} else {
				base = base.Foreground(colorGray)
			}
			if idx == m.cursor {
				return base.Bold(true)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.layers))))
	b.WriteString("\n\n")
	b.WriteString(m.details())
	return b.String()
}

// details describes the selected country and its strongest links.
func (m towerModel) details() string {
	if len(m.layers) == 0 {
		return ""
	}
	s := m.layers[m.cursor][0]
	r := s.Record

	var b strings.Builder
	b.WriteString(listSelectedStyle.Render(fmt.Sprintf("%s (%s)", r.Name, r.Code)))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %s · %s", r.Region, s.Label)))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  companies %d · pagerank %s · centrality %s",
		r.Companies, formatMetric(r.PageRank), formatMetric(r.Centrality))))
	b.WriteString("\n")

	links := topLinks(m.ds.Neighbors(r.Code), 3)
	for _, l := range links {
		b.WriteString(StyleDim.Render(fmt.Sprintf("  %s %s %s", iconArrow, l.Other(r.Code), formatMetric(l.Value))))
		b.WriteString("\n")
	}
	return b.String()
}

// topLinks returns the n links with the highest value, strongest first.
func topLinks(links []dataset.LinkRecord, n int) []dataset.LinkRecord {
	links = slices.Clone(links)
	slices.SortStableFunc(links, func(a, b dataset.LinkRecord) int {
		return cmp.Compare(b.Value, a.Value)
	})
	return links[:min(n, len(links))]
}
