package viewer

import (
	"fmt"

	"github.com/matzehuels/jengatower/pkg/tower"
	"github.com/matzehuels/jengatower/pkg/tower/blocks"
	"github.com/matzehuels/jengatower/pkg/tower/layout"
	"github.com/matzehuels/jengatower/pkg/tower/reconfig"
)

// Help lists the key bindings.
const Help = "SPACE: rebuild | ENTER: physics | TAB: next view | O: flip order | 1-4: camera | hold mouse: slow motion"

// HUD returns the status lines drawn over the scene.
func HUD(key layout.SortKey, snap tower.Snapshot, status string) []string {
	order := "descending"
	if key.Ascending {
		order = "ascending"
	}
	physics := "off"
	if snap.Physics {
		physics = "on"
	}
	lines := []string{
		fmt.Sprintf("View: %s (%s)", key.Metric.Label(), order),
		fmt.Sprintf("Blocks: %d | Physics: %s", len(snap.Blocks), physics),
	}
	if snap.Phase != reconfig.Idle {
		lines = append(lines, fmt.Sprintf("%s %3.0f%%", snap.Phase, snap.Progress*100))
	}
	if status != "" {
		lines = append(lines, status)
	}
	return lines
}

// Tooltip describes a hovered block, one line per fact.
func Tooltip(m blocks.Meta) []string {
	lines := []string{
		fmt.Sprintf("%s (%s)", m.Name, m.Code),
		fmt.Sprintf("%s | %s", m.Region, m.Label),
		fmt.Sprintf("Companies: %d", m.Companies),
		fmt.Sprintf("PageRank: %.3f | Centrality: %.3f", m.PageRank, m.Centrality),
	}
	if len(m.Neighbors) > 0 {
		lines = append(lines, fmt.Sprintf("Linked: %d countries", len(m.Neighbors)))
	}
	return lines
}
