package reconfig

import (
	"github.com/matzehuels/jengatower/pkg/tower/blocks"
	"github.com/matzehuels/jengatower/pkg/tower/layout"
)

// Current is a live block as seen by the matcher.
type Current struct {
	ID   blocks.ID
	Code string
}

// Pair assigns a live block to a target index.
type Pair struct {
	Block  blocks.ID
	Target int
	// Kept is true when the block already stood for the target's country.
	Kept bool
}

// Plan is the outcome of matching live blocks against a new layout.
type Plan struct {
	Targets []layout.BlockSpec
	// Pairs are in live-block order.
	Pairs []Pair
	// Orphans have no target and are disposed at the end of the cycle.
	Orphans []blocks.ID
	// Unassigned target indices get new blocks at the end of the cycle.
	Unassigned []int
}

// Match assigns targets to live blocks in two passes. First, every block
// takes the first unused target of its own country, blocks visited in
// the given order. Then every block still unmatched takes the next unused
// target in layout order. No target is ever assigned twice.
func Match(current []Current, targets []layout.BlockSpec) Plan {
	plan := Plan{Targets: targets}
	byCode := make(map[string][]int)
	for i, t := range targets {
		byCode[t.Record.Code] = append(byCode[t.Record.Code], i)
	}

	used := make([]bool, len(targets))
	assigned := make([]int, len(current))
	for i, c := range current {
		assigned[i] = -1
		queue := byCode[c.Code]
		if len(queue) == 0 {
			continue
		}
		assigned[i] = queue[0]
		used[queue[0]] = true
		byCode[c.Code] = queue[1:]
	}

	next := 0
	for i := range current {
		if assigned[i] >= 0 {
			continue
		}
		for next < len(targets) && used[next] {
			next++
		}
		if next == len(targets) {
			break
		}
		assigned[i] = next
		used[next] = true
	}

	for i, c := range current {
		if assigned[i] < 0 {
			plan.Orphans = append(plan.Orphans, c.ID)
			continue
		}
		plan.Pairs = append(plan.Pairs, Pair{
			Block:  c.ID,
			Target: assigned[i],
			Kept:   targets[assigned[i]].Record.Code == c.Code,
		})
	}
	for i, u := range used {
		if !u {
			plan.Unassigned = append(plan.Unassigned, i)
		}
	}
	return plan
}
