package layout_test

import (
	"fmt"

	"github.com/matzehuels/jengatower/pkg/dataset"
	"github.com/matzehuels/jengatower/pkg/tower/layout"
)

func ExampleGenerate() {
	records := []dataset.CountryRecord{
		{Code: "DE", Name: "Germany", Companies: 120, Centrality: 0.9},
		{Code: "FR", Name: "France", Companies: 80, Centrality: 0.5},
		{Code: "NZ", Name: "New Zealand", Companies: 10, Centrality: 0.1},
	}
	for _, layer := range layout.Layers(layout.Generate(records, layout.DefaultSortKey())) {
		fmt.Printf("%s %s %d blocks\n", layer[0].Record.Code, layer[0].Label, len(layer))
	}
	// Output:
	// DE Central 3 blocks
	// FR Bridging 2 blocks
	// NZ Peripheral 1 blocks
}
