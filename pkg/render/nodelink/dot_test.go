package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/jengatower/pkg/dataset"
)

func sample(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(
		[]dataset.CountryRecord{
			{Code: "DE", Name: "Germany", Region: dataset.RegionEurope, Companies: 12},
			{Code: "US", Name: "United States", Region: dataset.RegionAmericas},
			{Code: "JP", Name: "Japan", Region: dataset.RegionAsia},
			{Code: "FR", Name: "France", Region: dataset.RegionEurope},
		},
		[]dataset.LinkRecord{
			{Source: "DE", Target: "US", Value: 4},
			{Source: "US", Target: "DE", Value: 4},
			{Source: "JP", Target: "US", Value: 1},
			{Source: "JP", Target: "XX", Value: 2},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	return ds
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sample(t), Options{})

	if !strings.HasPrefix(dot, "graph G {") {
		t.Errorf("DOT should be an undirected graph:\n%s", dot)
	}
	if got := strings.Count(dot, " -- "); got != 3 {
		t.Errorf("edge count = %d, want 3 (DE-US merged)", got)
	}
	if !strings.Contains(dot, `"DE" -- "US" [penwidth=8.00`) {
		t.Errorf("strongest edge should get max pen width:\n%s", dot)
	}
	if strings.Contains(dot, `"FR"`) {
		t.Error("isolated country should be omitted")
	}
	if !strings.Contains(dot, `"XX" [label="XX", fillcolor="#808080"]`) {
		t.Errorf("unknown endpoint should get a gray node:\n%s", dot)
	}
	if !strings.Contains(dot, `fillcolor="#ffff00"`) {
		t.Error("European node should be yellow")
	}
}

func TestToDOTHighlightAndFilter(t *testing.T) {
	dot := ToDOT(sample(t), Options{Highlight: "jp", MinValue: 1.5})

	if strings.Contains(dot, `"JP" -- "US"`) {
		t.Error("link below MinValue should be hidden")
	}
	if !strings.Contains(dot, `"JP" -- "XX" [penwidth=2.75, color="#000000"`) {
		t.Errorf("highlighted link should be black:\n%s", dot)
	}
	if !strings.Contains(dot, `color="#55555533"`) {
		t.Error("other links should be faded")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("no viewBox should pass through, got %s", got)
	}
}
