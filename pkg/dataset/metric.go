package dataset

import (
	"strings"

	"github.com/matzehuels/jengatower/pkg/errors"
)

// Metric is a per-country value the tower can be sorted by.
type Metric string

const (
	MetricCompanies  Metric = "number_of_companies"
	MetricPageRank   Metric = "mean_page_rank"
	MetricCentrality Metric = "mean_betweeness_centrality"
)

// Metrics lists the views offered to users, in menu order.
var Metrics = []Metric{MetricCompanies, MetricPageRank, MetricCentrality}

var metricLabels = map[Metric]string{
	MetricCompanies:  "Number of Companies",
	MetricPageRank:   "PageRank",
	MetricCentrality: "Betweenness Centrality",
}

var metricAliases = map[string]Metric{
	"companies":  MetricCompanies,
	"pagerank":   MetricPageRank,
	"centrality": MetricCentrality,
}

// ParseMetric accepts a column id, a short alias or a display label.
func ParseMetric(s string) (Metric, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if m, ok := metricAliases[key]; ok {
		return m, nil
	}
	for m, label := range metricLabels {
		if key == string(m) || key == strings.ToLower(label) {
			return m, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidSortKey, "unknown metric %q (want companies, pagerank or centrality)", s)
}

// Label returns the human-readable menu label.
func (m Metric) Label() string {
	if l, ok := metricLabels[m]; ok {
		return l
	}
	return string(m)
}

// Short returns the alias used on the command line.
func (m Metric) Short() string {
	for alias, mm := range metricAliases {
		if mm == m {
			return alias
		}
	}
	return string(m)
}

// Value reads the metric from a record.
func (m Metric) Value(r CountryRecord) float64 {
	switch m {
	case MetricPageRank:
		return r.PageRank
	case MetricCentrality:
		return r.Centrality
	default:
		return float64(r.Companies)
	}
}
