package dataset

// AggregateLinks merges A→B and B→A into a single undirected edge whose
// value is the sum of both directions. Self-loops are dropped. Output order
// follows the first appearance of each pair.
func AggregateLinks(links []LinkRecord) []LinkRecord {
	type pair struct{ a, b string }
	index := make(map[pair]int, len(links))
	out := make([]LinkRecord, 0, len(links))

	for _, l := range links {
		if l.Source == l.Target {
			continue
		}
		k := pair{l.Source, l.Target}
		if k.b < k.a {
			k = pair{k.b, k.a}
		}
		if i, ok := index[k]; ok {
			out[i].Value += l.Value
			continue
		}
		index[k] = len(out)
		out = append(out, l)
	}
	return out
}
