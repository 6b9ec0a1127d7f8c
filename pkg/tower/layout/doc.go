// Package layout turns a list of country records into the block positions
// of a log-cabin tower.
//
// # Algorithm
//
// [Generate] sorts the records by the active metric (stably, so ties keep
// input order) and gives record j its own layer j. Layers alternate
// orientation: even layers run along x and place their slots along z, odd
// layers are turned 90° about the vertical axis and place their slots along
// x. Every layer has three slots spaced one brick depth apart.
//
// How many slots a layer fills depends on the record's betweenness
// centrality, quantized into four buckets over the [min, max] centrality of
// the whole input:
//
//	bucket 1  . X .   peripheral
//	bucket 2  X X .   connected
//	bucket 3  X . X   bridging
//	bucket 4  X X X   central
//
// A value exactly on a bucket boundary belongs to the upper bucket.
//
// # Determinism
//
// The output depends only on the input order, the sort key and the options,
// so regenerating a layout always reproduces the same specs.
package layout
