// Package tower wires the layout, block, simulation and reconfiguration
// packages into one [Engine].
//
// An Engine is the explicit context object of a tower: it owns the render
// scene, the physics world, the dataset and the components built on them.
// Nothing in this package or below it keeps global state, so several
// engines may coexist, each driven by exactly one goroutine.
//
// A typical frame loop:
//
//	e := tower.New(scene, world, ds, tower.WithLogger(logger))
//	if err := e.Build(layout.DefaultSortKey()); err != nil {
//		return err
//	}
//	for frame := range ticker.C {
//		e.Tick(frame.Sub(last))
//	}
//
// [Engine.Tick] advances a reconfiguration while one is in flight and the
// physics simulation otherwise, so the two never write block transforms in
// the same frame.
package tower
