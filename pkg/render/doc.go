// Package render defines the scene the tower's meshes live in.
//
// The renderer is a collaborator: the tower only asks it to create a box of
// a given size and color, to remove one, and to read or write the position
// and orientation of boxes it owns. Implementations include the in-memory
// [memory.Scene] used headless and in tests, and the raylib viewer.
//
// Subpackage nodelink draws the trade-link graph with Graphviz.
package render
