// Package extract turns a classified pixel grid into a navigation graph.
//
// # Overview
//
// A floor-plan path image draws walkable corridors in a path color and
// staircases in a stair color on a background. Extraction runs in three
// steps, each a pure function of its inputs:
//
//  1. [Classify] scans the grid (x, then y) and collects node pixels with
//     [IsNode]: dead ends, junctions and path pixels touching another color.
//  2. [Trace] walks outward from one node through connected non-background
//     pixels until it reaches other nodes, typing each hit [graph.Flat] or
//     [graph.Stair].
//  3. [Build] traces every node and assembles the [graph.Graph], collecting
//     data-quality findings into a [Report].
//
// # Node rule
//
// A background pixel is never a node. A path pixel with a non-background
// neighbor of a different color is always a node, so an edge never changes
// type midway. Otherwise a pixel is a node iff its orthogonal degree is
// neither 0 (isolated) nor 2 (straight through).
//
// # Tracing
//
// Tracing is an iterative depth-first search with an explicit stack and a
// visited set private to the call, so memory grows with path length and not
// with the goroutine stack. The stair flag belongs to a branch: it is seeded
// from the start pixel, becomes true on the first stair pixel, and never
// leaks into sibling branches.
//
// # Type collisions
//
// Two geometrically distinct segments may join the same pair of nodes, one
// through stairs and one flat. A node keeps one type per neighbor, so [Build]
// resolves the pair deterministically (stair wins) and reports a
// TYPE_COLLISION warning.
//
// # Concurrency
//
// Traces only read the grid and node set. With [Options.Workers] > 1 they fan
// out over an errgroup and each writes its own result slot; the merge runs in
// classification order, so the graph is identical for any worker count.
package extract
