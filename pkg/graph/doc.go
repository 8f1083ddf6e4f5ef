// Package graph provides the navigation graph extracted from a floor-plan
// path image, plus its canonical JSON wire format.
//
// # Core Types
//
//   - [Coord]: pixel coordinate, the sole identity of a node
//   - [EdgeType]: [Flat] or [Stair]
//   - [Node]: a junction, dead end or color boundary with its neighbor map
//   - [Graph]: the node set of one map/floor
//
// A [Node] keeps exactly one [EdgeType] per neighbor. Adjacency is expected to
// be symmetric: if A lists B then B lists A with the same type. The derived
// [Graph.EdgeCount] halves the sum of neighbor-map sizes and so silently drifts
// when that invariant is violated; use [Graph.Asymmetries] to detect it.
//
// # Ordering
//
// Nodes enumerate in the order they were added. The extractor adds them in
// scan order (x, then y), so two runs over the same image enumerate the same
// sequence. Neighbors are always returned sorted with [Coord.Less].
//
// # Serialization
//
// Graphs use a node-list JSON format, used for caching and the "json" export:
//
//	{
//	  "name": "library",
//	  "floor": 2,
//	  "edges": 1,
//	  "nodes": [
//	    {"pos": "0,0", "edges": [{"to": "4,0", "type": "FLAT"}]},
//	    {"pos": "4,0", "edges": [{"to": "0,0", "type": "FLAT"}]}
//	  ]
//	}
package graph
