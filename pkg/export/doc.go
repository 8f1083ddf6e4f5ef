// Package export serializes navigation graphs for downstream consumers.
//
// # Formats
//
//   - [FormatXML]: the Map/Node/Edge document consumed by the map viewer
//   - [FormatJSON]: the node-list document of [graph.WriteGraph], also used
//     for caching
//   - [FormatDOT]: an undirected Graphviz description for debugging
//
// The XML document has this shape:
//
//	<Map name="library" floor="2" edges="1" nodes="2">
//	  <Node pos="(0, 0)">
//	    <Edge to="(4, 0)" type="FLAT"/>
//	  </Node>
//	  <Node name="stairs" pos="(4, 0)">
//	    <Edge name="stairs" to="(0, 0)" type="FLAT"/>
//	  </Node>
//	</Map>
//
// Node and Edge names are optional and omitted when empty. An edge carries
// the name of the node that lists it.
//
// Exporters never mutate the graph. Nodes are written in graph order and
// neighbors sorted, so output is byte-for-byte reproducible.
package export
