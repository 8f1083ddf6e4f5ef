package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// Wire types
// =============================================================================

// Document is the canonical JSON form of a [Graph].
type Document struct {
	Name  string     `json:"name"`
	Floor int        `json:"floor"`
	Edges int        `json:"edges"`
	Nodes []WireNode `json:"nodes"`
}

// WireNode is the serialized form of a [Node].
type WireNode struct {
	Pos   Coord      `json:"pos"`
	Name  string     `json:"name,omitempty"`
	Edges []WireEdge `json:"edges"`
}

// WireEdge is one neighbor entry of a [WireNode].
type WireEdge struct {
	To   Coord    `json:"to"`
	Type EdgeType `json:"type"`
}

// ToDocument converts a graph to its wire form. Nodes keep insertion order
// and neighbors are sorted.
func ToDocument(g *Graph) Document {
	doc := Document{
		Name:  g.Name,
		Floor: g.Floor,
		Edges: g.EdgeCount(),
		Nodes: make([]WireNode, 0, g.NodeCount()),
	}
	for _, n := range g.Nodes() {
		wn := WireNode{Pos: n.Pos, Name: n.Name, Edges: make([]WireEdge, 0, len(n.Edges))}
		for _, to := range n.Neighbors() {
			wn.Edges = append(wn.Edges, WireEdge{To: to, Type: n.Edges[to]})
		}
		doc.Nodes = append(doc.Nodes, wn)
	}
	return doc
}

// FromDocument rebuilds a graph from its wire form. The edges count stored in
// the document is informational and not checked.
func FromDocument(doc Document) (*Graph, error) {
	g := New(doc.Name, doc.Floor)
	for _, wn := range doc.Nodes {
		if _, dup := g.Node(wn.Pos); dup {
			return nil, fmt.Errorf("duplicate node %s", wn.Pos)
		}
		n := g.AddNode(wn.Pos)
		n.Name = wn.Name
		for _, e := range wn.Edges {
			n.Edges[e.To] = e.Type
		}
	}
	return g, nil
}

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a graph to indented JSON bytes.
func MarshalGraph(g *Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraph writes a graph as JSON to w.
func WriteGraph(g *Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ToDocument(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadGraph decodes a JSON graph from r.
func ReadGraph(r io.Reader) (*Graph, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return FromDocument(doc)
}

// ReadGraphFile reads a JSON graph file.
func ReadGraphFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadGraph(f)
}
