package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/beevik/etree"

	perrors "github.com/matzehuels/pathgraph/pkg/errors"
	"github.com/matzehuels/pathgraph/pkg/graph"
)

// WriteXML writes g as an indented Map document.
func WriteXML(g *graph.Graph, w io.Writer) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("Map")
	root.CreateAttr("name", g.Name)
	root.CreateAttr("floor", strconv.Itoa(g.Floor))
	root.CreateAttr("edges", strconv.Itoa(g.EdgeCount()))
	root.CreateAttr("nodes", strconv.Itoa(g.NodeCount()))

	for _, n := range g.Nodes() {
		el := root.CreateElement("Node")
		if n.Name != "" {
			el.CreateAttr("name", n.Name)
		}
		el.CreateAttr("pos", n.Pos.String())
		for _, to := range n.Neighbors() {
			e := el.CreateElement("Edge")
			// An edge is named after the node it leads to.
			if target, ok := g.Node(to); ok && target.Name != "" {
				e.CreateAttr("name", target.Name)
			}
			e.CreateAttr("to", to.String())
			e.CreateAttr("type", n.Edges[to].String())
		}
	}

	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("write xml: %w", err)
	}
	return nil
}

// ReadXML parses a Map document written by [WriteXML]. The edges and nodes
// counts on Map are informational and not checked.
func ReadXML(r io.Reader) (*graph.Graph, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "read xml")
	}

	root := doc.SelectElement("Map")
	if root == nil {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "missing Map element")
	}
	floor, err := strconv.Atoi(root.SelectAttrValue("floor", "0"))
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "invalid floor")
	}

	g := graph.New(root.SelectAttrValue("name", ""), floor)
	for _, el := range root.SelectElements("Node") {
		pos, err := graph.ParseCoord(el.SelectAttrValue("pos", ""))
		if err != nil {
			return nil, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "node")
		}
		if _, dup := g.Node(pos); dup {
			return nil, perrors.New(perrors.ErrCodeInvalidInput, "duplicate node %s", pos)
		}
		n := g.AddNode(pos)
		n.Name = el.SelectAttrValue("name", "")

		for _, child := range el.SelectElements("Edge") {
			to, err := graph.ParseCoord(child.SelectAttrValue("to", ""))
			if err != nil {
				return nil, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "edge of node %s", pos)
			}
			typ, err := graph.ParseEdgeType(child.SelectAttrValue("type", ""))
			if err != nil {
				return nil, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "edge of node %s", pos)
			}
			n.Edges[to] = typ
		}
	}
	return g, nil
}
