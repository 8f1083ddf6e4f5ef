package extract

import (
	"context"
	"fmt"
	"image"

	"golang.org/x/sync/errgroup"

	perrors "github.com/matzehuels/pathgraph/pkg/errors"
	"github.com/matzehuels/pathgraph/pkg/graph"
	"github.com/matzehuels/pathgraph/pkg/raster"
)

// Options configures graph extraction.
type Options struct {
	// Name and Floor identify the map in the resulting graph.
	Name  string
	Floor int

	// Palette holds the reserved colors. Zero value means raster.DefaultPalette.
	Palette raster.Palette

	// Policy handles pixels matching no palette color. Empty means
	// raster.DefaultPolicy.
	Policy raster.UnrecognizedPolicy

	// Workers is the number of concurrent traces. Values below 2 trace
	// sequentially.
	Workers int
}

func (o Options) palette() raster.Palette {
	if o.Palette == (raster.Palette{}) {
		return raster.DefaultPalette
	}
	return o.Palette
}

// FromImage classifies img into a grid and builds its graph. The error is
// non-nil only when the grid cannot be built (invalid palette, or an
// unrecognized pixel under raster.PolicyReject) or ctx is cancelled.
func FromImage(ctx context.Context, img image.Image, opts Options) (*graph.Graph, *Report, error) {
	grid, stats, err := raster.FromImage(img, opts.palette(), opts.Policy)
	if err != nil {
		return nil, nil, err
	}

	g, report, err := Build(ctx, grid, opts)
	if err != nil {
		return nil, nil, err
	}

	if stats.Unrecognized > 0 {
		pos := graph.Coord{X: stats.FirstUnrecognized.X, Y: stats.FirstUnrecognized.Y}
		report.Unrecognized = stats.Unrecognized
		report.Issues = append([]Issue{{
			Code: perrors.ErrCodeMalformedInput,
			Pos:  pos,
			Message: fmt.Sprintf("%d pixels match no palette color (first %s at %s), treated as %s",
				stats.Unrecognized, stats.FirstUnrecognizedColor, pos, treatment(stats.Policy)),
		}}, report.Issues...)
	}
	return g, report, nil
}

func treatment(p raster.UnrecognizedPolicy) string {
	switch p {
	case raster.PolicyBackground:
		return "background"
	case raster.PolicyPath:
		return "path"
	}
	return "connected but untyped"
}

// Build classifies the grid, traces every node and assembles the graph.
//
// For each node every hit becomes a neighbor entry. When one neighbor is hit
// with both types the stair type is kept and a TYPE_COLLISION issue is
// reported once for the pair. After assembly, nodes without edges and
// one-sided or mismatched listings are reported.
func Build(ctx context.Context, grid *raster.Grid, opts Options) (*graph.Graph, *Report, error) {
	nodes := Classify(grid)
	hits, err := traceAll(ctx, grid, nodes, opts.Workers)
	if err != nil {
		return nil, nil, err
	}

	g := graph.New(opts.Name, opts.Floor)
	for _, pos := range nodes.Coords() {
		g.AddNode(pos)
	}

	report := &Report{}
	collided := make(map[[2]graph.Coord]struct{})

	for i, pos := range nodes.Coords() {
		n, _ := g.Node(pos)
		for _, h := range hits[i] {
			prev, ok := n.Edges[h.To]
			if !ok || prev == h.Type {
				n.Edges[h.To] = h.Type
				continue
			}
			n.Edges[h.To] = prev.Merge(h.Type)

			key := pairKey(pos, h.To)
			if _, done := collided[key]; !done {
				collided[key] = struct{}{}
				report.add(perrors.ErrCodeTypeCollision, key[0],
					"nodes %s and %s are joined by both flat and stair segments; keeping STAIR", key[0], key[1])
			}
		}
	}

	for _, pos := range g.Disconnected() {
		report.add(perrors.ErrCodeDisconnectedNode, pos, "node %s has no edges", pos)
	}
	for _, a := range g.Asymmetries() {
		if a.Reverse == nil {
			report.add(perrors.ErrCodeAsymmetricAdjacency, a.From,
				"node %s lists %s (%s) but %s does not list it back", a.From, a.To, a.Type, a.To)
			continue
		}
		report.add(perrors.ErrCodeAsymmetricAdjacency, a.From,
			"edge %s-%s is %s from one end and %s from the other", a.From, a.To, a.Type, *a.Reverse)
	}

	return g, report, nil
}

func pairKey(a, b graph.Coord) [2]graph.Coord {
	if b.Less(a) {
		return [2]graph.Coord{b, a}
	}
	return [2]graph.Coord{a, b}
}

// traceAll runs Trace for every node and returns the hits indexed like
// nodes.Coords().
func traceAll(ctx context.Context, grid *raster.Grid, nodes *NodeSet, workers int) ([][]Hit, error) {
	coords := nodes.Coords()
	out := make([][]Hit, len(coords))

	if workers < 2 {
		for i, pos := range coords {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out[i] = Trace(grid, nodes, pos)
		}
		return out, nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, pos := range coords {
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			out[i] = Trace(grid, nodes, pos)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
