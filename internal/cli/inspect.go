package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pathgraph/pkg/graph"
	"github.com/matzehuels/pathgraph/pkg/pipeline"
	"github.com/matzehuels/pathgraph/pkg/source"
)

// inspectOpts holds the command-line flags for the inspect command.
type inspectOpts struct {
	policy  string
	noCache bool
	limit   int // maximum node rows, 0 for all
}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	opts := inspectOpts{limit: 40}

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show graph statistics and node degrees of a path image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.policy, "policy", "", "unrecognized colors: warn (default), reject, background, path")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().IntVar(&opts.limit, "limit", opts.limit, "maximum nodes listed (0 for all)")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, path string, opts inspectOpts) error {
	cfg := c.settings()

	// Files outside the naming convention are inspected anonymously.
	var name string
	var floor int
	if in, err := source.ParseFilename(path); err == nil {
		name, floor = in.Name, in.Floor
	}

	popts := cfg.PipelineOptions(name, floor)
	if opts.policy != "" {
		popts.Policy = opts.policy
	}
	popts.Logger = loggerFromContext(ctx)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := runner.ExtractFile(ctx, path, popts)
	if err != nil {
		return err
	}

	printInspect(path, res, opts.limit)
	return nil
}

// degreeSummary counts nodes by role.
type degreeSummary struct {
	deadEnds, junctions, other int
	stairEdges                 int
}

func summarizeDegrees(g *graph.Graph) degreeSummary {
	var s degreeSummary
	for _, n := range g.Nodes() {
		switch d := n.Degree(); {
		case d == 1:
			s.deadEnds++
		case d >= 3:
			s.junctions++
		default:
			s.other++
		}
	}
	for _, e := range g.Edges() {
		if e.Type == graph.Stair {
			s.stairEdges++
		}
	}
	return s
}

func printInspect(path string, res *pipeline.Result, limit int) {
	g := res.Graph
	s := summarizeDegrees(g)

	fmt.Println(StyleTitle.Render(path))
	if g.Name != "" {
		printKeyValue("Map", fmt.Sprintf("%s, floor %d", g.Name, g.Floor))
	}
	printKeyValue("Image", fmt.Sprintf("%dx%d %s", res.Stats.Width, res.Stats.Height, res.Format))
	printKeyValue("Nodes", fmt.Sprintf("%d (%d dead ends, %d junctions, %d other)", g.NodeCount(), s.deadEnds, s.junctions, s.other))
	printKeyValue("Edges", fmt.Sprintf("%d (%d stair)", g.EdgeCount(), s.stairEdges))
	printKeyValue("Cached", strconv.FormatBool(res.CacheHit))
	fmt.Println()

	if g.NodeCount() > 0 {
		fmt.Println(nodeTable(g, limit))
		if limit > 0 && g.NodeCount() > limit {
			printDetail("%d more nodes not shown (--limit 0 lists all)", g.NodeCount()-limit)
		}
	}
	printReport(res.Report)
}

// nodeTable renders one row per node with its degree split by edge type.
func nodeTable(g *graph.Graph, limit int) string {
	nodes := g.Nodes()
	if limit > 0 && len(nodes) > limit {
		nodes = nodes[:limit]
	}

	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		var flat, stair int
		for _, t := range n.Edges {
			if t == graph.Stair {
				stair++
			} else {
				flat++
			}
		}
		name := n.Name
		if name == "" {
			name = "—"
		}
		rows = append(rows, []string{n.Pos.String(), name, strconv.Itoa(n.Degree()), strconv.Itoa(flat), strconv.Itoa(stair)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Position", "Name", "Degree", "Flat", "Stair").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0 || col == 1:
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
			return lipgloss.NewStyle().Foreground(colorCyan)
		}).
		Render()
}
