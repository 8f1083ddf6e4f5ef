package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	perrors "github.com/matzehuels/pathgraph/pkg/errors"
	"github.com/matzehuels/pathgraph/pkg/export"
	"github.com/matzehuels/pathgraph/pkg/pipeline"
	"github.com/matzehuels/pathgraph/pkg/source"
)

// defaultJobs is how many images are processed at once in a batch.
const defaultJobs = 4

// extractOpts holds the command-line flags for the extract command.
// Zero values mean "not given"; the config file and environment fill them.
type extractOpts struct {
	formats   string // comma-separated export formats
	outputDir string // directory for map files
	policy    string // unrecognized color policy
	workers   int    // trace workers per image
	jobs      int    // images processed concurrently
	noCache   bool
	refresh   bool
	strict    bool // fail when any image has warnings
	name      string
	floor     int
}

// extractCommand creates the extract command.
func (c *CLI) extractCommand() *cobra.Command {
	opts := extractOpts{jobs: defaultJobs}

	cmd := &cobra.Command{
		Use:   "extract [file|dir ...]",
		Short: "Extract navigation graphs from path images",
		Long: `Extract navigation graphs from path images.

Images are named <name>-<floor>-PATH.<ext>, for example library-2-PATH.png.
Directories are scanned for such files; with no arguments the current
directory is scanned. Each image produces <name>-<floor>-map.<format> in
the output directory.

Use --name and --floor to process a single image with any file name.

Examples:
  pathgraph extract                            # every *-PATH image in .
  pathgraph extract plans/ -f xml,json -o maps # several formats into maps/
  pathgraph extract scan.png --name lab --floor 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("name") && len(args) != 1 {
				return perrors.New(perrors.ErrCodeInvalidInput, "--name needs exactly one image")
			}
			if cmd.Flags().Changed("floor") && !cmd.Flags().Changed("name") {
				return perrors.New(perrors.ErrCodeInvalidInput, "--floor needs --name")
			}
			return c.runExtract(cmd.Context(), args, opts, cmd.Flags().Changed)
		},
	}

	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): xml (default), json, dot (comma-separated)")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "directory for map files (default .)")
	cmd.Flags().StringVar(&opts.policy, "policy", "", "unrecognized colors: warn (default), reject, background, path")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "trace workers per image")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", opts.jobs, "images processed concurrently")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached graphs but store fresh ones")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "exit with an error when any image has warnings")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "map name for an image not named <name>-<floor>-PATH")
	cmd.Flags().IntVar(&opts.floor, "floor", 0, "floor number, with --name")

	return cmd
}

// extractJob is the outcome of one input.
type extractJob struct {
	input  source.Input
	result *pipeline.Result
	files  []string
	err    error
}

// runExtract processes every input and prints a summary per image.
// changed reports whether a flag was given on the command line.
func (c *CLI) runExtract(ctx context.Context, args []string, opts extractOpts, changed func(string) bool) error {
	logger := loggerFromContext(ctx)
	cfg := c.settings()

	base := cfg.PipelineOptions("", 0)
	outputDir := cfg.Output.Dir
	if changed("format") {
		formats, err := export.ParseFormats(opts.formats)
		if err != nil {
			return err
		}
		base.Formats = formats
	}
	if changed("policy") {
		base.Policy = opts.policy
	}
	if changed("workers") {
		base.Workers = opts.workers
	}
	if changed("output-dir") {
		outputDir = opts.outputDir
	}
	if outputDir == "" {
		outputDir = "."
	}
	base.Refresh = opts.refresh
	base.Logger = logger
	if err := base.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if opts.jobs < 1 {
		opts.jobs = 1
	}

	inputs, err := collectInputs(args, opts, changed("name"))
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		printInfo("No path images found")
		printDetail("Expected files named <name>-<floor>-PATH.png")
		return nil
	}
	if err := checkOutputs(inputs, base.Formats, outputDir); err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidPath, err, "create %s", outputDir)
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	names := make([]string, len(inputs))
	for i, in := range inputs {
		names[i] = in.Path
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	rep := newReporter(ctx, logger, names, cancel)
	prog := newProgress(logger)

	jobs := make([]extractJob, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs)
	for i, in := range inputs {
		g.Go(func() error {
			rep.start(i)
			job := c.extractOne(gctx, runner, in, base, outputDir)
			jobs[i] = job
			if job.err != nil {
				rep.finish(i, "", job.err)
				return gctx.Err()
			}
			rep.finish(i, fmt.Sprintf("%d nodes, %d edges", job.result.Stats.NodeCount, job.result.Stats.EdgeCount), nil)
			return nil
		})
	}
	waitErr := g.Wait()
	if err := rep.close(); err != nil && waitErr == nil {
		waitErr = err
	}
	if waitErr != nil {
		return waitErr
	}

	return summarize(jobs, opts.strict, prog)
}

// collectInputs resolves the arguments into images to process.
func collectInputs(args []string, opts extractOpts, named bool) ([]source.Input, error) {
	if named {
		if err := perrors.ValidateMapName(opts.name); err != nil {
			return nil, err
		}
		if opts.floor < 0 {
			return nil, perrors.New(perrors.ErrCodeInvalidInput, "floor must not be negative")
		}
		return []source.Input{{Path: args[0], Name: opts.name, Floor: opts.floor}}, nil
	}

	scan, err := source.Collect(args)
	if err != nil {
		return nil, err
	}
	for _, skipped := range scan.Skipped {
		printWarning("Skipping %s", skipped)
	}
	return scan.Inputs, nil
}

// checkOutputs rejects batches in which two inputs would write the same
// map file.
func checkOutputs(inputs []source.Input, formats []string, outputDir string) error {
	owners := make(map[string]string, len(inputs)*len(formats))
	for _, in := range inputs {
		for _, format := range formats {
			path := filepath.Join(outputDir, in.OutputName(format))
			if prev, ok := owners[path]; ok {
				return perrors.New(perrors.ErrCodeInvalidInput,
					"%s and %s both write %s", prev, in.Path, path)
			}
			owners[path] = in.Path
		}
	}
	return nil
}

// extractOne runs the pipeline for one input and writes its map files.
func (c *CLI) extractOne(ctx context.Context, runner *pipeline.Runner, in source.Input, base pipeline.Options, outputDir string) extractJob {
	job := extractJob{input: in}

	opts := base
	opts.Name = in.Name
	opts.Floor = in.Floor
	opts.Labels = c.settings().LabelsFor(in.Name, in.Floor)

	job.result, job.err = runner.ExecuteFile(ctx, in.Path, opts)
	if job.err != nil {
		return job
	}

	for _, format := range opts.Formats {
		path := filepath.Join(outputDir, in.OutputName(format))
		if err := os.WriteFile(path, job.result.Artifacts[format], 0o644); err != nil {
			job.err = perrors.Wrap(perrors.ErrCodeInvalidPath, err, "write %s", path)
			return job
		}
		job.files = append(job.files, path)
	}
	return job
}

// summarize prints the outcome of every job in input order.
func summarize(jobs []extractJob, strict bool, prog *progress) error {
	var failed, warned, nodes, edges int
	for _, job := range jobs {
		if job.err != nil {
			failed++
			printError("%s: %s", job.input.Path, perrors.UserMessage(job.err))
			continue
		}
		res := job.result
		nodes += res.Stats.NodeCount
		edges += res.Stats.EdgeCount

		printInfo("Processing %s", job.input.Path)
		printGraphSummary(fmt.Sprintf("%s floor %d", job.input.Name, job.input.Floor),
			res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheHit)
		for _, f := range job.files {
			printFile(f)
		}
		if !res.Report.Empty() {
			warned++
			printReport(res.Report)
		}
	}

	prog.done(fmt.Sprintf("Extracted %d nodes with %d edges from %d images", nodes, edges, len(jobs)-failed))

	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(jobs))
	}
	if strict && warned > 0 {
		return fmt.Errorf("%d of %d images have warnings (--strict)", warned, len(jobs))
	}
	return nil
}
