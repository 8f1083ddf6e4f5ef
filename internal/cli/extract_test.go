package cli

import (
	"context"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/pathgraph/pkg/config"
	perrors "github.com/matzehuels/pathgraph/pkg/errors"
	"github.com/matzehuels/pathgraph/pkg/raster"
	"github.com/matzehuels/pathgraph/pkg/source"
)

var grey = raster.RGB{R: 128, G: 128, B: 128}

// plus has a stair at the center, giving 9 nodes and 8 edges.
var plus = []string{
	"..#..",
	"..#..",
	"##s##",
	"..#..",
	"..#..",
}

func writePNG(t *testing.T, dir, name string, rows ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, raster.MustParseText(rows...).Image(raster.DefaultPalette, grey)); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestCLI(t *testing.T) *CLI {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c := New(io.Discard, LogInfo)
	c.cfg = config.Default()
	return c
}

func changedFlags(names ...string) func(string) bool {
	return func(name string) bool { return slices.Contains(names, name) }
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	return string(data)
}

func TestRunExtractDirectory(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writePNG(t, in, "library-2-PATH.png", plus...)
	writePNG(t, in, "lab-0-PATH.png", "##s##")
	writePNG(t, in, "bad-PATH.png", "##")
	if err := os.WriteFile(filepath.Join(in, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := newTestCLI(t)
	opts := extractOpts{formats: "xml,json", outputDir: out, jobs: 2}
	if err := c.runExtract(context.Background(), []string{in}, opts, changedFlags("format", "output-dir")); err != nil {
		t.Fatalf("runExtract() error: %v", err)
	}

	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, e := range entries {
		got = append(got, e.Name())
	}
	want := []string{"lab-0-map.json", "lab-0-map.xml", "library-2-map.json", "library-2-map.xml"}
	if !slices.Equal(got, want) {
		t.Errorf("outputs = %v, want %v", got, want)
	}

	xml := readFile(t, filepath.Join(out, "library-2-map.xml"))
	if !strings.Contains(xml, `<Map name="library" floor="2" edges="8" nodes="9">`) {
		t.Errorf("unexpected document:\n%s", xml)
	}
}

func TestRunExtractConfigDefaults(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writePNG(t, in, "library-2-PATH.png", plus...)

	c := newTestCLI(t)
	c.cfg.Output.Formats = []string{"dot"}
	c.cfg.Output.Dir = out
	c.cfg.Labels = map[string]map[string]string{"library-2": {"2,2": "atrium"}}

	if err := c.runExtract(context.Background(), []string{in}, extractOpts{jobs: 1}, changedFlags()); err != nil {
		t.Fatalf("runExtract() error: %v", err)
	}
	dot := readFile(t, filepath.Join(out, "library-2-map.dot"))
	if !strings.HasPrefix(dot, "graph G {") || !strings.Contains(dot, "atrium") {
		t.Errorf("unexpected DOT output:\n%s", dot)
	}

	// A flag beats the config file.
	if err := c.runExtract(context.Background(), []string{in}, extractOpts{formats: "json", jobs: 1}, changedFlags("format")); err != nil {
		t.Fatalf("runExtract() error: %v", err)
	}
	if json := readFile(t, filepath.Join(out, "library-2-map.json")); !strings.Contains(json, `"name": "atrium"`) {
		t.Errorf("labels missing from JSON:\n%s", json)
	}
}

func TestRunExtractNamed(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	path := writePNG(t, in, "scan.png", plus...)

	c := newTestCLI(t)
	opts := extractOpts{outputDir: out, name: "hall", floor: 3, noCache: true, jobs: 1}
	if err := c.runExtract(context.Background(), []string{path}, opts, changedFlags("output-dir", "name", "floor")); err != nil {
		t.Fatalf("runExtract() error: %v", err)
	}
	if xml := readFile(t, filepath.Join(out, "hall-3-map.xml")); !strings.Contains(xml, `name="hall" floor="3"`) {
		t.Errorf("unexpected document:\n%s", xml)
	}

	opts.name = "a-b"
	if err := c.runExtract(context.Background(), []string{path}, opts, changedFlags("name")); err == nil {
		t.Error("runExtract() should reject a map name containing '-'")
	}
}

func TestRunExtractWarningsAndStrict(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writePNG(t, in, "x-1-PATH.png", "#?#")
	c := newTestCLI(t)

	opts := extractOpts{outputDir: out, noCache: true, jobs: 1}
	if err := c.runExtract(context.Background(), []string{in}, opts, changedFlags("output-dir")); err != nil {
		t.Errorf("warnings alone should not fail: %v", err)
	}

	opts.strict = true
	err := c.runExtract(context.Background(), []string{in}, opts, changedFlags("output-dir"))
	if err == nil || !strings.Contains(err.Error(), "--strict") {
		t.Errorf("runExtract(strict) error = %v, want a --strict failure", err)
	}
}

func TestRunExtractFailures(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writePNG(t, in, "good-1-PATH.png", plus...)
	if err := os.WriteFile(filepath.Join(in, "broken-1-PATH.png"), []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := newTestCLI(t)
	opts := extractOpts{outputDir: out, noCache: true, jobs: 2}
	err := c.runExtract(context.Background(), []string{in}, opts, changedFlags("output-dir"))
	if err == nil || !strings.Contains(err.Error(), "1 of 2 images failed") {
		t.Errorf("runExtract() error = %v, want one failure", err)
	}
	// The good image is still written.
	if _, err := os.Stat(filepath.Join(out, "good-1-map.xml")); err != nil {
		t.Errorf("good image output missing: %v", err)
	}
}

func TestRunExtractOutputClash(t *testing.T) {
	first, second, out := t.TempDir(), t.TempDir(), t.TempDir()
	writePNG(t, first, "lab-1-PATH.png", "####")
	writePNG(t, second, "lab-1-PATH.png", plus...)

	c := newTestCLI(t)
	opts := extractOpts{outputDir: out, noCache: true, jobs: 2}
	err := c.runExtract(context.Background(), []string{first, second}, opts, changedFlags("output-dir"))
	if !perrors.Is(err, perrors.ErrCodeInvalidInput) {
		t.Fatalf("runExtract() error = %v, want INVALID_INPUT", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, filepath.Join(first, "lab-1-PATH.png")) || !strings.Contains(msg, filepath.Join(second, "lab-1-PATH.png")) {
		t.Errorf("error %q should name both sources", msg)
	}
	if entries, _ := os.ReadDir(out); len(entries) != 0 {
		t.Errorf("nothing should be written on a clash, got %d files", len(entries))
	}
}

func TestCheckOutputs(t *testing.T) {
	parse := func(paths ...string) []source.Input {
		var out []source.Input
		for _, p := range paths {
			in, err := source.ParseFilename(p)
			if err != nil {
				t.Fatalf("ParseFilename(%q) error: %v", p, err)
			}
			out = append(out, in)
		}
		return out
	}

	tests := []struct {
		name    string
		paths   []string
		wantErr bool
	}{
		{"distinct floors", []string{"a/lab-1-PATH.png", "a/lab-2-PATH.png"}, false},
		{"floor text differs", []string{"a/lab-1-PATH.png", "a/lab-01-PATH.png"}, false},
		{"same map two formats", []string{"a/lab-1-PATH.png", "a/lab-1-PATH.gif"}, true},
		{"same map two dirs", []string{"a/lab-1-PATH.png", "b/lab-1-PATH.png"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkOutputs(parse(tt.paths...), []string{"xml", "json"}, "out")
			if (err != nil) != tt.wantErr {
				t.Fatalf("checkOutputs() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !perrors.Is(err, perrors.ErrCodeInvalidInput) {
				t.Errorf("checkOutputs() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestRunExtractNoInputs(t *testing.T) {
	c := newTestCLI(t)
	out := t.TempDir()
	err := c.runExtract(context.Background(), []string{t.TempDir()}, extractOpts{outputDir: out, jobs: 1}, changedFlags("output-dir"))
	if err != nil {
		t.Errorf("runExtract() on an empty directory = %v, want nil", err)
	}
}

func TestRunExtractBadFlags(t *testing.T) {
	c := newTestCLI(t)
	tests := []struct {
		name    string
		opts    extractOpts
		changed []string
	}{
		{"format", extractOpts{formats: "svg"}, []string{"format"}},
		{"policy", extractOpts{policy: "ignore"}, []string{"policy"}},
		{"workers", extractOpts{workers: 1000}, []string{"workers"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.runExtract(context.Background(), nil, tt.opts, changedFlags(tt.changed...)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestExtractCommandFlagRules(t *testing.T) {
	c := newTestCLI(t)
	tests := [][]string{
		{"--name", "hall"},
		{"--name", "hall", "a.png", "b.png"},
		{"--floor", "2", "a.png"},
	}
	for _, args := range tests {
		cmd := c.extractCommand()
		cmd.SetArgs(args)
		cmd.SetOut(io.Discard)
		cmd.SetErr(io.Discard)
		if err := cmd.ExecuteContext(context.Background()); err == nil {
			t.Errorf("extract %v should fail", args)
		}
	}
}

func TestRunExtractExample(t *testing.T) {
	cfg, err := config.Load(filepath.Join("..", "..", "examples", "pathgraph.toml"))
	if err != nil {
		t.Fatal(err)
	}
	out := t.TempDir()
	c := newTestCLI(t)
	c.cfg = cfg

	opts := extractOpts{outputDir: out, noCache: true, jobs: 1}
	example := filepath.Join("..", "..", "examples", "campus-1-PATH.png")
	if err := c.runExtract(context.Background(), []string{example}, opts, changedFlags("output-dir")); err != nil {
		t.Fatalf("runExtract() error: %v", err)
	}
	xml := readFile(t, filepath.Join(out, "campus-1-map.xml"))
	for _, want := range []string{`<Map name="campus" floor="1"`, `name="north hall"`, `name="south stairs"`, `type="STAIR"`} {
		if !strings.Contains(xml, want) {
			t.Errorf("document missing %s:\n%s", want, xml)
		}
	}
}
