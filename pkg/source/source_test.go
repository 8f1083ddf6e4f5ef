package source

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	perrors "github.com/matzehuels/pathgraph/pkg/errors"
)

func TestParseFilename(t *testing.T) {
	tests := []struct {
		path      string
		wantName  string
		wantFloor int
		wantErr   bool
	}{
		{"library-2-PATH.png", "library", 2, false},
		{"/maps/science-0-PATH.bmp", "science", 0, false},
		{"gym-02-PATH.PNG", "gym", 2, false},
		{"library-2-PATH.txt", "", 0, true},
		{"library-2-path.png", "", 0, true},
		{"library-PATH.png", "", 0, true},
		{"north-hall-2-PATH.png", "", 0, true},
		{"-2-PATH.png", "", 0, true},
		{"library-two-PATH.png", "", 0, true},
		{"library-2-map.png", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := ParseFilename(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFilename(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if err != nil {
				if !perrors.Is(err, perrors.ErrCodeInvalidFilename) {
					t.Errorf("ParseFilename(%q) code = %s, want INVALID_FILENAME", tt.path, perrors.GetCode(err))
				}
				return
			}
			if got.Name != tt.wantName || got.Floor != tt.wantFloor || got.Path != tt.path {
				t.Errorf("ParseFilename(%q) = %+v, want %s/%d", tt.path, got, tt.wantName, tt.wantFloor)
			}
		})
	}
}

func TestOutputName(t *testing.T) {
	in, err := ParseFilename("gym-02-PATH.png")
	if err != nil {
		t.Fatal(err)
	}
	if got := in.OutputName("xml"); got != "gym-02-map.xml" {
		t.Errorf("OutputName() = %q, want gym-02-map.xml", got)
	}
	if got := OutputName("library", 3, "json"); got != "library-3-map.json" {
		t.Errorf("OutputName() = %q, want library-3-map.json", got)
	}
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"b-1-PATH.png",
		"a-0-PATH.gif",
		"notes.txt",
		"a-0-map.xml",
		"bad-name-here-PATH.png",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "c-2-PATH.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	res, err := Scan(dir)
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(res.Inputs) != 2 {
		t.Fatalf("Scan() inputs = %+v, want 2", res.Inputs)
	}
	if res.Inputs[0].Name != "a" || res.Inputs[1].Name != "b" {
		t.Errorf("Scan() order = %s, %s; want a, b", res.Inputs[0].Name, res.Inputs[1].Name)
	}
	if len(res.Skipped) != 1 {
		t.Errorf("Scan() skipped = %v, want 1", res.Skipped)
	}

	if _, err := Scan(filepath.Join(dir, "missing")); !perrors.Is(err, perrors.ErrCodeFileNotFound) {
		t.Errorf("Scan(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestCollect(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "lab-4-PATH.png")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	other := filepath.Join(dir, "random.png")
	if err := os.WriteFile(other, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := Collect([]string{dir, file, other})
	if err != nil {
		t.Fatalf("Collect() error: %v", err)
	}
	if len(res.Inputs) != 2 || len(res.Skipped) != 1 {
		t.Errorf("Collect() = %d inputs / %d skipped, want 2 / 1", len(res.Inputs), len(res.Skipped))
	}

	if _, err := Collect([]string{filepath.Join(dir, "nope")}); err == nil {
		t.Error("Collect() should fail on a missing path")
	}
}

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			img.SetNRGBA(x, y, color.NRGBA{A: 255})
		}
	}
	img.SetNRGBA(1, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(2, 1, color.NRGBA{G: 255, A: 255})
	return img
}

func TestDecodeFormats(t *testing.T) {
	tests := []struct {
		format string
		encode func(*bytes.Buffer, image.Image) error
	}{
		{"png", func(b *bytes.Buffer, m image.Image) error { return png.Encode(b, m) }},
		{"bmp", func(b *bytes.Buffer, m image.Image) error { return bmp.Encode(b, m) }},
		{"tiff", func(b *bytes.Buffer, m image.Image) error { return tiff.Encode(b, m, nil) }},
		{"jpeg", func(b *bytes.Buffer, m image.Image) error { return jpeg.Encode(b, m, nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.encode(&buf, testImage()); err != nil {
				t.Fatal(err)
			}
			img, format, err := DecodeBytes(buf.Bytes())
			if err != nil {
				t.Fatalf("DecodeBytes() error: %v", err)
			}
			if format != tt.format {
				t.Errorf("format = %q, want %q", format, tt.format)
			}
			if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
				t.Errorf("bounds = %v, want 3x2", img.Bounds())
			}
			if Lossy(format) != (tt.format == "jpeg") {
				t.Errorf("Lossy(%q) = %v", format, Lossy(format))
			}
		})
	}
}

func TestDecodeLosslessKeepsColors(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage()); err != nil {
		t.Fatal(err)
	}
	img, _, err := DecodeBytes(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	r, g, b, _ := img.At(1, 0).RGBA()
	if r>>8 != 255 || g != 0 || b != 0 {
		t.Errorf("At(1, 0) = %d,%d,%d, want pure red", r>>8, g>>8, b>>8)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, _, err := DecodeBytes([]byte("not an image")); !perrors.Is(err, perrors.ErrCodeUnsupportedImage) {
		t.Errorf("DecodeBytes(garbage) error = %v, want UNSUPPORTED_IMAGE", err)
	}

	if _, _, err := Open(filepath.Join(t.TempDir(), "missing-0-PATH.png")); !perrors.Is(err, perrors.ErrCodeFileNotFound) {
		t.Errorf("Open(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lab-1-PATH.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, testImage()); err != nil {
		t.Fatal(err)
	}
	f.Close()

	img, format, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if format != "png" || img.Bounds().Dx() != 3 {
		t.Errorf("Open() = %s %v", format, img.Bounds())
	}
}
