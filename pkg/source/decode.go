package source

import (
	"bytes"
	"image"
	"io"
	"os"

	// Registered image decoders.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	perrors "github.com/matzehuels/pathgraph/pkg/errors"
)

// MaxPixels bounds the decoded image size. Larger images are rejected before
// decoding to keep per-image memory predictable.
const MaxPixels = 64 << 20

// Decode decodes an image and returns it with its format name ("png",
// "jpeg", ...).
func Decode(r io.Reader) (image.Image, string, error) {
	var buf bytes.Buffer
	cfg, format, err := image.DecodeConfig(io.TeeReader(r, &buf))
	if err != nil {
		return nil, "", perrors.Wrap(perrors.ErrCodeUnsupportedImage, err, "decode image")
	}
	if cfg.Width*cfg.Height > MaxPixels {
		return nil, format, perrors.New(perrors.ErrCodeUnsupportedImage,
			"image is %dx%d, larger than %d pixels", cfg.Width, cfg.Height, MaxPixels)
	}

	img, _, err := image.Decode(io.MultiReader(&buf, r))
	if err != nil {
		return nil, format, perrors.Wrap(perrors.ErrCodeUnsupportedImage, err, "decode %s", format)
	}
	return img, format, nil
}

// DecodeBytes is like [Decode] for an in-memory image.
func DecodeBytes(data []byte) (image.Image, string, error) {
	return Decode(bytes.NewReader(data))
}

// Open reads and decodes the image at path.
func Open(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", perrors.Wrap(perrors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, "", perrors.Wrap(perrors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()

	img, format, err := Decode(f)
	if err != nil {
		return nil, format, perrors.Wrap(perrors.GetCode(err), err, "%s", path)
	}
	return img, format, nil
}

// Lossy reports whether images of this format usually alter exact colors.
func Lossy(format string) bool {
	return format == "jpeg"
}
