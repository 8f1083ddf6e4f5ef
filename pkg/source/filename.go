package source

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	perrors "github.com/matzehuels/pathgraph/pkg/errors"
)

// PathSuffix marks a file as a path image: "<name>-<floor>-PATH.<ext>".
const PathSuffix = "PATH"

// Extensions lists the accepted image file extensions, lower case.
var Extensions = []string{".png", ".gif", ".bmp", ".tif", ".tiff", ".webp", ".jpg", ".jpeg"}

// Input is one path image to process.
type Input struct {
	Path  string
	Name  string
	Floor int

	// floorText is the floor exactly as written in the file name, kept so
	// output names mirror input names ("lib-02-PATH.png" -> "lib-02-map.xml").
	floorText string
}

// OutputName returns "<name>-<floor>-map.<format>".
func (in Input) OutputName(format string) string {
	floor := in.floorText
	if floor == "" {
		floor = strconv.Itoa(in.Floor)
	}
	return fmt.Sprintf("%s-%s-map.%s", in.Name, floor, format)
}

// OutputName returns "<name>-<floor>-map.<format>".
func OutputName(name string, floor int, format string) string {
	return Input{Name: name, Floor: floor}.OutputName(format)
}

// IsPathImage reports whether the file name looks like a path image: a
// supported extension preceded by "PATH". It does not validate name and floor.
func IsPathImage(path string) bool {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if !slices.Contains(Extensions, strings.ToLower(ext)) {
		return false
	}
	return strings.HasSuffix(strings.TrimSuffix(base, ext), PathSuffix)
}

// ParseFilename splits "<name>-<floor>-PATH.<ext>" into an [Input].
// The base name must split on '-' into exactly three parts and the floor must
// be a non-negative integer.
func ParseFilename(path string) (Input, error) {
	base := filepath.Base(path)
	if !IsPathImage(base) {
		return Input{}, perrors.New(perrors.ErrCodeInvalidFilename,
			"%s: expected <name>-<floor>-PATH.<ext>", base)
	}

	parts := strings.Split(strings.TrimSuffix(base, filepath.Ext(base)), "-")
	if len(parts) != 3 || parts[2] != PathSuffix {
		return Input{}, perrors.New(perrors.ErrCodeInvalidFilename,
			"%s: expected exactly three '-' separated parts", base)
	}

	if err := perrors.ValidateMapName(parts[0]); err != nil {
		return Input{}, perrors.Wrap(perrors.ErrCodeInvalidFilename, err, "%s", base)
	}
	floor, err := strconv.Atoi(parts[1])
	if err != nil || floor < 0 {
		return Input{}, perrors.New(perrors.ErrCodeInvalidFilename,
			"%s: floor %q is not a non-negative integer", base, parts[1])
	}

	return Input{Path: path, Name: parts[0], Floor: floor, floorText: parts[1]}, nil
}

// ScanResult holds the outcome of [Scan].
type ScanResult struct {
	// Inputs are the conforming path images, sorted by file name.
	Inputs []Input
	// Skipped holds one error per file that looked like a path image but
	// whose name could not be parsed.
	Skipped []error
}

// Scan lists the path images directly inside dir. Subdirectories are not
// descended.
func Scan(dir string) (ScanResult, error) {
	var res ScanResult
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return res, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "scan %s", dir)
		}
		return res, perrors.Wrap(perrors.ErrCodeInvalidPath, err, "scan %s", dir)
	}

	for _, e := range entries {
		if e.IsDir() || !IsPathImage(e.Name()) {
			continue
		}
		in, err := ParseFilename(filepath.Join(dir, e.Name()))
		if err != nil {
			res.Skipped = append(res.Skipped, err)
			continue
		}
		res.Inputs = append(res.Inputs, in)
	}
	return res, nil
}

// Collect resolves command-line arguments into inputs. Directories are
// scanned; files must follow the naming convention. With no arguments the
// current directory is scanned.
func Collect(args []string) (ScanResult, error) {
	if len(args) == 0 {
		args = []string{"."}
	}

	var res ScanResult
	for _, arg := range args {
		if err := perrors.ValidatePath(arg); err != nil {
			return res, err
		}
		info, err := os.Stat(arg)
		if err != nil {
			return res, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "%s", arg)
		}
		if info.IsDir() {
			sub, err := Scan(arg)
			if err != nil {
				return res, err
			}
			res.Inputs = append(res.Inputs, sub.Inputs...)
			res.Skipped = append(res.Skipped, sub.Skipped...)
			continue
		}
		in, err := ParseFilename(arg)
		if err != nil {
			res.Skipped = append(res.Skipped, err)
			continue
		}
		res.Inputs = append(res.Inputs, in)
	}
	return res, nil
}
