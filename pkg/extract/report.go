package extract

import (
	"fmt"

	perrors "github.com/matzehuels/pathgraph/pkg/errors"
	"github.com/matzehuels/pathgraph/pkg/graph"
)

// Issue is a data-quality finding. Issues never stop extraction.
type Issue struct {
	Code    perrors.Code `json:"code"`
	Pos     graph.Coord  `json:"pos"`
	Message string       `json:"message"`
}

// Error implements the error interface in the format of pkg/errors.
func (i Issue) Error() string {
	return fmt.Sprintf("%s: %s", i.Code, i.Message)
}

// Err converts the issue to a structured error.
func (i Issue) Err() error {
	return perrors.New(i.Code, "%s", i.Message)
}

// Report collects the issues found while extracting one image.
type Report struct {
	Issues []Issue `json:"issues"`

	// Unrecognized is the number of pixels that matched no palette color.
	Unrecognized int `json:"unrecognized"`
}

func (r *Report) add(code perrors.Code, pos graph.Coord, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Code: code, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// Empty reports whether no issue was found.
func (r *Report) Empty() bool { return len(r.Issues) == 0 }

// ByCode returns the issues with the given code.
func (r *Report) ByCode(code perrors.Code) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Code == code {
			out = append(out, i)
		}
	}
	return out
}

// Counts returns the number of issues per code.
func (r *Report) Counts() map[perrors.Code]int {
	out := make(map[perrors.Code]int)
	for _, i := range r.Issues {
		out[i.Code]++
	}
	return out
}
