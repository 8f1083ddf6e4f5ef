package export

import (
	"bytes"
	"io"
	"strings"

	perrors "github.com/matzehuels/pathgraph/pkg/errors"
	"github.com/matzehuels/pathgraph/pkg/graph"
)

// Format constants for output formats.
const (
	FormatXML  = "xml"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// DefaultFormat is the format written when none is requested.
const DefaultFormat = FormatXML

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatXML:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// ContentTypes maps each format to its HTTP content type.
var ContentTypes = map[string]string{
	FormatXML:  "application/xml",
	FormatJSON: "application/json",
	FormatDOT:  "text/vnd.graphviz",
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return perrors.New(perrors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: xml, json, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ParseFormats splits a comma-separated format list, dropping blanks and
// duplicates. The result is validated.
func ParseFormats(s string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	if err := ValidateFormats(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Write encodes g in the given format to w.
func Write(g *graph.Graph, format string, w io.Writer) error {
	switch format {
	case FormatXML:
		return WriteXML(g, w)
	case FormatJSON:
		return graph.WriteGraph(g, w)
	case FormatDOT:
		_, err := io.WriteString(w, ToDOT(g))
		return err
	}
	return ValidateFormat(format)
}

// Marshal encodes g in the given format.
func Marshal(g *graph.Graph, format string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(g, format, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
