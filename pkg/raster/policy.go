package raster

import (
	"strings"

	perrors "github.com/matzehuels/pathgraph/pkg/errors"
)

// UnrecognizedPolicy decides what happens to pixels matching no palette color.
type UnrecognizedPolicy string

const (
	// PolicyReject fails grid construction with a MALFORMED_INPUT error.
	PolicyReject UnrecognizedPolicy = "reject"
	// PolicyWarn keeps the pixel as Unrecognized: it counts toward degree
	// but is neither path nor stair.
	PolicyWarn UnrecognizedPolicy = "warn"
	// PolicyBackground treats the pixel as background.
	PolicyBackground UnrecognizedPolicy = "background"
	// PolicyPath treats the pixel as path.
	PolicyPath UnrecognizedPolicy = "path"
)

// DefaultPolicy keeps unrecognized pixels connected and reports them.
const DefaultPolicy = PolicyWarn

// Policies lists the valid policies.
var Policies = []UnrecognizedPolicy{PolicyReject, PolicyWarn, PolicyBackground, PolicyPath}

// ParsePolicy parses a policy name. The empty string yields [DefaultPolicy].
func ParsePolicy(s string) (UnrecognizedPolicy, error) {
	if s == "" {
		return DefaultPolicy, nil
	}
	p := UnrecognizedPolicy(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range Policies {
		if p == valid {
			return p, nil
		}
	}
	return "", perrors.New(perrors.ErrCodeInvalidPolicy,
		"invalid policy: %q (must be one of: reject, warn, background, path)", s)
}

// resolve applies the policy to an unrecognized pixel.
func (p UnrecognizedPolicy) resolve() Color {
	switch p {
	case PolicyBackground:
		return Background
	case PolicyPath:
		return Path
	}
	return Unrecognized
}
