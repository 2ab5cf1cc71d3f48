// Package urn encodes and decodes IOOS sensor URNs, the compact hierarchical
// identifiers that carry a sensor variable's full semantic description:
// measured quantity, statistical treatment, vertical reference and a
// disambiguating suffix.
// See https://ioos.github.io/conventions-for-observing-asset-identifiers.
package urn

import (
	"errors"
	"fmt"
	"strings"
)

// Errors reported by the codec. Grammar errors mean the semantic content is
// inconsistent; malformed errors mean the string itself cannot be parsed.
var (
	ErrGrammar   = errors.New("urn: invalid identifier grammar")
	ErrMalformed = errors.New("urn: malformed identifier string")
)

const prefix = "urn:ioos"

// URN is one IOOS asset identifier of the form
// urn:ioos:{asset}:{authority}:{label}[:{component}[:{version}]].
type URN struct {
	AssetType string
	Authority string
	Label     string
	Component string
	Version   string
}

// String renders the canonical identifier. Empty trailing fields are
// omitted.
func (u URN) String() string {
	parts := []string{prefix, u.AssetType, u.Authority, u.Label}
	if u.Component != "" || u.Version != "" {
		parts = append(parts, u.Component)
	}
	if u.Version != "" {
		parts = append(parts, u.Version)
	}
	return strings.Join(parts, ":")
}

// Valid reports whether the mandatory fields are present.
func (u URN) Valid() bool {
	return u.AssetType != "" && u.Authority != "" && u.Label != ""
}

// Parse splits an identifier string into its URN fields. The component may
// itself contain colons (cell-method clauses do), so everything after the
// fifth separator up to an optional version field belongs to it.
func Parse(s string) (URN, error) {
	if !strings.HasPrefix(s, prefix+":") {
		return URN{}, fmt.Errorf("%w: missing %q prefix: %q", ErrMalformed, prefix, s)
	}
	parts := strings.SplitN(s, ":", 6)
	if len(parts) < 5 {
		return URN{}, fmt.Errorf("%w: want at least 5 colon-delimited fields: %q", ErrMalformed, s)
	}
	u := URN{
		AssetType: parts[2],
		Authority: parts[3],
		Label:     parts[4],
	}
	if len(parts) == 6 {
		u.Component = parts[5]
	}
	return u, nil
}
