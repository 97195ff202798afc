// Package curves is the curve-backend registry: it maps a curve type string
// to a concrete ecc.Point implementation. Grounded on
// _examples/vocdoni-davinci-node/crypto/ecc/curves/curves.go, trimmed to the
// one backend this module carries (see DESIGN.md for why bjj_gnark/bjj_iden3
// were dropped).
package curves

import (
	"slices"

	"github.com/braidcore/braid/crypto/ecc"
	"github.com/braidcore/braid/crypto/ecc/bn254"
)

// New creates a new instance of a Point implementation based on the provided
// curve type string. Panics if the type is unsupported; callers that accept
// a curve type from the board should validate it with IsValid first.
func New(curveType string) ecc.Point {
	switch curveType {
	case bn254.CurveType:
		return &bn254.G1{}
	default:
		panic("unsupported curve type: " + curveType)
	}
}

// Curves returns the list of supported curve type identifiers.
func Curves() []string {
	return []string{bn254.CurveType}
}

// IsValid reports whether curveType names a supported backend.
func IsValid(curveType string) bool {
	return slices.Contains(Curves(), curveType)
}
