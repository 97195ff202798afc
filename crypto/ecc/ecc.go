// Package ecc defines the group-element contract shared by every elliptic
// curve backend in this module. Braid's actions are written once against
// this interface (crypto/elgamal, crypto/elgamal/dkg, crypto/schnorr,
// crypto/shuffle) and monomorphised per backend by crypto/ecc/curves.New.
package ecc

import "math/big"

// Point is a group element of a prime-order elliptic curve subgroup. All
// methods that mutate the receiver store their result there; New allocates a
// fresh point on the same curve to compute into.
type Point interface {
	// New returns a newly allocated point (identity element) on the same
	// curve as the receiver.
	New() Point
	// Order returns the order of the group.
	Order() *big.Int
	// Add sets the receiver to a + b.
	Add(a, b Point)
	// ScalarMult sets the receiver to scalar * a.
	ScalarMult(a Point, scalar *big.Int)
	// ScalarBaseMult sets the receiver to scalar * G, where G is the
	// curve's generator.
	ScalarBaseMult(scalar *big.Int)
	// Neg sets the receiver to -a.
	Neg(a Point)
	// Set copies the value of a into the receiver.
	Set(a Point)
	// SetZero sets the receiver to the identity element.
	SetZero()
	// SetGenerator sets the receiver to the curve's generator point G.
	SetGenerator()
	// Equal reports whether the receiver and a represent the same point.
	Equal(a Point) bool
	// Marshal returns the canonical compressed byte encoding of the point.
	Marshal() []byte
	// Unmarshal parses buf (as produced by Marshal) into the receiver.
	Unmarshal(buf []byte) error
	// Point returns the affine (x, y) coordinates of the receiver.
	Point() (*big.Int, *big.Int)
	// SetPoint returns a new point with the given affine coordinates.
	SetPoint(x, y *big.Int) Point
	// Type returns the curve's identifier string (e.g. "bn254").
	Type() string
	// String returns a human-readable (hex) representation of the point.
	String() string
}
