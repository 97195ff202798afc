package schnorr

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/braidcore/braid/crypto/ecc/curves"
	"github.com/braidcore/braid/crypto/elgamal"
)

// TestProveVerifyRoundTrip checks that a Schnorr proof of knowledge of a
// discrete log verifies under the same label it was produced with.
func TestProveVerifyRoundTrip(t *testing.T) {
	c := qt.New(t)
	curve := curves.New("bn254")
	pubKey, privKey, err := elgamal.GenerateKey(curve)
	c.Assert(err, qt.IsNil)

	label := Label(0, "channel")
	proof, err := Prove(pubKey, privKey, label)
	c.Assert(err, qt.IsNil)

	err = Verify(pubKey, proof, label)
	c.Assert(err, qt.IsNil)
}

// TestVerifyRejectsWrongLabel checks a proof cannot be replayed under a
// label it was not built for.
func TestVerifyRejectsWrongLabel(t *testing.T) {
	c := qt.New(t)
	curve := curves.New("bn254")
	pubKey, privKey, err := elgamal.GenerateKey(curve)
	c.Assert(err, qt.IsNil)

	proof, err := Prove(pubKey, privKey, Label(0, "channel"))
	c.Assert(err, qt.IsNil)

	err = Verify(pubKey, proof, Label(1, "channel"))
	c.Assert(err, qt.ErrorMatches, "schnorr: invalid proof")
}

// TestVerifyRejectsWrongKey checks a proof is bound to the public key it
// claims to be about.
func TestVerifyRejectsWrongKey(t *testing.T) {
	c := qt.New(t)
	curve := curves.New("bn254")
	pubKey, privKey, err := elgamal.GenerateKey(curve)
	c.Assert(err, qt.IsNil)
	otherKey, _, err := elgamal.GenerateKey(curve)
	c.Assert(err, qt.IsNil)

	label := Label(0, "channel")
	proof, err := Prove(pubKey, privKey, label)
	c.Assert(err, qt.IsNil)

	err = Verify(otherKey, proof, label)
	c.Assert(err, qt.ErrorMatches, "schnorr: invalid proof")
}

// TestProofCBORRoundTrip checks Proof's wire encoding survives a
// marshal/unmarshal round trip.
func TestProofCBORRoundTrip(t *testing.T) {
	c := qt.New(t)
	curve := curves.New("bn254")
	pubKey, privKey, err := elgamal.GenerateKey(curve)
	c.Assert(err, qt.IsNil)

	label := Label(7, "channel")
	proof, err := Prove(pubKey, privKey, label)
	c.Assert(err, qt.IsNil)

	raw, err := proof.MarshalCBOR()
	c.Assert(err, qt.IsNil)

	var got Proof
	err = got.UnmarshalCBOR(raw)
	c.Assert(err, qt.IsNil)

	err = Verify(pubKey, got, label)
	c.Assert(err, qt.IsNil)
}
