// Package schnorr implements a single-prover non-interactive Schnorr proof
// of knowledge of a discrete logarithm, used by a Channel artifact to prove
// knowledge of its ElGamal private key without revealing it.
//
// It follows the same commit/challenge/response shape as
// crypto/elgamal/dkg's Chaum-Pedersen commitment (BuildCommitment /
// BuildPartialResponse) with the threshold/Lagrange-weighting machinery
// removed: there is exactly one prover instead of t-of-N.
//
//	A = r*G               (commitment)
//	e = Poseidon(P, A, label) mod order  (Fiat-Shamir challenge)
//	z = r + e*x mod order  (response)
//
// Verifier checks z*G == A + e*P.
package schnorr

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/braidcore/braid/crypto/ecc"
	"github.com/braidcore/braid/crypto/ecc/curves"
	"github.com/braidcore/braid/crypto/hash/poseidon"
	"github.com/fxamacker/cbor/v2"
)

// Proof is a non-interactive proof of knowledge of the discrete log x of
// P = x*G.
type Proof struct {
	A ecc.Point // = r*G, commitment
	Z *big.Int  // = r + e*x mod order, response
}

// wireProof is Proof's canonical wire shape (see elgamal.Ciphertext for why
// the ecc.Point field is reduced to curve+bytes for CBOR).
type wireProof struct {
	Curve string
	A     []byte
	Z     *big.Int
}

// MarshalCBOR implements cbor.Marshaler.
func (p Proof) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(wireProof{Curve: p.A.Type(), A: p.A.Marshal(), Z: p.Z})
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (p *Proof) UnmarshalCBOR(data []byte) error {
	var w wireProof
	if err := cbor.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("schnorr: unmarshal envelope: %w", err)
	}
	if !curves.IsValid(w.Curve) {
		return fmt.Errorf("schnorr: unsupported curve %q", w.Curve)
	}
	a := curves.New(w.Curve)
	if err := a.Unmarshal(w.A); err != nil {
		return fmt.Errorf("schnorr: unmarshal a: %w", err)
	}
	p.A, p.Z = a, w.Z
	return nil
}

// Prove builds a Schnorr proof of knowledge of privateKey, the discrete log
// of publicKey with respect to the curve's generator. label binds the
// resulting proof to a particular protocol step (e.g. "channel pk proof" for
// batch 0) so it cannot be replayed across unrelated artifacts.
func Prove(publicKey ecc.Point, privateKey *big.Int, label []byte) (Proof, error) {
	order := publicKey.Order()
	r, err := rand.Int(rand.Reader, order)
	if err != nil {
		return Proof{}, fmt.Errorf("schnorr: sample r: %w", err)
	}
	if r.Sign() == 0 {
		r = big.NewInt(1)
	}

	A := publicKey.New()
	A.ScalarBaseMult(r)

	e := challenge(publicKey, A, label)

	z := new(big.Int).Mul(e, privateKey)
	z.Add(z, r)
	z.Mod(z, order)

	return Proof{A: A, Z: z}, nil
}

// Verify checks that proof demonstrates knowledge of the discrete log of
// publicKey under the same label used to produce it.
func Verify(publicKey ecc.Point, proof Proof, label []byte) error {
	e := challenge(publicKey, proof.A, label)

	left := publicKey.New()
	left.ScalarBaseMult(proof.Z) // z*G

	right := publicKey.New()
	right.ScalarMult(publicKey, e) // e*P
	right.Add(right, proof.A)      // A + e*P

	if !left.Equal(right) {
		return fmt.Errorf("schnorr: invalid proof")
	}
	return nil
}

// challenge derives the Fiat-Shamir scalar from the public key, commitment
// and an arbitrary domain-separation label.
func challenge(publicKey, A ecc.Point, label []byte) *big.Int {
	px, py := publicKey.Point()
	ax, ay := A.Point()
	inputs := []*big.Int{px, py, ax, ay, new(big.Int).SetBytes(label)}
	digest, err := poseidon.MultiPoseidon(inputs...)
	if err != nil {
		panic(fmt.Sprintf("schnorr: hash challenge: %v", err))
	}
	return new(big.Int).Mod(digest, publicKey.Order())
}

// Label builds the domain-separation label used throughout the protocol:
// label(batch, purpose) (spec SS4.5).
func Label(batch uint64, purpose string) []byte {
	return fmt.Appendf(nil, "braid/%d/%s", batch, purpose)
}
