package elgamal

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/braidcore/braid/crypto/ecc"
	"github.com/braidcore/braid/crypto/ecc/curves"
	"github.com/braidcore/braid/crypto/hash/poseidon"
	"github.com/fxamacker/cbor/v2"
)

// ShareCiphertext masks a full-width scalar (a VSS share, up to the curve
// order rather than a small ballot value) under a recipient's public key.
// Unlike Ciphertext, which encodes its plaintext as an exponent and relies
// on baby-step giant-step to recover it, a share is too large for that: it
// is masked ECIES-style instead. The sender picks an ephemeral scalar k,
// derives the shared point S = k*recipientPubKey, and adds a
// Poseidon-derived mask of S to the share. The recipient recovers the same
// S as privateKey*Ephemeral and subtracts the mask.
type ShareCiphertext struct {
	Ephemeral ecc.Point // k*G
	Masked    *big.Int  // share + H(S) mod order
}

type wireShareCiphertext struct {
	Curve     string
	Ephemeral []byte
	Masked    *big.Int
}

// MarshalCBOR implements cbor.Marshaler.
func (c ShareCiphertext) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(wireShareCiphertext{
		Curve:     c.Ephemeral.Type(),
		Ephemeral: c.Ephemeral.Marshal(),
		Masked:    c.Masked,
	})
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (c *ShareCiphertext) UnmarshalCBOR(data []byte) error {
	var w wireShareCiphertext
	if err := cbor.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("share ciphertext: unmarshal envelope: %w", err)
	}
	if !curves.IsValid(w.Curve) {
		return fmt.Errorf("share ciphertext: unsupported curve %q", w.Curve)
	}
	e := curves.New(w.Curve)
	if err := e.Unmarshal(w.Ephemeral); err != nil {
		return fmt.Errorf("share ciphertext: unmarshal ephemeral: %w", err)
	}
	c.Ephemeral, c.Masked = e, w.Masked
	return nil
}

// shareMask derives the additive mask for a shared point S, bound to the
// recipient's public key so two recipients never see the same mask for the
// same ephemeral scalar.
func shareMask(recipientPubKey, sharedPoint ecc.Point) *big.Int {
	rx, ry := recipientPubKey.Point()
	sx, sy := sharedPoint.Point()
	digest, err := poseidon.MultiPoseidon(rx, ry, sx, sy)
	if err != nil {
		panic(fmt.Sprintf("elgamal: hash share mask: %v", err))
	}
	return digest
}

// EncryptShare masks share under recipientPubKey.
func EncryptShare(recipientPubKey ecc.Point, share *big.Int) (ShareCiphertext, error) {
	k, err := RandK(recipientPubKey)
	if err != nil {
		return ShareCiphertext{}, err
	}
	ephemeral := recipientPubKey.New()
	ephemeral.ScalarBaseMult(k)

	shared := recipientPubKey.New()
	shared.ScalarMult(recipientPubKey, k)

	order := recipientPubKey.Order()
	mask := shareMask(recipientPubKey, shared)
	masked := new(big.Int).Add(share, mask)
	masked.Mod(masked, order)

	return ShareCiphertext{Ephemeral: ephemeral, Masked: masked}, nil
}

// DecryptShare recovers the share masked by EncryptShare, given the
// recipient's own key pair.
func DecryptShare(recipientPrivateKey *big.Int, recipientPubKey ecc.Point, c ShareCiphertext) (*big.Int, error) {
	shared := recipientPubKey.New()
	shared.ScalarMult(c.Ephemeral, recipientPrivateKey)

	order := recipientPubKey.Order()
	mask := shareMask(recipientPubKey, shared)
	share := new(big.Int).Sub(c.Masked, mask)
	share.Mod(share, order)
	return share, nil
}
