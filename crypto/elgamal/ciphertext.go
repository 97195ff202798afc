package elgamal

import (
	"fmt"
	"math/big"

	"github.com/braidcore/braid/crypto/ecc"
	"github.com/braidcore/braid/crypto/ecc/curves"
	"github.com/fxamacker/cbor/v2"
)

// Ciphertext is an ElGamal ciphertext pair (C1, C2) = (k*G, M + k*P) under
// public key P. It is the unit that artifacts like Ballots, Mix and
// DecryptionFactors operate over.
type Ciphertext struct {
	C1 ecc.Point
	C2 ecc.Point
}

// ReEncrypt returns a fresh ciphertext encrypting the same plaintext as c
// under publicKey, blinded by re-encryption exponent k: C1' = C1 + k*G,
// C2' = C2 + k*P. The caller supplies k so it can be reused as this mixer's
// response in a shuffle proof.
func ReEncrypt(publicKey ecc.Point, c Ciphertext, k *big.Int) Ciphertext {
	kG := publicKey.New()
	kG.ScalarBaseMult(k)
	c1 := publicKey.New()
	c1.Add(c.C1, kG)

	kP := publicKey.New()
	kP.ScalarMult(publicKey, k)
	c2 := publicKey.New()
	c2.Add(c.C2, kP)

	return Ciphertext{C1: c1, C2: c2}
}

// wireCiphertext is the canonical wire shape: each point reduced to its
// curve type and compressed bytes so the ecc.Point interface fields never
// need to cross the CBOR reflection boundary directly.
type wireCiphertext struct {
	Curve string
	C1    []byte
	C2    []byte
}

// MarshalCBOR implements cbor.Marshaler.
func (c Ciphertext) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(wireCiphertext{
		Curve: c.C1.Type(),
		C1:    c.C1.Marshal(),
		C2:    c.C2.Marshal(),
	})
}

// UnmarshalCBOR implements cbor.Unmarshaler.
func (c *Ciphertext) UnmarshalCBOR(data []byte) error {
	var w wireCiphertext
	if err := cbor.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("ciphertext: unmarshal envelope: %w", err)
	}
	if !curves.IsValid(w.Curve) {
		return fmt.Errorf("ciphertext: unsupported curve %q", w.Curve)
	}
	c1 := curves.New(w.Curve)
	if err := c1.Unmarshal(w.C1); err != nil {
		return fmt.Errorf("ciphertext: unmarshal c1: %w", err)
	}
	c2 := curves.New(w.Curve)
	if err := c2.Unmarshal(w.C2); err != nil {
		return fmt.Errorf("ciphertext: unmarshal c2: %w", err)
	}
	c.C1, c.C2 = c1, c2
	return nil
}
