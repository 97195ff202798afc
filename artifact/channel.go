package artifact

import (
	"github.com/braidcore/braid/crypto/ecc"
	"github.com/braidcore/braid/crypto/schnorr"
)

// Channel is a per-trustee share-transport artifact (spec SS3): an ElGamal
// public key proved with a Schnorr proof of knowledge, plus the
// symmetrically sealed private key so the trustee can recover it cold.
type Channel struct {
	Curve              string
	PublicKey          []byte // compressed point, curves.New(Curve).Marshal()
	Proof              schnorr.Proof
	EncryptedChannelSK []byte // crypto/seal.Seal output
}

// ArtifactKind implements Artifact.
func (Channel) ArtifactKind() Kind { return KindChannel }

// PublicKeyPoint decodes PublicKey into a live curve point.
func (c Channel) PublicKeyPoint() (ecc.Point, error) {
	return decodePoint(c.Curve, c.PublicKey)
}
