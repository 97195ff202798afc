package artifact

import (
	"fmt"

	"github.com/braidcore/braid/crypto/ecc"
	"github.com/braidcore/braid/crypto/ecc/curves"
)

// DkgPublicKey is the aggregate election public key (product of the N
// zeroth-coefficient commitments) plus the per-trustee verification keys
// derivable from all shares' commitments (spec SS3).
type DkgPublicKey struct {
	Curve            string
	PublicKey        []byte   // compressed aggregate public key point
	VerificationKeys [][]byte // one per trustee position, parallel to Configuration.Trustees
	SharesHashes     []Hash   // the N Shares this key was derived from, by sender position
	ChannelsHashes   []Hash   // the N Channels this key was derived from, by position
}

// ArtifactKind implements Artifact.
func (DkgPublicKey) ArtifactKind() Kind { return KindDkgPublicKey }

// PublicKeyPoint decodes PublicKey into a live curve point.
func (k DkgPublicKey) PublicKeyPoint() (ecc.Point, error) {
	return decodePoint(k.Curve, k.PublicKey)
}

// VerificationKeyPoint decodes the verification key at position p.
func (k DkgPublicKey) VerificationKeyPoint(p int) (ecc.Point, error) {
	if p < 0 || p >= len(k.VerificationKeys) {
		return nil, fmt.Errorf("dkg public key: position %d out of range", p)
	}
	return decodePoint(k.Curve, k.VerificationKeys[p])
}

func decodePoint(curve string, b []byte) (ecc.Point, error) {
	if !curves.IsValid(curve) {
		return nil, fmt.Errorf("unsupported curve %q", curve)
	}
	p := curves.New(curve)
	if err := p.Unmarshal(b); err != nil {
		return nil, fmt.Errorf("unmarshal point: %w", err)
	}
	return p, nil
}

func encodePoint(p ecc.Point) []byte {
	return p.Marshal()
}
