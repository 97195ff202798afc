package artifact

import (
	"fmt"

	"github.com/braidcore/braid/crypto/ecc"
	"github.com/braidcore/braid/crypto/elgamal"
)

// Shares is a per-sender artifact (spec SS3): Feldman commitments to a
// degree-(t-1) polynomial's coefficients, plus one masked share per
// recipient (crypto/elgamal.ShareCiphertext), encrypted to that recipient's
// channel key. The evaluation at point i+1 is the share destined for
// position i.
type Shares struct {
	Curve       string
	Commitments [][]byte                    // compressed points, one per coefficient
	Encrypted   []elgamal.ShareCiphertext    // one per recipient position, indexed 0..N-1
	ChannelHash []Hash                       // the Channel each entry was encrypted under, parallel to Encrypted
}

// ArtifactKind implements Artifact.
func (Shares) ArtifactKind() Kind { return KindShares }

// CommitmentPoints decodes Commitments into live curve points.
func (s Shares) CommitmentPoints() ([]ecc.Point, error) {
	pts := make([]ecc.Point, len(s.Commitments))
	for i, b := range s.Commitments {
		p, err := decodePoint(s.Curve, b)
		if err != nil {
			return nil, fmt.Errorf("shares: commitment %d: %w", i, err)
		}
		pts[i] = p
	}
	return pts, nil
}

// ZerothCommitment returns the constant-term commitment g^a0, the
// contribution this sender makes to the aggregate DKG public key.
func (s Shares) ZerothCommitment() (ecc.Point, error) {
	pts, err := s.CommitmentPoints()
	if err != nil {
		return nil, err
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("shares: no commitments")
	}
	return pts[0], nil
}
