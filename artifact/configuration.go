package artifact

import (
	"fmt"

	"github.com/braidcore/braid/errs"
	"github.com/ethereum/go-ethereum/common"
)

// MaxTrustees bounds the trustee cohort size (spec SS3: 2 <= N <= MaxTrustees).
const MaxTrustees = 64

// VerifierPosition is the reserved position index for an observer that
// verifies the protocol without holding a key share (spec SS3, SS4.4).
const VerifierPosition = -1

// ManagerPosition is the reserved position index for the protocol manager in
// contexts that need a sentinel distinct from any trustee or the verifier.
const ManagerPosition = -2

// Configuration is the immutable set of protocol parameters for one election
// (spec SS3). ElectionID is an opaque 128-bit identifier; Manager and
// Trustees are verification-key addresses (crypto/signatures/ethereum);
// Threshold is the minimum number of trustees required to decrypt.
type Configuration struct {
	ElectionID [16]byte
	Curve      string
	Manager    common.Address
	Trustees   []common.Address
	Threshold  int
}

// ArtifactKind implements Artifact.
func (Configuration) ArtifactKind() Kind { return KindConfiguration }

// N returns the size of the trustee cohort.
func (c Configuration) N() int { return len(c.Trustees) }

// Validate checks the structural invariants of spec SS3: distinct trustee
// keys, distinct from the manager, legal cohort size and threshold bounds.
// A Configuration failing Validate is an InvalidConfiguration error (spec
// SS7) and the Trustee refuses to bootstrap.
func (c Configuration) Validate() error {
	n := c.N()
	if n < 2 || n > MaxTrustees {
		return fmt.Errorf("%w: trustee count %d outside [2,%d]", errs.ErrInvalidConfiguration, n, MaxTrustees)
	}
	if c.Threshold < 2 || c.Threshold > n {
		return fmt.Errorf("%w: threshold %d outside [2,%d]", errs.ErrInvalidConfiguration, c.Threshold, n)
	}
	seen := make(map[common.Address]bool, n+1)
	seen[c.Manager] = true
	for i, t := range c.Trustees {
		if seen[t] {
			return fmt.Errorf("%w: duplicate trustee key at position %d", errs.ErrInvalidConfiguration, i)
		}
		seen[t] = true
	}
	if len(seen) != n+1 {
		return fmt.Errorf("%w: a trustee key collides with the manager key", errs.ErrInvalidConfiguration)
	}
	return nil
}

// PositionOf returns the position 0..N-1 of addr among the trustees, or -1
// if addr is not a trustee of this Configuration.
func (c Configuration) PositionOf(addr common.Address) int {
	for i, t := range c.Trustees {
		if t == addr {
			return i
		}
	}
	return -1
}

// IsTrustee reports whether addr is one of this Configuration's trustees.
func (c Configuration) IsTrustee(addr common.Address) bool {
	return c.PositionOf(addr) >= 0
}
