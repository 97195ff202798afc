package artifact

import (
	"github.com/braidcore/braid/crypto/elgamal"
	"github.com/braidcore/braid/crypto/shuffle"
)

// Mix is one stage of the verifiable shuffle chain (spec SS3). The k-th mix
// references the prior ciphertext vector by hash and carries the permuted,
// re-encrypted vector with a shuffle proof. k=0 is the initial Ballots
// artifact; mixes are numbered 1..len(TrusteeSet), one per trustee the
// batch's Ballots selected.
type Mix struct {
	Curve       string
	Batch       uint64
	Sequence    int // k, 1-indexed
	SourceHash  Hash
	Ciphertexts []elgamal.Ciphertext
	Proof       shuffle.Proof
}

// ArtifactKind implements Artifact.
func (Mix) ArtifactKind() Kind { return KindMix }
