package artifact

import "github.com/braidcore/braid/crypto/elgamal"

// DecryptionFactors is one trustee's contribution toward decrypting a
// post-shuffle ciphertext vector: one factor per ciphertext, each with a
// Chaum-Pedersen proof binding it to the trustee's verification key (spec
// SS3).
type DecryptionFactors struct {
	Curve       string
	Batch       uint64
	SourceHash  Hash // the final Mix this decrypts
	SharesHash  []Hash // every sender's Shares, by position, summed into this trustee's secret
	Factors     [][]byte // compressed points, one per ciphertext: d_i*C1
	Proofs      []elgamal.DecryptionProof
}

// ArtifactKind implements Artifact.
func (DecryptionFactors) ArtifactKind() Kind { return KindDecryptionFactors }
