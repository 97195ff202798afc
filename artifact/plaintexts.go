package artifact

import "math/big"

// Plaintexts is the plaintext vector obtained by combining t sets of
// decryption factors with Lagrange coefficients and decoding (spec SS3).
type Plaintexts struct {
	Batch               uint64
	ConfigurationHash   Hash
	DkgPublicKeyHash    Hash
	SourceHash          Hash   // the final Mix this was decrypted from
	DecryptionFactors   []Hash // the t DecryptionFactors combined, in the batch's TrusteeSet order
	Values              []*big.Int
}

// ArtifactKind implements Artifact.
func (Plaintexts) ArtifactKind() Kind { return KindPlaintexts }
