package artifact

import "github.com/braidcore/braid/crypto/elgamal"

// Ballots is the initial encrypted vote vector the protocol manager posts
// for one batch, selecting which t trustees will mix and decrypt it (spec
// SS3, SS4.3).
type Ballots struct {
	Curve        string
	Batch        uint64
	Ciphertexts  []elgamal.Ciphertext
	DkgPublicKey Hash // the DkgPublicKey these ciphertexts were encrypted under
	TrusteeSet   []int // positions of the t trustees selected to mix/decrypt this batch
}

// ArtifactKind implements Artifact.
func (Ballots) ArtifactKind() Kind { return KindBallots }
