package artifact

// Kind identifies which artifact variant a statement body or store entry
// carries (spec SS3, SS4.3 — "every statement kind maps to exactly one
// predicate variant").
type Kind uint8

const (
	KindConfiguration Kind = iota + 1
	KindChannel
	KindShares
	KindDkgPublicKey
	KindBallots
	KindMix
	KindDecryptionFactors
	KindPlaintexts
)

// String renders a Kind for logging.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindChannel:
		return "channel"
	case KindShares:
		return "shares"
	case KindDkgPublicKey:
		return "dkg_public_key"
	case KindBallots:
		return "ballots"
	case KindMix:
		return "mix"
	case KindDecryptionFactors:
		return "decryption_factors"
	case KindPlaintexts:
		return "plaintexts"
	default:
		return "unknown"
	}
}

// Artifact is implemented by every typed payload in this package. Hash is
// computed lazily by the caller via EncodeAndHash rather than cached on the
// type, so a mutated artifact can never carry a stale hash.
type Artifact interface {
	// ArtifactKind returns this artifact's Kind.
	ArtifactKind() Kind
}
