package message

import "github.com/braidcore/braid/artifact"

// StatementKind identifies which of the message variants of spec SS3/SS4.3 a
// statement carries. It is a finer grain than artifact.Kind: every artifact
// kind except Shares, Ballots and DecryptionFactors (which nothing ever
// attests to directly — DKG and decryption move straight to the next phase
// once all N/t are present) has both a "compute" statement, which carries
// the artifact bytes, and a "signed" attestation statement, which carries no
// artifact bytes and merely asserts a signature over an already-posted
// artifact (spec SS4.3: "every statement kind maps to exactly one predicate
// variant").
type StatementKind uint8

const (
	StatementConfiguration StatementKind = iota + 1
	StatementConfigurationSigned
	StatementChannel
	StatementChannelsSigned
	StatementShares
	StatementPublicKey
	StatementPublicKeySigned
	StatementBallots
	StatementMix
	StatementMixSigned
	StatementDecryptionFactors
	StatementPlaintexts
	StatementPlaintextsSigned
)

// String renders a StatementKind for logging.
func (k StatementKind) String() string {
	switch k {
	case StatementConfiguration:
		return "configuration"
	case StatementConfigurationSigned:
		return "configuration_signed"
	case StatementChannel:
		return "channel"
	case StatementChannelsSigned:
		return "channels_signed"
	case StatementShares:
		return "shares"
	case StatementPublicKey:
		return "public_key"
	case StatementPublicKeySigned:
		return "public_key_signed"
	case StatementBallots:
		return "ballots"
	case StatementMix:
		return "mix"
	case StatementMixSigned:
		return "mix_signed"
	case StatementDecryptionFactors:
		return "decryption_factors"
	case StatementPlaintexts:
		return "plaintexts"
	case StatementPlaintextsSigned:
		return "plaintexts_signed"
	default:
		return "unknown"
	}
}

// ArtifactKind returns the artifact.Kind this statement kind carries or
// attests to, and whether this is a "compute" kind (true) that carries
// artifact bytes, as opposed to a "signed" attestation kind (false).
func (k StatementKind) ArtifactKind() (kind artifact.Kind, isCompute bool) {
	switch k {
	case StatementConfiguration:
		return artifact.KindConfiguration, true
	case StatementConfigurationSigned:
		return artifact.KindConfiguration, false
	case StatementChannel:
		return artifact.KindChannel, true
	case StatementChannelsSigned:
		return artifact.KindChannel, false
	case StatementShares:
		return artifact.KindShares, true
	case StatementPublicKey:
		return artifact.KindDkgPublicKey, true
	case StatementPublicKeySigned:
		return artifact.KindDkgPublicKey, false
	case StatementBallots:
		return artifact.KindBallots, true
	case StatementMix:
		return artifact.KindMix, true
	case StatementMixSigned:
		return artifact.KindMix, false
	case StatementDecryptionFactors:
		return artifact.KindDecryptionFactors, true
	case StatementPlaintexts:
		return artifact.KindPlaintexts, true
	case StatementPlaintextsSigned:
		return artifact.KindPlaintexts, false
	default:
		return 0, false
	}
}
