// Package datalog implements the fixed dispatcher of spec §4.4: a small,
// hand-written set of Horn-style rules over a predicate.Set, grouped into
// phases (Bootstrap, DKG, Shuffle, Decrypt), each emitting the Requests the
// action package must execute next. This is deliberately not a general
// datalog engine — spec §4.4 calls for "a direct dispatcher", and the rule
// set is small and fixed enough that hand-written Go functions are clearer
// than an interpreter over them.
package datalog

import (
	"errors"
	"fmt"

	"github.com/braidcore/braid/artifact"
)

// Kind identifies which action of spec §4.5 a Request asks for.
type Kind int

const (
	SignConfiguration Kind = iota + 1
	GenChannel
	SignChannels
	ComputeShares
	ComputePk
	SignPk
	ComputeMix
	SignMix
	ComputeDecryptionFactors
	ComputePlaintexts
	SignPlaintexts
)

func (k Kind) String() string {
	switch k {
	case SignConfiguration:
		return "sign_configuration"
	case GenChannel:
		return "gen_channel"
	case SignChannels:
		return "sign_channels"
	case ComputeShares:
		return "compute_shares"
	case ComputePk:
		return "compute_pk"
	case SignPk:
		return "sign_pk"
	case ComputeMix:
		return "compute_mix"
	case SignMix:
		return "sign_mix"
	case ComputeDecryptionFactors:
		return "compute_decryption_factors"
	case ComputePlaintexts:
		return "compute_plaintexts"
	case SignPlaintexts:
		return "sign_plaintexts"
	default:
		return "unknown"
	}
}

// Request is one action the dispatcher has determined is derivable right
// now. Batch/Sequence/TargetHash/TrusteeSet are populated per Kind; fields
// the action does not need stay at zero value.
type Request struct {
	Kind Kind

	ConfigHash artifact.Hash
	Batch      uint64
	Sequence   int

	// TargetHash is the artifact this request verifies or re-derives
	// (the Configuration for SignConfiguration, the PublicKey for SignPk,
	// the Mix at Sequence for SignMix, the Plaintexts for SignPlaintexts).
	TargetHash artifact.Hash
	// SourceHash is the predecessor artifact a compute action reads from
	// (the previous mix's output, or the Ballots hash for sequence 1).
	SourceHash artifact.Hash

	TrusteeSet []int
}

// ErrConflictingArtifact is returned when verified messages that must agree
// carry different hashes (e.g. two trustees' PublicKey artifacts, or a Mix
// whose source is not the previous link's output). Spec
// §4.4: "the protocol halts for that board... human intervention is
// required." Dispatch never fires a rule against conflicting predicates; it
// surfaces the conflict instead.
var ErrConflictingArtifact = errors.New("datalog: conflicting artifact")

func conflictError(role string, batch uint64, a, b artifact.Hash) error {
	return fmt.Errorf("%w: %s at batch %d has two hashes %s and %s", ErrConflictingArtifact, role, batch, a, b)
}
