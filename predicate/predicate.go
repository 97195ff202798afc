// Package predicate defines the tuple types of spec §4.3: pure data
// extracted from verified store contents, one variant per statement kind
// plus the bootstrap Configuration fact and the output-only "all signed"
// facts the datalog layer derives. Predicates never carry artifact bytes,
// only the hashes and positions the datalog rules of §4.4 match against.
package predicate

import "github.com/braidcore/braid/artifact"

// Configuration is the bootstrap fact: this trustee is at Position of an
// N-of-Threshold configuration identified by Hash.
type Configuration struct {
	Hash     artifact.Hash
	Cfg      artifact.Configuration
	Position int
}

// ConfigurationSigned asserts that trustee Position signed the
// configuration identified by ConfigHash.
type ConfigurationSigned struct {
	ConfigHash artifact.Hash
	Position   int
}

// Channel asserts that trustee Position published a Channel.
type Channel struct {
	ConfigHash  artifact.Hash
	ChannelHash artifact.Hash
	Position    int
}

// ChannelsSigned asserts that trustee Position attests to the full set of N
// channel hashes.
type ChannelsSigned struct {
	ConfigHash    artifact.Hash
	ChannelHashes []artifact.Hash
	Position      int
}

// Shares asserts that trustee Position published its Shares.
type Shares struct {
	ConfigHash artifact.Hash
	SharesHash artifact.Hash
	Position   int
}

// PublicKey asserts that trustee Position published a DkgPublicKey derived
// from SharesHashes and ChannelHashes.
type PublicKey struct {
	ConfigHash    artifact.Hash
	PkHash        artifact.Hash
	SharesHashes  []artifact.Hash
	ChannelHashes []artifact.Hash
	Position      int
}

// PublicKeySigned asserts that trustee Position attests to the PublicKey at
// PkHash.
type PublicKeySigned struct {
	ConfigHash artifact.Hash
	PkHash     artifact.Hash
	Position   int
}

// Ballots asserts that the manager posted a ballot batch, naming the
// trustees selected to mix and decrypt it.
type Ballots struct {
	ConfigHash  artifact.Hash
	Batch       uint64
	BallotsHash artifact.Hash
	PkHash      artifact.Hash
	TrusteeSet  []int
}

// Mix asserts that trustee Position produced the Sequence-th mix of Batch,
// transforming SourceHash into OutputHash.
type Mix struct {
	ConfigHash artifact.Hash
	Batch      uint64
	SourceHash artifact.Hash
	OutputHash artifact.Hash
	Sequence   int
	Position   int
}

// MixSigned asserts that trustee Position attests to the mix (SourceHash,
// OutputHash) at Sequence of Batch.
type MixSigned struct {
	ConfigHash artifact.Hash
	Batch      uint64
	SourceHash artifact.Hash
	OutputHash artifact.Hash
	Sequence   int
	Position   int
}

// DecryptionFactors asserts that trustee Position produced decryption
// factors FactorsHash over the final mix output SourceHash.
type DecryptionFactors struct {
	ConfigHash   artifact.Hash
	Batch        uint64
	FactorsHash  artifact.Hash
	SourceHash   artifact.Hash
	SharesHashes []artifact.Hash
	Position     int
}

// Plaintexts asserts that trustee Position produced plaintexts PlaintextsHash
// by combining DecryptionFactorHashes over CiphertextsHash under PkHash.
type Plaintexts struct {
	ConfigHash             artifact.Hash
	Batch                  uint64
	PlaintextsHash         artifact.Hash
	DecryptionFactorHashes []artifact.Hash
	CiphertextsHash        artifact.Hash
	PkHash                 artifact.Hash
	Position               int
}

// PlaintextsSigned asserts that trustee Position attests to the plaintexts
// at PlaintextsHash for Batch.
type PlaintextsSigned struct {
	ConfigHash     artifact.Hash
	Batch          uint64
	PlaintextsHash artifact.Hash
	Position       int
}

// ConfigurationSignedAll is the output-only fact of spec §4.3/§4.4: every
// position 0..N-1 has signed the configuration.
type ConfigurationSignedAll struct {
	ConfigHash artifact.Hash
}

// PublicKeySignedAll is the output-only fact: every position 0..N-1 has
// attested to the same PkHash.
type PublicKeySignedAll struct {
	ConfigHash artifact.Hash
	PkHash     artifact.Hash
}

// MixComplete is the output-only fact: the mix chain for Batch has reached
// its final link at FinalHash, signed by every trustee in the selected set.
type MixComplete struct {
	ConfigHash artifact.Hash
	Batch      uint64
	FinalHash  artifact.Hash
}
