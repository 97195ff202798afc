package message

import "github.com/braidcore/braid/artifact"

// StatementBody carries the content-addressed references a statement
// derives from. Exactly one field subset is meaningful per StatementHead.Kind
// (spec SS3: "a statement names exactly which predecessors it derives
// from"); unused fields stay at their zero value. A flat struct is used
// instead of a tagged union so the canonical CBOR encoding stays a single,
// simple, deterministic shape (spec SS4.1) — the predicate layer is what
// enforces that a given Kind only reads its own fields (spec SS4.3: "every
// statement kind maps to exactly one predicate variant").
type StatementBody struct {
	// Position is this statement's sender position: 0..N-1 for a
	// trustee, artifact.VerifierPosition for the verifier,
	// artifact.ManagerPosition for the protocol manager.
	Position int

	// ArtifactHash is the hash of the artifact this statement is about:
	// for a "compute" statement (Channel, Shares, DkgPublicKey, Mix,
	// DecryptionFactors, Plaintexts) it is the hash of the artifact bytes
	// carried alongside; for a "signed"/attestation statement it is the
	// hash of the artifact being attested, carried with no artifact
	// bytes of its own.
	ArtifactHash artifact.Hash

	// ConfigurationHash is the Configuration every other reference here
	// is scoped to.
	ConfigurationHash artifact.Hash

	// ChannelHashes/SharesHashes are the full N-vectors this statement
	// depends on (PublicKey depends on all N Shares and N Channels;
	// ChannelsSigned attests to the full set of N channel hashes).
	ChannelHashes []artifact.Hash
	SharesHashes  []artifact.Hash

	// Batch scopes Ballots/Mix/DecryptionFactors/Plaintexts statements to
	// one decryption batch.
	Batch uint64

	// TrusteeSet is carried only by a Ballots statement: the positions
	// of the t trustees selected to mix and decrypt this batch.
	TrusteeSet []int

	// SourceHash/OutputHash describe one link of the mix chain: the k-th
	// Mix references the (k-1)-th mix's output (or the Ballots hash for
	// k=1) as SourceHash and carries its own output as ArtifactHash.
	SourceHash artifact.Hash

	// Sequence is the mix position k (1-indexed) for Mix/MixSigned
	// statements.
	Sequence int

	// DecryptionFactorHashes is carried by a Plaintexts statement: the t
	// DecryptionFactors artifacts combined to produce it.
	DecryptionFactorHashes []artifact.Hash
}

// Statement is the signed portion of a message (spec SS3).
type Statement struct {
	Head StatementHead
	Body StatementBody
}
