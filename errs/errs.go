// Package errs defines the error kinds of spec SS7, shared across artifact,
// message, store, predicate, action and trustee so callers can classify a
// failure with errors.Is without each package inventing its own sentinel.
package errs

import "errors"

var (
	// ErrVerification: a cryptographic proof, signature or hash did not
	// verify. Local to the action or ingest step that produced it; the
	// caller retries on the next tick without altering store state.
	ErrVerification = errors.New("braid: verification error")

	// ErrInvalidTrusteeSelection: a Ballots artifact names a trustee set
	// whose size differs from the threshold, contains duplicates, or
	// references unknown positions. Rejected at ingest.
	ErrInvalidTrusteeSelection = errors.New("braid: invalid trustee selection")

	// ErrInvalidConfiguration: a Configuration failed structural checks.
	// The Trustee refuses to bootstrap.
	ErrInvalidConfiguration = errors.New("braid: invalid configuration")

	// ErrInternal: an invariant violation, e.g. a hash expected to be in
	// the store is missing. Surfaces to the SessionSet as a step failure.
	ErrInternal = errors.New("braid: internal error")

	// ErrSchemaVersion: a message carries an unsupported wire schema
	// version. The offending message is rejected at ingest.
	ErrSchemaVersion = errors.New("braid: schema version mismatch")

	// ErrNotFound: the requested artifact or message is not present in
	// the store.
	ErrNotFound = errors.New("braid: not found")

	// ErrConflictingArtifact: a second verified message claims the same
	// logical role (same kind, batch and sender position) as an
	// already-recorded one but with a different artifact hash. The first
	// is kept; the second is rejected at ingest (spec §4.4: "the protocol
	// halts for that board... human intervention is required").
	ErrConflictingArtifact = errors.New("braid: conflicting artifact")
)
