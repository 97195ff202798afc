package message

import (
	"fmt"

	"github.com/braidcore/braid/artifact"
	"github.com/braidcore/braid/crypto/signatures/ethereum"
	"github.com/braidcore/braid/errs"
	"github.com/ethereum/go-ethereum/common"
)

// Message is the signed envelope carried on the bulletin board (spec SS3,
// SS6). ArtifactBytes is nil when the message only asserts a signature over
// existing content (a "Signed" statement kind).
type Message struct {
	SenderVerificationKey common.Address
	SenderSignature       []byte // ethereum.ECDSASignature.Bytes()
	Statement             Statement
	ArtifactBytes         []byte
}

// Sign builds a Message by canonically encoding stmt and signing it with
// signer. If artifactBytes is non-nil its hash must already be recorded in
// stmt.Body.ArtifactHash.
func Sign(signer *ethereum.Signer, stmt Statement, artifactBytes []byte) (Message, error) {
	canon, err := artifact.Encode(stmt)
	if err != nil {
		return Message{}, fmt.Errorf("message: encode statement: %w", err)
	}
	sig, err := signer.Sign(canon)
	if err != nil {
		return Message{}, fmt.Errorf("message: sign statement: %w", err)
	}
	return Message{
		SenderVerificationKey: signer.Address(),
		SenderSignature:       sig.Bytes(),
		Statement:             stmt,
		ArtifactBytes:         artifactBytes,
	}, nil
}

// Verify checks the invariants of spec SS3 for m given the Configuration it
// is scoped to (already resolved by the caller from
// m.Statement.Body.ConfigurationHash): the signature is valid over the
// canonical statement, the artifact bytes (if any) hash to the statement's
// recorded artifact hash, the schema version is supported, and the sender is
// the manager or the configuration's trustee at the claimed position. An
// attestation at artifact.VerifierPosition is accepted from any sender key,
// since the Configuration records no verifier key.
func (m Message) Verify(cfg artifact.Configuration) error {
	if m.Statement.Head.SchemaVersion != SchemaVersion {
		return fmt.Errorf("%w: got %d, want %d", errs.ErrSchemaVersion, m.Statement.Head.SchemaVersion, SchemaVersion)
	}

	canon, err := artifact.Encode(m.Statement)
	if err != nil {
		return fmt.Errorf("message: encode statement: %w", err)
	}
	sig, err := ethereum.BytesToSignature(m.SenderSignature)
	if err != nil {
		return fmt.Errorf("%w: malformed signature: %v", errs.ErrVerification, err)
	}
	ok, _ := sig.Verify(canon, m.SenderVerificationKey)
	if !ok {
		return fmt.Errorf("%w: signature does not verify for sender %s", errs.ErrVerification, m.SenderVerificationKey)
	}

	if m.ArtifactBytes != nil {
		gotHash := artifact.HashBytes(m.ArtifactBytes)
		if gotHash != m.Statement.Body.ArtifactHash {
			return fmt.Errorf("%w: artifact hash mismatch", errs.ErrVerification)
		}
	}

	if !m.isAuthorized(cfg) {
		return fmt.Errorf("%w: sender %s is not authorised for %s", errs.ErrVerification, m.SenderVerificationKey, m.Statement.Head.Kind)
	}

	return nil
}

// isAuthorized implements the per-kind sender authorisation of spec SS3/SS4:
// the manager posts Configuration and Ballots; trustees post everything else
// at their own claimed position; the verifier (position
// artifact.VerifierPosition) may only post "Signed"/attestation statements,
// never Channel, Shares, Mix or DecryptionFactors (spec SS4.4).
func (m Message) isAuthorized(cfg artifact.Configuration) bool {
	p := m.Statement.Body.Position
	switch m.Statement.Head.Kind {
	case StatementConfiguration, StatementBallots:
		return m.SenderVerificationKey == cfg.Manager
	case StatementChannel, StatementShares, StatementMix, StatementDecryptionFactors, StatementPublicKey, StatementPlaintexts:
		// Only a key-holding trustee ever computes these; the verifier
		// never does (spec SS4.4).
		return p >= 0 && p < cfg.N() && cfg.Trustees[p] == m.SenderVerificationKey
	default:
		// Every "signed" attestation kind: a trustee attests at its own
		// position, and the verifier (position
		// artifact.VerifierPosition) may attest to anything except the
		// compute-only kinds above.
		if p == artifact.VerifierPosition {
			return true
		}
		return p >= 0 && p < cfg.N() && cfg.Trustees[p] == m.SenderVerificationKey
	}
}
