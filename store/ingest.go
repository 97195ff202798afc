package store

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/braidcore/braid/artifact"
	"github.com/braidcore/braid/db"
	"github.com/braidcore/braid/errs"
	"github.com/braidcore/braid/log"
	"github.com/braidcore/braid/message"
)

// BoardMessage pairs a board-delivered Message with the external id the
// board assigned it, so the store can track HighestExternalID across polls
// (spec SS4.7).
type BoardMessage struct {
	ExternalID uint64
	Message    message.Message
}

// Ingest verifies and records each of msgs in order, skipping (and logging)
// any message that fails verification or duplicates an already-recorded
// artifact hash, without aborting the rest of the batch (spec SS4.2: "a
// single malformed or unauthorised message never poisons the batch"). It
// returns the subset that were newly accepted.
//
// A conflicting artifact is different from a duplicate or a verification
// failure: it means two distinct, individually well-formed messages claim
// the same logical role (same kind, batch and sender position) with
// different artifact hashes. Spec SS4.4/SS9 names this "the protocol halts
// for that board... human intervention is required", so unlike the other
// skip cases above, Ingest commits whatever was accepted before the
// conflict and then returns errs.ErrConflictingArtifact rather than
// continuing past it. Because HighestExternalID only ever advances (it
// never skips past an unprocessed message), the conflicting message is
// re-fetched and re-rejected on every subsequent tick until an operator
// resolves it, which is what makes the halt durable.
func (s *Store) Ingest(msgs []BoardMessage) ([]message.Message, error) {
	accepted := make([]message.Message, 0, len(msgs))
	tx := s.db.WriteTx()
	defer tx.Discard()

	var conflict error
	for _, bm := range msgs {
		m := bm.Message
		if err := s.verify(m); err != nil {
			log.Warnw("store: dropping invalid message", "kind", m.Statement.Head.Kind.String(), "sender", m.SenderVerificationKey, "err", err.Error())
			continue
		}

		h := m.Statement.Body.ArtifactHash
		if _, err := tx.Get(messageKey(h)); err == nil {
			log.Debugw("store: dropping duplicate message", "kind", m.Statement.Head.Kind.String(), "hash", h.String())
			if err := s.setHighestExternalID(tx, bm.ExternalID); err != nil {
				return nil, fmt.Errorf("store: update highest id: %w", err)
			}
			continue
		}

		if err := s.record(tx, m); err != nil {
			if errors.Is(err, errs.ErrConflictingArtifact) {
				log.Errorw(err, fmt.Sprintf("store: halting on conflicting artifact (kind=%s sender=%s)", m.Statement.Head.Kind.String(), m.SenderVerificationKey))
				conflict = fmt.Errorf("store: record message: %w", err)
				break
			}
			return nil, fmt.Errorf("store: record message: %w", err)
		}
		if err := s.setHighestExternalID(tx, bm.ExternalID); err != nil {
			return nil, fmt.Errorf("store: update highest id: %w", err)
		}
		accepted = append(accepted, m)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit: %w", err)
	}

	for _, m := range accepted {
		s.cache.Add(m.Statement.Body.ArtifactHash, m)
	}
	if s.cfg == nil {
		if cfg, err := s.Configuration(); err == nil {
			s.cfg = &cfg
		}
	}
	if conflict != nil {
		return accepted, conflict
	}
	return accepted, nil
}

// UpdateStore is Ingest with no further side effects: it exists as a named
// entry point for the truncated-read path of spec SS4.7/SS5 ("a truncated
// get_messages response is folded into the store without triggering
// actions"), since Ingest never triggers actions itself — the datalog layer
// decides what to do with newly accepted messages on its own subsequent
// pass.
func (s *Store) UpdateStore(msgs []BoardMessage) error {
	_, err := s.Ingest(msgs)
	return err
}

// verify checks m's signature, artifact hash and sender authorisation
// against the store's Configuration (spec SS3). The Configuration message
// itself is special-cased: it is the one statement kind verifiable before
// any Configuration has been ingested.
func (s *Store) verify(m message.Message) error {
	if m.Statement.Head.Kind == message.StatementConfiguration {
		return s.verifyConfiguration(m)
	}
	cfg, err := s.Configuration()
	if err != nil {
		return fmt.Errorf("store: no configuration bootstrapped yet: %w", err)
	}
	if m.Statement.Body.ConfigurationHash != s.cfgHash {
		return fmt.Errorf("%w: statement scoped to a different configuration", errs.ErrVerification)
	}
	if m.Statement.Head.Kind == message.StatementBallots {
		if err := validateTrusteeSet(cfg, m.Statement.Body.TrusteeSet); err != nil {
			return err
		}
	}
	return m.Verify(cfg)
}

// validateTrusteeSet checks a Ballots statement's trustee selection against
// spec SS7's InvalidTrusteeSelection error: the set must have exactly
// cfg.Threshold entries, no duplicates, and every entry must be a trustee
// position in range.
func validateTrusteeSet(cfg artifact.Configuration, set []int) error {
	if len(set) != cfg.Threshold {
		return fmt.Errorf("%w: trustee set has %d entries, want threshold %d", errs.ErrInvalidTrusteeSelection, len(set), cfg.Threshold)
	}
	seen := make(map[int]bool, len(set))
	for _, p := range set {
		if p < 0 || p >= cfg.N() {
			return fmt.Errorf("%w: position %d out of range", errs.ErrInvalidTrusteeSelection, p)
		}
		if seen[p] {
			return fmt.Errorf("%w: duplicate position %d", errs.ErrInvalidTrusteeSelection, p)
		}
		seen[p] = true
	}
	return nil
}

// verifyConfiguration checks the bootstrap Configuration statement: its
// artifact bytes must decode and pass Configuration.Validate, its sender
// must be the manager named inside it, and it must be the first one this
// store accepts (spec SS4.4: "bootstrap is a one-shot transition").
func (s *Store) verifyConfiguration(m message.Message) error {
	if _, err := s.Configuration(); err == nil {
		return fmt.Errorf("%w: configuration already bootstrapped", errs.ErrVerification)
	}
	if m.ArtifactBytes == nil {
		return fmt.Errorf("%w: configuration message carries no artifact bytes", errs.ErrVerification)
	}
	if artifact.HashBytes(m.ArtifactBytes) != m.Statement.Body.ArtifactHash {
		return fmt.Errorf("%w: artifact hash mismatch", errs.ErrVerification)
	}
	var cfg artifact.Configuration
	if err := artifact.Decode(m.ArtifactBytes, &cfg); err != nil {
		return fmt.Errorf("%w: decode configuration: %v", errs.ErrVerification, err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	return m.Verify(cfg)
}

// record writes m and its indices into tx. A secondary index key that
// already points at a different artifact hash is a conflicting artifact
// (spec §4.4): the first writer wins and this message is rejected with
// errs.ErrConflictingArtifact rather than silently overwriting the index.
// Every conflict check runs before any write, so a rejected message leaves
// tx with no partial trace of itself: a later re-ingest of the same message
// sees no messageKey entry for it yet and re-raises the same conflict,
// which is what makes the halt durable across retries rather than a
// one-shot error that silently dedupes away next time.
func (s *Store) record(tx db.WriteTx, m message.Message) error {
	h := m.Statement.Body.ArtifactHash
	body := m.Statement.Body
	kind := m.Statement.Head.Kind
	isMix := kind == message.StatementMix || kind == message.StatementMixSigned

	posKey := positionKey(kind, body.Batch, body.Position)
	if err := checkIndexOnce(tx, posKey, h); err != nil {
		return err
	}
	var mKey []byte
	if isMix {
		mKey = mixKey(body.Batch, body.Sequence)
		if err := checkIndexOnce(tx, mKey, h); err != nil {
			return err
		}
	}

	raw, err := artifact.Encode(m)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if err := tx.Set(messageKey(h), raw); err != nil {
		return err
	}
	if err := tx.Set(posKey, h[:]); err != nil {
		return err
	}
	if isMix {
		if err := tx.Set(mKey, h[:]); err != nil {
			return err
		}
	}
	return nil
}

// checkIndexOnce reports a conflict if key already points at a different
// hash than h. It performs no write: callers check every index a message
// would touch before writing any of them.
func checkIndexOnce(tx db.WriteTx, key []byte, h artifact.Hash) error {
	if existing, err := tx.Get(key); err == nil && !bytes.Equal(existing, h[:]) {
		return fmt.Errorf("%w: index key %q already points to a different hash", errs.ErrConflictingArtifact, key)
	}
	return nil
}
