package store

import (
	"fmt"

	"github.com/braidcore/braid/artifact"
	"github.com/braidcore/braid/errs"
	"github.com/braidcore/braid/message"
)

// GetMessageByHash returns the full Message whose statement asserts
// ArtifactHash h, checking the in-process cache before the backing db.
func (s *Store) GetMessageByHash(h artifact.Hash) (message.Message, error) {
	if m, ok := s.cache.Get(h); ok {
		return m, nil
	}
	raw, err := s.db.Get(messageKey(h))
	if err != nil {
		return message.Message{}, fmt.Errorf("%w: message %s", errs.ErrNotFound, h)
	}
	var m message.Message
	if err := artifact.Decode(raw, &m); err != nil {
		return message.Message{}, fmt.Errorf("%w: decode message %s: %v", errs.ErrInternal, h, err)
	}
	s.cache.Add(h, m)
	return m, nil
}

// GetMessageByKind returns the compute message of the given kind for
// (batch, position), e.g. the Channel a trustee posted at its position, or
// the Configuration posted by the manager at artifact.ManagerPosition with
// batch 0.
func (s *Store) GetMessageByKind(kind message.StatementKind, batch uint64, position int) (message.Message, error) {
	raw, err := s.db.Get(positionKey(kind, batch, position))
	if err != nil {
		return message.Message{}, fmt.Errorf("%w: %s batch %d position %d", errs.ErrNotFound, kind, batch, position)
	}
	var h artifact.Hash
	copy(h[:], raw)
	return s.GetMessageByHash(h)
}

// GetMix returns the mix message at (batch, sequence).
func (s *Store) GetMix(batch uint64, sequence int) (message.Message, error) {
	raw, err := s.db.Get(mixKey(batch, sequence))
	if err != nil {
		return message.Message{}, fmt.Errorf("%w: mix batch %d sequence %d", errs.ErrNotFound, batch, sequence)
	}
	var h artifact.Hash
	copy(h[:], raw)
	return s.GetMessageByHash(h)
}

// GetChannel returns trustee position's posted Channel artifact.
func (s *Store) GetChannel(position int) (artifact.Channel, error) {
	msg, err := s.GetMessageByKind(message.StatementChannel, 0, position)
	if err != nil {
		return artifact.Channel{}, err
	}
	return decodeArtifact[artifact.Channel](msg, artifact.KindChannel)
}

// GetShares returns trustee position's posted Shares artifact.
func (s *Store) GetShares(position int) (artifact.Shares, error) {
	msg, err := s.GetMessageByKind(message.StatementShares, 0, position)
	if err != nil {
		return artifact.Shares{}, err
	}
	return decodeArtifact[artifact.Shares](msg, artifact.KindShares)
}

// GetDkgPublicKey returns trustee position's computed DkgPublicKey artifact
// (every honest trustee should compute and post an identical one; spec
// SS4.4 only requires one to be posted before PublicKeySignedAll can fire,
// but each trustee tracks its own for cross-checking).
func (s *Store) GetDkgPublicKey(position int) (artifact.DkgPublicKey, error) {
	msg, err := s.GetMessageByKind(message.StatementPublicKey, 0, position)
	if err != nil {
		return artifact.DkgPublicKey{}, err
	}
	return decodeArtifact[artifact.DkgPublicKey](msg, artifact.KindDkgPublicKey)
}

// GetBallots returns the manager-posted Ballots artifact for batch.
func (s *Store) GetBallots(batch uint64) (artifact.Ballots, error) {
	msg, err := s.GetMessageByKind(message.StatementBallots, batch, artifact.ManagerPosition)
	if err != nil {
		return artifact.Ballots{}, err
	}
	return decodeArtifact[artifact.Ballots](msg, artifact.KindBallots)
}

// GetMixArtifact returns the Mix artifact at (batch, sequence).
func (s *Store) GetMixArtifact(batch uint64, sequence int) (artifact.Mix, error) {
	msg, err := s.GetMix(batch, sequence)
	if err != nil {
		return artifact.Mix{}, err
	}
	return decodeArtifact[artifact.Mix](msg, artifact.KindMix)
}

// GetDecryptionFactors returns trustee position's DecryptionFactors artifact
// for batch.
func (s *Store) GetDecryptionFactors(batch uint64, position int) (artifact.DecryptionFactors, error) {
	msg, err := s.GetMessageByKind(message.StatementDecryptionFactors, batch, position)
	if err != nil {
		return artifact.DecryptionFactors{}, err
	}
	return decodeArtifact[artifact.DecryptionFactors](msg, artifact.KindDecryptionFactors)
}

// GetPlaintexts returns trustee position's Plaintexts artifact for batch.
func (s *Store) GetPlaintexts(batch uint64, position int) (artifact.Plaintexts, error) {
	msg, err := s.GetMessageByKind(message.StatementPlaintexts, batch, position)
	if err != nil {
		return artifact.Plaintexts{}, err
	}
	return decodeArtifact[artifact.Plaintexts](msg, artifact.KindPlaintexts)
}

// CountSigned returns how many distinct positions (trustees, plus the
// verifier if counted) have posted a "Signed" attestation of target with the
// given signed statement kind, counting only the positions listed.
// predicate.Extract and the datalog layer do not call it; they read
// attestations through ListPositions and GetMessageByKind.
func (s *Store) CountSigned(signedKind message.StatementKind, batch uint64, target artifact.Hash, positions []int) int {
	n := 0
	for _, p := range positions {
		msg, err := s.GetMessageByKind(signedKind, batch, p)
		if err != nil {
			continue
		}
		if msg.Statement.Body.ArtifactHash == target {
			n++
		}
	}
	return n
}
