package action

import (
	"fmt"

	"github.com/braidcore/braid/artifact"
	"github.com/braidcore/braid/crypto/elgamal"
	"github.com/braidcore/braid/crypto/schnorr"
	"github.com/braidcore/braid/crypto/shuffle"
	"github.com/braidcore/braid/datalog"
	"github.com/braidcore/braid/errs"
	"github.com/braidcore/braid/message"
)

// mixLabel binds a mix's shuffle proof to its batch and sequence (spec
// §4.5: label(batch, "mix"+k)).
func mixLabel(batch uint64, sequence int) []byte {
	return schnorr.Label(batch, fmt.Sprintf("mix%d", sequence))
}

// mixInput returns the ciphertext vector the sequence-th mix of batch
// shuffles: the Ballots vector for sequence 1, the prior mix's output
// otherwise.
func mixInput(st storeLike, batch uint64, sequence int) ([]elgamal.Ciphertext, error) {
	if sequence == 1 {
		ballots, err := st.GetBallots(batch)
		if err != nil {
			return nil, err
		}
		return ballots.Ciphertexts, nil
	}
	prev, err := st.GetMixArtifact(batch, sequence-1)
	if err != nil {
		return nil, err
	}
	return prev.Ciphertexts, nil
}

// batchPublicKey resolves the DkgPublicKey point a batch's Ballots were
// encrypted under.
func batchPublicKey(st storeLike, batch uint64) (artifact.DkgPublicKey, error) {
	ballots, err := st.GetBallots(batch)
	if err != nil {
		return artifact.DkgPublicKey{}, err
	}
	msg, err := st.GetMessageByHash(ballots.DkgPublicKey)
	if err != nil {
		return artifact.DkgPublicKey{}, fmt.Errorf("%w: dkg public key %s not recorded", errs.ErrInternal, ballots.DkgPublicKey)
	}
	a, err := artifact.DecodeByKind(artifact.KindDkgPublicKey, msg.ArtifactBytes)
	if err != nil {
		return artifact.DkgPublicKey{}, fmt.Errorf("%w: decode dkg public key: %v", errs.ErrInternal, err)
	}
	dkgPk, ok := a.(artifact.DkgPublicKey)
	if !ok {
		return artifact.DkgPublicKey{}, fmt.Errorf("%w: decoded dkg public key has unexpected type %T", errs.ErrInternal, a)
	}
	return dkgPk, nil
}

// computeMix shuffles and re-encrypts req.Sequence's input vector under the
// batch's DkgPublicKey and posts the resulting Mix artifact with a shuffle
// proof (spec §3, §4.5).
func (c *Context) computeMix(req datalog.Request) (message.Message, error) {
	cfg, err := c.Store.Configuration()
	if err != nil {
		return message.Message{}, err
	}
	dkgPk, err := batchPublicKey(c.Store, req.Batch)
	if err != nil {
		return message.Message{}, err
	}
	pubKey, err := dkgPk.PublicKeyPoint()
	if err != nil {
		return message.Message{}, err
	}
	input, err := mixInput(c.Store, req.Batch, req.Sequence)
	if err != nil {
		return message.Message{}, err
	}

	output, proof, err := shuffle.Shuffle(pubKey, input, mixLabel(req.Batch, req.Sequence))
	if err != nil {
		return message.Message{}, err
	}

	mix := artifact.Mix{
		Curve:       cfg.Curve,
		Batch:       req.Batch,
		Sequence:    req.Sequence,
		SourceHash:  req.SourceHash,
		Ciphertexts: output,
		Proof:       proof,
	}
	raw, hash, err := artifact.ArtifactHash(mix)
	if err != nil {
		return message.Message{}, err
	}
	body := message.StatementBody{
		ArtifactHash:      hash,
		ConfigurationHash: req.ConfigHash,
		Batch:             req.Batch,
		Sequence:          req.Sequence,
		SourceHash:        req.SourceHash,
	}
	return c.build(cfg, message.StatementMix, body, raw)
}

// signMix re-verifies the mix's shuffle proof against its claimed input
// before attesting to it (spec §4.5/§9: verify before sign).
func (c *Context) signMix(req datalog.Request) (message.Message, error) {
	cfg, err := c.Store.Configuration()
	if err != nil {
		return message.Message{}, err
	}
	dkgPk, err := batchPublicKey(c.Store, req.Batch)
	if err != nil {
		return message.Message{}, err
	}
	pubKey, err := dkgPk.PublicKeyPoint()
	if err != nil {
		return message.Message{}, err
	}
	input, err := mixInput(c.Store, req.Batch, req.Sequence)
	if err != nil {
		return message.Message{}, err
	}
	mix, err := c.Store.GetMixArtifact(req.Batch, req.Sequence)
	if err != nil {
		return message.Message{}, err
	}
	if err := shuffle.Verify(pubKey, input, mix.Ciphertexts, mix.Proof, mixLabel(req.Batch, req.Sequence)); err != nil {
		return message.Message{}, fmt.Errorf("%w: mix %d/%d: %v", errs.ErrVerification, req.Batch, req.Sequence, err)
	}

	body := message.StatementBody{
		ArtifactHash:      req.TargetHash,
		ConfigurationHash: req.ConfigHash,
		Batch:             req.Batch,
		Sequence:          req.Sequence,
		SourceHash:        req.SourceHash,
	}
	return c.build(cfg, message.StatementMixSigned, body, nil)
}

// storeLike is the subset of *store.Store the shuffle/decrypt helpers need;
// kept narrow so they stay testable against a fake.
type storeLike interface {
	Configuration() (artifact.Configuration, error)
	GetBallots(batch uint64) (artifact.Ballots, error)
	GetMixArtifact(batch uint64, sequence int) (artifact.Mix, error)
	GetMessageByHash(h artifact.Hash) (message.Message, error)
	GetMessageByKind(kind message.StatementKind, batch uint64, position int) (message.Message, error)
	GetShares(position int) (artifact.Shares, error)
	GetChannel(position int) (artifact.Channel, error)
	GetDecryptionFactors(batch uint64, position int) (artifact.DecryptionFactors, error)
}
