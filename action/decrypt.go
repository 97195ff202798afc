package action

import (
	"fmt"
	"math/big"
	"runtime"

	"github.com/braidcore/braid/artifact"
	"github.com/braidcore/braid/crypto/ecc"
	"github.com/braidcore/braid/crypto/ecc/curves"
	"github.com/braidcore/braid/crypto/elgamal"
	"github.com/braidcore/braid/crypto/elgamal/dkg"
	"github.com/braidcore/braid/crypto/seal"
	"github.com/braidcore/braid/datalog"
	"github.com/braidcore/braid/errs"
	"github.com/braidcore/braid/message"
	"golang.org/x/sync/errgroup"
)

// ownPrivateShare recovers this trustee's aggregate DKG private share by
// unsealing its own Channel private key and decrypting, then summing, the
// share every sender encrypted to it (spec §3, §4.5). It is recomputed from
// committed store state on every call rather than cached, so
// ComputeDecryptionFactors stays a pure function of (store, local secrets).
func (c *Context) ownPrivateShare(cfgHash artifact.Hash, n int) (*big.Int, error) {
	channelMsg, err := c.Store.GetMessageByKind(message.StatementChannel, 0, c.Position)
	if err != nil {
		return nil, fmt.Errorf("%w: own channel not recorded", errs.ErrInternal)
	}
	channel, err := decodeChannel(channelMsg)
	if err != nil {
		return nil, err
	}
	channelPub, err := channel.PublicKeyPoint()
	if err != nil {
		return nil, err
	}
	privBytes, err := seal.Open(c.SealingKey, cfgHash[:], c.Position, channel.EncryptedChannelSK)
	if err != nil {
		return nil, fmt.Errorf("%w: open own channel secret: %v", errs.ErrInternal, err)
	}
	channelPriv := new(big.Int).SetBytes(privBytes)

	order := channelPub.Order()
	d := big.NewInt(0)
	for j := 0; j < n; j++ {
		shares, err := c.Store.GetShares(j)
		if err != nil {
			return nil, fmt.Errorf("%w: shares at position %d not recorded", errs.ErrInternal, j)
		}
		if c.Position >= len(shares.Encrypted) {
			return nil, fmt.Errorf("%w: shares at position %d carry no entry for position %d", errs.ErrInternal, j, c.Position)
		}
		share, err := elgamal.DecryptShare(channelPriv, channelPub, shares.Encrypted[c.Position])
		if err != nil {
			return nil, err
		}
		d.Add(d, share)
		d.Mod(d, order)
	}
	return d, nil
}

// finalMix returns the last link of batch's mix chain: the vector every
// decryption factor and the plaintext recovery both operate over.
func finalMix(st storeLike, batch uint64) (artifact.Mix, []int, error) {
	ballots, err := st.GetBallots(batch)
	if err != nil {
		return artifact.Mix{}, nil, err
	}
	mix, err := st.GetMixArtifact(batch, len(ballots.TrusteeSet))
	if err != nil {
		return artifact.Mix{}, nil, err
	}
	return mix, ballots.TrusteeSet, nil
}

// computeDecryptionFactors builds this trustee's partial decryption of
// batch's final mix output: one factor d_self*C1 per ciphertext, each with
// a Chaum-Pedersen proof of equality between this trustee's verification
// key and the factor (spec §3, §4.5). The proof reuses
// elgamal.BuildDecryptionProof with msg=0 so D=C2 in its derivation reduces
// to the factor itself: it proves knowledge of a shared discrete log
// between (G, verification key) and (C1, factor) without revealing the
// private share.
func (c *Context) computeDecryptionFactors(req datalog.Request) (message.Message, error) {
	cfg, err := c.Store.Configuration()
	if err != nil {
		return message.Message{}, err
	}
	d, err := c.ownPrivateShare(req.ConfigHash, cfg.N())
	if err != nil {
		return message.Message{}, err
	}
	dkgPk, err := batchPublicKey(c.Store, req.Batch)
	if err != nil {
		return message.Message{}, err
	}
	vkSelf, err := dkgPk.VerificationKeyPoint(c.Position)
	if err != nil {
		return message.Message{}, err
	}
	mix, _, err := finalMix(c.Store, req.Batch)
	if err != nil {
		return message.Message{}, err
	}

	factors := make([][]byte, len(mix.Ciphertexts))
	proofs := make([]elgamal.DecryptionProof, len(mix.Ciphertexts))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, ct := range mix.Ciphertexts {
		i, ct := i, ct
		g.Go(func() error {
			factorPt := ct.C1.New()
			factorPt.ScalarMult(ct.C1, d)
			proof, err := elgamal.BuildDecryptionProof(d, vkSelf, ct.C1, factorPt, big.NewInt(0))
			if err != nil {
				return err
			}
			factors[i] = factorPt.Marshal()
			proofs[i] = proof
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return message.Message{}, err
	}

	sharesHashes := make([]artifact.Hash, cfg.N())
	for j := 0; j < cfg.N(); j++ {
		msg, err := c.Store.GetMessageByKind(message.StatementShares, 0, j)
		if err != nil {
			return message.Message{}, fmt.Errorf("%w: shares at position %d not recorded", errs.ErrInternal, j)
		}
		sharesHashes[j] = msg.Statement.Body.ArtifactHash
	}

	df := artifact.DecryptionFactors{
		Curve:      cfg.Curve,
		Batch:      req.Batch,
		SourceHash: req.SourceHash,
		SharesHash: sharesHashes,
		Factors:    factors,
		Proofs:     proofs,
	}
	raw, hash, err := artifact.ArtifactHash(df)
	if err != nil {
		return message.Message{}, err
	}
	body := message.StatementBody{ArtifactHash: hash, ConfigurationHash: req.ConfigHash, Batch: req.Batch, SourceHash: req.SourceHash}
	return c.build(cfg, message.StatementDecryptionFactors, body, raw)
}

// decodeFactorPoint unmarshals one DecryptionFactors.Factors entry.
func decodeFactorPoint(curve string, b []byte) (ecc.Point, error) {
	if !curves.IsValid(curve) {
		return nil, fmt.Errorf("%w: unsupported curve %q", errs.ErrInternal, curve)
	}
	p := curves.New(curve)
	if err := p.Unmarshal(b); err != nil {
		return nil, fmt.Errorf("%w: unmarshal decryption factor: %v", errs.ErrInternal, err)
	}
	return p, nil
}

// gatherDecryptionPartials collects, per ciphertext position in the final
// mix, the map of trustee-id (position+1) -> partial decryption point,
// across every trustee in selected, verifying each Chaum-Pedersen proof
// against that trustee's verification key before trusting its factor (spec
// §4.5/§9: verify before combining).
func gatherDecryptionPartials(st storeLike, cfg artifact.Configuration, dkgPk artifact.DkgPublicKey, batch uint64, selected []int, mix artifact.Mix) ([]map[int]ecc.Point, []artifact.Hash, error) {
	partials := make([]map[int]ecc.Point, len(mix.Ciphertexts))
	for i := range partials {
		partials[i] = map[int]ecc.Point{}
	}
	factorHashes := make([]artifact.Hash, len(selected))

	for idx, p := range selected {
		msg, err := st.GetMessageByKind(message.StatementDecryptionFactors, batch, p)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: decryption factors at position %d not recorded", errs.ErrInternal, p)
		}
		factorHashes[idx] = msg.Statement.Body.ArtifactHash

		df, err := st.GetDecryptionFactors(batch, p)
		if err != nil {
			return nil, nil, err
		}
		if len(df.Factors) != len(mix.Ciphertexts) || len(df.Proofs) != len(mix.Ciphertexts) {
			return nil, nil, fmt.Errorf("%w: decryption factors at position %d have wrong length", errs.ErrVerification, p)
		}
		vk, err := dkgPk.VerificationKeyPoint(p)
		if err != nil {
			return nil, nil, err
		}
		for i, ct := range mix.Ciphertexts {
			pt, err := decodeFactorPoint(cfg.Curve, df.Factors[i])
			if err != nil {
				return nil, nil, err
			}
			if err := elgamal.VerifyDecryptionProof(vk, ct.C1, pt, big.NewInt(0), df.Proofs[i]); err != nil {
				return nil, nil, fmt.Errorf("%w: decryption factor %d at position %d: %v", errs.ErrVerification, i, p, err)
			}
			partials[i][p+1] = pt
		}
	}
	return partials, factorHashes, nil
}

// computePlaintexts combines the selected trustees' decryption factors into
// the batch's plaintext vector (spec §3, §4.5). Only the first trustee in
// the selected set performs this action (spec §4.4's decryptPhase).
func (c *Context) computePlaintexts(req datalog.Request) (message.Message, error) {
	cfg, err := c.Store.Configuration()
	if err != nil {
		return message.Message{}, err
	}
	ballots, err := c.Store.GetBallots(req.Batch)
	if err != nil {
		return message.Message{}, err
	}
	mix, selected, err := finalMix(c.Store, req.Batch)
	if err != nil {
		return message.Message{}, err
	}
	dkgPk, err := batchPublicKey(c.Store, req.Batch)
	if err != nil {
		return message.Message{}, err
	}

	partials, factorHashes, err := gatherDecryptionPartials(c.Store, cfg, dkgPk, req.Batch, selected, mix)
	if err != nil {
		return message.Message{}, err
	}
	participantIDs := make([]int, len(selected))
	for i, p := range selected {
		participantIDs[i] = p + 1
	}

	values := make([]*big.Int, len(mix.Ciphertexts))
	for i, ct := range mix.Ciphertexts {
		m, err := dkg.CombinePartialDecryptions(ct.C2, partials[i], participantIDs, c.MaxMessage)
		if err != nil {
			return message.Message{}, fmt.Errorf("%w: combine ciphertext %d: %v", errs.ErrVerification, i, err)
		}
		values[i] = m
	}

	pl := artifact.Plaintexts{
		Batch:             req.Batch,
		ConfigurationHash: req.ConfigHash,
		DkgPublicKeyHash:  ballots.DkgPublicKey,
		SourceHash:        req.SourceHash,
		DecryptionFactors: factorHashes,
		Values:            values,
	}
	raw, hash, err := artifact.ArtifactHash(pl)
	if err != nil {
		return message.Message{}, err
	}
	body := message.StatementBody{
		ArtifactHash:           hash,
		ConfigurationHash:      req.ConfigHash,
		Batch:                  req.Batch,
		SourceHash:             req.SourceHash,
		DecryptionFactorHashes: factorHashes,
	}
	return c.build(cfg, message.StatementPlaintexts, body, raw)
}

// signPlaintexts re-verifies the agreed Plaintexts artifact's combination
// against the selected trustees' decryption factors before attesting
// (spec §4.5/§9: verify before sign).
func (c *Context) signPlaintexts(req datalog.Request) (message.Message, error) {
	cfg, err := c.Store.Configuration()
	if err != nil {
		return message.Message{}, err
	}
	mix, selected, err := finalMix(c.Store, req.Batch)
	if err != nil {
		return message.Message{}, err
	}
	dkgPk, err := batchPublicKey(c.Store, req.Batch)
	if err != nil {
		return message.Message{}, err
	}
	msg, err := c.Store.GetMessageByHash(req.TargetHash)
	if err != nil {
		return message.Message{}, fmt.Errorf("%w: plaintexts %s not recorded", errs.ErrInternal, req.TargetHash)
	}
	a, err := artifact.DecodeByKind(artifact.KindPlaintexts, msg.ArtifactBytes)
	if err != nil {
		return message.Message{}, fmt.Errorf("%w: decode plaintexts: %v", errs.ErrInternal, err)
	}
	pl, ok := a.(artifact.Plaintexts)
	if !ok {
		return message.Message{}, fmt.Errorf("%w: decoded plaintexts has unexpected type %T", errs.ErrInternal, a)
	}
	if len(pl.Values) != len(mix.Ciphertexts) {
		return message.Message{}, fmt.Errorf("%w: plaintexts length mismatches final mix", errs.ErrVerification)
	}

	partials, _, err := gatherDecryptionPartials(c.Store, cfg, dkgPk, req.Batch, selected, mix)
	if err != nil {
		return message.Message{}, err
	}
	participantIDs := make([]int, len(selected))
	for i, p := range selected {
		participantIDs[i] = p + 1
	}
	for i, ct := range mix.Ciphertexts {
		if err := dkg.VerifyCombinedDecryption(ct.C2, partials[i], participantIDs, pl.Values[i]); err != nil {
			return message.Message{}, fmt.Errorf("%w: plaintext %d: %v", errs.ErrVerification, i, err)
		}
	}

	body := message.StatementBody{ArtifactHash: req.TargetHash, ConfigurationHash: req.ConfigHash, Batch: req.Batch}
	return c.build(cfg, message.StatementPlaintextsSigned, body, nil)
}
