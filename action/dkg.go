package action

import (
	"fmt"
	"math/big"

	"github.com/braidcore/braid/artifact"
	"github.com/braidcore/braid/crypto/ecc"
	"github.com/braidcore/braid/crypto/ecc/curves"
	"github.com/braidcore/braid/crypto/elgamal"
	"github.com/braidcore/braid/crypto/elgamal/dkg"
	"github.com/braidcore/braid/crypto/schnorr"
	"github.com/braidcore/braid/crypto/seal"
	"github.com/braidcore/braid/datalog"
	"github.com/braidcore/braid/errs"
	"github.com/braidcore/braid/message"
)

// channelLabel binds a Channel's Schnorr proof to the DKG step (spec §4.5
// only ever runs one channel round per election, sequence 0).
func channelLabel() []byte { return schnorr.Label(0, "channel") }

// genChannel creates this trustee's ElGamal channel key pair, proves
// knowledge of the private key, seals it under SealingKey and posts the
// resulting Channel artifact (spec §3, §4.5).
func (c *Context) genChannel(req datalog.Request) (message.Message, error) {
	cfg, err := c.Store.Configuration()
	if err != nil {
		return message.Message{}, err
	}
	curve := curves.New(cfg.Curve)
	pubKey, privKey, err := elgamal.GenerateKey(curve)
	if err != nil {
		return message.Message{}, err
	}
	proof, err := schnorr.Prove(pubKey, privKey, channelLabel())
	if err != nil {
		return message.Message{}, err
	}
	sealed, err := seal.Seal(c.SealingKey, req.ConfigHash[:], c.Position, privKey.Bytes())
	if err != nil {
		return message.Message{}, err
	}

	channel := artifact.Channel{
		Curve:              cfg.Curve,
		PublicKey:          pubKey.Marshal(),
		Proof:              proof,
		EncryptedChannelSK: sealed,
	}
	raw, hash, err := artifact.ArtifactHash(channel)
	if err != nil {
		return message.Message{}, err
	}
	body := message.StatementBody{ArtifactHash: hash, ConfigurationHash: req.ConfigHash}
	return c.build(cfg, message.StatementChannel, body, raw)
}

// signChannels attests to the full N-vector of posted Channel hashes, after
// checking every channel's Schnorr proof verifies (spec §4.5: "SignChannels
// tolerates no unproven channel").
func (c *Context) signChannels(req datalog.Request) (message.Message, error) {
	cfg, err := c.Store.Configuration()
	if err != nil {
		return message.Message{}, err
	}
	hashes := make([]artifact.Hash, cfg.N())
	for p := 0; p < cfg.N(); p++ {
		msg, err := c.Store.GetMessageByKind(message.StatementChannel, 0, p)
		if err != nil {
			return message.Message{}, fmt.Errorf("%w: channel at position %d not recorded", errs.ErrInternal, p)
		}
		channel, err := decodeChannel(msg)
		if err != nil {
			return message.Message{}, err
		}
		pk, err := channel.PublicKeyPoint()
		if err != nil {
			return message.Message{}, fmt.Errorf("%w: channel %d public key: %v", errs.ErrVerification, p, err)
		}
		if err := schnorr.Verify(pk, channel.Proof, channelLabel()); err != nil {
			return message.Message{}, fmt.Errorf("%w: channel %d proof: %v", errs.ErrVerification, p, err)
		}
		hashes[p] = msg.Statement.Body.ArtifactHash
	}
	body := message.StatementBody{ConfigurationHash: req.ConfigHash, ChannelHashes: hashes}
	return c.build(cfg, message.StatementChannelsSigned, body, nil)
}

// computeShares generates this trustee's degree-(threshold-1) Feldman VSS
// polynomial and posts a Shares artifact: one masked share per recipient
// position, encrypted under that recipient's Channel public key (spec §3,
// §4.5). Participant IDs are 1-indexed (position+1) to keep x=0 reserved
// for the shared secret, per crypto/elgamal/dkg's convention.
func (c *Context) computeShares(req datalog.Request) (message.Message, error) {
	cfg, err := c.Store.Configuration()
	if err != nil {
		return message.Message{}, err
	}
	n := cfg.N()
	curve := curves.New(cfg.Curve)
	participants := make([]int, n)
	for i := range participants {
		participants[i] = i + 1
	}
	p := dkg.NewParticipant(c.Position+1, cfg.Threshold, participants, curve)
	p.GenerateSecretPolynomial()
	p.ComputeShares()

	encrypted := make([]elgamal.ShareCiphertext, n)
	channelHashes := make([]artifact.Hash, n)
	for recipient := 0; recipient < n; recipient++ {
		msg, err := c.Store.GetMessageByKind(message.StatementChannel, 0, recipient)
		if err != nil {
			return message.Message{}, fmt.Errorf("%w: channel at position %d not recorded", errs.ErrInternal, recipient)
		}
		channel, err := decodeChannel(msg)
		if err != nil {
			return message.Message{}, err
		}
		recipientPk, err := channel.PublicKeyPoint()
		if err != nil {
			return message.Message{}, err
		}
		enc, err := elgamal.EncryptShare(recipientPk, p.SecretShares[recipient+1])
		if err != nil {
			return message.Message{}, err
		}
		encrypted[recipient] = enc
		channelHashes[recipient] = msg.Statement.Body.ArtifactHash
	}

	commitments := make([][]byte, len(p.PublicCoeffs))
	for i, pt := range p.PublicCoeffs {
		commitments[i] = pt.Marshal()
	}

	shares := artifact.Shares{Curve: cfg.Curve, Commitments: commitments, Encrypted: encrypted, ChannelHash: channelHashes}
	raw, hash, err := artifact.ArtifactHash(shares)
	if err != nil {
		return message.Message{}, err
	}
	body := message.StatementBody{ArtifactHash: hash, ConfigurationHash: req.ConfigHash}
	return c.build(cfg, message.StatementShares, body, raw)
}

// derivePublicKeyArtifact aggregates the N posted Shares' Feldman
// commitments into the election public key and the per-position
// verification keys (spec §3): PublicKey = sum of every sender's
// zeroth-coefficient commitment; VerificationKeys[j] = sum over senders of
// their commitment polynomial evaluated at x=j+1. Both are derivable from
// already-public data, with no secret material involved.
func derivePublicKeyArtifact(cfg artifact.Configuration, st storeLike) (artifact.DkgPublicKey, []byte, artifact.Hash, error) {
	n := cfg.N()
	curve := curves.New(cfg.Curve)
	order := curve.Order()

	sharesHashes := make([]artifact.Hash, n)
	channelHashes := make([]artifact.Hash, n)
	allCommitments := make([][]ecc.Point, n)
	for i := 0; i < n; i++ {
		sharesMsg, err := st.GetMessageByKind(message.StatementShares, 0, i)
		if err != nil {
			return artifact.DkgPublicKey{}, nil, artifact.Hash{}, fmt.Errorf("%w: shares at position %d not recorded", errs.ErrInternal, i)
		}
		sharesHashes[i] = sharesMsg.Statement.Body.ArtifactHash
		shares, err := st.GetShares(i)
		if err != nil {
			return artifact.DkgPublicKey{}, nil, artifact.Hash{}, err
		}
		pts, err := shares.CommitmentPoints()
		if err != nil {
			return artifact.DkgPublicKey{}, nil, artifact.Hash{}, err
		}
		allCommitments[i] = pts
		channelMsg, err := st.GetMessageByKind(message.StatementChannel, 0, i)
		if err != nil {
			return artifact.DkgPublicKey{}, nil, artifact.Hash{}, fmt.Errorf("%w: channel at position %d not recorded", errs.ErrInternal, i)
		}
		channelHashes[i] = channelMsg.Statement.Body.ArtifactHash
	}

	pk := curve.New()
	pk.SetZero()
	for i := 0; i < n; i++ {
		pk.Add(pk, allCommitments[i][0])
	}

	verificationKeys := make([][]byte, n)
	for j := 0; j < n; j++ {
		x := big.NewInt(int64(j + 1))
		vk := curve.New()
		vk.SetZero()
		for i := 0; i < n; i++ {
			term := curve.New()
			term.SetZero()
			xPower := big.NewInt(1)
			for _, coeff := range allCommitments[i] {
				t := curve.New()
				t.ScalarMult(coeff, xPower)
				term.Add(term, t)
				xPower = new(big.Int).Mod(new(big.Int).Mul(xPower, x), order)
			}
			vk.Add(vk, term)
		}
		verificationKeys[j] = vk.Marshal()
	}

	dkgPk := artifact.DkgPublicKey{
		Curve:            cfg.Curve,
		PublicKey:        pk.Marshal(),
		VerificationKeys: verificationKeys,
		SharesHashes:     sharesHashes,
		ChannelsHashes:   channelHashes,
	}
	raw, hash, err := artifact.ArtifactHash(dkgPk)
	if err != nil {
		return artifact.DkgPublicKey{}, nil, artifact.Hash{}, err
	}
	return dkgPk, raw, hash, nil
}

// computePk derives and posts this trustee's DkgPublicKey (spec §4.5; every
// honest trustee independently derives the identical artifact).
func (c *Context) computePk(req datalog.Request) (message.Message, error) {
	cfg, err := c.Store.Configuration()
	if err != nil {
		return message.Message{}, err
	}
	_, raw, hash, err := derivePublicKeyArtifact(cfg, c.Store)
	if err != nil {
		return message.Message{}, err
	}
	body := message.StatementBody{ArtifactHash: hash, ConfigurationHash: req.ConfigHash}
	return c.build(cfg, message.StatementPublicKey, body, raw)
}

// signPk re-derives the DkgPublicKey independently and attests to it only
// if the recomputed hash matches the one the dispatcher found agreement on
// (spec §4.5/§9: a trustee never attests to an artifact it has not
// reproduced itself).
func (c *Context) signPk(req datalog.Request) (message.Message, error) {
	cfg, err := c.Store.Configuration()
	if err != nil {
		return message.Message{}, err
	}
	_, _, hash, err := derivePublicKeyArtifact(cfg, c.Store)
	if err != nil {
		return message.Message{}, err
	}
	if hash != req.TargetHash {
		return message.Message{}, fmt.Errorf("%w: recomputed public key %s does not match agreed %s", errs.ErrVerification, hash, req.TargetHash)
	}
	body := message.StatementBody{ArtifactHash: req.TargetHash, ConfigurationHash: req.ConfigHash}
	return c.build(cfg, message.StatementPublicKeySigned, body, nil)
}

func decodeChannel(msg message.Message) (artifact.Channel, error) {
	a, err := artifact.DecodeByKind(artifact.KindChannel, msg.ArtifactBytes)
	if err != nil {
		return artifact.Channel{}, fmt.Errorf("%w: decode channel: %v", errs.ErrInternal, err)
	}
	channel, ok := a.(artifact.Channel)
	if !ok {
		return artifact.Channel{}, fmt.Errorf("%w: decoded channel has unexpected type %T", errs.ErrInternal, a)
	}
	return channel, nil
}
