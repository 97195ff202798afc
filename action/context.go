// Package action implements the eleven actions of datalog.Kind (spec §4.5's
// ten plus SignConfiguration): the functions
// that turn a datalog.Request into a signed message.Message by running the
// cryptographic primitives of crypto/elgamal, crypto/elgamal/dkg,
// crypto/schnorr, crypto/shuffle and crypto/seal against committed store
// state. A "compute" action derives and posts a new artifact; a "sign"
// action re-verifies an already-posted artifact and posts an attestation.
// Per spec §4.5/§9, a failed verification returns errs.ErrVerification and
// produces no message — the caller retries on its next step() tick.
package action

import (
	"fmt"
	"time"

	"github.com/braidcore/braid/artifact"
	"github.com/braidcore/braid/crypto/signatures/ethereum"
	"github.com/braidcore/braid/datalog"
	"github.com/braidcore/braid/errs"
	"github.com/braidcore/braid/message"
	"github.com/braidcore/braid/store"
)

// Context is the per-trustee state an action needs: its signing identity,
// its symmetric channel-sealing key, its position in the cohort, the
// Message Store it reads committed artifacts from, and the upper bound for
// discrete-log plaintext recovery (spec §3: ballot values are small
// integers, not full-width scalars).
type Context struct {
	Signer     *ethereum.Signer
	SealingKey []byte
	Position   int
	Store      *store.Store
	MaxMessage uint64
}

// Execute runs the action req.Kind asks for and returns the message to post
// on success.
func (c *Context) Execute(req datalog.Request) (message.Message, error) {
	switch req.Kind {
	case datalog.SignConfiguration:
		return c.signConfiguration(req)
	case datalog.GenChannel:
		return c.genChannel(req)
	case datalog.SignChannels:
		return c.signChannels(req)
	case datalog.ComputeShares:
		return c.computeShares(req)
	case datalog.ComputePk:
		return c.computePk(req)
	case datalog.SignPk:
		return c.signPk(req)
	case datalog.ComputeMix:
		return c.computeMix(req)
	case datalog.SignMix:
		return c.signMix(req)
	case datalog.ComputeDecryptionFactors:
		return c.computeDecryptionFactors(req)
	case datalog.ComputePlaintexts:
		return c.computePlaintexts(req)
	case datalog.SignPlaintexts:
		return c.signPlaintexts(req)
	default:
		return message.Message{}, fmt.Errorf("%w: unknown action kind %s", errs.ErrInternal, req.Kind)
	}
}

// build signs a fresh Statement of kind, carrying body (with Position
// filled in) and artifactBytes (nil for a "signed" attestation).
func (c *Context) build(cfg artifact.Configuration, kind message.StatementKind, body message.StatementBody, artifactBytes []byte) (message.Message, error) {
	body.Position = c.Position
	stmt := message.Statement{
		Head: message.StatementHead{
			Kind:          kind,
			Timestamp:     time.Now().Unix(),
			ElectionID:    cfg.ElectionID,
			SchemaVersion: message.SchemaVersion,
		},
		Body: body,
	}
	return message.Sign(c.Signer, stmt, artifactBytes)
}
