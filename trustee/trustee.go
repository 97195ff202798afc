// Package trustee implements the per-board runtime of spec §4.6: a Trustee
// owns a signing identity, a symmetric sealing key, and a Message Store for
// one board, and turns freshly-received board messages into the messages it
// should post back, by running store.Ingest -> predicate.Extract ->
// datalog.Dispatch -> action.Context.Execute in sequence on every Step.
package trustee

import (
	"errors"
	"fmt"

	"github.com/braidcore/braid/action"
	"github.com/braidcore/braid/artifact"
	"github.com/braidcore/braid/crypto/signatures/ethereum"
	"github.com/braidcore/braid/datalog"
	"github.com/braidcore/braid/errs"
	"github.com/braidcore/braid/log"
	"github.com/braidcore/braid/message"
	"github.com/braidcore/braid/predicate"
	"github.com/braidcore/braid/store"
)

// Config is the identity and local resources one Trustee needs (spec §6:
// "Trustee identity inputs").
type Config struct {
	Name       string
	Signer     *ethereum.Signer
	SealingKey []byte
	Position   int // 0..N-1 for a trustee, artifact.VerifierPosition for a verifier
	MaxMessage uint64
}

// Trustee is the per-board runtime of spec §4.6.
type Trustee struct {
	name  string
	store *store.Store
	ctx   *action.Context
}

// New wraps st as the Message Store of a Trustee running cfg's identity.
func New(cfg Config, st *store.Store) *Trustee {
	return &Trustee{
		name:  cfg.Name,
		store: st,
		ctx: &action.Context{
			Signer:     cfg.Signer,
			SealingKey: cfg.SealingKey,
			Position:   cfg.Position,
			Store:      st,
			MaxMessage: cfg.MaxMessage,
		},
	}
}

// Name returns this trustee's display name, for logging.
func (t *Trustee) Name() string { return t.name }

// GetLastExternalID is the watermark for the next remote fetch (spec §4.6).
func (t *Trustee) GetLastExternalID() uint64 {
	return t.store.HighestExternalID()
}

// UpdateStore ingests msgs without running predicate extraction or datalog
// dispatch, for the truncated-read path of spec §4.7/§5.
func (t *Trustee) UpdateStore(msgs []store.BoardMessage) error {
	return t.store.UpdateStore(msgs)
}

// Step ingests newMessages, derives the current predicate set, runs datalog
// dispatch, executes every derivable action, and returns the messages to
// post (spec §4.6). A VerificationError from one action does not abort the
// others: it is logged and that action is simply retried on the next Step
// once its preconditions still hold (spec §4.5: "the outer step() propagates
// the error... the store state is unchanged, so the action will be retried").
func (t *Trustee) Step(newMessages []store.BoardMessage) ([]message.Message, error) {
	if _, err := t.store.Ingest(newMessages); err != nil {
		if errors.Is(err, errs.ErrConflictingArtifact) {
			log.Errorw(err, fmt.Sprintf("trustee %s: halting board on conflicting artifact", t.name))
		}
		return nil, fmt.Errorf("trustee %s: ingest: %w", t.name, err)
	}

	set, err := predicate.Extract(t.store, t.ctx.Position)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			// No Configuration bootstrapped yet: nothing to dispatch.
			return nil, nil
		}
		return nil, fmt.Errorf("trustee %s: extract predicates: %w", t.name, err)
	}

	reqs, err := datalog.Dispatch(set)
	if err != nil {
		if errors.Is(err, datalog.ErrConflictingArtifact) {
			log.Errorw(err, fmt.Sprintf("trustee %s: halting board on conflicting artifact", t.name))
		}
		return nil, fmt.Errorf("trustee %s: dispatch: %w", t.name, err)
	}

	outgoing := make([]message.Message, 0, len(reqs))
	for _, req := range reqs {
		msg, err := t.ctx.Execute(req)
		if err != nil {
			if errors.Is(err, errs.ErrVerification) {
				log.Warnw("trustee: action verification failed, will retry", "trustee", t.name, "action", req.Kind.String(), "err", err.Error())
				continue
			}
			return nil, fmt.Errorf("trustee %s: action %s: %w", t.name, req.Kind.String(), err)
		}
		outgoing = append(outgoing, msg)
	}
	return outgoing, nil
}

// Configuration returns the bootstrap Configuration (spec §4.6: typed
// accessor).
func (t *Trustee) Configuration() (artifact.Configuration, error) {
	return t.store.Configuration()
}

// Channel returns the Channel artifact posted at position.
func (t *Trustee) Channel(position int) (artifact.Channel, error) {
	return t.store.GetChannel(position)
}

// Plaintexts returns the Plaintexts artifact posted for batch at position.
func (t *Trustee) Plaintexts(batch uint64, position int) (artifact.Plaintexts, error) {
	return t.store.GetPlaintexts(batch, position)
}
