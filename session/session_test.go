package session

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"

	"github.com/braidcore/braid/artifact"
	"github.com/braidcore/braid/board"
	"github.com/braidcore/braid/crypto/signatures/ethereum"
	"github.com/braidcore/braid/db"
	"github.com/braidcore/braid/db/inmemory"
	"github.com/braidcore/braid/message"
	"github.com/braidcore/braid/store"
	"github.com/braidcore/braid/trustee"
)

// fakeBoard is an in-process stand-in for the bulletin board transport
// (spec §6), backed by a single ordered slice per board name. It exists
// only to drive SessionSet.tick deterministically in a test, not as a
// transport implementation.
type fakeBoard struct {
	byName map[string][]board.Envelope
}

func newFakeBoard() *fakeBoard { return &fakeBoard{byName: make(map[string][]board.Envelope)} }

func (b *fakeBoard) GetMessages(_ context.Context, name string, lastID uint64) (board.Page, error) {
	envs := b.byName[name]
	out := make([]board.Envelope, 0, len(envs))
	for _, e := range envs {
		if e.ID > lastID {
			out = append(out, e)
		}
	}
	return board.Page{Messages: out}, nil
}

func (b *fakeBoard) PutMessages(_ context.Context, name string, msgs []board.Envelope) error {
	for _, m := range msgs {
		m.ID = uint64(len(b.byName[name]) + 1)
		b.byName[name] = append(b.byName[name], m)
	}
	return nil
}

func (b *fakeBoard) GetBoards(_ context.Context) ([]string, error) {
	names := make([]string, 0, len(b.byName))
	for name := range b.byName {
		names = append(names, name)
	}
	return names, nil
}

func (b *fakeBoard) GetMessagesMulti(ctx context.Context, last map[string]uint64) (map[string]board.Page, error) {
	out := make(map[string]board.Page, len(last))
	for name, lastID := range last {
		page, err := b.GetMessages(ctx, name, lastID)
		if err != nil {
			return nil, err
		}
		out[name] = page
	}
	return out, nil
}

func (b *fakeBoard) PutMessagesMulti(ctx context.Context, outgoing map[string][]board.Envelope) error {
	for name, msgs := range outgoing {
		if err := b.PutMessages(ctx, name, msgs); err != nil {
			return err
		}
	}
	return nil
}

// TestSessionSetDrivesTrusteeToPublicKey wires one SessionSet per trustee
// against a shared fakeBoard and ticks both manually until the cohort
// converges on a signed DkgPublicKey, exercising the whole poll/step/post
// cycle of spec §4.7 rather than Trustee.Step in isolation.
func TestSessionSetDrivesTrusteeToPublicKey(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	const boardName = "election-1"

	manager, err := ethereum.NewSigner()
	c.Assert(err, qt.IsNil)
	s0, err := ethereum.NewSigner()
	c.Assert(err, qt.IsNil)
	s1, err := ethereum.NewSigner()
	c.Assert(err, qt.IsNil)

	cfg := artifact.Configuration{
		Curve:     "bn254",
		Manager:   manager.Address(),
		Trustees:  []common.Address{s0.Address(), s1.Address()},
		Threshold: 2,
	}
	raw, h, err := artifact.EncodeAndHash(cfg)
	c.Assert(err, qt.IsNil)
	stmt := message.Statement{
		Head: message.StatementHead{Kind: message.StatementConfiguration, SchemaVersion: message.SchemaVersion},
		Body: message.StatementBody{Position: artifact.ManagerPosition, ArtifactHash: h, ConfigurationHash: h},
	}
	configMsg, err := message.Sign(manager, stmt, raw)
	c.Assert(err, qt.IsNil)

	fb := newFakeBoard()
	wireBytes, version, err := configMsg.MarshalWire()
	c.Assert(err, qt.IsNil)
	c.Assert(fb.PutMessages(ctx, boardName, []board.Envelope{{Bytes: wireBytes, Version: version}}), qt.IsNil)

	var st0, st1 *store.Store
	mkSession := func(position int, signer *ethereum.Signer, stOut **store.Store) *SessionSet {
		return New(fb, func(name string) (*trustee.Trustee, error) {
			backend, err := inmemory.New(db.Options{})
			c.Assert(err, qt.IsNil)
			st, err := store.New(backend)
			c.Assert(err, qt.IsNil)
			*stOut = st
			return trustee.New(trustee.Config{
				Name:       signer.Address().Hex(),
				Signer:     signer,
				SealingKey: make([]byte, 32),
				Position:   position,
				MaxMessage: 1 << 16,
			}, st), nil
		})
	}

	sess0 := mkSession(0, s0, &st0)
	sess1 := mkSession(1, s1, &st1)
	sess0.applyBoardList([]string{boardName})
	sess1.applyBoardList([]string{boardName})

	for round := 0; round < 16; round++ {
		before := len(fb.byName[boardName])
		sess0.tick(ctx)
		sess1.tick(ctx)
		if len(fb.byName[boardName]) == before {
			break
		}
	}

	pk0, err := st0.GetMessageByKind(message.StatementPublicKeySigned, 0, 0)
	c.Assert(err, qt.IsNil)
	pk1, err := st1.GetMessageByKind(message.StatementPublicKeySigned, 0, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(pk0.Statement.Body.ArtifactHash, qt.Equals, pk1.Statement.Body.ArtifactHash)
}
