package trustee

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	qt "github.com/frankban/quicktest"

	"github.com/braidcore/braid/artifact"
	"github.com/braidcore/braid/crypto/signatures/ethereum"
	"github.com/braidcore/braid/db"
	"github.com/braidcore/braid/db/inmemory"
	"github.com/braidcore/braid/message"
	"github.com/braidcore/braid/store"
)

// board is a tiny in-process stand-in for the bulletin board transport of
// spec §6: an ordered, append-only slice of messages every trustee polls
// from its own watermark. It exists only to drive Step end-to-end in a
// single process, not as a board implementation.
type board struct {
	msgs []message.Message
}

func (b *board) post(m message.Message) { b.msgs = append(b.msgs, m) }

func (b *board) since(lastID uint64) []store.BoardMessage {
	out := make([]store.BoardMessage, 0, len(b.msgs))
	for i := lastID; i < uint64(len(b.msgs)); i++ {
		out = append(out, store.BoardMessage{ExternalID: i + 1, Message: b.msgs[i]})
	}
	return out
}

func newTestTrustee(c *qt.C, position int, signer *ethereum.Signer) (*Trustee, *store.Store) {
	backend, err := inmemory.New(db.Options{})
	c.Assert(err, qt.IsNil)
	st, err := store.New(backend)
	c.Assert(err, qt.IsNil)
	tr := New(Config{
		Name:       signer.Address().Hex(),
		Signer:     signer,
		SealingKey: make([]byte, 32),
		Position:   position,
		MaxMessage: 1 << 16,
	}, st)
	return tr, st
}

// TestBootstrapAndDkgCompletes drives a 2-of-2 cohort through Step until no
// trustee has any further outgoing message, and checks every trustee
// independently reaches the same signed DkgPublicKey (spec §8: "identical
// message-store contents... identical set of actions").
func TestBootstrapAndDkgCompletes(t *testing.T) {
	c := qt.New(t)

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

	b := &board{}
	b.post(configMsg)

	t0, st0 := newTestTrustee(c, 0, s0)
	t1, st1 := newTestTrustee(c, 1, s1)
	trustees := []*Trustee{t0, t1}

	for round := 0; round < 16; round++ {
		progressed := false
		for _, tr := range trustees {
			out, err := tr.Step(b.since(tr.GetLastExternalID()))
			c.Assert(err, qt.IsNil)
			for _, m := range out {
				b.post(m)
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}

	pk0, err := st0.GetMessageByKind(message.StatementPublicKeySigned, 0, 0)
	c.Assert(err, qt.IsNil)
	pk1, err := st1.GetMessageByKind(message.StatementPublicKeySigned, 0, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(pk0.Statement.Body.ArtifactHash, qt.Equals, pk1.Statement.Body.ArtifactHash)
}
