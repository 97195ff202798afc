package message

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/ethereum/go-ethereum/common"

	"github.com/braidcore/braid/artifact"
	"github.com/braidcore/braid/crypto/signatures/ethereum"
)

func mustSigner(c *qt.C) *ethereum.Signer {
	s, err := ethereum.NewSigner()
	c.Assert(err, qt.IsNil)
	return s
}

func testConfig(manager, t0, t1 *ethereum.Signer) artifact.Configuration {
	return artifact.Configuration{
		Curve:     "bn254",
		Manager:   manager.Address(),
		Trustees:  []common.Address{t0.Address(), t1.Address()},
		Threshold: 2,
	}
}

// TestSignVerifyRoundTrip checks a message signed by an authorised trustee
// verifies cleanly against the Configuration it is scoped to.
func TestSignVerifyRoundTrip(t *testing.T) {
	c := qt.New(t)
	manager, t0, t1 := mustSigner(c), mustSigner(c), mustSigner(c)
	cfg := testConfig(manager, t0, t1)

	artifactBytes, artifactHash, err := artifact.EncodeAndHash(artifact.Channel{Curve: "bn254"})
	c.Assert(err, qt.IsNil)

	stmt := Statement{
		Head: StatementHead{Kind: StatementChannel, ElectionID: cfg.ElectionID, SchemaVersion: SchemaVersion},
		Body: StatementBody{Position: 0, ArtifactHash: artifactHash},
	}

	m, err := Sign(t0, stmt, artifactBytes)
	c.Assert(err, qt.IsNil)

	err = m.Verify(cfg)
	c.Assert(err, qt.IsNil)
}

// TestVerifyRejectsTamperedSignature checks a flipped signature byte is
// caught rather than accepted.
func TestVerifyRejectsTamperedSignature(t *testing.T) {
	c := qt.New(t)
	manager, t0, t1 := mustSigner(c), mustSigner(c), mustSigner(c)
	cfg := testConfig(manager, t0, t1)

	artifactBytes, artifactHash, err := artifact.EncodeAndHash(artifact.Channel{Curve: "bn254"})
	c.Assert(err, qt.IsNil)

	stmt := Statement{
		Head: StatementHead{Kind: StatementChannel, ElectionID: cfg.ElectionID, SchemaVersion: SchemaVersion},
		Body: StatementBody{Position: 0, ArtifactHash: artifactHash},
	}

	m, err := Sign(t0, stmt, artifactBytes)
	c.Assert(err, qt.IsNil)

	m.SenderSignature = append([]byte{}, m.SenderSignature...)
	m.SenderSignature[0] ^= 0xFF

	err = m.Verify(cfg)
	c.Assert(err, qt.Not(qt.IsNil))
}

// TestVerifyRejectsArtifactHashMismatch checks artifact bytes that don't
// hash to the statement's recorded ArtifactHash are rejected.
func TestVerifyRejectsArtifactHashMismatch(t *testing.T) {
	c := qt.New(t)
	manager, t0, t1 := mustSigner(c), mustSigner(c), mustSigner(c)
	cfg := testConfig(manager, t0, t1)

	_, artifactHash, err := artifact.EncodeAndHash(artifact.Channel{Curve: "bn254"})
	c.Assert(err, qt.IsNil)

	stmt := Statement{
		Head: StatementHead{Kind: StatementChannel, ElectionID: cfg.ElectionID, SchemaVersion: SchemaVersion},
		Body: StatementBody{Position: 0, ArtifactHash: artifactHash},
	}

	otherBytes, _, err := artifact.EncodeAndHash(artifact.Channel{Curve: "bn254", PublicKey: []byte{1}})
	c.Assert(err, qt.IsNil)

	m, err := Sign(t0, stmt, otherBytes)
	c.Assert(err, qt.IsNil)

	err = m.Verify(cfg)
	c.Assert(err, qt.Not(qt.IsNil))
}

// TestVerifyRejectsUnauthorizedSender checks a trustee cannot post a
// Configuration or Ballots statement, which are manager-only (spec SS3/SS4).
func TestVerifyRejectsUnauthorizedSender(t *testing.T) {
	c := qt.New(t)
	manager, t0, t1 := mustSigner(c), mustSigner(c), mustSigner(c)
	cfg := testConfig(manager, t0, t1)

	artifactBytes, artifactHash, err := artifact.EncodeAndHash(cfg)
	c.Assert(err, qt.IsNil)

	stmt := Statement{
		Head: StatementHead{Kind: StatementConfiguration, ElectionID: cfg.ElectionID, SchemaVersion: SchemaVersion},
		Body: StatementBody{Position: artifact.ManagerPosition, ArtifactHash: artifactHash},
	}

	m, err := Sign(t0, stmt, artifactBytes)
	c.Assert(err, qt.IsNil)

	err = m.Verify(cfg)
	c.Assert(err, qt.Not(qt.IsNil))
}

// TestVerifyRejectsWrongSchemaVersion checks a statement carrying a schema
// version other than the one this module produces is rejected up front
// (spec SS6/SS7).
func TestVerifyRejectsWrongSchemaVersion(t *testing.T) {
	c := qt.New(t)
	manager, t0, t1 := mustSigner(c), mustSigner(c), mustSigner(c)
	cfg := testConfig(manager, t0, t1)

	artifactBytes, artifactHash, err := artifact.EncodeAndHash(artifact.Channel{Curve: "bn254"})
	c.Assert(err, qt.IsNil)

	stmt := Statement{
		Head: StatementHead{Kind: StatementChannel, ElectionID: cfg.ElectionID, SchemaVersion: SchemaVersion + 1},
		Body: StatementBody{Position: 0, ArtifactHash: artifactHash},
	}

	m, err := Sign(t0, stmt, artifactBytes)
	c.Assert(err, qt.IsNil)

	err = m.Verify(cfg)
	c.Assert(err, qt.ErrorMatches, "braid: schema version mismatch.*")
}

// TestMarshalUnmarshalWireRoundTrip checks a message's wire encoding
// survives a round trip and rejects a schema version mismatch at the
// transport layer before decoding the payload.
func TestMarshalUnmarshalWireRoundTrip(t *testing.T) {
	c := qt.New(t)
	manager, t0, t1 := mustSigner(c), mustSigner(c), mustSigner(c)
	cfg := testConfig(manager, t0, t1)

	artifactBytes, artifactHash, err := artifact.EncodeAndHash(artifact.Channel{Curve: "bn254"})
	c.Assert(err, qt.IsNil)

	stmt := Statement{
		Head: StatementHead{Kind: StatementChannel, ElectionID: cfg.ElectionID, SchemaVersion: SchemaVersion},
		Body: StatementBody{Position: 0, ArtifactHash: artifactHash},
	}

	want, err := Sign(t0, stmt, artifactBytes)
	c.Assert(err, qt.IsNil)

	data, version, err := want.MarshalWire()
	c.Assert(err, qt.IsNil)

	got, err := UnmarshalWire(data, version)
	c.Assert(err, qt.IsNil)
	c.Assert(got.SenderVerificationKey, qt.Equals, want.SenderVerificationKey)
	c.Assert(got.SenderSignature, qt.DeepEquals, want.SenderSignature)
	c.Assert(got.ArtifactBytes, qt.DeepEquals, want.ArtifactBytes)

	_, err = UnmarshalWire(data, version+1)
	c.Assert(err, qt.Not(qt.IsNil))
}
