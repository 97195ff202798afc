package artifact

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/ethereum/go-ethereum/common"
)

// TestEncodeDecodeConfigurationRoundTrip checks that decoding the canonical
// encoding of a Configuration recovers it exactly (spec SS8: deserialise
// composed with serialise is the identity for every artifact).
func TestEncodeDecodeConfigurationRoundTrip(t *testing.T) {
	c := qt.New(t)
	want := Configuration{
		ElectionID: [16]byte{1, 2, 3},
		Curve:      "bn254",
		Manager:    common.HexToAddress("0x1"),
		Trustees:   []common.Address{common.HexToAddress("0x2"), common.HexToAddress("0x3")},
		Threshold:  2,
	}

	b, err := Encode(want)
	c.Assert(err, qt.IsNil)

	var got Configuration
	err = Decode(b, &got)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, want)
}

// TestEncodeAndHashMatchesHashBytes checks EncodeAndHash's hash agrees with
// hashing the same bytes produced by Encode directly.
func TestEncodeAndHashMatchesHashBytes(t *testing.T) {
	c := qt.New(t)
	v := Configuration{Curve: "bn254", Threshold: 2, Trustees: []common.Address{common.HexToAddress("0x2"), common.HexToAddress("0x3")}}

	b, err := Encode(v)
	c.Assert(err, qt.IsNil)

	b2, h, err := EncodeAndHash(v)
	c.Assert(err, qt.IsNil)
	c.Assert(b2, qt.DeepEquals, b)
	c.Assert(h, qt.DeepEquals, HashBytes(b))
}

// TestEncodeIsDeterministic checks that encoding the same value twice
// produces byte-identical output, the property the artifact hash relies on.
func TestEncodeIsDeterministic(t *testing.T) {
	c := qt.New(t)
	v := Configuration{Curve: "bn254", Threshold: 2, Trustees: []common.Address{common.HexToAddress("0x2"), common.HexToAddress("0x3")}}

	b1, err := Encode(v)
	c.Assert(err, qt.IsNil)
	b2, err := Encode(v)
	c.Assert(err, qt.IsNil)
	c.Assert(b1, qt.DeepEquals, b2)
}

// TestNullHashIsNull checks the reserved placeholder hash reports itself as
// null and a populated hash does not.
func TestNullHashIsNull(t *testing.T) {
	c := qt.New(t)
	c.Assert(NullHash.IsNull(), qt.IsTrue)

	var h Hash
	h[0] = 1
	c.Assert(h.IsNull(), qt.IsFalse)
}

// TestDecodeByKindRoundTrip checks DecodeByKind dispatches to the concrete
// artifact type matching each Kind and recovers the original value (spec
// SS4.2: the Message Store decodes a statement's artifact bytes by kind).
func TestDecodeByKindRoundTrip(t *testing.T) {
	c := qt.New(t)
	want := Configuration{Curve: "bn254", Threshold: 2, Trustees: []common.Address{common.HexToAddress("0x2"), common.HexToAddress("0x3")}}

	b, err := Encode(want)
	c.Assert(err, qt.IsNil)

	got, err := DecodeByKind(KindConfiguration, b)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, Artifact(want))
}

// TestDecodeByKindUnknownKind checks an unrecognised Kind is rejected
// instead of silently decoded as the wrong type.
func TestDecodeByKindUnknownKind(t *testing.T) {
	c := qt.New(t)
	_, err := DecodeByKind(Kind(99), []byte{0xa0})
	c.Assert(err, qt.ErrorMatches, "artifact: unknown kind 99")
}

// TestConfigurationValidateRejectsBadCohort checks Validate enforces the
// trustee-count and threshold bounds and rejects a manager/trustee key
// collision (spec SS3).
func TestConfigurationValidateRejectsBadCohort(t *testing.T) {
	c := qt.New(t)

	tooFew := Configuration{Trustees: []common.Address{common.HexToAddress("0x1")}, Threshold: 1}
	c.Assert(tooFew.Validate(), qt.Not(qt.IsNil))

	badThreshold := Configuration{
		Trustees:  []common.Address{common.HexToAddress("0x1"), common.HexToAddress("0x2")},
		Threshold: 3,
	}
	c.Assert(badThreshold.Validate(), qt.Not(qt.IsNil))

	collision := Configuration{
		Manager:   common.HexToAddress("0x1"),
		Trustees:  []common.Address{common.HexToAddress("0x1"), common.HexToAddress("0x2")},
		Threshold: 2,
	}
	c.Assert(collision.Validate(), qt.Not(qt.IsNil))

	ok := Configuration{
		Manager:   common.HexToAddress("0x9"),
		Trustees:  []common.Address{common.HexToAddress("0x1"), common.HexToAddress("0x2")},
		Threshold: 2,
	}
	c.Assert(ok.Validate(), qt.IsNil)
}

// TestConfigurationPositionOf checks PositionOf/IsTrustee agree and report
// -1/false for a non-member address.
func TestConfigurationPositionOf(t *testing.T) {
	c := qt.New(t)
	cfg := Configuration{Trustees: []common.Address{common.HexToAddress("0x1"), common.HexToAddress("0x2")}}

	c.Assert(cfg.PositionOf(common.HexToAddress("0x2")), qt.Equals, 1)
	c.Assert(cfg.IsTrustee(common.HexToAddress("0x2")), qt.IsTrue)

	c.Assert(cfg.PositionOf(common.HexToAddress("0x3")), qt.Equals, -1)
	c.Assert(cfg.IsTrustee(common.HexToAddress("0x3")), qt.IsFalse)
}
