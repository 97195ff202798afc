package message

import (
	"fmt"

	"github.com/braidcore/braid/artifact"
	"github.com/braidcore/braid/errs"
	"github.com/ethereum/go-ethereum/common"
)

func addressFromBytes(b []byte) common.Address {
	var a common.Address
	copy(a[:], b)
	return a
}

// wireMessage is the on-the-wire shape of Message (spec SS6: "the canonical
// byte encoding of {statement, sender_pk, sender_signature, optional
// artifact bytes}"). It exists only so Message itself stays free of
// encoding tags.
type wireMessage struct {
	SenderVerificationKey []byte
	SenderSignature       []byte
	Statement             Statement
	ArtifactBytes         []byte
}

// MarshalWire produces the canonical bytes of m as posted to a board (spec
// SS6). The returned version is the schema version to carry alongside, so a
// board transport can reject stale readers without decoding the payload.
func (m Message) MarshalWire() (data []byte, version uint32, err error) {
	w := wireMessage{
		SenderVerificationKey: m.SenderVerificationKey.Bytes(),
		SenderSignature:       m.SenderSignature,
		Statement:             m.Statement,
		ArtifactBytes:         m.ArtifactBytes,
	}
	data, err = artifact.Encode(w)
	if err != nil {
		return nil, 0, fmt.Errorf("message: encode wire envelope: %w", err)
	}
	return data, uint32(SchemaVersion), nil
}

// UnmarshalWire parses data produced by MarshalWire. version is the schema
// version the transport carried alongside the bytes; a mismatch is rejected
// before the payload is even decoded (spec SS7: "Schema version mismatch:
// the offending message is rejected").
func UnmarshalWire(data []byte, version uint32) (Message, error) {
	if version != uint32(SchemaVersion) {
		return Message{}, fmt.Errorf("%w: got %d, want %d", errs.ErrSchemaVersion, version, SchemaVersion)
	}
	var w wireMessage
	if err := artifact.Decode(data, &w); err != nil {
		return Message{}, fmt.Errorf("message: decode wire envelope: %w", err)
	}
	return Message{
		SenderVerificationKey: addressFromBytes(w.SenderVerificationKey),
		SenderSignature:       w.SenderSignature,
		Statement:             w.Statement,
		ArtifactBytes:         w.ArtifactBytes,
	}, nil
}
