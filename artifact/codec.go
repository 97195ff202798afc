// Package artifact defines the typed payloads posted as messages to the
// bulletin board (spec SS3): Configuration, Channel, Shares, DkgPublicKey,
// Ballots, Mix, DecryptionFactors, Plaintexts. Every artifact has a
// deterministic canonical byte encoding; its artifact hash is SHA-256 of
// those bytes (spec SS4.1).
package artifact

import (
	"crypto/sha256"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Hash identifies an artifact by the SHA-256 of its canonical encoding.
type Hash [32]byte

// NullHash is the reserved all-zero hash used as a placeholder for an
// absent predecessor reference (spec SS4.5, SignChannels tolerating
// NULL_HASH entries).
var NullHash Hash

// IsNull reports whether h is the reserved null hash.
func (h Hash) IsNull() bool { return h == NullHash }

// String returns the hex representation of the hash.
func (h Hash) String() string {
	return fmt.Sprintf("%x", h[:])
}

// canonicalEncoder is shared by every artifact's canonical encoding: CBOR's
// Core Deterministic Encoding mode (RFC 8949 SS4.2.1) gives exactly the
// length-prefixed, fixed field order, no-indefinite-length byte stream the
// spec requires, and is the same mode the teacher uses for on-disk artifact
// encoding (storage/encode.go's EncodeArtifactCBOR).
var canonicalEncoder = mustEncoder()

func mustEncoder() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("artifact: build canonical encoder: %v", err))
	}
	return em
}

// Encode produces the canonical byte encoding of v.
func Encode(v any) ([]byte, error) {
	b, err := canonicalEncoder.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("artifact: canonical encode: %w", err)
	}
	return b, nil
}

// Decode parses canonical bytes produced by Encode into out.
func Decode(data []byte, out any) error {
	if err := cbor.Unmarshal(data, out); err != nil {
		return fmt.Errorf("artifact: canonical decode: %w", err)
	}
	return nil
}

// HashBytes computes the artifact hash of already-canonical bytes.
func HashBytes(b []byte) Hash {
	return sha256.Sum256(b)
}

// EncodeAndHash canonically encodes v and returns both the bytes and their
// hash, the pair every artifact constructor and every Message needs.
func EncodeAndHash(v any) ([]byte, Hash, error) {
	b, err := Encode(v)
	if err != nil {
		return nil, Hash{}, err
	}
	return b, HashBytes(b), nil
}
