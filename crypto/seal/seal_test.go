package seal

import (
	"bytes"
	"testing"

	qt "github.com/frankban/quicktest"
)

// TestSealOpenRoundTrip checks that Open recovers exactly what Seal sealed
// under the same key, config hash and position.
func TestSealOpenRoundTrip(t *testing.T) {
	c := qt.New(t)
	key := bytes.Repeat([]byte{0x42}, 32)
	configHash := bytes.Repeat([]byte{0x01}, 32)
	plaintext := []byte("a channel private key")

	blob, err := Seal(key, configHash, 3, plaintext)
	c.Assert(err, qt.IsNil)
	c.Assert(len(blob) >= NonceSize, qt.IsTrue)

	got, err := Open(key, configHash, 3, blob)
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, plaintext)
}

// TestOpenRejectsWrongKey checks a blob sealed under one key cannot be
// opened under another.
func TestOpenRejectsWrongKey(t *testing.T) {
	c := qt.New(t)
	configHash := bytes.Repeat([]byte{0x02}, 32)
	blob, err := Seal(bytes.Repeat([]byte{0xAA}, 32), configHash, 0, []byte("secret"))
	c.Assert(err, qt.IsNil)

	_, err = Open(bytes.Repeat([]byte{0xBB}, 32), configHash, 0, blob)
	c.Assert(err, qt.Not(qt.IsNil))
}

// TestOpenRejectsWrongPosition checks the position is part of the sealing
// context: a blob sealed for one trustee position cannot be opened as if it
// belonged to another.
func TestOpenRejectsWrongPosition(t *testing.T) {
	c := qt.New(t)
	key := bytes.Repeat([]byte{0xCC}, 32)
	configHash := bytes.Repeat([]byte{0x03}, 32)
	blob, err := Seal(key, configHash, 1, []byte("secret"))
	c.Assert(err, qt.IsNil)

	_, err = Open(key, configHash, 2, blob)
	c.Assert(err, qt.Not(qt.IsNil))
}

// TestOpenRejectsTamperedBlob checks AES-GCM authentication catches a
// flipped ciphertext byte.
func TestOpenRejectsTamperedBlob(t *testing.T) {
	c := qt.New(t)
	key := bytes.Repeat([]byte{0xDD}, 32)
	configHash := bytes.Repeat([]byte{0x04}, 32)
	blob, err := Seal(key, configHash, 0, []byte("secret"))
	c.Assert(err, qt.IsNil)

	tampered := append([]byte{}, blob...)
	tampered[len(tampered)-1] ^= 0xFF

	_, err = Open(key, configHash, 0, tampered)
	c.Assert(err, qt.Not(qt.IsNil))
}
