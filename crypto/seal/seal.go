// Package seal symmetrically protects a Channel's ElGamal private key so
// that it can be carried on the public bulletin board. A trustee derives an
// AEAD key from its personal symmetric sealing key with HKDF and seals the
// channel secret under it, mirroring the deal-sealing idiom of a VSS dealer
// (newAEAD(hash, sharedSecret, context) -> aead.Seal(nil, nonce, plaintext,
// context)) applied here to a single-recipient secret instead of a dealer's
// per-verifier deals.
package seal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// NonceSize is the length in bytes of the AES-GCM nonce prepended to every
// sealed blob.
const NonceSize = 12

// context binds a sealed channel secret to the trustee position and the
// configuration it was generated for, so a sealed blob cannot be replayed
// across boards or positions.
func context(configHash []byte, position int) []byte {
	return fmt.Appendf(nil, "braid/channel-seal/%x/%d", configHash, position)
}

// deriveKey expands the trustee's personal sealing key into a 32-byte AES-256
// key using HKDF-SHA256, with no salt and the sealing context as HKDF info.
func deriveKey(sealingKey, ctx []byte) ([]byte, error) {
	r := hkdf.New(sha256.New, sealingKey, nil, ctx)
	key := make([]byte, 32)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("seal: derive key: %w", err)
	}
	return key, nil
}

// Seal symmetrically encrypts plaintext (the channel's ElGamal private key
// bytes) under sealingKey, bound to configHash and position. The returned
// blob is nonce || ciphertext, ready to be embedded in a Channel artifact.
func Seal(sealingKey []byte, configHash []byte, position int, plaintext []byte) ([]byte, error) {
	ctx := context(configHash, position)
	key, err := deriveKey(sealingKey, ctx)
	if err != nil {
		return nil, err
	}
	gcm, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("seal: nonce: %w", err)
	}
	ciphertext := gcm.Seal(nil, nonce, plaintext, ctx)
	return append(nonce, ciphertext...), nil
}

// Open reverses Seal, returning the original plaintext or an error if the
// blob was tampered with, or sealed under a different key/context.
func Open(sealingKey []byte, configHash []byte, position int, blob []byte) ([]byte, error) {
	if len(blob) < NonceSize {
		return nil, fmt.Errorf("seal: blob too short")
	}
	ctx := context(configHash, position)
	key, err := deriveKey(sealingKey, ctx)
	if err != nil {
		return nil, err
	}
	gcm, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	nonce, ciphertext := blob[:NonceSize], blob[NonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, ctx)
	if err != nil {
		return nil, fmt.Errorf("seal: open: %w", err)
	}
	return plaintext, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("seal: aes cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("seal: gcm: %w", err)
	}
	return gcm, nil
}

