// Package wgkeys generates and validates WireGuard key pairs.
//
// Keys are Curve25519 points in the standard base64 encoding used by the
// WireGuard tools, so a key pair generated here is interchangeable with
// one produced by "wg genkey" / "wg pubkey".
package wgkeys

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/curve25519"
)

// KeySize is the length of a raw WireGuard key in bytes.
const KeySize = 32

// KeyPair holds a private key and its derived public key, both base64
// encoded.
type KeyPair struct {
	PrivateKey string
	PublicKey  string
}

// Generate creates a new random key pair.
func Generate() (*KeyPair, error) {
	var priv [KeySize]byte
	if _, err := rand.Read(priv[:]); err != nil {
		return nil, fmt.Errorf("failed to read random bytes: %w", err)
	}

	// Clamp per Curve25519 scalar requirements.
	priv[0] &= 248
	priv[31] &= 127
	priv[31] |= 64

	pub, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive public key: %w", err)
	}

	return &KeyPair{
		PrivateKey: base64.StdEncoding.EncodeToString(priv[:]),
		PublicKey:  base64.StdEncoding.EncodeToString(pub),
	}, nil
}

// PublicFromPrivate derives the public key for a base64 private key.
func PublicFromPrivate(privateKey string) (string, error) {
	priv, err := decodeKey(privateKey)
	if err != nil {
		return "", err
	}

	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return "", fmt.Errorf("failed to derive public key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(pub), nil
}

// Validate checks that key is a well-formed base64 WireGuard key.
func Validate(key string) error {
	_, err := decodeKey(key)
	return err
}

func decodeKey(key string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("key is not valid base64: %w", err)
	}
	if len(raw) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(raw))
	}
	return raw, nil
}
