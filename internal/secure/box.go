package secure

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/box"
)

// MessageBox encrypts message bodies at rest with a statically configured
// Curve25519 key pair: seal with the public key on write, open with the key
// pair on every read path. Ciphertext is stored base64 encoded.
type MessageBox struct {
	publicKey  [32]byte
	privateKey [32]byte
}

var errBadKey = errors.New("key must be 32 bytes hex encoded")

// NewMessageBox parses the hex-encoded key pair.
func NewMessageBox(publicKeyHex, privateKeyHex string) (*MessageBox, error) {
	pub, err := decodeKey(publicKeyHex)
	if err != nil {
		return nil, fmt.Errorf("public key: %w", err)
	}
	priv, err := decodeKey(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("private key: %w", err)
	}
	return &MessageBox{publicKey: pub, privateKey: priv}, nil
}

// GenerateKeyPair returns a fresh hex-encoded key pair. Used by tests and by
// operators provisioning a deployment.
func GenerateKeyPair() (publicKeyHex, privateKeyHex string, err error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return "", "", err
	}
	return hex.EncodeToString(pub[:]), hex.EncodeToString(priv[:]), nil
}

// Encrypt seals plaintext with the configured public key.
func (b *MessageBox) Encrypt(plaintext string) (string, error) {
	sealed, err := box.SealAnonymous(nil, []byte(plaintext), &b.publicKey, rand.Reader)
	if err != nil {
		return "", fmt.Errorf("seal message: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens ciphertext with the configured key pair.
func (b *MessageBox) Decrypt(ciphertext string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	plaintext, ok := box.OpenAnonymous(nil, sealed, &b.publicKey, &b.privateKey)
	if !ok {
		return "", errors.New("open message: ciphertext rejected")
	}
	return string(plaintext), nil
}

func decodeKey(keyHex string) ([32]byte, error) {
	var key [32]byte
	raw, err := hex.DecodeString(keyHex)
	if err != nil {
		return key, errBadKey
	}
	if len(raw) != 32 {
		return key, errBadKey
	}
	copy(key[:], raw)
	return key, nil
}
