// Package credential seals the backend bearer token at rest. The token file
// carries an argon2id-derived key envelope and a chacha20poly1305 box, so a
// copied file is useless without the desk passphrase.
package credential

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Params controls argon2id key derivation.
type Params struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

var DefaultParams = &Params{
	Memory:      64 * 1024,
	Iterations:  2,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   chacha20poly1305.KeySize,
}

// ErrWrongPassphrase is returned when the sealed token cannot be opened with
// the supplied passphrase.
var ErrWrongPassphrase = errors.New("credential: wrong passphrase or corrupt file")

// Seal encrypts token under passphrase and returns the encoded envelope:
// $gdcred$v=1$m=...,t=...,p=...$salt$nonce$box
func Seal(token, passphrase string, p *Params) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", errors.New("token is required")
	}
	if strings.TrimSpace(passphrase) == "" {
		return "", errors.New("passphrase is required")
	}
	if p == nil {
		p = DefaultParams
	}

	salt, err := generateRandomBytes(p.SaltLength)
	if err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(passphrase), salt, p.Iterations, p.Memory, p.Parallelism, p.KeyLength)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", fmt.Errorf("init aead: %w", err)
	}

	nonce, err := generateRandomBytes(uint32(aead.NonceSize()))
	if err != nil {
		return "", err
	}
	box := aead.Seal(nil, nonce, []byte(token), nil)

	encoded := fmt.Sprintf("$gdcred$v=1$m=%d,t=%d,p=%d$%s$%s$%s",
		p.Memory, p.Iterations, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(nonce),
		base64.RawStdEncoding.EncodeToString(box))
	return encoded, nil
}

// Open decrypts an envelope produced by Seal.
func Open(encoded, passphrase string) (string, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 7 || parts[1] != "gdcred" || parts[2] != "v=1" {
		return "", errors.New("invalid credential format")
	}

	p := &Params{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return "", errors.New("invalid credential parameters")
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return "", errors.New("invalid salt")
	}
	nonce, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return "", errors.New("invalid nonce")
	}
	box, err := base64.RawStdEncoding.DecodeString(parts[6])
	if err != nil {
		return "", errors.New("invalid box")
	}

	key := argon2.IDKey([]byte(passphrase), salt, p.Iterations, p.Memory, p.Parallelism, chacha20poly1305.KeySize)
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", fmt.Errorf("init aead: %w", err)
	}
	token, err := aead.Open(nil, nonce, box, nil)
	if err != nil {
		return "", ErrWrongPassphrase
	}
	return string(token), nil
}

// SaveFile seals token and writes the envelope to path with owner-only
// permissions.
func SaveFile(path, token, passphrase string) error {
	encoded, err := Seal(token, passphrase, DefaultParams)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(encoded+"\n"), 0o600); err != nil {
		return fmt.Errorf("write credential %s: %w", path, err)
	}
	return nil
}

// LoadFile reads and opens the envelope stored at path.
func LoadFile(path, passphrase string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read credential %s: %w", path, err)
	}
	return Open(strings.TrimSpace(string(data)), passphrase)
}

func generateRandomBytes(n uint32) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
