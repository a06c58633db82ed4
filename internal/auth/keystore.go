// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth stores the keywordschat API token encrypted at rest.
package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/keywordschat/kwc-tui/internal/util"
)

// Encryption parameters. AES-256-GCM with a PBKDF2-SHA-256 derived key,
// following NIST SP 800-132 for password-based key derivation.
const (
	keySize          = 32
	saltSize         = 16
	nonceSize        = 12
	pbkdf2Iterations = 600000

	keyfileName = "keystore.key"
	tokenName   = "token.enc"
	totpName    = "totp.enc"

	// encryptedPrefix marks sealed values so plaintext files are detectable.
	encryptedPrefix = "ENC:"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNoToken is returned when no token has been saved yet.
	ErrNoToken = errors.New("no API token stored, run /login first")

	// ErrTokenCorrupt is returned when the sealed token fails authentication.
	ErrTokenCorrupt = errors.New("stored token is corrupt or was encrypted on another machine")
)

// =============================================================================
// KEYSTORE
// =============================================================================

// Keystore seals and unseals the API token under a machine-local keyfile.
type Keystore struct {
	dir    string
	cipher cipher.AEAD
}

// NewKeystore opens (or initializes) the keystore in the given directory.
// A fresh keyfile is generated on first use.
func NewKeystore(dir string) (*Keystore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create keystore directory: %w", err)
	}

	ks := &Keystore{dir: dir}
	key, err := ks.loadOrCreateKeyfile()
	if err != nil {
		return nil, err
	}
	defer zeroBytes(key)

	if err := ks.initCipher(key); err != nil {
		return nil, err
	}
	return ks, nil
}

// loadOrCreateKeyfile reads the machine-local key material, creating it on
// first use. The keyfile holds salt || secret; the sealing key is derived
// from both so a copied token file alone is useless.
func (ks *Keystore) loadOrCreateKeyfile() ([]byte, error) {
	path := filepath.Join(ks.dir, keyfileName)

	data, err := os.ReadFile(path)
	if err == nil {
		if len(data) != saltSize+keySize {
			return nil, fmt.Errorf("keyfile %s has unexpected size %d", path, len(data))
		}
		return deriveKey(data), nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read keyfile: %w", err)
	}

	// First use: generate salt and secret.
	data = make([]byte, saltSize+keySize)
	if _, err := io.ReadFull(rand.Reader, data); err != nil {
		return nil, fmt.Errorf("failed to generate key material: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write keyfile: %w", err)
	}
	return deriveKey(data), nil
}

// deriveKey derives the sealing key from keyfile material (salt || secret).
func deriveKey(material []byte) []byte {
	salt := material[:saltSize]
	secret := material[saltSize:]
	return pbkdf2.Key(secret, salt, pbkdf2Iterations, keySize, sha256.New)
}

// initCipher sets up the AES-256-GCM AEAD.
func (ks *Keystore) initCipher(key []byte) error {
	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("failed to create GCM: %w", err)
	}
	ks.cipher = aead
	return nil
}

// =============================================================================
// TOKEN OPERATIONS
// =============================================================================

// SaveToken seals the API token and writes it atomically with 0600 perms.
func (ks *Keystore) SaveToken(token string) error {
	sealed, err := ks.seal([]byte(token))
	if err != nil {
		return err
	}
	path := filepath.Join(ks.dir, tokenName)
	return util.AtomicWriteFile(path, []byte(sealed), 0600)
}

// LoadToken unseals and returns the stored API token.
func (ks *Keystore) LoadToken() (string, error) {
	path := filepath.Join(ks.dir, tokenName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("failed to read token: %w", err)
	}

	plaintext, err := ks.unseal(strings.TrimSpace(string(data)))
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// HasToken reports whether a token has been saved.
func (ks *Keystore) HasToken() bool {
	_, err := os.Stat(filepath.Join(ks.dir, tokenName))
	return err == nil
}

// Clear removes the stored token (logout). The keyfile and any enrolled
// TOTP secret are kept so 2FA survives re-login.
func (ks *Keystore) Clear() error {
	err := os.Remove(filepath.Join(ks.dir, tokenName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

// =============================================================================
// TOTP SECRET OPERATIONS
// =============================================================================

// ErrNoTOTPSecret is returned when no two-factor secret has been enrolled.
var ErrNoTOTPSecret = errors.New("no two-factor secret enrolled")

// SaveTOTPSecret seals the account's TOTP secret next to the token.
// SECURITY: the secret is sealed under the same machine-local key, so a
// copied totp.enc is useless without the keyfile.
func (ks *Keystore) SaveTOTPSecret(secret string) error {
	sealed, err := ks.seal([]byte(secret))
	if err != nil {
		return err
	}
	path := filepath.Join(ks.dir, totpName)
	return util.AtomicWriteFile(path, []byte(sealed), 0600)
}

// LoadTOTPSecret unseals and returns the enrolled TOTP secret.
func (ks *Keystore) LoadTOTPSecret() (string, error) {
	path := filepath.Join(ks.dir, totpName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoTOTPSecret
		}
		return "", fmt.Errorf("failed to read two-factor secret: %w", err)
	}

	plaintext, err := ks.unseal(strings.TrimSpace(string(data)))
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// HasTOTPSecret reports whether a two-factor secret has been enrolled.
func (ks *Keystore) HasTOTPSecret() bool {
	_, err := os.Stat(filepath.Join(ks.dir, totpName))
	return err == nil
}

// =============================================================================
// SEALING
// =============================================================================

// seal encrypts plaintext and returns "ENC:" + base64(nonce || ciphertext || tag).
func (ks *Keystore) seal(plaintext []byte) (string, error) {
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	ciphertext := ks.cipher.Seal(nonce, nonce, plaintext, nil)
	return encryptedPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// unseal decrypts a sealed value. Values without the ENC: prefix are
// rejected: tokens are never stored in plaintext.
func (ks *Keystore) unseal(sealed string) ([]byte, error) {
	if !strings.HasPrefix(sealed, encryptedPrefix) {
		return nil, ErrTokenCorrupt
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(sealed, encryptedPrefix))
	if err != nil {
		return nil, ErrTokenCorrupt
	}
	if len(data) < nonceSize {
		return nil, ErrTokenCorrupt
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := ks.cipher.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrTokenCorrupt
	}
	return plaintext, nil
}

// zeroBytes overwrites key material to limit memory disclosure.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
