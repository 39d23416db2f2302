// Package vault encrypts per-user provider secrets at rest.
//
// Blobs are AES-256-GCM with a PBKDF2-HMAC-SHA256 derived key. Two modes:
//
//   - passphrase mode: a random 16-byte salt is generated per call and
//     prepended to the blob (salt || nonce || ciphertext)
//   - token mode: the key is derived from the user's session token with a
//     fixed application salt, so only nonce || ciphertext is stored
//
// Both encode establish a fresh random 96-bit nonce per call, so encrypting
// the same secret twice never yields the same blob.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"

	"golang.org/x/crypto/pbkdf2"

	"github.com/kaelos/kael-go/internal/domain"
	"github.com/kaelos/kael-go/internal/ports"
)

const (
	saltSize   = 16
	nonceSize  = 12
	keySize    = 32
	iterations = 100_000
)

// tokenSalt keys token-mode derivation. It is fixed so the same session
// token always derives the same key across app restarts.
var tokenSalt = []byte("kael-os-key")

// AESVault implements ports.Vault.
type AESVault struct{}

// New returns an AESVault.
func New() *AESVault {
	return &AESVault{}
}

// EncryptWithPassphrase encrypts plaintext under a key derived from
// passphrase and a fresh random salt. Returns base64(salt||nonce||ciphertext).
func (v *AESVault) EncryptWithPassphrase(plaintext, passphrase string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	sealed, err := seal([]byte(plaintext), deriveKey(passphrase, salt))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(append(salt, sealed...)), nil
}

// DecryptWithPassphrase reverses EncryptWithPassphrase. A malformed blob or a
// wrong passphrase yields a decryption failure, never garbage output.
func (v *AESVault) DecryptWithPassphrase(blob, passphrase string) (string, error) {
	combined, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", decryptErr("credential blob is not valid base64", err)
	}
	if len(combined) < saltSize+nonceSize {
		return "", decryptErr("credential blob too short", nil)
	}
	salt, rest := combined[:saltSize], combined[saltSize:]
	plain, err := open(rest, deriveKey(passphrase, salt))
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// EncryptWithToken encrypts plaintext under a key derived from the session
// token and the fixed application salt. Returns base64(nonce||ciphertext).
func (v *AESVault) EncryptWithToken(plaintext, token string) (string, error) {
	sealed, err := seal([]byte(plaintext), deriveKey(token, tokenSalt))
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptWithToken reverses EncryptWithToken.
func (v *AESVault) DecryptWithToken(blob, token string) (string, error) {
	combined, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", decryptErr("credential blob is not valid base64", err)
	}
	if len(combined) < nonceSize {
		return "", decryptErr("credential blob too short", nil)
	}
	plain, err := open(combined, deriveKey(token, tokenSalt))
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func deriveKey(material string, salt []byte) []byte {
	return pbkdf2.Key([]byte(material), salt, iterations, keySize, sha256.New)
}

// seal returns nonce || ciphertext with a fresh random nonce.
func seal(plaintext, key []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// open splits nonce || ciphertext and authenticates before returning.
func open(combined, key []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	if len(combined) < nonceSize {
		return nil, decryptErr("credential blob too short", nil)
	}
	nonce, ciphertext := combined[:nonceSize], combined[nonceSize:]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, decryptErr("authentication failed (wrong key or corrupted data)", err)
	}
	return plain, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func decryptErr(msg string, err error) error {
	return domain.NewCompletionError(domain.FailureDecryption, "", msg, err)
}

var _ ports.Vault = (*AESVault)(nil)
