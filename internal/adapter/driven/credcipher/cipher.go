// Package credcipher seals router and mail relay secrets before they are
// persisted.
//
// New values are written as a versioned envelope:
//
//	enc:v2:base64(IV || AES-256-CBC/PKCS7 ciphertext || HMAC-SHA256 tag)
//
// with encryption and MAC keys derived from the configured secret by
// HKDF-SHA256. Values without the prefix are legacy: either raw
// base64(IV || ciphertext) under the zero-padded secret, or plaintext that
// predates encryption entirely. Both are still readable.
package credcipher

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/crypto/hkdf"

	"github.com/ericfisherdev/routergate/internal/domain/port/driven"
)

// EnvelopePrefix marks values sealed by this package.
const EnvelopePrefix = "enc:v2:"

const (
	keySize      = 32
	macSize      = sha256.Size
	legacyFiller = '0'
	hkdfInfo     = "routergate credential envelope v2"
)

var (
	errMalformed   = errors.New("malformed ciphertext")
	errBadPadding  = errors.New("invalid padding")
	errTagMismatch = errors.New("authentication tag mismatch")
)

// Compile-time interface satisfaction check.
var _ driven.SecretCipher = (*Cipher)(nil)

// Cipher encrypts and decrypts secrets with a process-wide key.
type Cipher struct {
	encKey    []byte
	macKey    []byte
	legacyKey []byte
	logger    *slog.Logger
}

// New derives the cipher keys from secret. An empty secret is rejected.
func New(secret string, logger *slog.Logger) (*Cipher, error) {
	if secret == "" {
		return nil, errors.New("credcipher: empty secret")
	}
	if logger == nil {
		logger = slog.Default()
	}

	derived := make([]byte, 2*keySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo)), derived); err != nil {
		return nil, fmt.Errorf("derive keys: %w", err)
	}

	return &Cipher{
		encKey:    derived[:keySize],
		macKey:    derived[keySize:],
		legacyKey: LegacyKey(secret),
		logger:    logger,
	}, nil
}

// LegacyKey normalizes secret to 32 bytes the way pre-envelope values were
// sealed: right-padded with '0', truncated if longer.
func LegacyKey(secret string) []byte {
	key := bytes.Repeat([]byte{legacyFiller}, keySize)
	copy(key, secret)
	return key
}

// IsSealed reports whether blob carries the current envelope prefix.
func IsSealed(blob string) bool {
	return strings.HasPrefix(blob, EnvelopePrefix)
}

// Encrypt seals plaintext with a fresh random IV. Empty input yields "".
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	body, err := sealCBC(c.encKey, []byte(plaintext))
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, c.macKey)
	mac.Write(body)
	body = mac.Sum(body)

	return EnvelopePrefix + base64.StdEncoding.EncodeToString(body), nil
}

// Decrypt opens blob. Anything that cannot be opened is returned unchanged;
// for enveloped values that indicates corruption or a key change and is logged.
func (c *Cipher) Decrypt(blob string) string {
	if blob == "" {
		return ""
	}

	if IsSealed(blob) {
		plaintext, err := c.openEnvelope(strings.TrimPrefix(blob, EnvelopePrefix))
		if err != nil {
			c.logger.Warn("sealed secret could not be opened, returning stored value", "error", err)
			return blob
		}
		return plaintext
	}

	data, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return blob
	}
	plaintext, err := openCBC(c.legacyKey, data)
	if err != nil {
		return blob
	}
	return string(plaintext)
}

func (c *Cipher) openEnvelope(encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}
	if len(data) < aes.BlockSize+macSize {
		return "", errMalformed
	}

	body, tag := data[:len(data)-macSize], data[len(data)-macSize:]
	mac := hmac.New(sha256.New, c.macKey)
	mac.Write(body)
	if !hmac.Equal(tag, mac.Sum(nil)) {
		return "", errTagMismatch
	}

	plaintext, err := openCBC(c.encKey, body)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// sealCBC returns IV || AES-CBC(pkcs7(plaintext)).
func sealCBC(key, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	out := make([]byte, aes.BlockSize+len(padded))
	iv := out[:aes.BlockSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("rand iv: %w", err)
	}

	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[aes.BlockSize:], padded)
	return out, nil
}

// openCBC reverses sealCBC.
func openCBC(key, data []byte) ([]byte, error) {
	if len(data) < 2*aes.BlockSize || len(data)%aes.BlockSize != 0 {
		return nil, errMalformed
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}

	iv, ciphertext := data[:aes.BlockSize], data[aes.BlockSize:]
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	return pkcs7Unpad(plaintext, aes.BlockSize)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(append(make([]byte, 0, len(data)+n), data...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errBadPadding
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, errBadPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errBadPadding
		}
	}
	return data[:len(data)-n], nil
}
