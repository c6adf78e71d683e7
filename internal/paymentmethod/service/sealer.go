package service

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"strings"

	paymentdomain "github.com/smallbiznis/workhub/internal/paymentmethod/domain"
	"golang.org/x/crypto/chacha20poly1305"
)

const sealedPrefix = "enc:v1:"

// Sealer encrypts secret credential values before they reach payment_settings.
type Sealer struct {
	key []byte
}

// NewSealer derives the key from secret. An empty secret disables sealing
// and values are stored as entered.
func NewSealer(secret string) *Sealer {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return &Sealer{}
	}
	sum := sha256.Sum256([]byte(secret))
	return &Sealer{key: sum[:]}
}

func (s *Sealer) Enabled() bool {
	return s != nil && len(s.key) == chacha20poly1305.KeySize
}

func (s *Sealer) Seal(plain string) (string, error) {
	if !s.Enabled() || plain == "" || IsSealed(plain) {
		return plain, nil
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := aead.Seal(nonce, nonce, []byte(plain), nil)
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(sealed), nil
}

// Open returns plaintext for sealed values and passes other values through.
func (s *Sealer) Open(stored string) (string, error) {
	if !IsSealed(stored) {
		return stored, nil
	}
	if !s.Enabled() {
		return "", paymentdomain.ErrSealedValue
	}
	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(stored, sealedPrefix))
	if err != nil {
		return "", paymentdomain.ErrSealedValue
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}
	if len(raw) < aead.NonceSize() {
		return "", paymentdomain.ErrSealedValue
	}
	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", paymentdomain.ErrSealedValue
	}
	return string(plain), nil
}

func IsSealed(value string) bool {
	return strings.HasPrefix(value, sealedPrefix)
}
