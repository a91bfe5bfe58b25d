// internal/form/csrf.go
//
// Stateless, form-scoped CSRF tokens.
//
// Token layout (base64url, no padding):
//
//	nonce(16) | unixMicro(8, big-endian) | HMAC_SHA256(secret, formID|0x00|nonce|unixMicro)
//
// The form ID is part of the MAC input but not of the token, so a token
// rendered for one form never verifies against another.  Tokens older than
// maxAge, or issued more than a minute in the future, are rejected.
//
// The secret comes from SetSecret (the demo host passes a configured key) or,
// failing that, CMW_CSRF_KEY.  Without either a random per-process key is
// generated and every restart invalidates outstanding tokens.
package form

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	nonceBytes   = 16
	tokenBytes   = nonceBytes + 8 + sha256.Size
	maxAge       = 2 * time.Hour
	maxSkew      = time.Minute
	minSecretLen = 32
	secretEnvKey = "CMW_CSRF_KEY"
)

// ErrWeakSecret is returned by SetSecret for keys shorter than 32 bytes.
var ErrWeakSecret = errors.New("csrf secret must be at least 32 bytes")

var (
	secretMu  sync.RWMutex
	secretKey []byte
)

// SetSecret installs key as the signing secret.  Tokens issued under a
// previous secret stop verifying.
func SetSecret(key []byte) error {
	if len(key) < minSecretLen {
		return ErrWeakSecret
	}
	secretMu.Lock()
	secretKey = append([]byte(nil), key...)
	secretMu.Unlock()
	return nil
}

// GenerateToken issues a token bound to formID.
func GenerateToken(formID string) (string, error) {
	nonce := make([]byte, nonceBytes)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(time.Now().UnixMicro()))

	buf := make([]byte, 0, tokenBytes)
	buf = append(buf, nonce...)
	buf = append(buf, ts[:]...)
	buf = append(buf, sign(formID, nonce, ts[:])...)
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// VerifyToken reports whether tok was issued for formID and is still fresh.
func VerifyToken(formID, tok string) bool {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) != tokenBytes {
		return false
	}
	nonce, ts, sig := raw[:nonceBytes], raw[nonceBytes:nonceBytes+8], raw[nonceBytes+8:]

	issued := time.UnixMicro(int64(binary.BigEndian.Uint64(ts)))
	if time.Since(issued) > maxAge || time.Until(issued) > maxSkew {
		return false
	}
	return hmac.Equal(sig, sign(formID, nonce, ts))
}

func sign(formID string, nonce, ts []byte) []byte {
	mac := hmac.New(sha256.New, secret())
	mac.Write([]byte(formID))
	mac.Write([]byte{0})
	mac.Write(nonce)
	mac.Write(ts)
	return mac.Sum(nil)
}

func secret() []byte {
	secretMu.RLock()
	k := secretKey
	secretMu.RUnlock()
	if k != nil {
		return k
	}

	secretMu.Lock()
	defer secretMu.Unlock()
	if secretKey != nil {
		return secretKey
	}
	if env := os.Getenv(secretEnvKey); env != "" {
		if b, err := base64.RawURLEncoding.DecodeString(env); err == nil && len(b) >= minSecretLen {
			secretKey = b
			return secretKey
		}
		zap.S().Warnw("ignoring malformed CSRF key", "env", secretEnvKey)
	}
	secretKey = make([]byte, minSecretLen)
	_, _ = rand.Read(secretKey)
	zap.S().Warnw("CSRF key not set, using random key", "env", secretEnvKey)
	return secretKey
}
