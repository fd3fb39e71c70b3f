package utils

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Time-based one-time passwords per RFC 6238: HMAC-SHA1 over the time
// step counter, dynamic truncation, 6 digits, 30 second steps. These
// are the defaults every common authenticator app assumes when given
// an otpauth:// URI without explicit parameters.
const (
	totpPeriod = 30 * time.Second
	totpDigits = 6
)

// b32 encodes without padding; authenticator apps reject '=' in secrets.
var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewTOTPSecret returns a fresh base32-encoded 160-bit shared secret.
func NewTOTPSecret() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return b32.EncodeToString(buf), nil
}

// TOTPURI builds the otpauth:// enrollment URI that clients render as a
// QR code for a generic authenticator app.
func TOTPURI(issuer, account, secret string) string {
	q := url.Values{}
	q.Set("secret", secret)
	q.Set("issuer", issuer)
	return fmt.Sprintf("otpauth://totp/%s:%s?%s",
		url.PathEscape(issuer), url.PathEscape(account), q.Encode())
}

// TOTPStep returns the time step counter for the given instant.
func TOTPStep(t time.Time) uint64 {
	return uint64(t.Unix()) / uint64(totpPeriod/time.Second)
}

// TOTPCodeAt computes the expected code for a specific time step.
func TOTPCodeAt(secret string, step uint64) (string, error) {
	key, err := b32.DecodeString(strings.ToUpper(strings.TrimSpace(secret)))
	if err != nil {
		return "", fmt.Errorf("decode totp secret: %w", err)
	}
	var counter [8]byte
	binary.BigEndian.PutUint64(counter[:], step)
	mac := hmac.New(sha1.New, key)
	mac.Write(counter[:])
	sum := mac.Sum(nil)
	// Dynamic truncation (RFC 4226 §5.3): low nibble of the last byte
	// selects a 4-byte window, top bit masked off.
	off := sum[len(sum)-1] & 0x0f
	code := binary.BigEndian.Uint32(sum[off:off+4]) & 0x7fffffff
	return fmt.Sprintf("%0*d", totpDigits, code%1_000_000), nil
}

// ValidateTOTP checks a submitted code against the current step and its
// two neighbours to tolerate clock drift between server and device. It
// returns the step the code matched so callers can persist it as a
// replay guard. Comparison is constant-time per candidate.
func ValidateTOTP(secret, code string, at time.Time) (uint64, bool) {
	code = strings.TrimSpace(code)
	if len(code) != totpDigits {
		return 0, false
	}
	now := TOTPStep(at)
	for _, step := range []uint64{now, now - 1, now + 1} {
		want, err := TOTPCodeAt(secret, step)
		if err != nil {
			return 0, false
		}
		if subtle.ConstantTimeCompare([]byte(want), []byte(code)) == 1 {
			return step, true
		}
	}
	return 0, false
}
