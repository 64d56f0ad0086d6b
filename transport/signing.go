package transport

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// Header names for the signed envelope (spec §6).
const (
	HeaderTimestamp = "X-Timestamp"
	HeaderSignature = "X-Signature"
)

// Sign computes hex(HMAC-SHA256(key, "<timestamp>.<canonicalBody>")).
// No third-party signing library is used here: no repo in the pack signs
// requests, and crypto/hmac + crypto/subtle is the primitive every
// higher-level signing library in the ecosystem is itself built on, so
// reaching past it for a wrapper dependency would add indirection
// without adding anything idiomatic.
func Sign(key []byte, timestamp int64, canonicalBody []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(fmt.Sprintf("%d.", timestamp)))
	mac.Write(canonicalBody)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the expected signature and compares it against
// provided using a constant-time comparison, per spec §4.1 step 3.
func Verify(key []byte, timestamp int64, canonicalBody []byte, provided string) bool {
	expected := Sign(key, timestamp, canonicalBody)
	expectedRaw, err := hex.DecodeString(expected)
	if err != nil {
		return false
	}
	providedRaw, err := hex.DecodeString(provided)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(expectedRaw, providedRaw) == 1
}
