package transport

import (
	"testing"
	"time"

	passert "github.com/magiconair/properties/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	body, err := CanonicalBody(map[string]interface{}{"tx_id": "abc", "delta": 42})
	require.NoError(t, err)

	ts := time.Now().Unix()
	sig := Sign(key, ts, body)

	passert.Equal(t, Verify(key, ts, body, sig), true)
}

func TestVerifyRejectsBitFlippedSignature(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	body, _ := CanonicalBody(map[string]interface{}{"tx_id": "abc"})
	ts := time.Now().Unix()
	sig := Sign(key, ts, body)

	tampered := []byte(sig)
	if tampered[0] == 'a' {
		tampered[0] = 'b'
	} else {
		tampered[0] = 'a'
	}
	passert.Equal(t, Verify(key, ts, body, string(tampered)), false)
}

func TestVerifyRejectsBodyMutation(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	body, _ := CanonicalBody(map[string]interface{}{"tx_id": "abc", "delta": 1})
	ts := time.Now().Unix()
	sig := Sign(key, ts, body)

	mutated, _ := CanonicalBody(map[string]interface{}{"tx_id": "abc", "delta": 2})
	passert.Equal(t, Verify(key, ts, mutated, sig), false)
}

func TestCanonicalBodySortsKeys(t *testing.T) {
	a, err := CanonicalBody(map[string]interface{}{"b": 1, "a": 2})
	require.NoError(t, err)
	require.Equal(t, `{"a":2,"b":1}`, string(a))
}

func TestCanonicalizeRawEmptyIsEmptyObject(t *testing.T) {
	out, err := CanonicalizeRaw(nil)
	require.NoError(t, err)
	require.Equal(t, "{}", string(out))

	out, err = CanonicalizeRaw([]byte("   "))
	require.NoError(t, err)
	require.Equal(t, "{}", string(out))
}
