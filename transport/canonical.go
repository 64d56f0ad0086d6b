// Package transport implements the signed inter-node envelope from
// spec §4.1: HMAC-SHA256 over "timestamp.canonical_body", a ±60s
// freshness window, and constant-time verification.
//
// Grounded on network/coordinator/conn.go's JSON-over-the-wire pattern
// (goccy/go-json encode/decode framing each message), adapted from a
// raw net.Conn to net/http.
package transport

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// emptyBodyCanonical is the literal canonical body for GET requests that
// carry no payload (spec §4.1).
const emptyBodyCanonical = "{}"

// CanonicalBody serializes v as a compact JSON object with sorted keys
// and no insignificant whitespace. goccy/go-json marshals map keys in
// sorted order the same way encoding/json does, but a struct marshals in
// field-declaration order regardless — so v is marshaled once, then
// round-tripped through a generic interface{} and marshaled again, the
// same path CanonicalizeRaw uses on the receiving end. Without this
// round-trip a struct-bodied request signs different bytes than the
// verifier recomputes and every such request fails signature
// verification.
func CanonicalBody(v interface{}) ([]byte, error) {
	if v == nil {
		return []byte(emptyBodyCanonical), nil
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return CanonicalizeRaw(buf)
}

// CanonicalizeRaw re-serializes an already-encoded JSON body into
// canonical form, so the verifier never trusts the sender's exact bytes
// (only the sender's logical content) when recomputing the signature.
// An empty or whitespace-only body canonicalizes to "{}".
func CanonicalizeRaw(raw []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return []byte(emptyBodyCanonical), nil
	}
	// UseNumber keeps integers (deltas up to 2^61-2) exact instead of
	// rounding them through float64.
	var generic interface{}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}
	return json.Marshal(generic)
}
