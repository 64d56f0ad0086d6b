package coordinator

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// mod reduces v into [0, p), matching shareserver.Mod's convention.
func mod(v, p int64) int64 {
	r := v % p
	if r < 0 {
		r += p
	}
	return r
}

// randomShare picks delta_A uniformly at random in [0, p) per spec §4.3
// step 2.
func randomShare(p int64) (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(p))
	if err != nil {
		return 0, fmt.Errorf("coordinator: generate random share: %w", err)
	}
	return n.Int64(), nil
}

// randomTxRoot generates a fresh 128-bit tx_root rendered as hex (spec
// §4.3 step 3).
func randomTxRoot() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("coordinator: generate tx_root: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
