package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey returns kind + ":" + hex(sha256(json(parts))). Parts are encoded
// one JSON value per line so that ("ab", "c") and ("a", "bc") differ.
func hashKey(kind string, parts ...any) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, p := range parts {
		// Encoding into a hash cannot fail for the plain values used here.
		_ = enc.Encode(p)
	}
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash fingerprints a serialized dataset. Layout and artifact keys are
// derived from it, so a changed source invalidates everything built on it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
