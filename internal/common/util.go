package common

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString returns size random bytes encoded as hex, so the result
// is 2*size characters long. Used for one-time verification and reset tokens.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray zeroes b in place. Passwords read from the terminal are
// wiped as soon as the request that needed them has been built.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
