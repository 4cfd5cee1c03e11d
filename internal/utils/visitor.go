package utils

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

const visitorHashSize = 16

// VisitorHash derives a stable pseudonymous visitor id from the client address and user agent.
// The salt keys the hash so ids cannot be reversed to addresses without it.
func VisitorHash(ip, userAgent, salt string) string {
	if ip == "" && userAgent == "" {
		return ""
	}
	key := blake2b.Sum256([]byte(salt))
	h, err := blake2b.New(visitorHashSize, key[:])
	if err != nil {
		// only reachable with an invalid size or a key over 64 bytes
		panic(err)
	}
	h.Write([]byte(ip))
	h.Write([]byte{0})
	h.Write([]byte(userAgent))
	return hex.EncodeToString(h.Sum(nil))
}
