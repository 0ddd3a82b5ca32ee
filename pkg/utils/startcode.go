package utils

import (
	"crypto/sha256"
	"fmt"
)

// GenerateStartCode derives a 6-digit ride-start code from the given unique
// key. The key should change per booking (ride id + user id + timestamp) so
// codes do not repeat.
func GenerateStartCode(uniqueKey string) string {
	h := sha256.New()
	h.Write([]byte(uniqueKey))
	hash := h.Sum(nil)

	num := uint32(hash[0])<<24 | uint32(hash[1])<<16 | uint32(hash[2])<<8 | uint32(hash[3])

	// Map the hash into the 6-digit range (100000-999999)
	code := 100000 + (num % 900000)

	return fmt.Sprintf("%06d", code)
}
