package services

import (
	"crypto/rand"
	"math/big"
)

const (
	slugLength       = 13
	slugChars        = "abcdefghijklmnopqrstuvwxyz0123456789"
	ownerTokenLength = 32
	ownerTokenChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	maxSlugAttempts  = 5
)

// GenerateSlug returns a random 13-character lowercase alphanumeric slug
// (about 67 bits). The store's unique constraint is the final guard.
func GenerateSlug() string {
	return randomString(slugLength, slugChars)
}

// GenerateOwnerToken returns a random inbox credential
func GenerateOwnerToken() string {
	return randomString(ownerTokenLength, ownerTokenChars)
}

func randomString(length int, chars string) string {
	out := make([]byte, length)
	max := big.NewInt(int64(len(chars)))
	for i := range out {
		n, _ := rand.Int(rand.Reader, max)
		out[i] = chars[n.Int64()]
	}
	return string(out)
}
