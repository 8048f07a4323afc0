package util

import (
	"crypto/sha256"
	"encoding/base64"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt only reads the first 72 bytes of its input, so passwords are reduced to a
// fixed 44-byte base64 SHA-256 digest first. Any length is accepted and every byte counts.
func passwordKey(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	key := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(key, sum[:])
	return key
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(passwordKey(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), passwordKey(password)) == nil
}

var (
	decoyOnce sync.Once
	decoyHash []byte
)

// BurnPasswordCheck spends the same bcrypt work as CheckPassword against a throwaway
// hash. Used when there is no stored hash to compare with.
func BurnPasswordCheck(password string) {
	decoyOnce.Do(func() {
		decoyHash, _ = bcrypt.GenerateFromPassword(passwordKey("feeltrack-decoy"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(decoyHash, passwordKey(password))
}
