package utils

import "golang.org/x/crypto/bcrypt"

// bcryptCost is fixed system-wide; there is no per-user tuning.
const bcryptCost = 10

// HashPassword hashes a plaintext password with a per-hash random salt.
func HashPassword(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// VerifyPassword reports whether plaintext matches the stored digest. The
// comparison is timing-safe per bcrypt's contract.
func VerifyPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
