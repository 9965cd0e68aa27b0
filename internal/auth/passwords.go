package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt cost used for stored passwords.
const HashCost = 10

// MaxPasswordLen is the longest password bcrypt accepts.
const MaxPasswordLen = 72

// HashPassword returns the salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword reports whether password matches hash. The comparison runs
// in constant time with respect to the password.
func CheckPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
