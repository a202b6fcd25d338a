package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// codeBytes of entropy encode to a 43 character URL-safe code.
const codeBytes = 32

// GenerateConfirmationCode returns a fresh random code in plain text.
// Only its hash is ever stored.
func GenerateConfirmationCode() (string, error) {
	buf := make([]byte, codeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate confirmation code: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashConfirmationCode creates a bcrypt hash from the given plaintext code.
func HashConfirmationCode(code string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// VerifyConfirmationCode checks the provided code against the stored hash in
// constant time. An empty hash or code never matches.
func VerifyConfirmationCode(hashedCode, providedCode string) error {
	if hashedCode == "" || providedCode == "" {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return bcrypt.CompareHashAndPassword([]byte(hashedCode), []byte(providedCode))
}
