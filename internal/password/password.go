// Package password generates the server-issued account passwords and
// hashes them for storage. Users never choose a password: signup mails
// out a generated one.
package password

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const (
	lowercaseChars = "abcdefghijklmnopqrstuvwxyz"
	digitChars     = "0123456789"

	// GeneratedLength is the length of server-generated passwords.
	GeneratedLength = 16

	// HashCost is the bcrypt cost factor used for stored hashes.
	HashCost = 12
)

// Generate produces a cryptographically secure random password of
// GeneratedLength characters containing at least one lowercase letter
// and one digit.
func Generate() (string, error) {
	pool := lowercaseChars + digitChars
	result := make([]byte, GeneratedLength)

	// Guarantee one character from each class, then fill from the pool.
	sets := []string{lowercaseChars, digitChars}
	for i, charset := range sets {
		ch, err := randChar(charset)
		if err != nil {
			return "", err
		}
		result[i] = ch
	}
	for i := len(sets); i < GeneratedLength; i++ {
		ch, err := randChar(pool)
		if err != nil {
			return "", err
		}
		result[i] = ch
	}

	if err := shuffle(result); err != nil {
		return "", err
	}
	return string(result), nil
}

// Hash returns the bcrypt hash of plaintext at HashCost.
func Hash(plaintext string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), HashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// Compare reports whether plaintext matches the stored hash. bcrypt's
// comparison is constant-time.
func Compare(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

func randChar(charset string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
	if err != nil {
		return 0, fmt.Errorf("random char: %w", err)
	}
	return charset[n.Int64()], nil
}

// shuffle is a Fisher-Yates shuffle driven by crypto/rand so the
// guaranteed-class characters do not sit at fixed positions.
func shuffle(data []byte) error {
	for i := len(data) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("shuffle: %w", err)
		}
		j := n.Int64()
		data[i], data[j] = data[j], data[i]
	}
	return nil
}
