package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Ambiguous glyphs (0/O, 1/l/I) are left out so the password survives being
// retyped from an email.
const (
	upperChars = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	lowerChars = "abcdefghijkmnopqrstuvwxyz"
	digitChars = "23456789"

	minTemporaryPasswordLength = 8
)

// GenerateTemporaryPassword returns a random password of the given length
// containing at least one upper-case letter, one lower-case letter and one
// digit.
func GenerateTemporaryPassword(length int) (string, error) {
	if length < minTemporaryPasswordLength {
		length = minTemporaryPasswordLength
	}

	classes := []string{upperChars, lowerChars, digitChars}
	all := upperChars + lowerChars + digitChars

	buf := make([]byte, length)
	for i := range buf {
		set := all
		if i < len(classes) {
			set = classes[i]
		}
		idx, err := randomIndex(len(set))
		if err != nil {
			return "", fmt.Errorf("generate temporary password: %w", err)
		}
		buf[i] = set[idx]
	}

	// Fisher-Yates so the guaranteed classes are not always in front.
	for i := len(buf) - 1; i > 0; i-- {
		j, err := randomIndex(i + 1)
		if err != nil {
			return "", fmt.Errorf("generate temporary password: %w", err)
		}
		buf[i], buf[j] = buf[j], buf[i]
	}

	return string(buf), nil
}

func randomIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
