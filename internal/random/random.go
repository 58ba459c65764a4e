package random

import (
	"crypto/rand"
	"math/big"
)

var allowedLetters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")

// Letters returns a cryptographically random string of n ASCII letters.
func Letters(n uint) (string, error) {
	letters := make([]rune, n)
	upper := big.NewInt(int64(len(allowedLetters)))
	for i := range letters {
		letterIndex, err := rand.Int(rand.Reader, upper)
		if err != nil {
			return "", err //nolint:wrapcheck // crypto/rand errors are self-explanatory
		}
		letters[i] = allowedLetters[letterIndex.Int64()]
	}
	return string(letters), nil
}
