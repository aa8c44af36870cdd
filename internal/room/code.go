package room

import (
	"crypto/rand"
	"math/big"
)

// codeAlphabet skips visually confusable characters (0/O, 1/I/L) so codes
// survive being read aloud or retyped from a screenshot.
const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// CodeLength is the length of generated room codes.
const CodeLength = 5

func generateCode() (string, error) {
	code := make([]byte, CodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		code[i] = codeAlphabet[n.Int64()]
	}
	return string(code), nil
}
