package token

import (
	"crypto/rand"
	"math/big"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_generator.go github.com/guesswho-game/guesswho/internal/common/token Generator

// DefaultLength is the length of generated tokens
const DefaultLength = 8

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Generator produces opaque tokens for user credentials and private
// room join tokens
type Generator interface {
	NewToken(length int) string
}

// DefaultGenerator implements Generator using crypto/rand
type DefaultGenerator struct{}

func New() *DefaultGenerator {
	return &DefaultGenerator{}
}

// NewToken returns a random token of the given length
func (g *DefaultGenerator) NewToken(length int) string {
	buf := make([]byte, length)
	max := big.NewInt(int64(len(alphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails if the system source is broken
			panic(err)
		}
		buf[i] = alphabet[n.Int64()]
	}
	return string(buf)
}
