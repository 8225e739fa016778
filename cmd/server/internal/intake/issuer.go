package intake

import (
	"crypto/rand"
	"io"
	"math/big"
)

const (
	CodeLength     = 6
	PublicIDLength = 8

	codeAlphabet     = "0123456789"
	publicIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Issuer mints verification codes and public submission ids.
type Issuer interface {
	Code() (string, error)
	PublicID() (string, error)
}

// Ensure RandomIssuer implements Issuer interface.
var _ Issuer = (*RandomIssuer)(nil)

// RandomIssuer draws every character uniformly from a cryptographically
// secure source.
type RandomIssuer struct {
	source io.Reader
}

func NewRandomIssuer() *RandomIssuer {
	return &RandomIssuer{source: rand.Reader}
}

func (i *RandomIssuer) Code() (string, error) {
	return randomString(i.source, codeAlphabet, CodeLength)
}

func (i *RandomIssuer) PublicID() (string, error) {
	return randomString(i.source, publicIDAlphabet, PublicIDLength)
}

func randomString(source io.Reader, alphabet string, length int) (string, error) {
	limit := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		idx, err := rand.Int(source, limit)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[idx.Int64()]
	}

	return string(out), nil
}
