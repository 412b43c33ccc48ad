package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	apperrors "github.com/menuboard/display-server-go/internal/errors"
	"github.com/menuboard/display-server-go/internal/repository"
)

// Pairing codes are short enough to type on a TV remote. The alphabet drops
// 0/O and 1/I so a code read off a screen is unambiguous.
const (
	pairingCodeChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	pairingCodeLength = 6
	maxCodeAttempts   = 10
)

func generatePairingCode() string {
	chars := []byte(pairingCodeChars)
	code := make([]byte, pairingCodeLength)
	for i := range code {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		code[i] = chars[n.Int64()]
	}
	return string(code)
}

// newUniquePairingCode generates a code not currently held by any display.
// The attempt bound guards against a pathologically full code space; the
// store's unique index still backs the race between concurrent generators.
func newUniquePairingCode(ctx context.Context, displays repository.DisplayRepository) (string, error) {
	for attempts := 0; attempts < maxCodeAttempts; attempts++ {
		code := generatePairingCode()
		existing, err := displays.FindByPairingCode(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check pairing code: %w", err)
		}
		if existing == nil {
			return code, nil
		}
	}
	return "", apperrors.CodeSpaceExhausted()
}
