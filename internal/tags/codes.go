package tags

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// Activation codes are typed by hand off a printed insert, so the alphabet
// drops visually ambiguous symbols (0/O, 1/I/L).
const (
	activationAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	activationCodeLength = 8
	tagCodeBytes         = 8
	maxCodeAttempts      = 20
)

// GenerateActivationCode returns one candidate activation code. Uniqueness
// is the caller's concern; see UniqueActivationCode.
func GenerateActivationCode() (string, error) {
	buf := make([]byte, activationCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	var b strings.Builder
	b.Grow(activationCodeLength)
	for _, c := range buf {
		b.WriteByte(activationAlphabet[int(c)%len(activationAlphabet)])
	}
	return b.String(), nil
}

// GenerateTagCode returns a 16-character upper-hex public tag identifier.
// The space is large enough that collisions are left to the unique index.
func GenerateTagCode() (string, error) {
	buf := make([]byte, tagCodeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

// UniqueActivationCode draws candidates until exists reports the code free,
// giving up after a fixed number of attempts so store contention cannot spin
// the generator forever.
func UniqueActivationCode(ctx context.Context, exists func(context.Context, string) (bool, error)) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := GenerateActivationCode()
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check activation code uniqueness: %w", err)
		}
		if !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("could not find a free activation code after %d attempts", maxCodeAttempts)
}
