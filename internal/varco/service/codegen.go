package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/openvarco/varco/internal/varco/store"
)

// codeAlphabet gives 36^5 ≈ 60M combinations at the default length of 5,
// so collisions stay rare for any realistic number of live codes.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// ErrCapacityExhausted: the generator hit its retry ceiling without finding
// a free code. Operationally near-impossible unless the namespace is full.
var ErrCapacityExhausted = errors.New("code namespace exhausted")

// CodeGenerator produces fixed-length uppercase alphanumeric codes that do
// not collide with any currently live code.
type CodeGenerator struct {
	records     store.AccessRecordStore
	length      int
	maxAttempts int
}

func NewCodeGenerator(records store.AccessRecordStore, length, maxAttempts int) *CodeGenerator {
	if length <= 0 {
		length = 5
	}
	if maxAttempts <= 0 {
		maxAttempts = 50
	}
	return &CodeGenerator{records: records, length: length, maxAttempts: maxAttempts}
}

// Generate draws random codes until one passes the store's existence check.
// The check and the eventual insert are not atomic; the store's Create
// re-verifies uniqueness and the caller retries on ErrCodeConflict.
func (g *CodeGenerator) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		code, err := g.draw()
		if err != nil {
			return "", err
		}

		exists, err := g.records.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("code existence check: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrCapacityExhausted
}

func (g *CodeGenerator) draw() (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	buf := make([]byte, g.length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("draw random code: %w", err)
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
