package boardgen

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
)

// NewSeededRNG returns a deterministic generator for the given seed along
// with the seed actually used. A zero seed draws a fresh one from the
// operating system's entropy source, so separate unseeded runs produce
// different board sets while any explicit seed reproduces its run exactly.
func NewSeededRNG(seed int64) (*rand.Rand, int64, error) {
	if seed == 0 {
		fresh, err := randomSeed()
		if err != nil {
			return nil, 0, fmt.Errorf("failed to generate random seed: %w", err)
		}
		seed = fresh
	}
	return rand.New(rand.NewSource(seed)), seed, nil
}

// randomSeed produces a seed from crypto/rand.
func randomSeed() (int64, error) {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}
