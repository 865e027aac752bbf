//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package prg

import (
	"errors"
	"io"

	"golang.org/x/crypto/chacha20"
)

var (
	// ErrSeedSize is returned by NewReader if the seed is not
	// SeedSize bytes long.
	ErrSeedSize = errors.New("prg: invalid seed size")
)

// SeedSize defines the seed length of NewReader.
const SeedSize = chacha20.KeySize

// NewReader returns a deterministic random source that outputs the
// ChaCha20 keystream for the seed. Two readers with the same seed
// return identical streams. The stream is limited to 256 GiB.
func NewReader(seed []byte) (io.Reader, error) {
	if len(seed) != SeedSize {
		return nil, ErrSeedSize
	}
	var nonce [chacha20.NonceSize]byte
	c, err := chacha20.NewUnauthenticatedCipher(seed, nonce[:])
	if err != nil {
		return nil, err
	}
	return &reader{
		c: c,
	}, nil
}

type reader struct {
	c *chacha20.Cipher
}

func (r *reader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	r.c.XORKeyStream(p, p)
	return len(p), nil
}
