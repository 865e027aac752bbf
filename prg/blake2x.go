//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package prg

import (
	"io"

	"golang.org/x/crypto/blake2b"
)

// NewBlake2X creates an expander backed by the BLAKE2b XOF. The XOF
// is keyed with BLAKE2b-512 of the context.
func NewBlake2X(context []byte) Expander {
	key := blake2b.Sum512(context)
	xof, err := blake2b.NewXOF(blake2b.OutputLengthUnknown, key[:])
	if err != nil {
		// The key is always blake2b.Size bytes.
		panic(err)
	}
	return &transcript{
		xof: &blake2x{
			xof: xof,
		},
	}
}

type blake2x struct {
	xof blake2b.XOF
}

func (b *blake2x) Write(p []byte) (int, error) {
	return b.xof.Write(p)
}

func (b *blake2x) fork() absorber {
	return &blake2x{
		xof: b.xof.Clone(),
	}
}

func (b *blake2x) read(out []byte) {
	if _, err := io.ReadFull(b.xof, out); err != nil {
		panic(err)
	}
}
