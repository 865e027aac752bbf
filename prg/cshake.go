//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package prg

import (
	"golang.org/x/crypto/sha3"
)

var cshakeFunction = []byte("otbits")

// NewCShake creates an expander backed by cSHAKE256 with the context
// as the customization string.
func NewCShake(context []byte) Expander {
	return &transcript{
		xof: &cshake{
			h: sha3.NewCShake256(cshakeFunction, context),
		},
	}
}

type cshake struct {
	h sha3.ShakeHash
}

func (c *cshake) Write(p []byte) (int, error) {
	return c.h.Write(p)
}

func (c *cshake) fork() absorber {
	return &cshake{
		h: c.h.Clone(),
	}
}

func (c *cshake) read(out []byte) {
	c.h.Read(out)
}
