//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package otext_test

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/markkurossi/otbits/otext"
	"github.com/markkurossi/otbits/p2p"
)

var (
	_ otext.IO = &p2p.Conn{}
)

func TestWireRoundTrip(t *testing.T) {
	c0, c1 := p2p.Pipe()

	rows := make([]otext.BitVector, otext.SecurityParameter)
	for i := range rows {
		v, err := otext.RandomBitVector(rand.Reader)
		require.NoError(t, err)
		rows[i] = v
	}
	sq, err := otext.NewSquareBitMatrix(otext.NewBitMatrix(rows))
	require.NoError(t, err)
	expanded := sq.ExpandTranspose([]byte("wire"), 50000)

	errc := make(chan error, 1)
	go func() {
		if err := otext.SendBitVector(c0, rows[0]); err != nil {
			errc <- err
			return
		}
		errc <- otext.SendBitMatrix(c0, expanded)
	}()

	v, err := otext.ReceiveBitVector(c1)
	require.NoError(t, err)
	require.Equal(t, rows[0], v)

	m, err := otext.ReceiveBitMatrix(c1)
	require.NoError(t, err)
	require.NoError(t, <-errc)
	require.True(t, expanded.Equal(m))

	require.NoError(t, c0.Close())
	require.NoError(t, c1.Close())
}

func TestWireInvalid(t *testing.T) {
	c0, c1 := p2p.Pipe()

	go func() {
		// Valid message types followed by malformed payloads.
		c0.SendByte(1)
		c0.SendData([]byte{1, 2, 3})
		c0.SendByte(2)
		c0.SendData([]byte{0, 0, 0, 2, 1})

		// A valid matrix received as a vector.
		otext.SendBitMatrix(c0, otext.NewBitMatrix(nil))
	}()

	_, err := otext.ReceiveBitVector(c1)
	require.ErrorIs(t, err, otext.ErrInvalidEncoding)

	_, err = otext.ReceiveBitMatrix(c1)
	require.ErrorIs(t, err, otext.ErrInvalidEncoding)

	_, err = otext.ReceiveBitVector(c1)
	require.ErrorIs(t, err, otext.ErrInvalidEncoding, "matrix as vector")
}
