//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package otext

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/markkurossi/otbits/prg"
)

// PRGContext is the context string of the expand-transpose PRG.
const PRGContext = "otbits v0.1.0 correlated OT PRG"

var (
	labelSID = []byte("sid")
	labelRow = []byte("row")
)

// SquareBitMatrix implements a bit matrix with exactly
// SecurityParameter rows.
type SquareBitMatrix struct {
	matrix *BitMatrix
}

// NewSquareBitMatrix creates a square bit matrix from a copy of m. The
// function returns ErrSizeMismatch if m does not have
// SecurityParameter rows.
func NewSquareBitMatrix(m *BitMatrix) (*SquareBitMatrix, error) {
	if m.Height() != SecurityParameter {
		return nil, fmt.Errorf("%w: square matrix of %d rows, expected %d",
			ErrSizeMismatch, m.Height(), SecurityParameter)
	}
	return &SquareBitMatrix{
		matrix: m.Clone(),
	}, nil
}

// Matrix returns a copy of the underlying bit matrix.
func (sq *SquareBitMatrix) Matrix() *BitMatrix {
	return sq.matrix.Clone()
}

// ExpandTranspose expands each row of the matrix into rows
// pseudorandom bits and returns the transpose of the resulting
// SecurityParameter×rows matrix. The expansion is bound to the
// session ID sid and uses the cSHAKE256 expander.
func (sq *SquareBitMatrix) ExpandTranspose(sid []byte, rows int) *BitMatrix {
	return sq.ExpandTransposeWith(prg.NewCShake, sid, rows)
}

// ExpandTransposeWith implements ExpandTranspose with the expander
// newExpander.
func (sq *SquareBitMatrix) ExpandTransposeWith(newExpander prg.Constructor,
	sid []byte, rows int) *BitMatrix {

	prefix := sessionPrefix(newExpander, sid)
	out := newZeroBitMatrix(rows)

	// How many bytes to get rows bits.
	expanded := make([]byte, (rows+7)/8)

	for j := range sq.matrix.rows {
		expandRow(prefix, &sq.matrix.rows[j], expanded)

		// Write the expansion into column j.
		word := j / 64
		shift := j % 64
		for i := range out.rows {
			out.rows[i][word] |= uint64((expanded[i/8]>>(i%8))&1) << shift
		}
	}

	return out
}

// ExpandTransposeParallel computes the same matrix as
// ExpandTransposeWith with up to workers goroutines. The row
// expansions run in parallel and are then transposed in parallel
// over disjoint ranges of output rows. Unlike ExpandTransposeWith,
// this holds all SecurityParameter expansions in memory at once. If
// workers is not positive, the function runs sequentially.
func (sq *SquareBitMatrix) ExpandTransposeParallel(
	newExpander prg.Constructor, sid []byte, rows, workers int) *BitMatrix {

	if workers <= 0 {
		return sq.ExpandTransposeWith(newExpander, sid, rows)
	}

	prefix := sessionPrefix(newExpander, sid)
	row8 := (rows + 7) / 8

	var expanded [SecurityParameter][]byte
	var g errgroup.Group
	g.SetLimit(workers)

	for j := range expanded {
		// Each goroutine forks its own expander from a private
		// copy of the prefix.
		fork := prefix.Fork()
		g.Go(func() error {
			expanded[j] = make([]byte, row8)
			expandRow(fork, &sq.matrix.rows[j], expanded[j])
			return nil
		})
	}
	g.Wait()

	out := newZeroBitMatrix(rows)
	chunk := (rows + workers - 1) / workers
	for lo := 0; lo < rows; lo += chunk {
		hi := min(lo+chunk, rows)
		g.Go(func() error {
			transposeRows(out, &expanded, lo, hi)
			return nil
		})
	}
	g.Wait()

	return out
}

// transposeRows sets output rows [lo, hi) from the row expansions.
func transposeRows(out *BitMatrix, expanded *[SecurityParameter][]byte,
	lo, hi int) {

	for i := lo; i < hi; i++ {
		byteIdx := i / 8
		shift := i % 8
		row := &out.rows[i]
		for j := range expanded {
			row[j/64] |= uint64((expanded[j][byteIdx]>>shift)&1) << (j % 64)
		}
	}
}

// sessionPrefix creates the expander state shared by all row
// expansions of the session sid.
func sessionPrefix(newExpander prg.Constructor, sid []byte) prg.Expander {
	prefix := newExpander([]byte(PRGContext))
	prefix.MetaAD(labelSID, false)
	prefix.AD(sid, false)
	return prefix
}

// expandRow expands the seed row into out using a fork of prefix.
func expandRow(prefix prg.Expander, row *BitVector, out []byte) {
	e := prefix.Fork()
	e.MetaAD(labelRow, false)
	e.AD(nil, false)

	var buf [8]byte
	for _, w := range row {
		binary.LittleEndian.PutUint64(buf[:], w)
		e.AD(buf[:], true)
	}
	e.Squeeze(out)
}
