//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package otext

import (
	"encoding/binary"
	"fmt"
	"iter"
	"math"
	"slices"
)

// BitMatrix implements a matrix of bits. Each row is a BitVector and
// the matrix can have any number of rows.
type BitMatrix struct {
	rows []BitVector
}

// NewBitMatrix creates a new matrix from a copy of the rows.
func NewBitMatrix(rows []BitVector) *BitMatrix {
	return &BitMatrix{
		rows: slices.Clone(rows),
	}
}

// CollectBitMatrix creates a new matrix from the rows of the
// sequence.
func CollectBitMatrix(seq iter.Seq[BitVector]) *BitMatrix {
	return &BitMatrix{
		rows: slices.Collect(seq),
	}
}

func newZeroBitMatrix(height int) *BitMatrix {
	return &BitMatrix{
		rows: make([]BitVector, height),
	}
}

// Height returns the number of rows in the matrix.
func (m *BitMatrix) Height() int {
	return len(m.rows)
}

// Row returns the row i.
func (m *BitMatrix) Row(i int) BitVector {
	return m.rows[i]
}

// Rows returns an iterator over the row indices and rows of the
// matrix.
func (m *BitMatrix) Rows() iter.Seq2[int, BitVector] {
	return func(yield func(int, BitVector) bool) {
		for i, row := range m.rows {
			if !yield(i, row) {
				return
			}
		}
	}
}

// Clone returns a copy of the matrix.
func (m *BitMatrix) Clone() *BitMatrix {
	return NewBitMatrix(m.rows)
}

// XorMut sets m to m ⊕ o. The matrices must have the same height.
func (m *BitMatrix) XorMut(o *BitMatrix) error {
	if len(m.rows) != len(o.rows) {
		return fmt.Errorf("%w: xor of %d and %d rows",
			ErrDimensionMismatch, len(m.rows), len(o.rows))
	}
	for i := range m.rows {
		m.rows[i].XorMut(&o.rows[i])
	}
	return nil
}

// Xor returns m ⊕ o. The matrices must have the same height.
func (m *BitMatrix) Xor(o *BitMatrix) (*BitMatrix, error) {
	result := m.Clone()
	if err := result.XorMut(o); err != nil {
		return nil, err
	}
	return result, nil
}

// AndVecMut ANDs every row of m with v.
func (m *BitMatrix) AndVecMut(v *BitVector) {
	for i := range m.rows {
		m.rows[i].AndMut(v)
	}
}

// AndVec returns a new matrix where every row of m is ANDed with v.
func (m *BitMatrix) AndVec(v *BitVector) *BitMatrix {
	result := m.Clone()
	result.AndVecMut(v)
	return result
}

// Equal tests if the matrices are equal. The running time depends on
// the matrix contents so use it only for public values.
func (m *BitMatrix) Equal(o *BitMatrix) bool {
	return slices.Equal(m.rows, o.rows)
}

// MarshalBinary encodes the matrix as the big-endian uint32 height
// followed by the MarshalBinary encoding of each row.
func (m *BitMatrix) MarshalBinary() ([]byte, error) {
	if uint64(len(m.rows)) > math.MaxUint32 {
		return nil, fmt.Errorf("otext: matrix height %d too large",
			len(m.rows))
	}
	data := make([]byte, 4, 4+len(m.rows)*SecParam8)
	binary.BigEndian.PutUint32(data, uint32(len(m.rows)))
	for _, row := range m.rows {
		b := row.Bytes()
		data = append(data, b[:]...)
	}
	return data, nil
}

// UnmarshalBinary decodes the matrix from its MarshalBinary encoding.
func (m *BitMatrix) UnmarshalBinary(data []byte) error {
	if len(data) < 4 {
		return invalidEncoding("bit matrix truncated")
	}
	height := uint64(binary.BigEndian.Uint32(data))
	if uint64(len(data)-4) != height*SecParam8 {
		return invalidEncoding("bit matrix of %d rows has %d bytes",
			height, len(data)-4)
	}
	rows := make([]BitVector, height)
	for i := range rows {
		ofs := 4 + i*SecParam8
		if err := rows[i].UnmarshalBinary(data[ofs : ofs+SecParam8]); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	m.rows = rows
	return nil
}
