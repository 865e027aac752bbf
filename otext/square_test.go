//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package otext

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/markkurossi/otbits/prg"
)

var expanders = []struct {
	name string
	ctor prg.Constructor
}{
	{"cshake", prg.NewCShake},
	{"blake2x", prg.NewBlake2X},
}

func randomSquare(t testing.TB) *SquareBitMatrix {
	sq, err := NewSquareBitMatrix(
		NewBitMatrix(randomVectors(t, SecurityParameter)))
	require.NoError(t, err)
	return sq
}

func zeroSquare(t testing.TB) *SquareBitMatrix {
	sq, err := NewSquareBitMatrix(
		NewBitMatrix(make([]BitVector, SecurityParameter)))
	require.NoError(t, err)
	return sq
}

func TestNewSquareBitMatrix(t *testing.T) {
	rows := randomVectors(t, SecurityParameter+1)

	for _, height := range []int{
		0, 1, SecurityParameter - 1, SecurityParameter + 1,
	} {
		_, err := NewSquareBitMatrix(NewBitMatrix(rows[:height]))
		require.ErrorIs(t, err, ErrSizeMismatch, "height %d", height)
	}

	m := NewBitMatrix(rows[:SecurityParameter])
	sq, err := NewSquareBitMatrix(m)
	require.NoError(t, err)
	require.True(t, sq.Matrix().Equal(m))

	// The square matrix is not affected by changes to its source or
	// to the returned copies.
	require.NoError(t, m.XorMut(m.Clone()))
	require.True(t, sq.Matrix().Equal(NewBitMatrix(rows[:SecurityParameter])))
	require.NoError(t, sq.Matrix().XorMut(sq.Matrix()))
	require.True(t, sq.Matrix().Equal(NewBitMatrix(rows[:SecurityParameter])))
}

// referenceExpansion computes the un-transposed SecurityParameter×rows
// matrix as rows of bytes.
func referenceExpansion(ctor prg.Constructor, sq *SquareBitMatrix,
	sid []byte, rows int) [][]byte {

	prefix := ctor([]byte(PRGContext))
	prefix.MetaAD([]byte("sid"), false)
	prefix.AD(sid, false)

	result := make([][]byte, SecurityParameter)
	for j, row := range sq.Matrix().Rows() {
		e := prefix.Fork()
		e.MetaAD([]byte("row"), false)
		e.AD(nil, false)
		for _, w := range row {
			e.AD(binary.LittleEndian.AppendUint64(nil, w), true)
		}
		result[j] = make([]byte, (rows+7)/8)
		e.Squeeze(result[j])
	}
	return result
}

func TestExpandTransposeReference(t *testing.T) {
	sq := randomSquare(t)
	sid := []byte("reference")

	for _, e := range expanders {
		for _, rows := range []int{1, 7, 8, 9, 64, 130} {
			t.Run(fmt.Sprintf("%s/%d", e.name, rows), func(t *testing.T) {
				ref := referenceExpansion(e.ctor, sq, sid, rows)
				out := sq.ExpandTransposeWith(e.ctor, sid, rows)
				require.Equal(t, rows, out.Height())

				for i := 0; i < rows; i++ {
					row := out.Row(i)
					for j := 0; j < SecurityParameter; j++ {
						expected := (ref[j][i/8]>>(i%8))&1 == 1
						require.Equal(t, expected, row.Bit(j).Bool(),
							"row %d, column %d", i, j)
					}
				}
			})
		}
	}
}

func TestExpandTransposeDefault(t *testing.T) {
	sq := randomSquare(t)
	sid := []byte("default")
	require.True(t, sq.ExpandTranspose(sid, 100).Equal(
		sq.ExpandTransposeWith(prg.NewCShake, sid, 100)))
	require.False(t, sq.ExpandTranspose(sid, 100).Equal(
		sq.ExpandTransposeWith(prg.NewBlake2X, sid, 100)))
}

func TestExpandTransposeDeterministic(t *testing.T) {
	sq := randomSquare(t)
	sid := []byte("session")

	a := sq.ExpandTranspose(sid, 1000)
	b := sq.ExpandTranspose(sid, 1000)
	require.True(t, a.Equal(b))

	// A shorter expansion is a prefix of a longer one.
	c := sq.ExpandTranspose(sid, 10)
	for i, row := range c.Rows() {
		require.Equal(t, a.Row(i), row)
	}
}

func TestExpandTransposeShape(t *testing.T) {
	sq := randomSquare(t)
	for _, rows := range []int{0, 1, 8, 1000} {
		out := sq.ExpandTranspose([]byte("shape"), rows)
		require.Equal(t, rows, out.Height())
		for _, row := range out.Rows() {
			var count int
			for range row.Bits() {
				count++
			}
			require.Equal(t, SecurityParameter, count)
		}
	}
}

func TestExpandTransposeZeroScenario(t *testing.T) {
	sq := zeroSquare(t)

	a := sq.ExpandTranspose([]byte("test"), 8)
	require.Equal(t, 8, a.Height())
	require.True(t, a.Equal(zeroSquare(t).ExpandTranspose([]byte("test"), 8)))

	b := sq.ExpandTranspose([]byte("test2"), 8)
	require.False(t, a.Equal(b))

	// All rows of the zero matrix have the same seed so every column
	// is the same expansion.
	for _, row := range a.Rows() {
		require.True(t, row.Equal(ZeroBitVector()) ||
			row.Equal(allOnes()), "row %v", row)
	}
}

var zeroScenarioAnswers = []struct {
	name     string
	ctor     prg.Constructor
	expected [8]string
}{
	{
		// Column expansion byte 0x74.
		name: "cshake",
		ctor: prg.NewCShake,
		expected: [8]string{
			"00000000000000000000000000000000",
			"00000000000000000000000000000000",
			"ffffffffffffffffffffffffffffffff",
			"00000000000000000000000000000000",
			"ffffffffffffffffffffffffffffffff",
			"ffffffffffffffffffffffffffffffff",
			"ffffffffffffffffffffffffffffffff",
			"00000000000000000000000000000000",
		},
	},
	{
		// Column expansion byte 0x95.
		name: "blake2x",
		ctor: prg.NewBlake2X,
		expected: [8]string{
			"ffffffffffffffffffffffffffffffff",
			"00000000000000000000000000000000",
			"ffffffffffffffffffffffffffffffff",
			"00000000000000000000000000000000",
			"ffffffffffffffffffffffffffffffff",
			"00000000000000000000000000000000",
			"00000000000000000000000000000000",
			"ffffffffffffffffffffffffffffffff",
		},
	},
}

func TestExpandTransposeZeroKnownAnswer(t *testing.T) {
	sq := zeroSquare(t)

	for _, test := range zeroScenarioAnswers {
		out := sq.ExpandTransposeWith(test.ctor, []byte("test"), 8)
		require.Equal(t, len(test.expected), out.Height(), test.name)
		for i, row := range out.Rows() {
			require.Equal(t, test.expected[i], row.String(),
				"%s: row %d", test.name, i)
		}
	}
}

func allOnes() BitVector {
	var v BitVector
	for i := range v {
		v[i] = ^uint64(0)
	}
	v[SecParam64-1] &= lastWordMask
	return v
}

func TestExpandTransposeAvalanche(t *testing.T) {
	const rows = 2048
	sid := []byte("avalanche")

	rowsIn := randomVectors(t, SecurityParameter)
	sq, err := NewSquareBitMatrix(NewBitMatrix(rowsIn))
	require.NoError(t, err)
	base := sq.ExpandTranspose(sid, rows)

	for _, flip := range []struct{ row, bit int }{{0, 0}, {37, 100}, {127, 127}} {
		modified := NewBitMatrix(rowsIn)
		modified.rows[flip.row][flip.bit/64] ^= 1 << (flip.bit % 64)
		sq2, err := NewSquareBitMatrix(modified)
		require.NoError(t, err)
		out := sq2.ExpandTranspose(sid, rows)

		// Only the column of the modified seed row changes, in
		// about half of the output rows.
		var changed int
		for i := 0; i < rows; i++ {
			diff := base.Row(i).Xor(out.Row(i))
			for j := 0; j < SecurityParameter; j++ {
				if j == flip.row {
					if diff.Bit(j).Bool() {
						changed++
					}
					continue
				}
				require.False(t, diff.Bit(j).Bool())
			}
		}
		require.Greater(t, changed, rows*2/5, "flip %v", flip)
		require.Less(t, changed, rows*3/5, "flip %v", flip)
	}
}

func TestExpandTransposeParallel(t *testing.T) {
	sq := randomSquare(t)
	sid := []byte("parallel")

	for _, e := range expanders {
		for _, rows := range []int{0, 1, 9, 1000} {
			expected := sq.ExpandTransposeWith(e.ctor, sid, rows)
			for _, workers := range []int{-1, 0, 1, 3, 8, 2000} {
				out := sq.ExpandTransposeParallel(e.ctor, sid, rows, workers)
				require.True(t, expected.Equal(out),
					"%s: rows=%d, workers=%d", e.name, rows, workers)
			}
		}
	}
}

func BenchmarkExpandTranspose1K(b *testing.B) {
	benchmarkExpandTranspose(b, 1024, 0)
}

func BenchmarkExpandTranspose64K(b *testing.B) {
	benchmarkExpandTranspose(b, 64*1024, 0)
}

func BenchmarkExpandTransposeParallel64K(b *testing.B) {
	benchmarkExpandTranspose(b, 64*1024, 8)
}

func benchmarkExpandTranspose(b *testing.B, rows, workers int) {
	sq := randomSquare(b)
	sid := []byte("benchmark")

	for b.Loop() {
		sq.ExpandTransposeParallel(prg.NewCShake, sid, rows, workers)
	}
}
