//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package otext implements the bit vector and bit matrix algebra of
// OT extension and the expand-transpose step that turns a square
// matrix of secret seeds into a tall pseudorandom matrix. All
// operations on secret bits are constant-time.
package otext

import (
	"crypto/subtle"
	"encoding/binary"
	"encoding/hex"
	"io"
	"iter"

	"github.com/markkurossi/otbits/ctime"
)

const (
	// SecurityParameter defines the width of bit vectors in bits and
	// the height of square bit matrices.
	SecurityParameter = 128

	// SecParam64 defines the number of 64-bit words in a bit vector.
	SecParam64 = (SecurityParameter + 64 - 1) / 64

	// SecParam8 defines the number of bytes in an encoded bit
	// vector.
	SecParam8 = (SecurityParameter + 8 - 1) / 8

	lastWordBits        = SecurityParameter - 64*(SecParam64-1)
	lastWordMask uint64 = 1<<lastWordBits - 1
)

// BitVector implements a SecurityParameter bit vector. Bit k is stored
// in word k/64 at bit position k%64. The bits above SecurityParameter
// in the last word are always zero.
type BitVector [SecParam64]uint64

// ZeroBitVector returns an all-zero bit vector.
func ZeroBitVector() BitVector {
	return BitVector{}
}

// RandomBitVector creates a random bit vector from the random source.
func RandomBitVector(r io.Reader) (BitVector, error) {
	var buf [SecParam64 * 8]byte
	var v BitVector

	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return v, err
	}
	for i := range v {
		v[i] = binary.LittleEndian.Uint64(buf[i*8:])
	}
	v[SecParam64-1] &= lastWordMask

	return v, nil
}

// BitVectorFromBytes decodes the bit vector from little-endian 8-byte
// chunks. A trailing partial chunk is zero-extended.
func BitVectorFromBytes(buf *[SecParam8]byte) BitVector {
	var padded [SecParam64 * 8]byte
	var v BitVector

	copy(padded[:], buf[:])
	for i := range v {
		v[i] = binary.LittleEndian.Uint64(padded[i*8:])
	}
	v[SecParam64-1] &= lastWordMask

	return v
}

// Bytes encodes the bit vector into bytes. It is the inverse of
// BitVectorFromBytes.
func (v BitVector) Bytes() [SecParam8]byte {
	var padded [SecParam64 * 8]byte
	var buf [SecParam8]byte

	for i, w := range v {
		binary.LittleEndian.PutUint64(padded[i*8:], w)
	}
	copy(buf[:], padded[:])

	return buf
}

// Bit returns the bit i of the vector as a constant-time choice.
func (v BitVector) Bit(i int) ctime.Choice {
	return ctime.EqZero((v[i/64] >> (i % 64)) & 1).Not()
}

// Bits returns an iterator over the SecurityParameter bits of the
// vector, starting from the least significant bit of word 0. Every
// bit is extracted with the same instruction sequence.
func (v BitVector) Bits() iter.Seq[ctime.Choice] {
	return func(yield func(ctime.Choice) bool) {
		for i := 0; i < SecurityParameter; i++ {
			if !yield(v.Bit(i)) {
				return
			}
		}
	}
}

// XorMut sets v to v ⊕ o.
func (v *BitVector) XorMut(o *BitVector) {
	for i := range v {
		v[i] ^= o[i]
	}
}

// Xor returns v ⊕ o.
func (v BitVector) Xor(o BitVector) BitVector {
	v.XorMut(&o)
	return v
}

// AndMut sets v to v ∧ o.
func (v *BitVector) AndMut(o *BitVector) {
	for i := range v {
		v[i] &= o[i]
	}
}

// And returns v ∧ o.
func (v BitVector) And(o BitVector) BitVector {
	v.AndMut(&o)
	return v
}

// SelectBitVector returns a if c is 0 and b if c is 1. The selection
// is done word by word with a bitmask.
func SelectBitVector(a, b BitVector, c ctime.Choice) BitVector {
	var out BitVector
	for i := range out {
		out[i] = ctime.Select(a[i], b[i], c)
	}
	return out
}

// ConstantTimeEqual tests if the vectors are equal in constant time.
func (v BitVector) ConstantTimeEqual(o BitVector) ctime.Choice {
	eq := ctime.ChoiceOf(1)
	for i := range v {
		eq = eq.And(ctime.Eq(v[i], o[i]))
	}
	return eq
}

// Equal tests if the vectors are equal. The running time depends on
// the vector contents so use it only for public values.
func (v BitVector) Equal(o BitVector) bool {
	return v == o
}

func (v BitVector) String() string {
	b := v.Bytes()
	return hex.EncodeToString(b[:])
}

// MarshalBinary encodes the vector as SecParam8 bytes.
func (v BitVector) MarshalBinary() ([]byte, error) {
	b := v.Bytes()
	return b[:], nil
}

// UnmarshalBinary decodes the vector from its MarshalBinary
// encoding.
func (v *BitVector) UnmarshalBinary(data []byte) error {
	if len(data) != SecParam8 {
		return invalidEncoding("bit vector length %d, expected %d",
			len(data), SecParam8)
	}
	var buf [SecParam8]byte
	copy(buf[:], data)

	r := BitVectorFromBytes(&buf)
	enc := r.Bytes()
	if subtle.ConstantTimeCompare(enc[:], buf[:]) != 1 {
		return invalidEncoding("bit vector has bits above %d set",
			SecurityParameter)
	}
	*v = r
	return nil
}
