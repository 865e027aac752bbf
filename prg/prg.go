//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package prg implements domain separated, forkable pseudorandom
// generators that expand short seeds into arbitrary length output.
package prg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrUnknownPRG is returned by ParseConstructor for unknown
	// generator names.
	ErrUnknownPRG = errors.New("prg: unknown generator")
)

// Expander is a keyed extendable output function. The caller absorbs
// a transcript of labeled operations and squeezes output that is a
// deterministic function of the transcript.
type Expander interface {
	// MetaAD absorbs a domain separation label. If more is true and
	// the previous operation was also a MetaAD, the label continues
	// it.
	MetaAD(label []byte, more bool)

	// AD absorbs associated data. If more is true and the previous
	// operation was also an AD, the data continues it.
	AD(data []byte, more bool)

	// Fork returns an independent copy of the expander. Operations
	// on the copy do not affect the original and vice versa.
	Fork() Expander

	// Squeeze fills out with pseudorandom bytes. The expander stays
	// usable and squeezing again without absorbing returns the same
	// output.
	Squeeze(out []byte)
}

// Constructor creates a new expander bound to the context string.
type Constructor func(context []byte) Expander

// Operation tags.
const (
	opNone byte = iota
	opMeta
	opData
	opSqueeze
)

// absorber is the underlying XOF state the transcript is written to.
type absorber interface {
	io.Writer
	fork() absorber
	read(out []byte)
}

// transcript encodes the labeled operations into the absorber. Each
// operation starts with its tag byte and ends with its length as a
// little-endian uint64 when the next operation starts.
type transcript struct {
	xof    absorber
	op     byte
	opLen  uint64
	buffer [9]byte
}

func (t *transcript) begin(op byte, more bool) {
	if more && t.op == op {
		return
	}
	t.end()
	t.op = op
	t.opLen = 0
	t.buffer[0] = op
	t.xof.Write(t.buffer[:1])
}

func (t *transcript) end() {
	if t.op == opNone {
		return
	}
	binary.LittleEndian.PutUint64(t.buffer[:8], t.opLen)
	t.xof.Write(t.buffer[:8])
	t.op = opNone
}

func (t *transcript) write(data []byte) {
	t.xof.Write(data)
	t.opLen += uint64(len(data))
}

// MetaAD implements Expander.MetaAD.
func (t *transcript) MetaAD(label []byte, more bool) {
	t.begin(opMeta, more)
	t.write(label)
}

// AD implements Expander.AD.
func (t *transcript) AD(data []byte, more bool) {
	t.begin(opData, more)
	t.write(data)
}

// Fork implements Expander.Fork.
func (t *transcript) Fork() Expander {
	return t.clone()
}

func (t *transcript) clone() *transcript {
	return &transcript{
		xof:   t.xof.fork(),
		op:    t.op,
		opLen: t.opLen,
	}
}

// Squeeze implements Expander.Squeeze.
func (t *transcript) Squeeze(out []byte) {
	f := t.clone()
	f.begin(opSqueeze, false)
	f.end()
	f.xof.read(out)
}

// ParseConstructor returns the expander constructor for the name:
// "cshake" or "blake2x".
func ParseConstructor(name string) (Constructor, error) {
	switch name {
	case "cshake", "":
		return NewCShake, nil
	case "blake2x":
		return NewBlake2X, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPRG, name)
	}
}
