//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package otext

import (
	"fmt"
)

// Message types.
const (
	msgBitVector byte = iota + 1
	msgBitMatrix
)

// IO defines the connection interface for exchanging bit vectors and
// matrices between peers.
type IO interface {
	// SendByte sends a byte value.
	SendByte(val byte) error

	// SendData sends binary data.
	SendData(val []byte) error

	// Flush flushed any pending data in the connection.
	Flush() error

	// ReceiveByte receives a byte value.
	ReceiveByte() (byte, error)

	// ReceiveData receives binary data.
	ReceiveData() ([]byte, error)
}

func receiveType(io IO, expected byte) error {
	t, err := io.ReceiveByte()
	if err != nil {
		return err
	}
	if t != expected {
		return invalidEncoding("message type %d, expected %d", t, expected)
	}
	return nil
}

// SendBitVector sends the bit vector and flushes the connection.
func SendBitVector(io IO, v BitVector) error {
	if err := io.SendByte(msgBitVector); err != nil {
		return err
	}
	b := v.Bytes()
	if err := io.SendData(b[:]); err != nil {
		return err
	}
	return io.Flush()
}

// ReceiveBitVector receives a bit vector.
func ReceiveBitVector(io IO) (BitVector, error) {
	var v BitVector

	if err := receiveType(io, msgBitVector); err != nil {
		return v, err
	}
	data, err := io.ReceiveData()
	if err != nil {
		return v, err
	}
	if err := v.UnmarshalBinary(data); err != nil {
		return v, err
	}
	return v, nil
}

// SendBitMatrix sends the bit matrix and flushes the connection.
func SendBitMatrix(io IO, m *BitMatrix) error {
	data, err := m.MarshalBinary()
	if err != nil {
		return err
	}
	if err := io.SendByte(msgBitMatrix); err != nil {
		return err
	}
	if err := io.SendData(data); err != nil {
		return err
	}
	return io.Flush()
}

// ReceiveBitMatrix receives a bit matrix.
func ReceiveBitMatrix(io IO) (*BitMatrix, error) {
	if err := receiveType(io, msgBitMatrix); err != nil {
		return nil, err
	}
	data, err := io.ReceiveData()
	if err != nil {
		return nil, err
	}
	m := new(BitMatrix)
	if err := m.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("otext: receive bit matrix: %w", err)
	}
	return m, nil
}
