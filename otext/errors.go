//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package otext

import (
	"errors"
	"fmt"
)

var (
	// ErrSizeMismatch is returned when a square bit matrix is
	// constructed from a matrix whose height is not
	// SecurityParameter.
	ErrSizeMismatch = errors.New("otext: size mismatch")

	// ErrDimensionMismatch is returned when combining bit matrices of
	// different heights.
	ErrDimensionMismatch = errors.New("otext: dimension mismatch")

	// ErrInvalidEncoding is returned when decoding malformed bit
	// vectors or matrices.
	ErrInvalidEncoding = errors.New("otext: invalid encoding")
)

func invalidEncoding(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidEncoding, fmt.Sprintf(format, a...))
}
