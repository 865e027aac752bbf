//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package ctime implements constant-time primitives for selecting and
// comparing secret machine words. All functions are straight-line
// bitmask arithmetic with no branches or table lookups keyed on their
// operands.
//
// Choice values combine with Not, And, and Or so callers can build
// compound conditions without declassifying the operands.
//
// The Go compiler does not turn these expressions into conditional
// jumps today, but nothing in the language guarantees that. Security
// sensitive builds must not enable toolchain options that rewrite
// arithmetic into branches, and changes to this package must keep the
// policy test in policy_test.go passing.
package ctime

// Choice is a secret bit. Its value is either 0 or 1. Code must not
// branch on a Choice; use Select to act on it and Bool only when the
// value is public.
type Choice uint64

// ChoiceOf returns the least significant bit of bit as a Choice.
func ChoiceOf(bit uint64) Choice {
	return Choice(bit & 1)
}

// Not returns the negation of the choice.
func (c Choice) Not() Choice {
	return c ^ 1
}

// And returns c AND o.
func (c Choice) And(o Choice) Choice {
	return c & o
}

// Or returns c OR o.
func (c Choice) Or(o Choice) Choice {
	return c | o
}

// Mask returns an all-ones word if c is 1 and zero otherwise.
func (c Choice) Mask() uint64 {
	return -uint64(c & 1)
}

// Bool converts the choice into a bool. This declassifies the value:
// the result may be branched on, so call it only for public data such
// as test assertions.
func (c Choice) Bool() bool {
	return c&1 == 1
}

// Select returns a if c is 0 and b if c is 1.
func Select(a, b uint64, c Choice) uint64 {
	return a ^ (c.Mask() & (a ^ b))
}

// EqZero returns 1 if w is zero and 0 otherwise.
func EqZero(w uint64) Choice {
	return Choice(1 ^ ((w | -w) >> 63))
}

// Eq returns 1 if a equals b and 0 otherwise.
func Eq(a, b uint64) Choice {
	return EqZero(a ^ b)
}
