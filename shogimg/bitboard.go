package shogimg

import "math/bits"

// Bitboard is a set over the 81 squares; squares 0..63 live in lo and
// 64..80 in the low 17 bits of hi.
type Bitboard struct {
	lo, hi uint64
}

const hiMask = (uint64(1) << (NumSquares - 64)) - 1

// SquareBB holds single-square bitboards, indexed by square.
var SquareBB [NumSquares]Bitboard

func init() {
	for sq := 0; sq < NumSquares; sq++ {
		SquareBB[sq] = bbFromSquare(Square(sq))
	}
}

func bbFromSquare(sq Square) Bitboard {
	if sq < 64 {
		return Bitboard{lo: 1 << sq}
	}
	return Bitboard{hi: 1 << (sq - 64)}
}

// IsEmpty reports whether no square is set.
func (b Bitboard) IsEmpty() bool { return b.lo == 0 && b.hi == 0 }

// IsSet reports whether the square is in the set.
func (b Bitboard) IsSet(sq Square) bool {
	if sq < 64 {
		return b.lo&(1<<sq) != 0
	}
	return b.hi&(1<<(sq-64)) != 0
}

// Set returns the bitboard with the square added.
func (b Bitboard) Set(sq Square) Bitboard {
	if sq < 64 {
		b.lo |= 1 << sq
	} else {
		b.hi |= 1 << (sq - 64)
	}
	return b
}

// Clear returns the bitboard with the square removed.
func (b Bitboard) Clear(sq Square) Bitboard {
	if sq < 64 {
		b.lo &^= 1 << sq
	} else {
		b.hi &^= 1 << (sq - 64)
	}
	return b
}

// Count returns the number of squares in the set.
func (b Bitboard) Count() int {
	return bits.OnesCount64(b.lo) + bits.OnesCount64(b.hi)
}

// And returns the intersection of two bitboards.
func (b Bitboard) And(o Bitboard) Bitboard { return Bitboard{b.lo & o.lo, b.hi & o.hi} }

// Or returns the union of two bitboards.
func (b Bitboard) Or(o Bitboard) Bitboard { return Bitboard{b.lo | o.lo, b.hi | o.hi} }

// Xor returns the symmetric difference of two bitboards.
func (b Bitboard) Xor(o Bitboard) Bitboard { return Bitboard{b.lo ^ o.lo, b.hi ^ o.hi} }

// AndNot returns b with o's squares removed.
func (b Bitboard) AndNot(o Bitboard) Bitboard { return Bitboard{b.lo &^ o.lo, b.hi &^ o.hi} }

// Not returns the complement within the 81 board squares.
func (b Bitboard) Not() Bitboard { return Bitboard{^b.lo, ^b.hi & hiMask} }

// LSB returns the lowest set square; call only on a non-empty bitboard.
func (b Bitboard) LSB() Square {
	if b.lo != 0 {
		return Square(bits.TrailingZeros64(b.lo))
	}
	return Square(64 + bits.TrailingZeros64(b.hi))
}

// MSB returns the highest set square; call only on a non-empty bitboard.
func (b Bitboard) MSB() Square {
	if b.hi != 0 {
		return Square(64 + 63 - bits.LeadingZeros64(b.hi))
	}
	return Square(63 - bits.LeadingZeros64(b.lo))
}

// PopLSB removes and returns the lowest set square.
func (b *Bitboard) PopLSB() Square {
	if b.lo != 0 {
		sq := Square(bits.TrailingZeros64(b.lo))
		b.lo &= b.lo - 1
		return sq
	}
	sq := Square(64 + bits.TrailingZeros64(b.hi))
	b.hi &= b.hi - 1
	return sq
}

// Intersects reports whether the two sets share any square.
func (b Bitboard) Intersects(o Bitboard) bool {
	return b.lo&o.lo != 0 || b.hi&o.hi != 0
}
