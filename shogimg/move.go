package shogimg

import (
	"errors"
	"strings"
)

// Move encodes a shogi move in a 32-bit value.
type Move uint32

// Bitfield layout within Move (from LSB to MSB)
const (
	moveToShift      = 0  // 7 bits
	moveFromShift    = 7  // 7 bits (0x7F when the move is a drop)
	movePieceShift   = 14 // 4 bits: type moved or dropped
	moveCaptureShift = 18 // 4 bits: type captured (as it stood on the board)
	movePromoteShift = 22 // 1 bit
	moveDropShift    = 23 // 1 bit
)

const dropOrigin = 0x7F

// NewMove constructs a board move from components.
func NewMove(from, to Square, piece, captured PieceType, promote bool) Move {
	m := uint32(to&0x7F) |
		uint32(from&0x7F)<<moveFromShift |
		uint32(piece&0xF)<<movePieceShift |
		uint32(captured&0xF)<<moveCaptureShift
	if promote {
		m |= 1 << movePromoteShift
	}
	return Move(m)
}

// NewDrop constructs a drop of the given hand piece type onto a square.
func NewDrop(to Square, piece PieceType) Move {
	return Move(uint32(to&0x7F) |
		uint32(dropOrigin)<<moveFromShift |
		uint32(piece&0xF)<<movePieceShift |
		1<<moveDropShift)
}

// To returns the destination square of the move.
func (m Move) To() Square { return Square(uint32(m) >> moveToShift & 0x7F) }

// From returns the origin square, or NoSquare for a drop.
func (m Move) From() Square {
	f := uint32(m) >> moveFromShift & 0x7F
	if f == dropOrigin {
		return NoSquare
	}
	return Square(f)
}

// PieceType returns the type moved or dropped (pre-promotion for a
// promoting move).
func (m Move) PieceType() PieceType { return PieceType(uint32(m) >> movePieceShift & 0xF) }

// CapturedType returns the type captured, or PieceTypeNone.
func (m Move) CapturedType() PieceType { return PieceType(uint32(m) >> moveCaptureShift & 0xF) }

// IsPromotion reports whether the mover promotes on arrival.
func (m Move) IsPromotion() bool { return uint32(m)>>movePromoteShift&1 == 1 }

// IsDrop reports whether the move drops a piece from hand.
func (m Move) IsDrop() bool { return uint32(m)>>moveDropShift&1 == 1 }

// IsCapture reports whether the move takes a piece.
func (m Move) IsCapture() bool { return m.CapturedType() != PieceTypeNone }

// String renders the move in USI notation ("7g7f", "8h2b+", "P*5e").
func (m Move) String() string {
	if m == 0 {
		return "none"
	}
	if m.IsDrop() {
		return m.PieceType().String() + "*" + m.To().String()
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += "+"
	}
	return s
}

var errBadMove = errors.New("invalid USI move")

// ParseMove resolves a USI move string against the board's legal moves.
// Returns an error when the string is malformed or the move is not legal
// in the position.
func (b *Board) ParseMove(s string) (Move, error) {
	s = strings.TrimSpace(s)
	if len(s) < 4 {
		return 0, errBadMove
	}
	if s[1] == '*' {
		pt := pieceTypeFromLetter(s[0])
		if pt == PieceTypeNone {
			return 0, errBadMove
		}
		to, err := parseUSISquare(s[2:4])
		if err != nil {
			return 0, err
		}
		want := NewDrop(to, pt)
		for _, m := range b.GenerateLegalMoves() {
			if m == want {
				return m, nil
			}
		}
		return 0, errBadMove
	}
	from, err := parseUSISquare(s[0:2])
	if err != nil {
		return 0, err
	}
	to, err := parseUSISquare(s[2:4])
	if err != nil {
		return 0, err
	}
	promote := len(s) >= 5 && s[4] == '+'
	for _, m := range b.GenerateLegalMoves() {
		if !m.IsDrop() && m.From() == from && m.To() == to && m.IsPromotion() == promote {
			return m, nil
		}
	}
	return 0, errBadMove
}

func parseUSISquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < '1' || s[0] > '9' || s[1] < 'a' || s[1] > 'i' {
		return 0, errBadMove
	}
	file := int(s[0] - '0')
	rank := int(s[1] - 'a')
	return SquareAt(rank, 9-file), nil
}

func pieceTypeFromLetter(c byte) PieceType {
	switch c {
	case 'P':
		return PieceTypePawn
	case 'L':
		return PieceTypeLance
	case 'N':
		return PieceTypeKnight
	case 'S':
		return PieceTypeSilver
	case 'G':
		return PieceTypeGold
	case 'B':
		return PieceTypeBishop
	case 'R':
		return PieceTypeRook
	case 'K':
		return PieceTypeKing
	}
	return PieceTypeNone
}
