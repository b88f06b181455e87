package shogimg

import "strings"

// Board holds a full shogi position: per-color per-type bitboards, a
// mailbox for cheap piece lookup, pieces in hand, side to move, and the
// incrementally maintained zobrist hash.
type Board struct {
	bitboards  [2][NumPieceTypes]Bitboard
	occupancy  [2]Bitboard
	pieces     [NumSquares]Piece
	hands      [2][8]uint8
	sideToMove Color
	moveNumber int
	hash       uint64
}

// SideToMove returns the color to play.
func (b *Board) SideToMove() Color { return b.sideToMove }

// MoveNumber returns the 1-based game move counter.
func (b *Board) MoveNumber() int { return b.moveNumber }

// Hash returns the zobrist key of the position.
func (b *Board) Hash() uint64 { return b.hash }

// PieceAt returns the piece on a square, or NoPiece.
func (b *Board) PieceAt(sq Square) Piece { return b.pieces[sq] }

// HandCount returns how many pieces of the given base type the color holds.
func (b *Board) HandCount(c Color, pt PieceType) int { return int(b.hands[c][pt]) }

// Pieces returns the bitboard of the color's pieces of one type.
func (b *Board) Pieces(c Color, pt PieceType) Bitboard { return b.bitboards[c][pt] }

// OccupancyOf returns the bitboard of all the color's pieces.
func (b *Board) OccupancyOf(c Color) Bitboard { return b.occupancy[c] }

// Occupied returns the bitboard of all pieces on the board.
func (b *Board) Occupied() Bitboard { return b.occupancy[Black].Or(b.occupancy[White]) }

// PieceCount returns the number of pieces on the board plus both hands,
// kings included. Used as the tablebase gate.
func (b *Board) PieceCount() int {
	n := b.Occupied().Count()
	for c := 0; c < 2; c++ {
		for pt := 1; pt < 8; pt++ {
			n += int(b.hands[c][pt])
		}
	}
	return n
}

// KingSquare returns the square of the color's king, or NoSquare when the
// king is absent (test positions only).
func (b *Board) KingSquare(c Color) Square {
	bb := b.bitboards[c][PieceTypeKing]
	if bb.IsEmpty() {
		return NoSquare
	}
	return bb.LSB()
}

// Copy returns an independent snapshot of the position. Used at the
// parallel-search boundary and in test fixtures; search itself relies on
// make/unmake.
func (b *Board) Copy() *Board {
	nb := *b
	return &nb
}

func (b *Board) putPiece(p Piece, sq Square) {
	c, pt := p.Color(), p.Type()
	b.bitboards[c][pt] = b.bitboards[c][pt].Set(sq)
	b.occupancy[c] = b.occupancy[c].Set(sq)
	b.pieces[sq] = p
	b.hash ^= zobristPiece[c][pt][sq]
}

func (b *Board) removePiece(sq Square) Piece {
	p := b.pieces[sq]
	c, pt := p.Color(), p.Type()
	b.bitboards[c][pt] = b.bitboards[c][pt].Clear(sq)
	b.occupancy[c] = b.occupancy[c].Clear(sq)
	b.pieces[sq] = NoPiece
	b.hash ^= zobristPiece[c][pt][sq]
	return p
}

func (b *Board) addToHand(c Color, pt PieceType) {
	n := b.hands[c][pt]
	b.hash ^= zobristHand[c][pt][n] ^ zobristHand[c][pt][n+1]
	b.hands[c][pt] = n + 1
}

func (b *Board) removeFromHand(c Color, pt PieceType) {
	n := b.hands[c][pt]
	b.hash ^= zobristHand[c][pt][n] ^ zobristHand[c][pt][n-1]
	b.hands[c][pt] = n - 1
}

// IsSquareAttacked reports whether the square is attacked by any piece of
// the given color under the supplied occupancy. Short-range pieces use the
// reversed step tables (a piece on p attacks sq exactly when a piece of
// the opposite color on sq would attack p); sliders scan rays from sq.
func (b *Board) IsSquareAttacked(sq Square, by Color, occ Bitboard) bool {
	them := by.Other()

	if stepAttacks[them][PieceTypePawn][sq].Intersects(b.bitboards[by][PieceTypePawn]) {
		return true
	}
	if stepAttacks[them][PieceTypeKnight][sq].Intersects(b.bitboards[by][PieceTypeKnight]) {
		return true
	}
	if stepAttacks[them][PieceTypeSilver][sq].Intersects(b.bitboards[by][PieceTypeSilver]) {
		return true
	}
	golds := b.bitboards[by][PieceTypeGold].
		Or(b.bitboards[by][PieceTypePromotedPawn]).
		Or(b.bitboards[by][PieceTypePromotedLance]).
		Or(b.bitboards[by][PieceTypePromotedKnight]).
		Or(b.bitboards[by][PieceTypePromotedSilver])
	if stepAttacks[them][PieceTypeGold][sq].Intersects(golds) {
		return true
	}
	if kingSteps[sq].Intersects(b.bitboards[by][PieceTypeKing]) {
		return true
	}
	// Step components of horse and dragon are symmetric, like the king's.
	if stepAttacks[them][PieceTypeHorse][sq].Intersects(b.bitboards[by][PieceTypeHorse]) {
		return true
	}
	if stepAttacks[them][PieceTypeDragon][sq].Intersects(b.bitboards[by][PieceTypeDragon]) {
		return true
	}

	diag := bishopAttacks(sq, occ)
	if diag.Intersects(b.bitboards[by][PieceTypeBishop].Or(b.bitboards[by][PieceTypeHorse])) {
		return true
	}
	ortho := rookAttacks(sq, occ)
	if ortho.Intersects(b.bitboards[by][PieceTypeRook].Or(b.bitboards[by][PieceTypeDragon])) {
		return true
	}
	// A lance of color 'by' attacks sq along its forward direction, so the
	// scan from sq runs the opposite way.
	lances := b.bitboards[by][PieceTypeLance]
	if !lances.IsEmpty() {
		dir := dirS
		if by == White {
			dir = dirN
		}
		if slidingAttack(sq, dir, occ).Intersects(lances) {
			return true
		}
	}
	return false
}

// AttackersTo collects the pieces of the given color that attack sq under
// the supplied occupancy. Same scan as IsSquareAttacked, gathering instead
// of short-circuiting; used by exchange evaluation.
func (b *Board) AttackersTo(sq Square, by Color, occ Bitboard) Bitboard {
	them := by.Other()
	var att Bitboard

	att = att.Or(stepAttacks[them][PieceTypePawn][sq].And(b.bitboards[by][PieceTypePawn]))
	att = att.Or(stepAttacks[them][PieceTypeKnight][sq].And(b.bitboards[by][PieceTypeKnight]))
	att = att.Or(stepAttacks[them][PieceTypeSilver][sq].And(b.bitboards[by][PieceTypeSilver]))
	golds := b.bitboards[by][PieceTypeGold].
		Or(b.bitboards[by][PieceTypePromotedPawn]).
		Or(b.bitboards[by][PieceTypePromotedLance]).
		Or(b.bitboards[by][PieceTypePromotedKnight]).
		Or(b.bitboards[by][PieceTypePromotedSilver])
	att = att.Or(stepAttacks[them][PieceTypeGold][sq].And(golds))
	att = att.Or(kingSteps[sq].And(b.bitboards[by][PieceTypeKing]))
	att = att.Or(stepAttacks[them][PieceTypeHorse][sq].And(b.bitboards[by][PieceTypeHorse]))
	att = att.Or(stepAttacks[them][PieceTypeDragon][sq].And(b.bitboards[by][PieceTypeDragon]))

	diag := bishopAttacks(sq, occ)
	att = att.Or(diag.And(b.bitboards[by][PieceTypeBishop].Or(b.bitboards[by][PieceTypeHorse])))
	ortho := rookAttacks(sq, occ)
	att = att.Or(ortho.And(b.bitboards[by][PieceTypeRook].Or(b.bitboards[by][PieceTypeDragon])))
	dir := dirS
	if by == White {
		dir = dirN
	}
	att = att.Or(slidingAttack(sq, dir, occ).And(b.bitboards[by][PieceTypeLance]))

	return att.And(occ)
}

// InCheck reports whether the color's king is attacked.
func (b *Board) InCheck(c Color) bool {
	ksq := b.KingSquare(c)
	if ksq == NoSquare {
		return false
	}
	return b.IsSquareAttacked(ksq, c.Other(), b.Occupied())
}

// OurKingInCheck reports whether the side to move is in check.
func (b *Board) OurKingInCheck() bool { return b.InCheck(b.sideToMove) }

// String renders the board in a simple diagram with hands, for debugging.
func (b *Board) String() string {
	var sb strings.Builder
	for r := 0; r < 9; r++ {
		for f := 0; f < 9; f++ {
			p := b.pieces[SquareAt(r, f)]
			s := p.String()
			if len(s) == 1 {
				sb.WriteByte(' ')
			}
			sb.WriteString(s)
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("hands: ")
	sb.WriteString(b.handsSFEN())
	sb.WriteString("  side: ")
	sb.WriteString(b.sideToMove.String())
	sb.WriteByte('\n')
	return sb.String()
}
