package shogimg

// Undo records what MakeMove changed so UnmakeMove can restore it. It is a
// lightweight value meant to live in a per-ply arena on the search stack.
type Undo struct {
	captured Piece
	hash     uint64
}

// MakeMove applies a move produced by this board's move generation. It does
// not re-validate legality.
func (b *Board) MakeMove(m Move) Undo {
	u := Undo{hash: b.hash}
	us := b.sideToMove
	to := m.To()

	if m.IsDrop() {
		pt := m.PieceType()
		b.removeFromHand(us, pt)
		b.putPiece(PieceFromType(us, pt), to)
	} else {
		from := m.From()
		moved := b.removePiece(from)
		if cap := b.pieces[to]; cap != NoPiece {
			u.captured = cap
			b.removePiece(to)
			b.addToHand(us, cap.Type().Demoted())
		}
		if m.IsPromotion() {
			moved = PieceFromType(us, moved.Type().Promoted())
		}
		b.putPiece(moved, to)
	}

	b.sideToMove = us.Other()
	b.hash ^= zobristSide
	b.moveNumber++
	return u
}

// UnmakeMove reverses a move previously applied with MakeMove.
func (b *Board) UnmakeMove(m Move, u Undo) {
	b.moveNumber--
	b.sideToMove = b.sideToMove.Other()
	us := b.sideToMove
	to := m.To()

	if m.IsDrop() {
		b.removePiece(to)
		b.addToHand(us, m.PieceType())
	} else {
		moved := b.removePiece(to)
		if m.IsPromotion() {
			moved = PieceFromType(us, moved.Type().Demoted())
		}
		b.putPiece(moved, m.From())
		if u.captured != NoPiece {
			b.putPiece(u.captured, to)
			b.removeFromHand(us, u.captured.Type().Demoted())
		}
	}
	b.hash = u.hash
}

// MakeNullMove passes the turn; used by null-move pruning.
func (b *Board) MakeNullMove() uint64 {
	prev := b.hash
	b.sideToMove = b.sideToMove.Other()
	b.hash ^= zobristSide
	b.moveNumber++
	return prev
}

// UnmakeNullMove reverses MakeNullMove.
func (b *Board) UnmakeNullMove(prev uint64) {
	b.moveNumber--
	b.sideToMove = b.sideToMove.Other()
	b.hash = prev
}

// Apply plays a move and returns an undo closure.
func (b *Board) Apply(m Move) func() {
	u := b.MakeMove(m)
	return func() { b.UnmakeMove(m, u) }
}

// ApplyNullMove passes the turn and returns the corresponding undo closure.
func (b *Board) ApplyNullMove() func() {
	prev := b.MakeNullMove()
	return func() { b.UnmakeNullMove(prev) }
}
