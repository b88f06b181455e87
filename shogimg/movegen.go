package shogimg

// Move generation. Pseudo-legal generation walks the attack tables; the
// legal wrappers filter out moves that leave the mover's king attacked and
// enforce the drop restrictions that need make/unmake (pawn-drop mate).

func mustPromote(pt PieceType, c Color, to Square) bool {
	switch pt {
	case PieceTypePawn, PieceTypeLance:
		return lastRanks[c][0].IsSet(to)
	case PieceTypeKnight:
		return lastRanks[c][1].IsSet(to)
	}
	return false
}

func (b *Board) appendBoardMoves(moves []Move) []Move {
	us := b.sideToMove
	occ := b.Occupied()
	notOwn := b.occupancy[us].Not()

	for pt := PieceTypePawn; pt < NumPieceTypes; pt++ {
		pieces := b.bitboards[us][pt]
		for !pieces.IsEmpty() {
			from := pieces.PopLSB()
			targets := AttacksFrom(pt, us, from, occ).And(notOwn)
			for !targets.IsEmpty() {
				to := targets.PopLSB()
				captured := b.pieces[to].Type()
				if pt.Promotes() && (PromotionZone[us].IsSet(from) || PromotionZone[us].IsSet(to)) {
					moves = append(moves, NewMove(from, to, pt, captured, true))
					if !mustPromote(pt, us, to) {
						moves = append(moves, NewMove(from, to, pt, captured, false))
					}
				} else {
					moves = append(moves, NewMove(from, to, pt, captured, false))
				}
			}
		}
	}
	return moves
}

func (b *Board) appendDrops(moves []Move) []Move {
	us := b.sideToMove
	empty := b.Occupied().Not()
	if empty.IsEmpty() {
		return moves
	}

	for pt := PieceTypePawn; pt <= PieceTypeRook; pt++ {
		if b.hands[us][pt] == 0 {
			continue
		}
		targets := empty
		switch pt {
		case PieceTypePawn:
			targets = targets.AndNot(lastRanks[us][0])
			// Nifu: no file may hold two unpromoted pawns of one color.
			pawns := b.bitboards[us][PieceTypePawn]
			for f := 0; f < 9; f++ {
				if pawns.Intersects(FileMask[f]) {
					targets = targets.AndNot(FileMask[f])
				}
			}
		case PieceTypeLance:
			targets = targets.AndNot(lastRanks[us][0])
		case PieceTypeKnight:
			targets = targets.AndNot(lastRanks[us][1])
		}
		for !targets.IsEmpty() {
			moves = append(moves, NewDrop(targets.PopLSB(), pt))
		}
	}
	return moves
}

// GeneratePseudoMoves returns every move respecting piece movement, forced
// promotion, and the static drop restrictions; king safety and pawn-drop
// mate are not yet checked.
func (b *Board) GeneratePseudoMoves() []Move {
	moves := make([]Move, 0, 128)
	moves = b.appendBoardMoves(moves)
	moves = b.appendDrops(moves)
	return moves
}

func (b *Board) moveIsLegal(m Move) bool {
	us := b.sideToMove
	u := b.MakeMove(m)
	legal := !b.InCheck(us)
	if legal && m.IsDrop() && m.PieceType() == PieceTypePawn && b.OurKingInCheck() {
		// Uchifuzume: a pawn drop that delivers immediate checkmate is
		// illegal; checking drops of other pieces are fine.
		legal = b.hasAnyEscape()
	}
	b.UnmakeMove(m, u)
	return legal
}

// hasAnyEscape reports whether the side to move has at least one move that
// leaves its king safe. Drop restrictions beyond king safety are ignored
// here; a restricted drop can never be the only escape from check.
func (b *Board) hasAnyEscape() bool {
	us := b.sideToMove
	for _, m := range b.GeneratePseudoMoves() {
		u := b.MakeMove(m)
		ok := !b.InCheck(us)
		b.UnmakeMove(m, u)
		if ok {
			return true
		}
	}
	return false
}

// GenerateLegalMoves returns every legal move for the side to move,
// including promotions and drops from hand. The input position is not
// mutated (make/unmake pairs cancel out).
func (b *Board) GenerateLegalMoves() []Move {
	pseudo := b.GeneratePseudoMoves()
	moves := pseudo[:0]
	for _, m := range pseudo {
		if b.moveIsLegal(m) {
			moves = append(moves, m)
		}
	}
	return moves
}

// HasLegalMoves reports whether any legal move exists; cheaper than
// generating the full list when one move suffices.
func (b *Board) HasLegalMoves() bool {
	for _, m := range b.GeneratePseudoMoves() {
		if b.moveIsLegal(m) {
			return true
		}
	}
	return false
}

// GenerateCaptures returns the legal captures and promotions, for
// quiescence search.
func (b *Board) GenerateCaptures() []Move {
	moves := make([]Move, 0, 32)
	for _, m := range b.appendBoardMoves(nil) {
		if (m.IsCapture() || m.IsPromotion()) && b.moveIsLegal(m) {
			moves = append(moves, m)
		}
	}
	return moves
}
