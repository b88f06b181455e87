package shogimg

// Precomputed attack data. Step tables cover every short-range piece per
// color; sliding pieces use per-direction ray tables trimmed at the first
// blocker. Built once at package init and read-only afterwards.

const (
	dirN = iota
	dirS
	dirE
	dirW
	dirNE
	dirNW
	dirSE
	dirSW
)

var dirDeltas = [8][2]int{
	dirN:  {-1, 0},
	dirS:  {1, 0},
	dirE:  {0, 1},
	dirW:  {0, -1},
	dirNE: {-1, 1},
	dirNW: {-1, -1},
	dirSE: {1, 1},
	dirSW: {1, -1},
}

// Directions whose square index increases; their first blocker is the LSB
// of the masked occupancy, the others use the MSB.
var dirIncreasing = [8]bool{
	dirS: true, dirE: true, dirSE: true, dirSW: true,
}

var (
	stepAttacks [2][NumPieceTypes][NumSquares]Bitboard
	kingSteps   [NumSquares]Bitboard
	rays        [8][NumSquares]Bitboard

	// FileMask indexes by internal file index, RankMask by rank index.
	FileMask [9]Bitboard
	RankMask [9]Bitboard

	// PromotionZone is the opponent's back three ranks for each color.
	PromotionZone [2]Bitboard

	// lastRanks[c][n] is the set of the n+1 furthest ranks for color c,
	// used for forced promotion and drop restrictions.
	lastRanks [2][2]Bitboard
)

func init() {
	initMasks()
	initRays()
	initSteps()
}

func initMasks() {
	for sq := Square(0); sq < NumSquares; sq++ {
		FileMask[sq.FileIndex()] = FileMask[sq.FileIndex()].Set(sq)
		RankMask[sq.RankIndex()] = RankMask[sq.RankIndex()].Set(sq)
	}
	PromotionZone[Black] = RankMask[0].Or(RankMask[1]).Or(RankMask[2])
	PromotionZone[White] = RankMask[6].Or(RankMask[7]).Or(RankMask[8])
	lastRanks[Black][0] = RankMask[0]
	lastRanks[Black][1] = RankMask[0].Or(RankMask[1])
	lastRanks[White][0] = RankMask[8]
	lastRanks[White][1] = RankMask[8].Or(RankMask[7])
}

func step(sq Square, dr, df int) (Square, bool) {
	r := sq.RankIndex() + dr
	f := sq.FileIndex() + df
	if r < 0 || r > 8 || f < 0 || f > 8 {
		return 0, false
	}
	return SquareAt(r, f), true
}

func initRays() {
	for sq := Square(0); sq < NumSquares; sq++ {
		for d := 0; d < 8; d++ {
			dr, df := dirDeltas[d][0], dirDeltas[d][1]
			cur := sq
			for {
				next, ok := step(cur, dr, df)
				if !ok {
					break
				}
				rays[d][sq] = rays[d][sq].Set(next)
				cur = next
			}
		}
	}
}

func stepSet(sq Square, deltas ...[2]int) Bitboard {
	var bb Bitboard
	for _, d := range deltas {
		if s, ok := step(sq, d[0], d[1]); ok {
			bb = bb.Set(s)
		}
	}
	return bb
}

func initSteps() {
	for sq := Square(0); sq < NumSquares; sq++ {
		kingSteps[sq] = stepSet(sq,
			[2]int{-1, 0}, [2]int{1, 0}, [2]int{0, 1}, [2]int{0, -1},
			[2]int{-1, 1}, [2]int{-1, -1}, [2]int{1, 1}, [2]int{1, -1})

		for c := Color(0); c <= White; c++ {
			fwd := -1
			if c == White {
				fwd = 1
			}
			pawn := stepSet(sq, [2]int{fwd, 0})
			knight := stepSet(sq, [2]int{2 * fwd, 1}, [2]int{2 * fwd, -1})
			silver := stepSet(sq,
				[2]int{fwd, 0}, [2]int{fwd, 1}, [2]int{fwd, -1},
				[2]int{-fwd, 1}, [2]int{-fwd, -1})
			gold := stepSet(sq,
				[2]int{fwd, 0}, [2]int{fwd, 1}, [2]int{fwd, -1},
				[2]int{0, 1}, [2]int{0, -1}, [2]int{-fwd, 0})

			stepAttacks[c][PieceTypePawn][sq] = pawn
			stepAttacks[c][PieceTypeKnight][sq] = knight
			stepAttacks[c][PieceTypeSilver][sq] = silver
			stepAttacks[c][PieceTypeGold][sq] = gold
			stepAttacks[c][PieceTypePromotedPawn][sq] = gold
			stepAttacks[c][PieceTypePromotedLance][sq] = gold
			stepAttacks[c][PieceTypePromotedKnight][sq] = gold
			stepAttacks[c][PieceTypePromotedSilver][sq] = gold
			stepAttacks[c][PieceTypeKing][sq] = kingSteps[sq]
			// Non-sliding components of the promoted sliders.
			stepAttacks[c][PieceTypeHorse][sq] = stepSet(sq,
				[2]int{-1, 0}, [2]int{1, 0}, [2]int{0, 1}, [2]int{0, -1})
			stepAttacks[c][PieceTypeDragon][sq] = stepSet(sq,
				[2]int{-1, 1}, [2]int{-1, -1}, [2]int{1, 1}, [2]int{1, -1})
		}
	}
}

// slidingAttack returns the ray from sq in the given direction, trimmed to
// include the first occupied square and nothing beyond it.
func slidingAttack(sq Square, dir int, occ Bitboard) Bitboard {
	ray := rays[dir][sq]
	blockers := ray.And(occ)
	if blockers.IsEmpty() {
		return ray
	}
	var first Square
	if dirIncreasing[dir] {
		first = blockers.LSB()
	} else {
		first = blockers.MSB()
	}
	return ray.AndNot(rays[dir][first])
}

func bishopAttacks(sq Square, occ Bitboard) Bitboard {
	return slidingAttack(sq, dirNE, occ).
		Or(slidingAttack(sq, dirNW, occ)).
		Or(slidingAttack(sq, dirSE, occ)).
		Or(slidingAttack(sq, dirSW, occ))
}

func rookAttacks(sq Square, occ Bitboard) Bitboard {
	return slidingAttack(sq, dirN, occ).
		Or(slidingAttack(sq, dirS, occ)).
		Or(slidingAttack(sq, dirE, occ)).
		Or(slidingAttack(sq, dirW, occ))
}

func lanceAttacks(c Color, sq Square, occ Bitboard) Bitboard {
	if c == Black {
		return slidingAttack(sq, dirN, occ)
	}
	return slidingAttack(sq, dirS, occ)
}

// AttacksFrom returns the squares attacked by a piece of the given type and
// color standing on sq, given the occupancy.
func AttacksFrom(pt PieceType, c Color, sq Square, occ Bitboard) Bitboard {
	switch pt {
	case PieceTypeLance:
		return lanceAttacks(c, sq, occ)
	case PieceTypeBishop:
		return bishopAttacks(sq, occ)
	case PieceTypeRook:
		return rookAttacks(sq, occ)
	case PieceTypeHorse:
		return bishopAttacks(sq, occ).Or(stepAttacks[c][PieceTypeHorse][sq])
	case PieceTypeDragon:
		return rookAttacks(sq, occ).Or(stepAttacks[c][PieceTypeDragon][sq])
	default:
		return stepAttacks[c][pt][sq]
	}
}
