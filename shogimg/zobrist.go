package shogimg

import "math/rand"

// Zobrist hashing tables for pieces on squares, pieces in hand, and side
// to move. Hand keys are indexed by count so that adding or removing a
// piece updates the hash with two XORs.
var (
	zobristPiece [2][NumPieceTypes][NumSquares]uint64
	zobristHand  [2][8][19]uint64 // up to 18 pawns in hand
	zobristSide  uint64
)

func init() {
	initZobrist()
}

func initZobrist() {
	// Fixed seed for reproducibility in tests.
	rnd := rand.New(rand.NewSource(0x5846454E))

	for c := 0; c < 2; c++ {
		for pt := 0; pt < NumPieceTypes; pt++ {
			for sq := 0; sq < NumSquares; sq++ {
				zobristPiece[c][pt][sq] = rnd.Uint64()
			}
		}
		for pt := 0; pt < 8; pt++ {
			// Count zero contributes nothing so empty hands hash equal.
			for n := 1; n < 19; n++ {
				zobristHand[c][pt][n] = rnd.Uint64()
			}
		}
	}
	zobristSide = rnd.Uint64()
}

// ComputeZobrist calculates the hash for the current board state from
// scratch. MakeMove maintains the same value incrementally.
func (b *Board) ComputeZobrist() uint64 {
	var key uint64
	for sq := Square(0); sq < NumSquares; sq++ {
		p := b.pieces[sq]
		if p != NoPiece {
			key ^= zobristPiece[p.Color()][p.Type()][sq]
		}
	}
	for c := 0; c < 2; c++ {
		for pt := 1; pt < 8; pt++ {
			key ^= zobristHand[c][pt][b.hands[c][pt]]
		}
	}
	if b.sideToMove == White {
		key ^= zobristSide
	}
	return key
}
