package engine

import (
	sg "shogi-engine/shogimg"
)

// Tablebase resolves positions with few pieces to an exact score. Probe
// returns ok=false when the position is outside the table; scores follow the
// search convention (side to move, mate scores offset by ply).
type Tablebase interface {
	MaxPieces() int
	Probe(b *sg.Board, ply int8) (score int32, ok bool)
}

// tablebaseUsable gates probes by total piece count before paying for a
// lookup. Pieces in hand count toward the limit.
func tablebaseUsable(tb Tablebase, b *sg.Board) bool {
	if tb == nil {
		return false
	}
	count := b.Occupied().Count()
	for c := sg.Black; c <= sg.White; c++ {
		for pt := sg.PieceTypePawn; pt <= sg.PieceTypeRook; pt++ {
			count += b.HandCount(c, pt)
		}
	}
	return count <= tb.MaxPieces()
}
