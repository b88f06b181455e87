package shogimg

// Perft counts leaf nodes of the legal move tree to the given depth.
func Perft(b *Board, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		u := b.MakeMove(m)
		nodes += Perft(b, depth-1)
		b.UnmakeMove(m, u)
	}
	return nodes
}

// PerftDivide returns per-root-move node counts for the given depth.
func PerftDivide(b *Board, depth int) map[Move]uint64 {
	div := make(map[Move]uint64)
	for _, m := range b.GenerateLegalMoves() {
		u := b.MakeMove(m)
		div[m] = Perft(b, depth-1)
		b.UnmakeMove(m, u)
	}
	return div
}
