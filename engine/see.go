package engine

import (
	sg "shogi-engine/shogimg"
)

// Simplified trade values for the static exchange evaluator; ordering only,
// never fed back into the evaluation proper.
var SeePieceValue = [sg.NumPieceTypes]int{
	sg.PieceTypePawn:           100,
	sg.PieceTypeLance:          300,
	sg.PieceTypeKnight:         320,
	sg.PieceTypeSilver:         450,
	sg.PieceTypeGold:           500,
	sg.PieceTypeBishop:         800,
	sg.PieceTypeRook:           950,
	sg.PieceTypeKing:           5000,
	sg.PieceTypePromotedPawn:   500,
	sg.PieceTypePromotedLance:  500,
	sg.PieceTypePromotedKnight: 500,
	sg.PieceTypePromotedSilver: 500,
	sg.PieceTypeHorse:          1000,
	sg.PieceTypeDragon:         1150,
}

// see runs the swap algorithm on a capture: play out the cheapest recapture
// at the target square for each side in turn and return the net gain for the
// moving side. Attackers are recomputed against the shrinking occupancy, so
// sliders x-ray through pieces that already traded off. Drops never capture
// and score zero.
func see(b *sg.Board, move sg.Move) int {
	if move.IsDrop() || !move.IsCapture() {
		return 0
	}

	var gain [40]int
	depth := 0
	target := move.To()
	us := b.SideToMove()

	occ := b.Occupied()
	occ = occ.Clear(move.From())
	gain[depth] = SeePieceValue[move.CapturedType()]
	attacker := move.PieceType()
	if move.IsPromotion() {
		attacker = attacker.Promoted()
	}

	side := us.Other()
	for {
		depth++
		gain[depth] = SeePieceValue[attacker] - gain[depth-1]
		if max(-gain[depth-1], gain[depth]) < 0 {
			break
		}

		attackerSq, attackerType := leastAttacker(b, side, target, occ)
		if attackerSq == sg.NoSquare {
			break
		}
		occ = occ.Clear(attackerSq)
		attacker = attackerType
		side = side.Other()
	}

	for x := depth - 1; x > 0; x-- {
		gain[x-1] = -max(-gain[x-1], gain[x])
	}
	return gain[0]
}

// leastAttacker finds the cheapest piece of the given side still on occupancy
// that attacks the target square.
func leastAttacker(b *sg.Board, side sg.Color, target sg.Square, occ sg.Bitboard) (sg.Square, sg.PieceType) {
	attackers := b.AttackersTo(target, side, occ).And(occ)
	if attackers.IsEmpty() {
		return sg.NoSquare, sg.PieceTypeNone
	}
	bestSq := sg.NoSquare
	bestType := sg.PieceTypeNone
	bestValue := SeePieceValue[sg.PieceTypeKing] + 1
	for !attackers.IsEmpty() {
		sq := attackers.PopLSB()
		pt := b.PieceAt(sq).Type()
		if SeePieceValue[pt] < bestValue {
			bestValue = SeePieceValue[pt]
			bestSq = sq
			bestType = pt
		}
	}
	return bestSq, bestType
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
