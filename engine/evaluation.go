package engine

import (
	"fmt"

	sg "shogi-engine/shogimg"
)

// Tapered evaluation: every term is a middlegame/endgame pair interpolated
// by a 0..256 game-phase indicator. The search core only depends on the
// Evaluation entry point (plus see for ordering); everything below it is
// replaceable.

// Game phase weights for interpolation
const (
	lancePhase  = 1
	knightPhase = 1
	silverPhase = 2
	goldPhase   = 2
	bishopPhase = 4
	rookPhase   = 4
	// Full material for both sides at the start position.
	TotalPhase = 2 * (2*lancePhase + 2*knightPhase + 2*silverPhase + 2*goldPhase + bishopPhase + rookPhase)
)

var phaseWeight = [sg.NumPieceTypes]int{
	sg.PieceTypeLance:          lancePhase,
	sg.PieceTypeKnight:         knightPhase,
	sg.PieceTypeSilver:         silverPhase,
	sg.PieceTypeGold:           goldPhase,
	sg.PieceTypeBishop:         bishopPhase,
	sg.PieceTypeRook:           rookPhase,
	sg.PieceTypePromotedLance:  goldPhase,
	sg.PieceTypePromotedKnight: goldPhase,
	sg.PieceTypePromotedSilver: goldPhase,
	sg.PieceTypeHorse:          bishopPhase,
	sg.PieceTypeDragon:         rookPhase,
}

// Material values, middlegame and endgame.
var PieceValueMG = [sg.NumPieceTypes]int32{
	sg.PieceTypePawn:           100,
	sg.PieceTypeLance:          350,
	sg.PieceTypeKnight:         400,
	sg.PieceTypeSilver:         550,
	sg.PieceTypeGold:           600,
	sg.PieceTypeBishop:         900,
	sg.PieceTypeRook:           1050,
	sg.PieceTypePromotedPawn:   580,
	sg.PieceTypePromotedLance:  570,
	sg.PieceTypePromotedKnight: 580,
	sg.PieceTypePromotedSilver: 590,
	sg.PieceTypeHorse:          1150,
	sg.PieceTypeDragon:         1350,
}

var PieceValueEG = [sg.NumPieceTypes]int32{
	sg.PieceTypePawn:           120,
	sg.PieceTypeLance:          330,
	sg.PieceTypeKnight:         380,
	sg.PieceTypeSilver:         530,
	sg.PieceTypeGold:           580,
	sg.PieceTypeBishop:         950,
	sg.PieceTypeRook:           1100,
	sg.PieceTypePromotedPawn:   560,
	sg.PieceTypePromotedLance:  550,
	sg.PieceTypePromotedKnight: 560,
	sg.PieceTypePromotedSilver: 570,
	sg.PieceTypeHorse:          1200,
	sg.PieceTypeDragon:         1400,
}

// A piece in hand is slightly more flexible than one on the board.
const handBonusPercent = 5

// Advancement bonus per rank toward the opponent, by piece type; rewards
// pushing attackers forward without a full set of hand-tuned tables.
var advanceBonusMG = [sg.NumPieceTypes]int32{
	sg.PieceTypePawn:   4,
	sg.PieceTypeLance:  1,
	sg.PieceTypeKnight: 2,
	sg.PieceTypeSilver: 3,
	sg.PieceTypeGold:   2,
}

var advanceBonusEG = [sg.NumPieceTypes]int32{
	sg.PieceTypePawn:   6,
	sg.PieceTypeSilver: 2,
	sg.PieceTypeGold:   2,
}

// King exposure: in the middlegame the king wants to stay home.
var kingAdvancePenaltyMG = [9]int32{0, 4, 12, 24, 40, 56, 72, 88, 104}

const tempoBonus int32 = 12

// Evaluation scores the position from the side to move's perspective.
// Deterministic and side-effect free; called at every leaf and quiescence
// node. The print flag dumps the term breakdown for the CLI eval command.
func Evaluation(b *sg.Board, print bool) int32 {
	var mg, eg [2]int32
	phase := 0

	for c := sg.Black; c <= sg.White; c++ {
		for pt := sg.PieceTypePawn; pt < sg.NumPieceTypes; pt++ {
			pieces := b.Pieces(c, pt)
			for !pieces.IsEmpty() {
				sq := pieces.PopLSB()
				mg[c] += PieceValueMG[pt]
				eg[c] += PieceValueEG[pt]
				phase += phaseWeight[pt]

				adv := advancementOf(c, sq)
				mg[c] += advanceBonusMG[pt] * int32(adv)
				eg[c] += advanceBonusEG[pt] * int32(adv)
				if pt == sg.PieceTypeKing {
					mg[c] -= kingAdvancePenaltyMG[adv]
				}
			}
		}
		for pt := sg.PieceTypePawn; pt <= sg.PieceTypeRook; pt++ {
			n := int32(b.HandCount(c, pt))
			if n == 0 {
				continue
			}
			mg[c] += n * PieceValueMG[pt] * (100 + handBonusPercent) / 100
			eg[c] += n * PieceValueEG[pt] * (100 + handBonusPercent) / 100
			phase += int(n) * phaseWeight[pt]
		}
	}

	if phase > TotalPhase {
		phase = TotalPhase
	}
	phase256 := phase * 256 / TotalPhase

	us := b.SideToMove()
	them := us.Other()
	mgScore := mg[us] - mg[them]
	egScore := eg[us] - eg[them]
	score := (mgScore*int32(phase256) + egScore*int32(256-phase256)) / 256
	score += tempoBonus

	if print {
		fmt.Printf("info string eval mg=%d eg=%d phase=%d/256 total=%d\n", mgScore, egScore, phase256, score)
	}
	return score
}

// advancementOf counts ranks progressed toward the opponent's edge.
func advancementOf(c sg.Color, sq sg.Square) int {
	if c == sg.Black {
		return 8 - sq.RankIndex()
	}
	return sq.RankIndex()
}

// GetPiecePhase returns the 0..256 phase of the position (256 = all
// material on). Shared by time management.
func GetPiecePhase(b *sg.Board) int {
	phase := 0
	for c := sg.Black; c <= sg.White; c++ {
		for pt := sg.PieceTypePawn; pt < sg.NumPieceTypes; pt++ {
			phase += phaseWeight[pt] * b.Pieces(c, pt).Count()
		}
		for pt := sg.PieceTypePawn; pt <= sg.PieceTypeRook; pt++ {
			phase += phaseWeight[pt] * b.HandCount(c, pt)
		}
	}
	if phase > TotalPhase {
		phase = TotalPhase
	}
	return phase * 256 / TotalPhase
}

// hasMajorPiece counts each side's rooks/bishops (promoted included), the
// material guard for null-move pruning.
func hasMajorPiece(b *sg.Board) (bCount, wCount int) {
	majors := func(c sg.Color) int {
		return b.Pieces(c, sg.PieceTypeRook).Count() +
			b.Pieces(c, sg.PieceTypeBishop).Count() +
			b.Pieces(c, sg.PieceTypeDragon).Count() +
			b.Pieces(c, sg.PieceTypeHorse).Count() +
			b.HandCount(c, sg.PieceTypeRook) +
			b.HandCount(c, sg.PieceTypeBishop)
	}
	return majors(sg.Black), majors(sg.White)
}
