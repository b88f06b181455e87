package engine

import (
	sg "shogi-engine/shogimg"
)

type scoredMove struct {
	move  sg.Move
	score uint16
}

type moveList struct {
	moves []scoredMove
}

// Most Valuable Victim - Least Valuable Aggressor; used to score & sort
// captures. Victims index rows, aggressors columns; promoted pieces rank
// close to the gold/major they move like.
var mvvLva [sg.NumPieceTypes][sg.NumPieceTypes]uint16

// Aggressor rank, cheapest first. Lower rank = bigger ordering bonus.
var mvvAggressorRank = [sg.NumPieceTypes]uint16{
	sg.PieceTypePawn:           0,
	sg.PieceTypeLance:          1,
	sg.PieceTypeKnight:         2,
	sg.PieceTypeSilver:         3,
	sg.PieceTypeGold:           4,
	sg.PieceTypePromotedPawn:   4,
	sg.PieceTypePromotedLance:  4,
	sg.PieceTypePromotedKnight: 4,
	sg.PieceTypePromotedSilver: 4,
	sg.PieceTypeBishop:         5,
	sg.PieceTypeRook:           6,
	sg.PieceTypeHorse:          7,
	sg.PieceTypeDragon:         8,
	sg.PieceTypeKing:           9,
}

// Victim tier; captures of bigger victims always order first.
var mvvVictimRank = [sg.NumPieceTypes]uint16{
	sg.PieceTypePawn:           1,
	sg.PieceTypeLance:          2,
	sg.PieceTypeKnight:         2,
	sg.PieceTypeSilver:         3,
	sg.PieceTypePromotedPawn:   3,
	sg.PieceTypePromotedLance:  3,
	sg.PieceTypePromotedKnight: 3,
	sg.PieceTypePromotedSilver: 3,
	sg.PieceTypeGold:           4,
	sg.PieceTypeBishop:         5,
	sg.PieceTypeRook:           6,
	sg.PieceTypeHorse:          7,
	sg.PieceTypeDragon:         8,
}

func init() {
	for victim := sg.PieceTypePawn; victim < sg.NumPieceTypes; victim++ {
		for aggressor := sg.PieceTypePawn; aggressor < sg.NumPieceTypes; aggressor++ {
			if victim == sg.PieceTypeKing {
				continue
			}
			mvvLva[victim][aggressor] = mvvVictimRank[victim]*10 + (9 - mvvAggressorRank[aggressor])
		}
	}
}

/*
	Move ordering offsets!
	- PV/TT moves should be considered first, as they most likely guide us to the best path; or the failed path in some beta-cutoffs so we can quit as early as possible.
	- Promotions are scored just under captures; a promotion that also captures gets both bonuses.
	- Captures are important so we never miss any tactical shots.
	- Quiets fall back to killers, counters and the history score.
	- Drops order by what the dropped piece is worth; cheap drops late.
*/
// Should always be above quiet move heuristics
const pvOffset uint16 = 25000
const captureOffset uint16 = 15000
const promotionOffset uint16 = 14000

// Offset values for prioritizing quiet move heuristics
const killerOffset uint16 = 12000
const counterOffset uint16 = 1000

// Ordering the moves one at a time, at index given
func orderNextMove(currIndex uint8, moves *moveList) {
	bestIndex := currIndex
	bestScore := moves.moves[bestIndex].score

	for index := bestIndex + 1; index < uint8(len(moves.moves)); index++ {
		if moves.moves[index].score > bestScore {
			bestIndex = index
			bestScore = moves.moves[index].score
		}
	}

	tempMove := moves.moves[currIndex]
	moves.moves[currIndex] = moves.moves[bestIndex]
	moves.moves[bestIndex] = tempMove
}

func (s *searcher) scoreMovesList(board *sg.Board, moves []sg.Move, ply int8, pvMove, prevMove sg.Move) (movesList moveList) {
	side := board.SideToMove()
	counter := s.counters.Get(side, prevMove)

	movesList.moves = make([]scoredMove, len(moves))
	for i := 0; i < len(moves); i++ {
		move := moves[i]
		var moveEval uint16

		switch {
		case move == pvMove:
			moveEval = pvOffset + 1500
		case move.IsCapture():
			moveEval = captureOffset + mvvLva[move.CapturedType()][move.PieceType()]
			if move.IsPromotion() {
				moveEval += 50
			}
		case move.IsPromotion():
			moveEval = promotionOffset + uint16(PieceValueEG[move.PieceType().Promoted()]/10)
		case s.killers.KillerMoves[ply][0] == move:
			moveEval = killerOffset + 200
		case s.killers.KillerMoves[ply][1] == move:
			moveEval = killerOffset
		default:
			moveEval = uint16(s.history.Get(side, move))
			if counter != EmptyMove && counter == move {
				moveEval += counterOffset
			}
		}

		movesList.moves[i].move = move
		movesList.moves[i].score = moveEval
	}
	return movesList
}

func (s *searcher) scoreMovesListCaptures(board *sg.Board, moves []sg.Move, pvMove sg.Move) (movesList moveList, anyCaptures bool) {
	movesList.moves = make([]scoredMove, 0, len(moves))

	for i := 0; i < len(moves); i++ {
		move := moves[i]
		if !move.IsCapture() && !move.IsPromotion() {
			continue
		}

		var moveEval uint16
		if move == pvMove { // If we have a TT entry or PV-move; let's use this first
			moveEval = captureOffset + 256
		} else if move.IsCapture() {
			moveEval = mvvLva[move.CapturedType()][move.PieceType()]
			if move.IsPromotion() {
				moveEval += 50
			}
		} else { // bare promotion
			moveEval = 75
		}

		movesList.moves = append(movesList.moves, scoredMove{move: move, score: moveEval})
	}

	return movesList, len(movesList.moves) > 0
}
