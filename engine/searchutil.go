package engine

import (
	"fmt"

	sg "shogi-engine/shogimg"
)

const MaxDepth = 100

// History/counter tables index by [side][from][to]. Drops have no origin
// square, so they share a synthetic from-index one past the board.
const dropOriginIndex = sg.NumSquares
const numOrigins = sg.NumSquares + 1

const historyMaxVal = 10000 // Ensure we stay below the captures, countermoves etc

func originIndex(m sg.Move) int {
	if m.IsDrop() {
		return dropOriginIndex
	}
	return int(m.From())
}

/*
HISTORY/COUNTER MOVES
If a move was a cut-node (above beta), and not a capture, we keep track of two things:
The move that countered us (previous move made) - a counter move
A historical score of the move - since we know it was a good move to keep track of, we make sure we can use this for move ordering later
*/
type HistoryTable struct {
	scores [2][numOrigins][sg.NumSquares]int
}

// Increment the history score for the given move if it caused a beta-cutoff and is quiet.
func (h *HistoryTable) Increment(side sg.Color, move sg.Move, depth int8) {
	from := originIndex(move)
	h.scores[side][from][move.To()] += int(depth) * int(depth)
	if h.scores[side][from][move.To()] >= historyMaxVal {
		h.Age(side)
	}
}

// Decrement the history score for the given move if it didn't cause a beta-cutoff and is quiet.
func (h *HistoryTable) Decrement(side sg.Color, move sg.Move) {
	from := originIndex(move)
	if h.scores[side][from][move.To()] > 0 {
		h.scores[side][from][move.To()]--
	}
}

func (h *HistoryTable) Get(side sg.Color, move sg.Move) int {
	return h.scores[side][originIndex(move)][move.To()]
}

// Age the values in the history table by halving them.
func (h *HistoryTable) Age(side sg.Color) {
	for from := 0; from < numOrigins; from++ {
		for to := 0; to < sg.NumSquares; to++ {
			h.scores[side][from][to] /= 2
		}
	}
}

func (h *HistoryTable) Clear() {
	*h = HistoryTable{}
}

func (h *HistoryTable) Clone() *HistoryTable {
	out := &HistoryTable{}
	out.scores = h.scores
	return out
}

type CounterTable struct {
	moves [2][numOrigins][sg.NumSquares]sg.Move
}

func (c *CounterTable) Store(side sg.Color, prevMove, move sg.Move) {
	if prevMove == EmptyMove {
		return
	}
	c.moves[side][originIndex(prevMove)][prevMove.To()] = move
}

func (c *CounterTable) Get(side sg.Color, prevMove sg.Move) sg.Move {
	if prevMove == EmptyMove {
		return EmptyMove
	}
	return c.moves[side][originIndex(prevMove)][prevMove.To()]
}

func (c *CounterTable) Clear() {
	*c = CounterTable{}
}

func (c *CounterTable) Clone() *CounterTable {
	out := &CounterTable{}
	out.moves = c.moves
	return out
}

// PVLine is the principal variation collected on the way back up the tree.
type PVLine struct {
	Moves []sg.Move
}

func (pv *PVLine) Clear() {
	pv.Moves = pv.Moves[:0]
}

func (pv *PVLine) Update(move sg.Move, child *PVLine) {
	pv.Moves = append(pv.Moves[:0], move)
	pv.Moves = append(pv.Moves, child.Moves...)
}

func (pv *PVLine) BestMove() sg.Move {
	if len(pv.Moves) == 0 {
		return EmptyMove
	}
	return pv.Moves[0]
}

func (pv *PVLine) String() (theMoves string) {
	for _, move := range pv.Moves {
		theMoves += " "
		theMoves += move.String()
	}
	return theMoves
}

// Taken from Blunder chess engine and just slightly modified, since I'm very lazy; works great though :)
func FormatScore(score int32) string {
	mateValue := int(MaxScore)
	mateThreshold := int(Checkmate)

	s := int(score)
	if s >= mateThreshold {
		pliesToMate := mateValue - s
		if pliesToMate < 0 {
			pliesToMate = 0
		}
		mateInN := (pliesToMate + 1) / 2
		return fmt.Sprintf("mate %d", mateInN)
	} else if s <= -mateThreshold {
		pliesToMate := mateValue + s // score is negative here
		if pliesToMate < 0 {
			pliesToMate = 0
		}
		mateInN := (pliesToMate + 1) / 2
		return fmt.Sprintf("mate %d", -mateInN)
	}

	return fmt.Sprintf("cp %d", s)
}

func computeLMRReduction(
	cfg *SearchConfig,
	depth int8,
	legalMoves int,
	isPVNode bool,
	tactical bool,
	historyScore int,
) int8 {
	// No reduction in these cases
	if isPVNode || tactical || depth < cfg.LMRDepthLimit || legalMoves <= cfg.LMRMoveLimit {
		return 0
	}

	// Clamp depth index into LMR table
	d := int(depth)
	if d >= len(LMR) {
		d = len(LMR) - 1
	}

	// Prefer using "moves searched" as column rather than raw index
	m := legalMoves - 1
	row := LMR[d]
	if m >= len(row) {
		m = len(row) - 1
	}

	r := row[m]

	// History bonus: good moves get less reduction
	if r > 0 && historyScore > 0 {
		bonus := int8(historyScore / 2500)
		if bonus > 2 {
			bonus = 2
		}
		if bonus > r {
			bonus = r
		}
		r -= bonus
	}

	if r < 0 {
		r = 0
	}
	return r
}
