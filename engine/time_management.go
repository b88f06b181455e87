package engine

import (
	"time"

	sg "shogi-engine/shogimg"
)

// TimeHandler turns a clock state (remaining time, increment, byoyomi) into
// soft and hard deadlines for one search. The soft deadline gates new
// iterations; the hard deadline aborts the search mid-tree.
type TimeHandler struct {
	remainingTime    int
	increment        int
	byoyomi          int
	softDeadline     time.Time
	hardDeadline     time.Time
	isInitialized    bool
	usingCustomDepth bool
}

func (th *TimeHandler) initTimemanagement(remainingTime, increment, byoyomi int, useCustomDepth bool) {
	th.remainingTime = remainingTime
	th.increment = increment
	th.byoyomi = byoyomi
	th.isInitialized = true
	th.usingCustomDepth = useCustomDepth
}

func (th *TimeHandler) StartTime(b *sg.Board) {
	// Estimate moves left from phase
	piecePhase := GetPiecePhase(b)
	movesLeft := estimateMovesRemaining(piecePhase) // 25..55

	// Engine-side safety knobs
	const overheadMs = 30 // reserve for USI/IO jitter
	const minMoveMs = 5   // never less than this
	const maxFrac = 0.7   // never spend >70% of remaining time
	const panicThreshMs = 1000

	rem := th.remainingTime
	inc := th.increment
	if th.byoyomi > 0 {
		// Byoyomi periods renew every move, so the whole period is spendable
		// on top of a slice of main time.
		inc = th.byoyomi
	}

	var moveTime int
	if inc > 0 {
		if rem < panicThreshMs {
			moveTime = int(float64(inc) * 0.90)
		} else {
			moveTime = rem/movesLeft + inc
		}
	} else {
		moveTime = rem / 40
	}

	// Apply overhead and clamps
	if moveTime < minMoveMs {
		moveTime = minMoveMs
	}
	if rem > 0 {
		if moveTime > int(float64(rem+inc)*maxFrac) {
			moveTime = int(float64(rem+inc) * maxFrac)
		}
		if moveTime > rem+inc-overheadMs {
			moveTime = rem + inc - overheadMs
		}
	}
	if moveTime < minMoveMs {
		moveTime = minMoveMs
	} // re-check after ceiling

	now := time.Now()
	th.softDeadline = now.Add(time.Duration(moveTime) * time.Millisecond * 6 / 10)
	th.hardDeadline = now.Add(time.Duration(moveTime) * time.Millisecond)
}

// SetFixedTime is used for "go movetime" style limits.
func (th *TimeHandler) SetFixedTime(ms int64) {
	now := time.Now()
	th.softDeadline = now.Add(time.Duration(ms) * time.Millisecond)
	th.hardDeadline = th.softDeadline
	th.isInitialized = true
	th.usingCustomDepth = false
}

// HardExpired reports whether the search must stop right now.
func (th *TimeHandler) HardExpired() bool {
	if th.usingCustomDepth || !th.isInitialized {
		return false
	}
	return time.Now().After(th.hardDeadline)
}

// SoftExpired reports whether a new iteration should not be started.
func (th *TimeHandler) SoftExpired() bool {
	if th.usingCustomDepth || !th.isInitialized {
		return false
	}
	return time.Now().After(th.softDeadline)
}

func estimateMovesRemaining(phase int) int {
	// Shogi games run longer than the western cousins; interpolate between
	// 25 (endgame) and 55 (opening) by material phase.
	return (phase*30)/256 + 25
}
