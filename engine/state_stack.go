package engine

import (
	sg "shogi-engine/shogimg"
)

// Sennichite: the same position occurring four times is a draw. There is no
// halfmove clock to bound the scan, so the whole game history stays on the
// stack; it is short in practice.
const repetitionDrawCount = 4

// StateStack tracks position hashes from the start of the game through the
// current search path. Each searcher owns one; the game prefix is shared by
// copying.
type StateStack struct {
	hashes    []uint64
	rootIndex int
}

// ResetTracking rebuilds the stack so that it only contains the current board.
func (s *StateStack) ResetTracking(board *sg.Board) {
	s.hashes = s.hashes[:0]
	s.hashes = append(s.hashes, board.Hash())
	s.rootIndex = 0
}

// RecordState appends the board's current state, used while replaying the
// game moves from a position command.
func (s *StateStack) RecordState(board *sg.Board) {
	s.hashes = append(s.hashes, board.Hash())
}

// MarkRoot pins the boundary between game history and search path.
func (s *StateStack) MarkRoot() {
	s.rootIndex = len(s.hashes) - 1
	if s.rootIndex < 0 {
		s.rootIndex = 0
	}
}

func (s *StateStack) Push(hash uint64) {
	s.hashes = append(s.hashes, hash)
}

func (s *StateStack) Pop() {
	if len(s.hashes) == 0 {
		return
	}
	s.hashes = s.hashes[:len(s.hashes)-1]
}

// IsDraw reports whether the current position is drawn by repetition. Inside
// the search path a single recurrence already scores as a draw, since the
// opponent can force the repeat; across the whole game we require the full
// fourfold count.
func (s *StateStack) IsDraw() bool {
	if len(s.hashes) == 0 {
		return false
	}
	curr := s.hashes[len(s.hashes)-1]
	count := 1
	for i := len(s.hashes) - 2; i >= 0; i-- {
		if s.hashes[i] != curr {
			continue
		}
		if i >= s.rootIndex {
			return true
		}
		count++
		if count >= repetitionDrawCount {
			return true
		}
	}
	return false
}

// IsSennichite applies only the strict fourfold rule, for callers tracking
// a real game rather than a search path.
func (s *StateStack) IsSennichite() bool {
	if len(s.hashes) == 0 {
		return false
	}
	curr := s.hashes[len(s.hashes)-1]
	count := 0
	for _, h := range s.hashes {
		if h == curr {
			count++
		}
	}
	return count >= repetitionDrawCount
}

// Clone copies the stack for a parallel helper.
func (s *StateStack) Clone() *StateStack {
	out := &StateStack{
		hashes:    make([]uint64, len(s.hashes), len(s.hashes)+MaxDepth),
		rootIndex: s.rootIndex,
	}
	copy(out.hashes, s.hashes)
	return out
}
