package engine

import (
	"testing"

	"github.com/matryer/is"

	sg "shogi-engine/shogimg"
)

func TestStateStackSearchPathRepetition(t *testing.T) {
	is := is.New(t)
	b := sg.ParseSFENOrPanic(sg.SFENStartPos)

	var s StateStack
	s.ResetTracking(b)
	s.MarkRoot()

	is.True(!s.IsDraw())

	// Simulate a shuffle during search: a single recurrence past the root
	// already scores as a draw.
	s.Push(0x1111)
	s.Push(0x2222)
	s.Push(b.Hash())
	is.True(s.IsDraw())

	s.Pop()
	s.Push(0x3333)
	is.True(!s.IsDraw())
}

func TestStateStackGameFourfold(t *testing.T) {
	is := is.New(t)
	b := sg.ParseSFENOrPanic(sg.SFENStartPos)

	var s StateStack
	s.ResetTracking(b)

	// Replay the game prefix: the position recurs, interleaved with others.
	other := sg.ParseSFENOrPanic("4k4/9/9/9/9/9/9/9/4K4 w - 1")
	for i := 0; i < 2; i++ {
		s.RecordState(other)
		s.RecordState(b)
	}
	s.MarkRoot()

	// Three occurrences before the root: a pre-root recurrence is not an
	// in-search draw, and fourfold is not yet reached.
	is.True(!s.IsDraw())

	// The fourth occurrence inside the search is a draw either way.
	s.Push(b.Hash())
	is.True(s.IsDraw())
}

func TestStateStackSennichiteStrictCount(t *testing.T) {
	is := is.New(t)
	b := sg.ParseSFENOrPanic(sg.SFENStartPos)

	var s StateStack
	s.ResetTracking(b)
	is.True(!s.IsSennichite())

	other := sg.ParseSFENOrPanic("4k4/9/9/9/9/9/9/9/4K4 w - 1")
	s.RecordState(other)
	s.RecordState(b)
	s.RecordState(other)
	s.RecordState(b)
	is.True(!s.IsSennichite()) // three occurrences

	s.RecordState(other)
	s.RecordState(b)
	is.True(s.IsSennichite()) // fourth
}

func TestStateStackClone(t *testing.T) {
	is := is.New(t)
	b := sg.ParseSFENOrPanic(sg.SFENStartPos)

	var s StateStack
	s.ResetTracking(b)
	s.MarkRoot()
	s.Push(0xAAAA)

	c := s.Clone()
	c.Push(0xBBBB)
	c.Push(b.Hash())
	is.True(c.IsDraw())
	is.True(!s.IsDraw()) // the original is unaffected
}

func TestStateStackEmpty(t *testing.T) {
	var s StateStack
	if s.IsDraw() || s.IsSennichite() {
		t.Fatal("empty stack must not report a draw")
	}
	s.Pop() // must not panic
}
