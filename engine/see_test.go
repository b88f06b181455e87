package engine

import (
	"testing"

	"github.com/matryer/is"

	sg "shogi-engine/shogimg"
)

func mustMove(t *testing.T, b *sg.Board, usi string) sg.Move {
	t.Helper()
	m, err := b.ParseMove(usi)
	if err != nil {
		t.Fatalf("ParseMove(%q): %v", usi, err)
	}
	return m
}

func TestSeeUndefendedCapture(t *testing.T) {
	is := is.New(t)
	// Silver takes a hanging pawn.
	b := sg.ParseSFENOrPanic("4k4/9/9/9/4p4/5S3/9/9/4K4 b - 1")
	m := mustMove(t, b, "4f5e")
	is.Equal(see(b, m), SeePieceValue[sg.PieceTypePawn])
}

func TestSeeDefendedCaptureLoses(t *testing.T) {
	is := is.New(t)
	// Silver takes a pawn defended by a silver: wins 100, loses 450.
	b := sg.ParseSFENOrPanic("4k4/9/9/5s3/4p4/5S3/9/9/4K4 b - 1")
	m := mustMove(t, b, "4f5e")
	is.True(see(b, m) < 0)
	is.Equal(see(b, m), SeePieceValue[sg.PieceTypePawn]-SeePieceValue[sg.PieceTypeSilver])
}

func TestSeeEqualTrade(t *testing.T) {
	is := is.New(t)
	// Pawn takes pawn, recaptured by a gold: net zero for the mover.
	b := sg.ParseSFENOrPanic("4k4/9/4g4/4p4/4P4/9/9/9/4K4 b - 1")
	m := mustMove(t, b, "5e5d")
	is.Equal(see(b, m), 0)
}

func TestSeeGoldTradeOnDefendedPawn(t *testing.T) {
	is := is.New(t)
	// Gold takes a pawn defended by a gold. The swap-off must terminate once
	// each attacker has been consumed from the occupancy.
	b := sg.ParseSFENOrPanic("4k4/9/9/4g4/4p4/4G4/9/9/4K4 b - 1")
	m := mustMove(t, b, "5f5e")
	is.Equal(see(b, m), SeePieceValue[sg.PieceTypePawn]-SeePieceValue[sg.PieceTypeGold])
}

func TestSeeDropScoresZero(t *testing.T) {
	is := is.New(t)
	b := sg.ParseSFENOrPanic("4k4/9/9/9/9/9/9/9/4K4 b P 1")
	m := mustMove(t, b, "P*5e")
	is.Equal(see(b, m), 0)
}

func TestSeeQuietMoveScoresZero(t *testing.T) {
	is := is.New(t)
	b := sg.ParseSFENOrPanic(sg.SFENStartPos)
	m := mustMove(t, b, "7g7f")
	is.Equal(see(b, m), 0)
}

func TestSeeRookGrabsDefendedPawn(t *testing.T) {
	is := is.New(t)
	// Rook takes a pawn defended by a gold: wins 100, loses the rook.
	b := sg.ParseSFENOrPanic("4k4/4g4/4p4/9/4R4/9/9/9/4K4 b - 1")
	m := mustMove(t, b, "5e5c")
	is.True(see(b, m) < 0)
}
