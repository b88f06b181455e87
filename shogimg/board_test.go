package shogimg

import "testing"

func TestSFENRoundTrip(t *testing.T) {
	cases := []string{
		SFENStartPos,
		"lnsgkgsnl/1r5b1/ppppppppp/9/9/2P6/PP1PPPPPP/1B5R1/LNSGKGSNL w - 2",
		"3rkr3/9/4G4/9/9/9/9/9/4K4 b P 1",
		"l6nl/5+P1gk/2np1S3/p1p4Pp/3P2Sp1/1PPb2P1P/P5GS1/R8/LN4bKL w RGgsn2p 124",
	}
	for _, sfen := range cases {
		board, err := ParseSFEN(sfen)
		if err != nil {
			t.Fatalf("ParseSFEN(%q): %v", sfen, err)
		}
		if got := board.SFEN(); got != sfen {
			t.Errorf("round trip: got %q, want %q", got, sfen)
		}
	}
}

func TestParseSFENRejectsBadInput(t *testing.T) {
	cases := []string{
		"",
		"lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1 b - 1",            // 8 ranks
		"lnsgkgsnl/1r5b1/pppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1", // 10 files
		"lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL x - 1",  // bad side
		"9/9/9/9/4P4/4P4/9/9/4K4 b - 1",                                    // nifu on the board
	}
	for _, sfen := range cases {
		if _, err := ParseSFEN(sfen); err == nil {
			t.Errorf("ParseSFEN(%q) accepted invalid input", sfen)
		}
	}
}

func TestIncrementalZobristMatchesRecompute(t *testing.T) {
	board := ParseSFENOrPanic(SFENStartPos)
	line := []string{"7g7f", "3c3d", "8h2b+", "3a2b", "B*4e"}

	for _, moveStr := range line {
		move, err := board.ParseMove(moveStr)
		if err != nil {
			t.Fatalf("ParseMove(%q): %v", moveStr, err)
		}
		board.MakeMove(move)
		if board.Hash() != board.ComputeZobrist() {
			t.Fatalf("after %s: incremental hash %x != recomputed %x",
				moveStr, board.Hash(), board.ComputeZobrist())
		}
	}
}

func TestMakeUnmakeRestoresBoard(t *testing.T) {
	board := ParseSFENOrPanic(SFENStartPos)
	sfen := board.SFEN()
	hash := board.Hash()

	for _, move := range board.GenerateLegalMoves() {
		undo := board.MakeMove(move)
		board.UnmakeMove(move, undo)
		if board.SFEN() != sfen {
			t.Fatalf("move %s: board not restored: %s", move, board.SFEN())
		}
		if board.Hash() != hash {
			t.Fatalf("move %s: hash not restored", move)
		}
	}
}

func TestCaptureGoesToHandDemoted(t *testing.T) {
	// Black silver captures a promoted pawn; the hand receives a plain pawn.
	board := ParseSFENOrPanic("4k4/9/9/4+p4/3S5/9/9/9/4K4 b - 1")
	move, err := board.ParseMove("6e5d")
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}
	board.MakeMove(move)
	if got := board.HandCount(Black, PieceTypePawn); got != 1 {
		t.Errorf("hand pawns = %d, want 1", got)
	}
}

func TestNullMoveRestoresHash(t *testing.T) {
	board := ParseSFENOrPanic(SFENStartPos)
	hash := board.Hash()
	prev := board.MakeNullMove()
	if board.SideToMove() != White {
		t.Fatal("null move did not flip side")
	}
	if board.Hash() == hash {
		t.Fatal("null move did not change hash")
	}
	board.UnmakeNullMove(prev)
	if board.Hash() != hash || board.SideToMove() != Black {
		t.Fatal("null move not undone")
	}
}
