package engine

import (
	"context"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	sg "shogi-engine/shogimg"
)

func testEngine(t *testing.T, mutate func(*SearchConfig)) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.TT.L1SizeMB = 4
	cfg.TT.L2Segments = 1 << 8
	if mutate != nil {
		mutate(&cfg)
	}
	eng, err := NewEngine(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return eng
}

func searchPosition(t *testing.T, eng *Engine, sfen string, depth int8) Result {
	t.Helper()
	b, err := sg.ParseSFEN(sfen)
	if err != nil {
		t.Fatalf("ParseSFEN(%q): %v", sfen, err)
	}
	res, err := eng.Search(context.Background(), b, nil, SearchOptions{Depth: depth})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	return res
}

const mateInOneSFEN = "3rkr3/9/4G4/9/9/9/9/9/4K4 b G 1"

func TestSearchFindsMateInOne(t *testing.T) {
	is := is.New(t)
	eng := testEngine(t, nil)

	res := searchPosition(t, eng, mateInOneSFEN, 4)
	is.Equal(res.BestMove.String(), "G*5b")
	is.True(res.Score > Checkmate)
	is.True(!res.FromBook)
}

func TestSearchWithoutTableFindsSameMate(t *testing.T) {
	is := is.New(t)
	eng := testEngine(t, nil)
	eng.SetTranspositionTable(nil)

	res := searchPosition(t, eng, mateInOneSFEN, 4)
	is.Equal(res.BestMove.String(), "G*5b")
	is.True(res.Score > Checkmate)
}

func TestParallelSearchFindsMate(t *testing.T) {
	is := is.New(t)
	eng := testEngine(t, func(cfg *SearchConfig) {
		cfg.YBWC.Threads = 4
		cfg.YBWC.MinDepth = 2
	})

	res := searchPosition(t, eng, mateInOneSFEN, 7)
	is.Equal(res.BestMove.String(), "G*5b")
	is.True(res.Score > Checkmate)
}

func TestSearchStartposReturnsLegalMove(t *testing.T) {
	is := is.New(t)
	eng := testEngine(t, nil)

	res := searchPosition(t, eng, sg.SFENStartPos, 4)
	b := sg.ParseSFENOrPanic(sg.SFENStartPos)
	_, err := b.ParseMove(res.BestMove.String())
	is.NoErr(err)
	is.True(res.Depth >= 4)
	is.True(res.Stats.Nodes > 0)
}

func TestSearchNoLegalMovesReturnsMateScore(t *testing.T) {
	// Black king mated by a pair of stacked golds.
	b, err := sg.ParseSFEN("9/9/9/9/9/9/4g4/4g4/4K4 b - 1")
	if err != nil {
		t.Fatalf("ParseSFEN: %v", err)
	}
	if b.HasLegalMoves() {
		t.Fatal("position should be mate, but legal moves exist")
	}
	eng := testEngine(t, nil)
	res, err := eng.Search(context.Background(), b, nil, SearchOptions{Depth: 2})
	if err != nil {
		t.Fatalf("terminal position is a result, not an error: %v", err)
	}
	if res.BestMove != EmptyMove {
		t.Errorf("BestMove = %v, want empty", res.BestMove)
	}
	if res.Score != -MaxScore {
		t.Errorf("Score = %d, want %d", res.Score, -MaxScore)
	}
}

func TestSearchRespectsMoveTimeBudget(t *testing.T) {
	eng := testEngine(t, nil)
	b := sg.ParseSFENOrPanic(sg.SFENStartPos)

	start := time.Now()
	res, err := eng.Search(context.Background(), b, nil, SearchOptions{MoveTime: 100})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	// Generous ceiling: the hard deadline aborts mid-tree, plus poll slack.
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("search ran %v against a 100ms budget", elapsed)
	}
	if _, perr := b.ParseMove(res.BestMove.String()); perr != nil {
		t.Fatalf("budgeted search returned illegal move %v: %v", res.BestMove, perr)
	}
}

func TestSearchRespectsContextCancellation(t *testing.T) {
	eng := testEngine(t, nil)
	b := sg.ParseSFENOrPanic(sg.SFENStartPos)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := eng.Search(ctx, b, nil, SearchOptions{Depth: 30})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	// Even a cancelled search must hand back something legal.
	if _, perr := b.ParseMove(res.BestMove.String()); perr != nil {
		t.Fatalf("cancelled search returned illegal move %v: %v", res.BestMove, perr)
	}
}

func TestSearchBareKingsScoresNearDraw(t *testing.T) {
	is := is.New(t)
	eng := testEngine(t, nil)

	// Two bare kings; nothing to win, so the score stays near the draw value.
	b := sg.ParseSFENOrPanic("4k4/9/9/9/9/9/9/9/4K4 b - 1")
	states := &StateStack{}
	states.ResetTracking(b)
	states.MarkRoot()
	res, err := eng.Search(context.Background(), b, states, SearchOptions{Depth: 6})
	is.NoErr(err)
	is.True(res.Score <= DrawScore+50 && res.Score >= DrawScore-50)
}

func TestEvaluationSymmetry(t *testing.T) {
	is := is.New(t)
	b := sg.ParseSFENOrPanic(sg.SFENStartPos)
	scoreBlack := Evaluation(b, false)

	// The start position is mirror-symmetric, so after a null move the
	// evaluation from White's view must match Black's.
	prev := b.MakeNullMove()
	scoreWhite := Evaluation(b, false)
	b.UnmakeNullMove(prev)

	is.Equal(scoreBlack, scoreWhite)
}

func TestEvaluationMaterialImbalance(t *testing.T) {
	is := is.New(t)
	// Black has an extra rook in hand.
	b := sg.ParseSFENOrPanic("4k4/9/9/9/9/9/9/9/4K4 b R 1")
	is.True(Evaluation(b, false) > 0)

	b.MakeNullMove()
	is.True(Evaluation(b, false) < 0)
}
