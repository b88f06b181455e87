package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	sg "shogi-engine/shogimg"
)

// =============================================================================
// SCORE CONSTANTS
// =============================================================================
const (
	MaxScore  int32 = 32500
	Checkmate int32 = 20000
	DrawScore int32 = 0
)

const EmptyMove sg.Move = 0

// =============================================================================
// MARGINS
// =============================================================================
var FutilityMargins = [8]int32{0, 120, 220, 320, 420, 520, 620, 720}
var RFPMargins = [8]int32{0, 100, 200, 300, 400, 500, 600, 700}

var LateMovePruningMargins = [9]int{0, 3, 5, 9, 14, 20, 27, 35, 44}

// IterationInfo reports one finished deepening iteration to the caller;
// the USI layer turns these into "info" lines.
type IterationInfo struct {
	Depth   int8
	Score   int32
	Nodes   uint64
	Elapsed time.Duration
	PV      []sg.Move
}

// SearchOptions carries the per-search limits from a "go" command. A zero
// Depth means depth is unbounded and the clock decides; MoveTime overrides
// the clock fields.
type SearchOptions struct {
	Depth     int8
	MoveTime  int64 // milliseconds; 0 = derive from clock
	BlackTime int   // milliseconds left on Black's clock
	WhiteTime int
	Byoyomi   int
	Increment int
	Infinite  bool
}

// SearchStats aggregates the counters collected during one search.
type SearchStats struct {
	Nodes   uint64
	Elapsed time.Duration
	NPS     uint64
	Cuts    CutStatistics
	TT      TTStats
}

// Result is the outcome of one Search call.
type Result struct {
	BestMove sg.Move
	Score    int32
	Depth    int8
	PV       []sg.Move
	Stats    SearchStats
	FromBook bool
}

// Engine owns the long-lived search state: the transposition table shared
// across searches and threads, the optional book and tablebase, and the
// worker token pool for the parallel search. One Engine serves one game
// session; Search must not be called concurrently.
type Engine struct {
	cfg       SearchConfig
	tt        *TransTable
	book      OpeningBook
	tablebase Tablebase
	log       zerolog.Logger

	// Progress, when set, is called after every completed iteration.
	Progress func(IterationInfo)

	stop      atomic.Bool
	tokens    chan struct{}
	prevScore int32
	hasPrev   bool
}

func NewEngine(cfg SearchConfig, log zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg: cfg,
		tt:  NewTransTable(cfg.TT),
		log: log,
	}
	if cfg.YBWC.Threads > 1 {
		e.tokens = make(chan struct{}, cfg.YBWC.Threads-1)
		for i := 0; i < cfg.YBWC.Threads-1; i++ {
			e.tokens <- struct{}{}
		}
	}
	return e, nil
}

// SetConfig replaces the configuration between searches. Table sizing
// changes rebuild the table.
func (e *Engine) SetConfig(cfg SearchConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.TT != e.cfg.TT {
		e.tt = NewTransTable(cfg.TT)
	}
	if cfg.YBWC.Threads != e.cfg.YBWC.Threads {
		e.tokens = nil
		if cfg.YBWC.Threads > 1 {
			e.tokens = make(chan struct{}, cfg.YBWC.Threads-1)
			for i := 0; i < cfg.YBWC.Threads-1; i++ {
				e.tokens <- struct{}{}
			}
		}
	}
	e.cfg = cfg
	return nil
}

func (e *Engine) Config() SearchConfig { return e.cfg }

func (e *Engine) SetBook(book OpeningBook)        { e.book = book }
func (e *Engine) SetTablebase(tb Tablebase)       { e.tablebase = tb }
func (e *Engine) TranspositionTable() *TransTable { return e.tt }

// SetTranspositionTable swaps the table; nil disables probing and storing,
// which must only change search effort, never the chosen move's soundness.
func (e *Engine) SetTranspositionTable(tt *TransTable) { e.tt = tt }

// Stop requests a cooperative abort of the running search.
func (e *Engine) Stop() { e.stop.Store(true) }

// NewGame clears all cross-search state.
func (e *Engine) NewGame() {
	if e.tt != nil {
		e.tt.Clear()
	}
	e.prevScore = 0
	e.hasPrev = false
}

// Search finds the best move for the side to move. The history stack must
// hold the hashes of the game so far (it may be nil for a bare position);
// repetition detection depends on it.
func (e *Engine) Search(ctx context.Context, board *sg.Board, history *StateStack, opts SearchOptions) (Result, error) {
	if !board.HasLegalMoves() {
		// Mated (or stuck, which loses as well): a terminal position is a
		// definitive result, not a failure.
		return Result{BestMove: EmptyMove, Score: -MaxScore}, nil
	}

	if e.book != nil && !opts.Infinite {
		if move, ok := e.book.Probe(board); ok {
			e.log.Debug().Str("move", move.String()).Msg("book move")
			return Result{BestMove: move, FromBook: true}, nil
		}
	}
	if tablebaseUsable(e.tablebase, board) {
		if score, ok := e.tablebase.Probe(board, 0); ok {
			// The table gives the score; pick the move that preserves it by
			// a one-ply probe over the legal moves.
			if move, ok := e.tablebaseBestMove(board); ok {
				return Result{BestMove: move, Score: score, Depth: 1}, nil
			}
		}
	}

	e.stop.Store(false)
	if e.tt != nil {
		e.tt.NewSearch()
	}

	s := e.newRootSearcher(ctx, board, history, opts)
	result := e.rootsearch(s, opts)
	if result.BestMove == EmptyMove {
		// Never resign by protocol accident: fall back to the first legal move.
		moves := board.GenerateLegalMoves()
		result.BestMove = moves[0]
	}
	return result, nil
}

func (e *Engine) newRootSearcher(ctx context.Context, board *sg.Board, history *StateStack, opts SearchOptions) *searcher {
	states := &StateStack{}
	if history != nil {
		states = history.Clone()
	} else {
		states.ResetTracking(board)
	}
	states.MarkRoot()

	th := &TimeHandler{}
	useCustomDepth := opts.Depth > 0 || opts.Infinite
	switch {
	case opts.MoveTime > 0:
		th.SetFixedTime(opts.MoveTime)
	case !useCustomDepth:
		remaining := opts.BlackTime
		if board.SideToMove() == sg.White {
			remaining = opts.WhiteTime
		}
		th.initTimemanagement(remaining, opts.Increment, opts.Byoyomi, false)
		th.StartTime(board)
	default:
		th.initTimemanagement(0, 0, 0, true)
	}

	cfg := e.cfg
	return &searcher{
		engine:      e,
		cfg:         &cfg,
		board:       board,
		tt:          e.tt,
		killers:     &KillerStruct{},
		history:     &HistoryTable{},
		counters:    &CounterTable{},
		states:      states,
		timeHandler: th,
		abort:       &e.stop,
		ctx:         ctx,
	}
}

// searcher is the per-thread search context. The root search owns one;
// every parallel helper gets a clone with its own board, tables and node
// counter, sharing only the transposition table and the abort flag.
type searcher struct {
	engine      *Engine
	cfg         *SearchConfig
	board       *sg.Board
	tt          *TransTable
	killers     *KillerStruct
	history     *HistoryTable
	counters    *CounterTable
	states      *StateStack
	timeHandler *TimeHandler
	abort       *atomic.Bool
	ctx         context.Context

	nodes    uint64
	stats    CutStatistics
	auxStore bool // reduced pre-searches store advisory entries
}

func (s *searcher) aborted() bool {
	return s.abort.Load()
}

func (s *searcher) pollStop() {
	if s.timeHandler.HardExpired() {
		s.abort.Store(true)
		return
	}
	if s.ctx != nil {
		select {
		case <-s.ctx.Done():
			s.abort.Store(true)
		default:
		}
	}
}

func (s *searcher) ttSource() uint8 {
	if s.auxStore {
		return SourceAux
	}
	return SourceMain
}

func (e *Engine) rootsearch(s *searcher, opts SearchOptions) Result {
	var alpha int32 = -MaxScore
	var beta int32 = MaxScore
	var bestScore int32 = -MaxScore

	maxDepth := opts.Depth
	if maxDepth <= 0 || maxDepth > MaxDepth {
		maxDepth = MaxDepth
	}

	// Use previous search score as center of aspiration window if available
	currentWindow := e.cfg.AspirationWindow
	if e.hasPrev {
		alpha = e.prevScore - currentWindow
		beta = e.prevScore + currentWindow
	}

	var pvLine PVLine
	var prevPVLine PVLine
	var completedDepth int8
	failCount := 0

	startTime := time.Now()

	for i := int8(1); i <= maxDepth; i++ {
		if i > 1 && s.timeHandler.SoftExpired() {
			break
		}

		pvLine.Clear()
		score := s.alphabeta(s.board, alpha, beta, i, 0, &pvLine, EmptyMove, false, false, EmptyMove)

		if s.aborted() {
			if len(prevPVLine.Moves) == 0 && len(pvLine.Moves) > 0 {
				bestScore = score
				prevPVLine.Moves = append(prevPVLine.Moves[:0], pvLine.Moves...)
				completedDepth = i
			}
			break
		}

		// Aspiration window re-search: widen around the failing score, and
		// give up on windows entirely after too many consecutive fails.
		if score <= alpha || score >= beta {
			failCount++
			if failCount >= e.cfg.AspirationMaxFails {
				alpha = -MaxScore
				beta = MaxScore
			} else {
				currentWindow *= 2
				if currentWindow > MaxScore {
					currentWindow = MaxScore
				}
				alpha = score - currentWindow
				beta = score + currentWindow
				if alpha < -MaxScore {
					alpha = -MaxScore
				}
				if beta > MaxScore {
					beta = MaxScore
				}
			}
			i--
			continue
		}

		failCount = 0
		currentWindow = e.cfg.AspirationWindow
		alpha = score - currentWindow
		beta = score + currentWindow
		bestScore = score
		completedDepth = i

		e.prevScore = bestScore
		e.hasPrev = true
		prevPVLine.Moves = append(prevPVLine.Moves[:0], pvLine.Moves...)

		elapsed := time.Since(startTime)
		if e.Progress != nil {
			pv := make([]sg.Move, len(pvLine.Moves))
			copy(pv, pvLine.Moves)
			e.Progress(IterationInfo{
				Depth:   i,
				Score:   score,
				Nodes:   s.nodes,
				Elapsed: elapsed,
				PV:      pv,
			})
		}
		e.log.Debug().
			Int8("depth", i).
			Int32("score", score).
			Uint64("nodes", s.nodes).
			Dur("elapsed", elapsed).
			Str("pv", pvLine.String()).
			Msg("iteration complete")

		if abs32(score) > Checkmate && len(pvLine.Moves) > 0 {
			break
		}
	}

	elapsed := time.Since(startTime)
	nps := uint64(0)
	if ms := elapsed.Milliseconds(); ms > 0 {
		nps = s.nodes * 1000 / uint64(ms)
	}

	result := Result{
		BestMove: prevPVLine.BestMove(),
		Score:    bestScore,
		Depth:    completedDepth,
		PV:       prevPVLine.Moves,
		Stats: SearchStats{
			Nodes:   s.nodes,
			Elapsed: elapsed,
			NPS:     nps,
			Cuts:    s.stats,
		},
	}
	if s.tt != nil {
		result.Stats.TT = s.tt.Snapshot()
	}
	if e.cfg.CollectStats {
		s.stats.dump(e.log)
	}
	return result
}

func (s *searcher) alphabeta(b *sg.Board, alpha int32, beta int32, depth int8, ply int8, pvLine *PVLine, prevMove sg.Move, didNull bool, isExtended bool, excluded sg.Move) int32 {
	s.nodes++

	if s.nodes&(s.cfg.TimeCheckInterval-1) == 0 {
		s.pollStop()
	}

	if ply >= MaxDepth {
		return Evaluation(b, false)
	}

	if s.aborted() {
		return 0
	}

	/* INIT KEY VARIABLES */
	var bestMove sg.Move
	var childPVLine = PVLine{}
	var isPVNode = (beta - alpha) > 1
	var isRoot = ply == 0

	// Sennichite
	if !isRoot && s.states.IsDraw() {
		return DrawScore
	}

	if !isRoot && tablebaseUsable(s.engine.tablebase, b) {
		if score, ok := s.engine.tablebase.Probe(b, ply); ok {
			return score
		}
	}

	inCheck := b.OurKingInCheck()

	// Check extension
	if inCheck {
		depth++
	}

	// Quiescence at leaf nodes
	if depth <= 0 {
		return s.quiescence(b, alpha, beta, pvLine, s.cfg.QuiescenceDepth, ply)
	}

	posHash := b.Hash()

	/*
		TRANSPOSITION TABLE LOOKUP
	*/
	var ttEntry TTEntry
	var ttHit bool
	if s.tt != nil {
		ttEntry, _, ttHit = s.tt.ProbeEntry(posHash, depth)
	}
	ttMove := EmptyMove
	if ttHit {
		ttMove = ttEntry.Move
		bestMove = ttMove
		if !isRoot && !isPVNode && excluded == EmptyMove {
			if usable, ttScore := s.tt.UseEntry(ttEntry, posHash, depth, alpha, beta, ply); usable {
				s.stats.TTCutoffs++
				return ttScore
			}
		}
	}

	staticScore := Evaluation(b, false)

	improving := false
	if ply >= 2 && !inCheck {
		improving = staticScore > alpha
	}

	bMajors, wMajors := hasMajorPiece(b)
	ourMajors := bMajors
	if b.SideToMove() == sg.White {
		ourMajors = wMajors
	}

	/*
		REVERSE FUTILITY PRUNING
		If our position is so good that even after giving a margin to the
		opponent we still beat beta, we can safely prune.
	*/
	if !inCheck && !isPVNode && !isRoot && depth <= 7 && abs32(beta) < Checkmate {
		rfpMargin := RFPMargins[depth]
		if !improving {
			rfpMargin -= 50 // More aggressive when not improving
		}
		if staticScore-rfpMargin >= beta {
			s.stats.ReverseFutility++
			if s.tt != nil {
				s.tt.StoreEntry(posHash, depth, ply, ttMove, staticScore-rfpMargin, BetaFlag, s.ttSource())
			}
			return staticScore - rfpMargin
		}
	}

	/*
		NULL MOVE PRUNING
		Handing the opponent a free move and still beating beta means the
		position is winning enough to cut. Skipped when the side to move is
		down to almost no majors; zugzwang-like shapes get a verification
		search at high depth instead.
	*/
	if !inCheck && !isPVNode && !didNull && !isRoot &&
		ourMajors >= s.cfg.NullMoveEndgameGuard && depth >= s.cfg.NullMoveMinDepth && abs32(beta) < Checkmate {
		prevHash := b.MakeNullMove()
		s.states.Push(b.Hash())

		var R int8 = 3 + depth/3
		if depth > 6 {
			R++
		}
		if R > depth-1 {
			R = depth - 1
		}

		score := -s.alphabeta(b, -beta, -beta+1, depth-1-R, ply+1, &childPVLine, EmptyMove, true, isExtended, EmptyMove)
		s.states.Pop()
		b.UnmakeNullMove(prevHash)

		if score >= beta && score < Checkmate {
			s.stats.NullMoveCutoffs++
			if depth > 10 {
				verifyScore := s.alphabeta(b, beta-1, beta, depth-1-R, ply, &childPVLine, prevMove, true, isExtended, EmptyMove)
				if verifyScore >= beta {
					return verifyScore
				}
			} else {
				return score
			}
		}
	}

	/*
		SINGULAR EXTENSION
		If the TT move appears singular (no other move comes close to its
		score in a reduced verification search), it deserves an extra ply.
		The verification excludes the TT move and stores only auxiliary
		entries, the same advisory traffic rule IID follows.
	*/
	var singularExtension bool
	if !isPVNode && !isRoot && !inCheck && !didNull && !isExtended && depth >= 8 &&
		ttMove != EmptyMove && ttEntry.Flag == ExactFlag && ttEntry.Depth >= depth-3 {
		ttValue := int32(ttEntry.Score)
		if abs32(ttValue) < Checkmate {
			margin := int32(50) + 10*int32(depth)
			scoreToBeat := ttValue - margin
			R := int8(3) + depth/4
			if R > depth-1 {
				R = depth - 1
			}
			prevAux := s.auxStore
			s.auxStore = true
			var verificationPV PVLine
			scoreSingular := s.alphabeta(b, scoreToBeat-1, scoreToBeat, depth-1-R, ply, &verificationPV, prevMove, didNull, true, ttMove)
			s.auxStore = prevAux
			if scoreSingular < scoreToBeat {
				singularExtension = true
			}
		}
	}

	/*
	   INTERNAL ITERATIVE DEEPENING
	   When we have no TT move at sufficient depth, do a reduced search to
	   find one. Its table traffic is advisory and must never displace real
	   entries of equal depth, hence the auxiliary store marker.
	*/
	if ttMove == EmptyMove && depth >= s.cfg.IIDMinDepth && !didNull && s.tt != nil {
		reducedDepth := depth - 2
		if depth >= 8 {
			reducedDepth = depth - depth/4
		}

		prevAux := s.auxStore
		s.auxStore = true
		var iidPV PVLine
		s.alphabeta(b, alpha, beta, reducedDepth, ply, &iidPV, prevMove, false, isExtended, EmptyMove)
		s.auxStore = prevAux

		if iidEntry, _, ok := s.tt.ProbeEntry(posHash, depth); ok && iidEntry.Move != EmptyMove {
			ttMove = iidEntry.Move
			bestMove = ttMove
		}
	}

	// Generate and score moves
	allMoves := b.GenerateLegalMoves()

	// No legal moves is a loss: being stuck mates you in shogi.
	if len(allMoves) == 0 {
		return -MaxScore + int32(ply)
	}

	us := b.SideToMove()
	var bestScore int32 = -MaxScore
	var moveList = s.scoreMovesList(b, allMoves, ply, ttMove, prevMove)
	var ttFlag int8 = AlphaFlag
	legalMoves := 0

	// Track quiet moves tried for history malus
	quietMovesTried := make([]sg.Move, 0, 16)

	for index := uint8(0); index < uint8(len(moveList.moves)); index++ {
		orderNextMove(index, &moveList)
		move := moveList.moves[index].move

		if move == excluded {
			continue
		}

		isCapture := move.IsCapture()
		isPromotion := move.IsPromotion()
		tactical := isCapture || isPromotion
		legalMoves++

		/*
			LATE MOVE PRUNING:
			Skip quiet moves late in the move list at low depths.
		*/
		prunableLMP := false
		if depth <= 8 && !isPVNode && !tactical && !isRoot && legalMoves > 1 {
			lmpMargin := LateMovePruningMargins[Min(int(depth), len(LateMovePruningMargins)-1)]
			if !improving {
				lmpMargin = lmpMargin * 2 / 3
			}
			prunableLMP = lmpMargin > 0 && legalMoves > lmpMargin
		}

		/*
			FUTILITY: at shallow depths, if static eval plus a margin can't
			beat alpha, quiet moves aren't worth searching.
		*/
		prunableFutility := false
		if depth <= 7 && !isPVNode && !isRoot && !tactical && abs32(alpha) < Checkmate {
			futilityMargin := FutilityMargins[depth]
			if !improving {
				futilityMargin -= 50
			}
			prunableFutility = staticScore+futilityMargin <= alpha
		}

		undo := b.MakeMove(move)
		// Checks are only known after the move is on the board; a checking
		// move is never pruned.
		moveGivesCheck := b.OurKingInCheck()
		if (prunableLMP || prunableFutility) && !moveGivesCheck {
			b.UnmakeMove(move, undo)
			if prunableLMP {
				s.stats.LateMovePrunes++
			} else {
				s.stats.FutilityPrunes++
			}
			legalMoves--
			continue
		}
		if moveGivesCheck {
			tactical = true
		}

		if !isCapture {
			quietMovesTried = append(quietMovesTried, move)
		}

		s.states.Push(b.Hash())

		extendMove := !isExtended && move == ttMove && singularExtension
		nextExtended := isExtended || extendMove
		nextDepth := depth - 1
		if extendMove {
			nextDepth = depth
		}

		var score int32
		if legalMoves == 1 {
			// First move: full-depth, full-window search
			score = -s.alphabeta(b, -beta, -alpha, nextDepth, ply+1, &childPVLine, move, false, nextExtended, EmptyMove)
		} else {
			moveHistoryScore := s.history.Get(us, move)
			reduct := computeLMRReduction(s.cfg, depth, legalMoves, isPVNode, tactical, moveHistoryScore)
			score = s.searchMoveWithPVS(b, move, nextDepth, reduct, alpha, beta, ply, nextExtended, &childPVLine)
		}

		s.states.Pop()
		b.UnmakeMove(move, undo)

		if s.aborted() {
			return 0
		}

		// Update best score and move
		if score > bestScore {
			bestScore = score
			bestMove = move
		}

		// Beta cutoff
		if score >= beta {
			s.stats.BetaCutoffs++
			ttFlag = BetaFlag
			if !isCapture {
				// Store killer and counter moves
				s.killers.InsertKiller(move, ply)
				s.counters.Store(us, prevMove, move)

				// History bonus for the good move
				s.history.Increment(us, move, depth)

				// History malus for all quiet moves that didn't work
				for _, failedMove := range quietMovesTried {
					if failedMove != move {
						s.history.Decrement(us, failedMove)
					}
				}
			}
			break
		}

		// Alpha improvement
		if score > alpha {
			alpha = score
			ttFlag = ExactFlag
			pvLine.Update(move, &childPVLine)

			if !isCapture {
				s.history.Increment(us, move, depth)
			}
		}
		childPVLine.Clear()

		/*
			YOUNG BROTHERS WAIT: once the eldest sibling is fully searched
			and didn't cut, the remaining siblings are independent enough to
			farm out.
		*/
		if legalMoves == 1 && excluded == EmptyMove && s.canSplit(depth, len(moveList.moves)-int(index)-1) {
			spScore, spMove, spFlag, raised := s.searchSiblingsParallel(
				b, &moveList, index+1, depth, ply, alpha, beta, bestScore, prevMove, isExtended, pvLine)
			if spScore > bestScore {
				bestScore = spScore
				bestMove = spMove
			}
			if raised {
				ttFlag = spFlag
			}
			if bestScore >= beta {
				s.stats.BetaCutoffs++
				ttFlag = BetaFlag
			}
			break
		}
	}

	// All pseudo-candidates pruned away: fall back to the static score so
	// the node still returns something bounded.
	if legalMoves == 0 {
		return staticScore
	}

	// Store in transposition table. A verification search with a move
	// excluded scored a different position and must not be recorded.
	if s.tt != nil && !s.aborted() && excluded == EmptyMove {
		s.tt.StoreEntry(posHash, depth, ply, bestMove, bestScore, ttFlag, s.ttSource())
	}

	return bestScore
}

func (s *searcher) quiescence(b *sg.Board, alpha int32, beta int32, pvLine *PVLine, depth int8, ply int8) int32 {
	s.nodes++

	if s.nodes&(s.cfg.TimeCheckInterval-1) == 0 {
		s.pollStop()
	}

	if s.aborted() {
		return 0
	}

	inCheck := b.OurKingInCheck()
	var childPVLine = PVLine{}

	var standpat int32 = Evaluation(b, false)
	if depth <= 0 || ply >= MaxDepth {
		return standpat
	}

	// Stand-pat pruning (not when in check)
	if !inCheck {
		if standpat >= beta {
			s.stats.QStandPatCutoffs++
			return standpat
		}
		if standpat > alpha {
			alpha = standpat
		}
	}

	var bestScore int32
	if inCheck {
		bestScore = -MaxScore // Must escape check
	} else {
		bestScore = standpat
	}

	// Generate moves: all moves when in check, only captures/promotions otherwise
	var moves moveList
	if inCheck {
		all := b.GenerateLegalMoves()
		if len(all) == 0 {
			return -MaxScore + int32(ply)
		}
		moves = s.scoreMovesList(b, all, ply, EmptyMove, EmptyMove)
	} else {
		moves, _ = s.scoreMovesListCaptures(b, b.GenerateCaptures(), EmptyMove)
	}

	for index := uint8(0); index < uint8(len(moves.moves)); index++ {
		orderNextMove(index, &moves)
		move := moves.moves[index].move

		if !inCheck {
			// SEE pruning first
			if move.IsCapture() {
				if see(b, move) < -s.cfg.QuiescenceSEEMargin {
					s.stats.QSeePrunes++
					continue
				}
			}

			// Delta pruning: even the maximum gain from this capture plus a
			// margin can't lift us to alpha.
			moveGain := int32(0)
			if move.IsCapture() {
				moveGain = PieceValueMG[move.CapturedType()]
			}
			if move.IsPromotion() {
				moveGain += PieceValueMG[move.PieceType().Promoted()] - PieceValueMG[move.PieceType()]
			}
			if standpat+moveGain+s.cfg.DeltaMargin < alpha {
				s.stats.QDeltaPrunes++
				continue
			}
		}

		undo := b.MakeMove(move)
		score := -s.quiescence(b, -beta, -alpha, &childPVLine, depth-1, ply+1)
		b.UnmakeMove(move, undo)

		if score > bestScore {
			bestScore = score
		}

		if score >= beta {
			s.stats.QBetaCutoffs++
			return score // Return score, not beta (more accurate)
		}

		if score > alpha {
			alpha = score
			pvLine.Update(move, &childPVLine)
		}
		childPVLine.Clear()
	}

	return bestScore
}

// searchMoveWithPVS performs a Principal Variation Search for a move.
// This implements the standard PVS 3-stage pattern:
// 1. Search with reduced depth using null window
// 2. If reduction was applied and score > alpha, re-search at full depth with null window
// 3. If score is between alpha and beta, do a full window search
func (s *searcher) searchMoveWithPVS(b *sg.Board, move sg.Move, baseDepth int8, reduction int8,
	alpha int32, beta int32, ply int8, isExtended bool, childPVLine *PVLine) int32 {

	// Stage 1: Reduced depth null-window search
	score := -s.alphabeta(b, -(alpha + 1), -alpha, baseDepth-reduction, ply+1, childPVLine, move, false, isExtended, EmptyMove)

	// Stage 2: Re-search at full depth if we had a reduction and score > alpha
	if score > alpha && reduction > 0 {
		score = -s.alphabeta(b, -(alpha + 1), -alpha, baseDepth, ply+1, childPVLine, move, false, isExtended, EmptyMove)
	}

	// Stage 3: Full window search if score is in (alpha, beta) window
	if score > alpha && score < beta {
		score = -s.alphabeta(b, -beta, -alpha, baseDepth, ply+1, childPVLine, move, false, isExtended, EmptyMove)
	}

	return score
}

// tablebaseBestMove picks a legal move whose child position the tablebase
// also resolves, preferring the best child score.
func (e *Engine) tablebaseBestMove(b *sg.Board) (sg.Move, bool) {
	moves := b.GenerateLegalMoves()
	best := EmptyMove
	bestScore := int32(-MaxScore)
	for _, move := range moves {
		undo := b.MakeMove(move)
		if score, ok := e.tablebase.Probe(b, 1); ok {
			if -score > bestScore {
				bestScore = -score
				best = move
			}
		}
		b.UnmakeMove(move, undo)
	}
	return best, best != EmptyMove
}
