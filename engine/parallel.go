package engine

import (
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	sg "shogi-engine/shogimg"
)

// Young Brothers Wait Concept: the eldest sibling at a split node is always
// searched serially to establish a bound; only then do the younger siblings
// fan out to helper goroutines. Helpers share the transposition table and
// the shrinking alpha bound, everything else is cloned.

// canSplit checks whether this node is worth parallelizing and whether a
// helper token is available without blocking.
func (s *searcher) canSplit(depth int8, remaining int) bool {
	cfg := &s.cfg.YBWC
	if cfg.Threads <= 1 || s.engine.tokens == nil {
		return false
	}
	if depth < cfg.MinDepth || remaining < cfg.MinSiblings {
		return false
	}
	return len(s.engine.tokens) > 0
}

// splitPoint is the shared state of one parallel node.
type splitPoint struct {
	mu        sync.Mutex
	alpha     int32
	beta      int32
	bestScore int32
	bestMove  sg.Move
	ttFlag    int8
	raised    bool
	pv        PVLine
	cutoff    atomic.Bool
	next      atomic.Int64
}

// searchSiblingsParallel searches moveList[firstIndex:] concurrently.
// Returns the best score and move over the siblings, the table flag when
// any sibling raised alpha, and whether one did.
func (s *searcher) searchSiblingsParallel(
	b *sg.Board,
	moves *moveList,
	firstIndex uint8,
	depth, ply int8,
	alpha, beta, bestScore int32,
	prevMove sg.Move,
	isExtended bool,
	pvLine *PVLine,
) (int32, sg.Move, int8, bool) {
	// Finish the lazy selection sort so workers can pull by raw index.
	rest := moves.moves[firstIndex:]
	sort.SliceStable(rest, func(i, j int) bool { return rest[i].score > rest[j].score })

	sp := &splitPoint{
		alpha:     alpha,
		beta:      beta,
		bestScore: bestScore,
		ttFlag:    AlphaFlag,
	}
	sp.next.Store(0)

	workers := s.acquireWorkers(depth)
	defer s.releaseWorkers(workers)

	// The split node itself works too; workers counts only the helpers.
	var g errgroup.Group
	helpers := make([]*searcher, workers)
	for w := 0; w < workers; w++ {
		helper := s.cloneForHelper(b)
		helpers[w] = helper
		g.Go(func() error {
			helper.workSplitPoint(sp, rest, depth, ply, prevMove, isExtended)
			return nil
		})
	}
	s.workSplitPoint(sp, rest, depth, ply, prevMove, isExtended)
	_ = g.Wait()

	for _, helper := range helpers {
		s.nodes += helper.nodes
		s.stats.Merge(&helper.stats)
	}

	if sp.raised {
		pvLine.Moves = append(pvLine.Moves[:0], sp.pv.Moves...)
	}
	return sp.bestScore, sp.bestMove, sp.ttFlag, sp.raised
}

func (s *searcher) workSplitPoint(sp *splitPoint, rest []scoredMove, depth, ply int8, prevMove sg.Move, isExtended bool) {
	b := s.board
	us := b.SideToMove()

	for {
		if sp.cutoff.Load() || s.aborted() {
			return
		}
		idx := sp.next.Add(1) - 1
		if idx >= int64(len(rest)) {
			return
		}
		move := rest[idx].move

		sp.mu.Lock()
		localAlpha := sp.alpha
		localBeta := sp.beta
		sp.mu.Unlock()
		if localAlpha >= localBeta {
			return
		}

		undo := b.MakeMove(move)
		s.states.Push(b.Hash())

		moveGivesCheck := b.OurKingInCheck()
		tactical := move.IsCapture() || move.IsPromotion() || moveGivesCheck
		moveCount := int(idx) + 2 // eldest sibling was move one

		var childPV PVLine
		moveHistoryScore := s.history.Get(us, move)
		reduct := computeLMRReduction(s.cfg, depth, moveCount, false, tactical, moveHistoryScore)
		score := s.searchMoveWithPVS(b, move, depth-1, reduct, localAlpha, localBeta, ply, isExtended, &childPV)

		s.states.Pop()
		b.UnmakeMove(move, undo)

		if s.aborted() {
			return
		}

		sp.mu.Lock()
		if score > sp.bestScore {
			sp.bestScore = score
			sp.bestMove = move
		}
		if score >= sp.beta {
			sp.ttFlag = BetaFlag
			sp.raised = true
			if !move.IsCapture() {
				s.killers.InsertKiller(move, ply)
				s.counters.Store(us, prevMove, move)
				s.history.Increment(us, move, depth)
			}
			sp.mu.Unlock()
			sp.cutoff.Store(true)
			return
		}
		if score > sp.alpha {
			sp.alpha = score
			sp.ttFlag = ExactFlag
			sp.raised = true
			sp.pv.Update(move, &childPV)
			if !move.IsCapture() {
				s.history.Increment(us, move, depth)
			}
		}
		sp.mu.Unlock()
	}
}

// acquireWorkers grabs up to the depth band's budget of helper tokens,
// never blocking; the split proceeds with whatever it got.
func (s *searcher) acquireWorkers(depth int8) int {
	budget := s.cfg.YBWC.workerBudget(depth) - 1
	got := 0
	for got < budget {
		select {
		case <-s.engine.tokens:
			got++
		default:
			return got
		}
	}
	return got
}

func (s *searcher) releaseWorkers(n int) {
	for i := 0; i < n; i++ {
		s.engine.tokens <- struct{}{}
	}
}

// cloneForHelper makes an independent search context positioned at the split
// node. The board is a value copy, move-ordering state is snapshotted, and
// the node/statistics counters start at zero for later merging.
func (s *searcher) cloneForHelper(b *sg.Board) *searcher {
	return &searcher{
		engine:      s.engine,
		cfg:         s.cfg,
		board:       b.Copy(),
		tt:          s.tt,
		killers:     s.killers.Clone(),
		history:     s.history.Clone(),
		counters:    s.counters.Clone(),
		states:      s.states.Clone(),
		timeHandler: s.timeHandler,
		abort:       s.abort,
		ctx:         s.ctx,
		auxStore:    s.auxStore,
	}
}
