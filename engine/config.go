package engine

import "fmt"

// SearchConfig gathers every tunable of the search core. Invalid values
// are rejected by Validate at configuration-update time; nothing is
// clamped mid-search.
type SearchConfig struct {
	// Aspiration windows
	AspirationWindow   int32 // initial half-width in centipawns
	AspirationMaxFails int   // widened re-searches before a full-window retry

	// Null-move pruning
	NullMoveMinDepth     int8 // minimum depth to try a null move
	NullMoveEndgameGuard int  // side must have at least this many non-pawn pieces

	// Late move reductions
	LMRDepthLimit int8 // minimum depth for any reduction
	LMRMoveLimit  int  // moves searched before reductions kick in

	// Internal iterative deepening
	IIDMinDepth int8

	// Quiescence
	QuiescenceDepth     int8
	QuiescenceSEEMargin int
	DeltaMargin         int32

	// Cancellation poll interval, in nodes (power of two).
	TimeCheckInterval uint64

	// Statistics collection; a runtime flag so one code path serves all builds.
	CollectStats bool

	TT   TTConfig
	YBWC YBWCConfig
}

// TTConfig sizes the two table levels and sets the promotion/demotion
// thresholds between them.
type TTConfig struct {
	L1SizeMB        int
	L2Segments      int   // power of two
	PromoteMinDepth int8  // L2 hit probed at or above this depth is copied to L1
	DemoteAge       uint8 // L1 victims older than this many generations demote to L2
}

// YBWCConfig controls when and how sibling subtrees are parallelized.
type YBWCConfig struct {
	Threads     int  // worker pool size; 1 disables parallel search
	MinDepth    int8 // minimum node depth to split
	MinSiblings int  // younger siblings required before splitting
	MaxSiblings int  // cap on siblings searched concurrently at one node
	// Depth-banded divisors bound fan-out: a node's worker budget is
	// Threads divided by the divisor of its depth band.
	ShallowDivisor int // depth < 8
	MidDivisor     int // 8 <= depth < 12
	DeepDivisor    int // depth >= 12
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() SearchConfig {
	return SearchConfig{
		AspirationWindow:     35,
		AspirationMaxFails:   4,
		NullMoveMinDepth:     2,
		NullMoveEndgameGuard: 1,
		LMRDepthLimit:        2,
		LMRMoveLimit:         2,
		IIDMinDepth:          5,
		QuiescenceDepth:      30,
		QuiescenceSEEMargin:  100,
		DeltaMargin:          200,
		TimeCheckInterval:    4096,
		CollectStats:         true,
		TT: TTConfig{
			L1SizeMB:        64,
			L2Segments:      1 << 14,
			PromoteMinDepth: 5,
			DemoteAge:       2,
		},
		YBWC: YBWCConfig{
			Threads:        1,
			MinDepth:       6,
			MinSiblings:    4,
			MaxSiblings:    8,
			ShallowDivisor: 4,
			MidDivisor:     2,
			DeepDivisor:    1,
		},
	}
}

// Validate reports the first problem found, with the offending field and
// value in the message.
func (cfg *SearchConfig) Validate() error {
	if cfg.AspirationWindow <= 0 {
		return fmt.Errorf("config: AspirationWindow must be positive, got %d", cfg.AspirationWindow)
	}
	if cfg.AspirationMaxFails < 1 {
		return fmt.Errorf("config: AspirationMaxFails must be at least 1, got %d", cfg.AspirationMaxFails)
	}
	if cfg.NullMoveMinDepth < 1 {
		return fmt.Errorf("config: NullMoveMinDepth must be at least 1, got %d", cfg.NullMoveMinDepth)
	}
	if cfg.NullMoveEndgameGuard < 0 {
		return fmt.Errorf("config: NullMoveEndgameGuard must not be negative, got %d", cfg.NullMoveEndgameGuard)
	}
	if cfg.LMRDepthLimit < 1 {
		return fmt.Errorf("config: LMRDepthLimit must be at least 1, got %d", cfg.LMRDepthLimit)
	}
	if cfg.LMRDepthLimit > MaxDepth {
		return fmt.Errorf("config: LMRDepthLimit %d exceeds the maximum depth %d", cfg.LMRDepthLimit, MaxDepth)
	}
	if cfg.LMRMoveLimit < 1 {
		return fmt.Errorf("config: LMRMoveLimit must be at least 1, got %d", cfg.LMRMoveLimit)
	}
	if cfg.IIDMinDepth < 2 {
		return fmt.Errorf("config: IIDMinDepth must be at least 2, got %d", cfg.IIDMinDepth)
	}
	if cfg.QuiescenceDepth < 1 {
		return fmt.Errorf("config: QuiescenceDepth must be at least 1, got %d", cfg.QuiescenceDepth)
	}
	if cfg.DeltaMargin < 0 {
		return fmt.Errorf("config: DeltaMargin must not be negative, got %d", cfg.DeltaMargin)
	}
	if cfg.TimeCheckInterval == 0 || cfg.TimeCheckInterval&(cfg.TimeCheckInterval-1) != 0 {
		return fmt.Errorf("config: TimeCheckInterval must be a power of two, got %d", cfg.TimeCheckInterval)
	}
	if err := cfg.TT.validate(); err != nil {
		return err
	}
	return cfg.YBWC.validate()
}

func (tc *TTConfig) validate() error {
	if tc.L1SizeMB < 1 {
		return fmt.Errorf("config: TT.L1SizeMB must be at least 1, got %d", tc.L1SizeMB)
	}
	if tc.L2Segments < 1 || tc.L2Segments&(tc.L2Segments-1) != 0 {
		return fmt.Errorf("config: TT.L2Segments must be a power of two, got %d", tc.L2Segments)
	}
	if tc.PromoteMinDepth < 1 {
		return fmt.Errorf("config: TT.PromoteMinDepth must be at least 1, got %d", tc.PromoteMinDepth)
	}
	return nil
}

func (yc *YBWCConfig) validate() error {
	if yc.Threads < 1 {
		return fmt.Errorf("config: YBWC.Threads must be at least 1, got %d", yc.Threads)
	}
	if yc.MinDepth < 2 {
		return fmt.Errorf("config: YBWC.MinDepth must be at least 2, got %d", yc.MinDepth)
	}
	if yc.MinSiblings < 2 {
		return fmt.Errorf("config: YBWC.MinSiblings must be at least 2, got %d", yc.MinSiblings)
	}
	if yc.MaxSiblings < yc.MinSiblings {
		return fmt.Errorf("config: YBWC.MaxSiblings %d is below MinSiblings %d", yc.MaxSiblings, yc.MinSiblings)
	}
	if yc.ShallowDivisor < 1 || yc.MidDivisor < 1 || yc.DeepDivisor < 1 {
		return fmt.Errorf("config: YBWC divisors must be at least 1, got %d/%d/%d",
			yc.ShallowDivisor, yc.MidDivisor, yc.DeepDivisor)
	}
	return nil
}

// workerBudget returns how many workers a split node at the given depth may
// use, applying the depth-band divisor and the sibling cap.
func (yc *YBWCConfig) workerBudget(depth int8) int {
	div := yc.ShallowDivisor
	switch {
	case depth >= 12:
		div = yc.DeepDivisor
	case depth >= 8:
		div = yc.MidDivisor
	}
	n := yc.Threads / div
	if n > yc.MaxSiblings {
		n = yc.MaxSiblings
	}
	return n
}
