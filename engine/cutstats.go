package engine

import (
	"github.com/rs/zerolog"
)

// CutStatistics collects counts for each pruning/cutoff mechanism. Each
// searcher keeps its own copy; helpers are merged into the root's after a
// split point joins.
type CutStatistics struct {
	TTCutoffs        uint64
	NullMoveCutoffs  uint64
	ReverseFutility  uint64
	FutilityPrunes   uint64
	LateMovePrunes   uint64
	BetaCutoffs      uint64
	QStandPatCutoffs uint64
	QBetaCutoffs     uint64
	QDeltaPrunes     uint64
	QSeePrunes       uint64
}

func (cs *CutStatistics) Merge(other *CutStatistics) {
	cs.TTCutoffs += other.TTCutoffs
	cs.NullMoveCutoffs += other.NullMoveCutoffs
	cs.ReverseFutility += other.ReverseFutility
	cs.FutilityPrunes += other.FutilityPrunes
	cs.LateMovePrunes += other.LateMovePrunes
	cs.BetaCutoffs += other.BetaCutoffs
	cs.QStandPatCutoffs += other.QStandPatCutoffs
	cs.QBetaCutoffs += other.QBetaCutoffs
	cs.QDeltaPrunes += other.QDeltaPrunes
	cs.QSeePrunes += other.QSeePrunes
}

func (cs *CutStatistics) dump(log zerolog.Logger) {
	log.Debug().
		Uint64("tt_cutoffs", cs.TTCutoffs).
		Uint64("null_move_cutoffs", cs.NullMoveCutoffs).
		Uint64("reverse_futility", cs.ReverseFutility).
		Uint64("futility_prunes", cs.FutilityPrunes).
		Uint64("late_move_prunes", cs.LateMovePrunes).
		Uint64("beta_cutoffs", cs.BetaCutoffs).
		Uint64("qsearch_stand_pat", cs.QStandPatCutoffs).
		Uint64("qsearch_beta_cutoffs", cs.QBetaCutoffs).
		Uint64("qsearch_delta_prunes", cs.QDeltaPrunes).
		Uint64("qsearch_see_prunes", cs.QSeePrunes).
		Msg("cut statistics")
}
