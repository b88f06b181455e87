package engine

import (
	"sync"
	"testing"

	"github.com/matryer/is"

	sg "shogi-engine/shogimg"
)

func testTTConfig() TTConfig {
	return TTConfig{
		L1SizeMB:        1,
		L2Segments:      1 << 6,
		PromoteMinDepth: 5,
		DemoteAge:       2,
	}
}

func TestTTStoreProbeRoundTrip(t *testing.T) {
	is := is.New(t)
	tt := NewTransTable(testTTConfig())
	tt.NewSearch()

	move := sg.NewMove(sg.SquareAt(6, 2), sg.SquareAt(5, 2), sg.PieceTypePawn, sg.PieceTypeNone, false)
	tt.StoreEntry(0xDEADBEEF, 8, 0, move, 120, ExactFlag, SourceMain)

	entry, level, ok := tt.ProbeEntry(0xDEADBEEF, 8)
	is.True(ok)
	is.Equal(level, HitL1)
	is.Equal(entry.Move, move)
	is.Equal(entry.Score, int16(120))
	is.Equal(entry.Depth, int8(8))
	is.Equal(int(entry.Flag), ExactFlag)

	usable, score := tt.UseEntry(entry, 0xDEADBEEF, 8, -100, 100, 0)
	is.True(usable)
	is.Equal(score, int32(120))
}

func TestTTProbeMiss(t *testing.T) {
	is := is.New(t)
	tt := NewTransTable(testTTConfig())

	_, level, ok := tt.ProbeEntry(0x1234, 4)
	is.True(!ok)
	is.Equal(level, HitNone)
	is.Equal(tt.Snapshot().Misses, uint64(1))
}

func TestTTAuxNeverEvictsDeeperMain(t *testing.T) {
	is := is.New(t)
	tt := NewTransTable(testTTConfig())
	tt.NewSearch()

	hash := uint64(0xABCDEF01)
	mainMove := sg.NewMove(sg.SquareAt(6, 2), sg.SquareAt(5, 2), sg.PieceTypePawn, sg.PieceTypeNone, false)
	auxMove := sg.NewDrop(sg.SquareAt(4, 4), sg.PieceTypeGold)

	tt.StoreEntry(hash, 6, 0, mainMove, 50, ExactFlag, SourceMain)

	// Shallower auxiliary store must bounce off the main entry.
	tt.StoreEntry(hash, 4, 0, auxMove, -30, BetaFlag, SourceAux)
	entry, _, ok := tt.ProbeEntry(hash, 4)
	is.True(ok)
	is.Equal(entry.Move, mainMove)
	is.Equal(entry.Depth, int8(6))
	is.Equal(tt.Snapshot().Rejected, uint64(1))

	// A deeper auxiliary result is new information and goes through.
	tt.StoreEntry(hash, 7, 0, auxMove, -30, BetaFlag, SourceAux)
	entry, _, ok = tt.ProbeEntry(hash, 7)
	is.True(ok)
	is.Equal(entry.Move, auxMove)
	is.Equal(entry.Depth, int8(7))
}

func TestTTMateScoreNormalization(t *testing.T) {
	is := is.New(t)
	tt := NewTransTable(testTTConfig())
	tt.NewSearch()

	// Mate found at ply 4; stored root-relative, re-rooted when probed at ply 2.
	mateScore := MaxScore - 4
	tt.StoreEntry(0x77, 10, 4, EmptyMove, mateScore, ExactFlag, SourceMain)

	entry, _, ok := tt.ProbeEntry(0x77, 10)
	is.True(ok)
	usable, score := tt.UseEntry(entry, 0x77, 10, -MaxScore, MaxScore, 2)
	is.True(usable)
	is.Equal(score, MaxScore-2)
}

func TestTTShallowEntryNotUsable(t *testing.T) {
	is := is.New(t)
	tt := NewTransTable(testTTConfig())
	tt.NewSearch()

	tt.StoreEntry(0x55, 3, 0, EmptyMove, 10, ExactFlag, SourceMain)
	entry, _, ok := tt.ProbeEntry(0x55, 8)
	is.True(ok) // the entry is visible for move ordering
	usable, _ := tt.UseEntry(entry, 0x55, 8, -100, 100, 0)
	is.True(!usable) // but too shallow to cut with
}

func TestL2RoundTripThroughCompression(t *testing.T) {
	is := is.New(t)
	tt := NewTransTable(testTTConfig())
	tt.NewSearch()

	entry := TTEntry{
		Hash:  0xFEEDFACE12345678,
		Move:  sg.NewDrop(sg.SquareAt(4, 4), sg.PieceTypeSilver),
		Score: -250,
		Depth: 9,
		Flag:  BetaFlag,
	}
	tt.l2Store(entry)

	got, ok := tt.l2Lookup(entry.Hash)
	is.True(ok)
	is.Equal(got.Move, entry.Move)
	is.Equal(got.Score, entry.Score)
	is.Equal(got.Depth, entry.Depth)
	is.Equal(got.Flag, entry.Flag)
}

func TestL2HitPromotesToL1(t *testing.T) {
	is := is.New(t)
	tt := NewTransTable(testTTConfig())
	tt.NewSearch()

	entry := TTEntry{Hash: 0xC0FFEE, Score: 42, Depth: 8, Flag: ExactFlag}
	tt.l2Store(entry)

	// Deep probe: found in L2, copied up.
	_, level, ok := tt.ProbeEntry(entry.Hash, 6)
	is.True(ok)
	is.Equal(level, HitL2)
	is.Equal(tt.Snapshot().Promotions, uint64(1))

	// Second probe hits the promoted copy.
	got, level, ok := tt.ProbeEntry(entry.Hash, 6)
	is.True(ok)
	is.Equal(level, HitL1)
	is.Equal(got.Score, int16(42))
}

func TestL2ShallowProbeDoesNotPromote(t *testing.T) {
	is := is.New(t)
	tt := NewTransTable(testTTConfig())
	tt.NewSearch()

	entry := TTEntry{Hash: 0xC0FFEE, Score: 42, Depth: 8, Flag: ExactFlag}
	tt.l2Store(entry)

	_, level, ok := tt.ProbeEntry(entry.Hash, 2)
	is.True(ok)
	is.Equal(level, HitL2)
	is.Equal(tt.Snapshot().Promotions, uint64(0))
}

func TestRejectedPromotionNotCounted(t *testing.T) {
	is := is.New(t)
	tt := NewTransTable(testTTConfig())
	tt.NewSearch()

	// Fill one cluster with deep main entries at the current generation.
	hash := func(i int) uint64 { return tt.clusterCount*uint64(i+1) + 7 }
	for i := 0; i < clusterSize; i++ {
		tt.StoreEntry(hash(i), 10, 0, EmptyMove, 100, ExactFlag, SourceMain)
	}

	// A shallower auxiliary L2 entry for the same cluster cannot displace
	// any of them, so its attempted promotion must not be counted.
	tt.l2Store(TTEntry{Hash: hash(clusterSize), Depth: 6, Flag: ExactFlag, Source: SourceAux, Gen: tt.gen()})

	_, level, ok := tt.ProbeEntry(hash(clusterSize), 6)
	is.True(ok)
	is.Equal(level, HitL2)
	is.Equal(tt.Snapshot().Promotions, uint64(0))

	// Still answered from L2 on a later probe.
	_, level, ok = tt.ProbeEntry(hash(clusterSize), 6)
	is.True(ok)
	is.Equal(level, HitL2)
}

func TestL2EvictsShallowestWhenFull(t *testing.T) {
	is := is.New(t)
	tt := NewTransTable(testTTConfig())

	// Fill a single segment past its cap with colliding hashes.
	first := uint64(1) << 16
	var hashes []uint64
	for i := 1; len(hashes) < l2SegmentCap+1; i++ {
		h := uint64(i) << 16
		if tt.segmentOf(h) == tt.segmentOf(first) {
			hashes = append(hashes, h)
		}
	}
	for i, h := range hashes {
		depth := int8(3 + i)
		if i == 0 {
			depth = 1 // the shallowest, first victim
		}
		tt.l2Store(TTEntry{Hash: h, Depth: depth, Flag: ExactFlag})
	}

	_, ok := tt.l2Lookup(hashes[0])
	is.True(!ok) // evicted
	_, ok = tt.l2Lookup(hashes[len(hashes)-1])
	is.True(ok)
}

func TestL1EvictionDemotesStaleVictim(t *testing.T) {
	is := is.New(t)
	cfg := testTTConfig()
	tt := NewTransTable(cfg)
	tt.NewSearch()

	// Hashes congruent mod clusterCount land in the same cluster.
	hash := func(i int) uint64 { return tt.clusterCount*uint64(i+1) + 3 }
	for i := 0; i < clusterSize; i++ {
		tt.StoreEntry(hash(i), int8(4+i), 0, EmptyMove, 100, ExactFlag, SourceMain)
	}

	// Age the occupants past the demotion threshold.
	for i := 0; i <= int(cfg.DemoteAge); i++ {
		tt.NewSearch()
	}

	// The overflow store evicts the shallowest stale occupant into L2.
	tt.StoreEntry(hash(clusterSize), 9, 0, EmptyMove, 100, ExactFlag, SourceMain)
	is.Equal(tt.Snapshot().Demotions, uint64(1))

	entry, level, ok := tt.ProbeEntry(hash(0), 1)
	is.True(ok)
	is.Equal(level, HitL2)
	is.Equal(entry.Depth, int8(4))
}

func TestTTClear(t *testing.T) {
	is := is.New(t)
	tt := NewTransTable(testTTConfig())
	tt.NewSearch()

	tt.StoreEntry(0x99, 5, 0, EmptyMove, 7, ExactFlag, SourceMain)
	tt.l2Store(TTEntry{Hash: 0x9A, Depth: 5})
	tt.Clear()

	_, _, ok := tt.ProbeEntry(0x99, 5)
	is.True(!ok)
	_, ok = tt.l2Lookup(0x9A)
	is.True(!ok)
}

func TestTTConcurrentAccess(t *testing.T) {
	tt := NewTransTable(testTTConfig())
	tt.NewSearch()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			h := seed*0x9E3779B97F4A7C15 + 1
			for i := 0; i < 5000; i++ {
				h ^= h << 13
				h ^= h >> 7
				h ^= h << 17
				tt.StoreEntry(h, int8(i%20), int8(i%10), EmptyMove, int32(i%1000), int8(i%3), uint8(i%2))
				if entry, _, ok := tt.ProbeEntry(h, int8(i%20)); ok && entry.Hash != h {
					t.Errorf("probe returned foreign entry: %x != %x", entry.Hash, h)
					return
				}
			}
		}(uint64(g))
	}
	wg.Wait()

	stats := tt.Snapshot()
	if stats.Stores == 0 {
		t.Fatal("no stores recorded")
	}
}
