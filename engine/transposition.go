package engine

import (
	"encoding/binary"
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/zstd"

	sg "shogi-engine/shogimg"
)

const (
	// Bound flags
	AlphaFlag = iota // upper bound: no move exceeded alpha
	BetaFlag         // lower bound: a beta cutoff occurred
	ExactFlag        // true value proven inside the window

	clusterSize = 4

	// Unusable score
	UnusableScore int32 = -32750
)

// Entry sources. Auxiliary probes (null-move verification, IID) must not
// evict the investment of the deep main search.
const (
	SourceMain uint8 = iota
	SourceAux
)

// Hit levels reported by ProbeEntry.
const (
	HitNone = iota
	HitL1
	HitL2
)

// TTEntry is one cached search result. Hash keeps the full key for
// collision verification; Gen is the search generation that wrote it.
type TTEntry struct {
	Hash   uint64
	Move   sg.Move
	Score  int16
	Depth  int8
	Flag   int8
	Source uint8
	Gen    uint8
}

// l1Entry wraps a TTEntry with a CAS gate so concurrent probe/store never
// publishes a torn read; a blocked gate is treated as a miss.
type l1Entry struct {
	gate int32
	e    TTEntry
}

type l2Segment struct {
	mu   sync.Mutex
	blob []byte // zstd-compressed fixed-size records, nil when empty
}

const (
	l2RecordSize = 20
	l2SegmentCap = 16
)

var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// TTStats is an aggregate snapshot of table activity.
type TTStats struct {
	L1Hits     uint64
	L2Hits     uint64
	Misses     uint64
	Stores     uint64
	Rejected   uint64 // auxiliary stores blocked by the priority policy
	Promotions uint64 // L2 -> L1
	Demotions  uint64 // L1 -> L2
}

// HitRate returns hits over probes across both levels.
func (s TTStats) HitRate() float64 {
	probes := s.L1Hits + s.L2Hits + s.Misses
	if probes == 0 {
		return 0
	}
	return float64(s.L1Hits+s.L2Hits) / float64(probes)
}

func (s TTStats) String() string {
	return fmt.Sprintf("L1 hits: %s, L2 hits: %s, misses: %s, stores: %s, rejected: %s, promoted: %s, demoted: %s",
		humanize.Comma(int64(s.L1Hits)), humanize.Comma(int64(s.L2Hits)), humanize.Comma(int64(s.Misses)),
		humanize.Comma(int64(s.Stores)), humanize.Comma(int64(s.Rejected)),
		humanize.Comma(int64(s.Promotions)), humanize.Comma(int64(s.Demotions)))
}

// TransTable is the hierarchical transposition table: a fast always-hot L1
// of gate-protected clusters plus a larger compressed L2 of independently
// locked segments. Both levels are safe for concurrent use; entries are
// verified by their stored hash before being trusted.
type TransTable struct {
	cfg TTConfig

	entries      []l1Entry
	clusterCount uint64

	segments []l2Segment
	segMask  uint64

	generation uint32 // current search generation, low 6 bits used

	l1Hits, l2Hits, misses atomic.Uint64
	stores, rejected       atomic.Uint64
	promotions, demotions  atomic.Uint64
}

// NewTransTable builds both levels per the config; the config must already
// be validated.
func NewTransTable(cfg TTConfig) *TransTable {
	entrySize := uint64(unsafe.Sizeof(l1Entry{}))
	totalBytes := uint64(cfg.L1SizeMB) * 1024 * 1024
	clusterCount := totalBytes / (entrySize * clusterSize)
	if clusterCount == 0 {
		clusterCount = 1
	}
	return &TransTable{
		cfg:          cfg,
		entries:      make([]l1Entry, clusterCount*clusterSize),
		clusterCount: clusterCount,
		segments:     make([]l2Segment, cfg.L2Segments),
		segMask:      uint64(cfg.L2Segments - 1),
	}
}

// NewSearch advances the generation counter; entries written by earlier
// searches age relative to it.
func (tt *TransTable) NewSearch() {
	atomic.AddUint32(&tt.generation, 1)
}

func (tt *TransTable) gen() uint8 {
	return uint8(atomic.LoadUint32(&tt.generation) & 63)
}

// Clear wipes both levels, for a new game.
func (tt *TransTable) Clear() {
	for i := range tt.entries {
		tt.entries[i] = l1Entry{}
	}
	for i := range tt.segments {
		tt.segments[i].mu.Lock()
		tt.segments[i].blob = nil
		tt.segments[i].mu.Unlock()
	}
}

// Snapshot returns the aggregate statistics for external telemetry.
func (tt *TransTable) Snapshot() TTStats {
	return TTStats{
		L1Hits:     tt.l1Hits.Load(),
		L2Hits:     tt.l2Hits.Load(),
		Misses:     tt.misses.Load(),
		Stores:     tt.stores.Load(),
		Rejected:   tt.rejected.Load(),
		Promotions: tt.promotions.Load(),
		Demotions:  tt.demotions.Load(),
	}
}

// ProbeEntry looks the hash up in L1 then L2 and reports the hit level. An
// L2 hit probed at sufficient depth is promoted into L1 on the way out.
func (tt *TransTable) ProbeEntry(hash uint64, depth int8) (entry TTEntry, level int, ok bool) {
	base := int(hash2cluster(hash, tt.clusterCount))
	for i := 0; i < clusterSize; i++ {
		slot := &tt.entries[base+i]
		if slot.e.Hash != hash {
			continue
		}
		if atomic.CompareAndSwapInt32(&slot.gate, 0, 1) {
			if slot.e.Hash == hash {
				entry = slot.e
				slot.e.Gen = tt.gen()
				ok = true
			}
			atomic.StoreInt32(&slot.gate, 0)
		}
		if ok {
			tt.l1Hits.Add(1)
			return entry, HitL1, true
		}
	}

	if entry, ok = tt.l2Lookup(hash); ok {
		tt.l2Hits.Add(1)
		if depth >= tt.cfg.PromoteMinDepth && tt.l1Store(entry, false) {
			tt.promotions.Add(1)
		}
		return entry, HitL2, true
	}

	tt.misses.Add(1)
	return TTEntry{}, HitNone, false
}

// StoreEntry writes a search result, applying the replacement priority:
// main-search entries may replace anything; auxiliary entries are rejected
// when the occupant is a main-search entry of equal or greater depth.
// Mate scores are normalized by ply so they re-root correctly on probe.
func (tt *TransTable) StoreEntry(hash uint64, depth int8, ply int8, move sg.Move, score int32, flag int8, source uint8) {
	if score > Checkmate {
		score += int32(ply)
	} else if score < -Checkmate {
		score -= int32(ply)
	}
	tt.stores.Add(1)
	tt.l1Store(TTEntry{
		Hash:   hash,
		Move:   move,
		Score:  int16(score),
		Depth:  depth,
		Flag:   flag,
		Source: source,
		Gen:    tt.gen(),
	}, true)
}

// l1Store places the entry into its cluster and reports whether it landed.
// Replacement order: same hash, empty slot, then the worst occupant
// (shallowest, stale generations first). Displaced stale victims demote to
// L2 instead of vanishing.
func (tt *TransTable) l1Store(entry TTEntry, countReject bool) bool {
	base := int(hash2cluster(entry.Hash, tt.clusterCount))
	gen := tt.gen()

	target := -1
	for i := 0; i < clusterSize; i++ {
		if tt.entries[base+i].e.Hash == entry.Hash {
			target = base + i
			break
		}
	}
	if target == -1 {
		for i := 0; i < clusterSize; i++ {
			if tt.entries[base+i].e.Hash == 0 {
				target = base + i
				break
			}
		}
	}
	if target == -1 {
		worst := base
		worstScore := int32(1) << 30
		for i := 0; i < clusterSize; i++ {
			e := &tt.entries[base+i].e
			s := int32(e.Depth) * 4
			if e.Gen == gen {
				s += 256
			}
			if e.Source == SourceMain {
				s += 64
			}
			if s < worstScore {
				worstScore = s
				worst = base + i
			}
		}
		target = worst
	}

	slot := &tt.entries[target]
	victim := slot.e
	if victim.Hash != 0 && entry.Source == SourceAux &&
		victim.Source == SourceMain && victim.Depth >= entry.Depth {
		if countReject {
			tt.rejected.Add(1)
		}
		return false
	}

	if victim.Hash != 0 && victim.Hash != entry.Hash && ageOf(victim.Gen, gen) > tt.cfg.DemoteAge {
		tt.demotions.Add(1)
		tt.l2Store(victim)
	}

	if atomic.CompareAndSwapInt32(&slot.gate, 0, 1) {
		slot.e = entry
		atomic.StoreInt32(&slot.gate, 0)
		return true
	}
	// A lost race here is a lost heuristic write, which is tolerable.
	return false
}

func hash2cluster(hash uint64, clusters uint64) uint64 {
	return hash % clusters * clusterSize
}

// ageOf measures generation distance with wraparound at 64.
func ageOf(entryGen, curGen uint8) uint8 {
	return (curGen - entryGen) & 63
}

// UseEntry decides whether a probed entry yields an immediate cutoff for
// the given window, returning the window-adjusted score when it does.
func (tt *TransTable) UseEntry(entry TTEntry, hash uint64, depth int8, alpha, beta int32, ply int8) (usable bool, score int32) {
	score = UnusableScore
	if entry.Hash != hash || entry.Depth < depth {
		return false, score
	}
	norm := int32(entry.Score)
	if norm > Checkmate {
		norm -= int32(ply)
	} else if norm < -Checkmate {
		norm += int32(ply)
	}
	switch entry.Flag {
	case ExactFlag:
		return true, norm
	case AlphaFlag:
		if norm <= alpha {
			return true, alpha
		}
	case BetaFlag:
		if norm >= beta {
			return true, beta
		}
	}
	return false, score
}

// ---------------------------------------------------------------------------
// L2: compressed segment store

func (tt *TransTable) segmentOf(hash uint64) *l2Segment {
	return &tt.segments[(hash>>32^hash)&tt.segMask]
}

func (tt *TransTable) l2Lookup(hash uint64) (TTEntry, bool) {
	seg := tt.segmentOf(hash)
	seg.mu.Lock()
	defer seg.mu.Unlock()
	if seg.blob == nil {
		return TTEntry{}, false
	}
	records, err := zstdDecoder.DecodeAll(seg.blob, nil)
	if err != nil {
		// A corrupt segment is a cache miss, never trusted.
		seg.blob = nil
		return TTEntry{}, false
	}
	for off := 0; off+l2RecordSize <= len(records); off += l2RecordSize {
		if binary.LittleEndian.Uint64(records[off:]) == hash {
			return decodeL2Record(records[off:]), true
		}
	}
	return TTEntry{}, false
}

func (tt *TransTable) l2Store(entry TTEntry) {
	seg := tt.segmentOf(entry.Hash)
	seg.mu.Lock()
	defer seg.mu.Unlock()

	var records []byte
	if seg.blob != nil {
		var err error
		records, err = zstdDecoder.DecodeAll(seg.blob, nil)
		if err != nil {
			records = nil
		}
	}

	replaced := false
	for off := 0; off+l2RecordSize <= len(records); off += l2RecordSize {
		if binary.LittleEndian.Uint64(records[off:]) == entry.Hash {
			if decodeL2Record(records[off:]).Depth > entry.Depth {
				return
			}
			encodeL2Record(records[off:], entry)
			replaced = true
			break
		}
	}
	if !replaced {
		if len(records)/l2RecordSize >= l2SegmentCap {
			// Evict the shallowest record.
			evict, evictDepth := 0, int8(127)
			for off := 0; off+l2RecordSize <= len(records); off += l2RecordSize {
				if d := decodeL2Record(records[off:]).Depth; d < evictDepth {
					evictDepth = d
					evict = off
				}
			}
			encodeL2Record(records[evict:], entry)
		} else {
			buf := make([]byte, l2RecordSize)
			encodeL2Record(buf, entry)
			records = append(records, buf...)
		}
	}

	seg.blob = zstdEncoder.EncodeAll(records, nil)
}

func encodeL2Record(dst []byte, e TTEntry) {
	binary.LittleEndian.PutUint64(dst[0:], e.Hash)
	binary.LittleEndian.PutUint32(dst[8:], uint32(e.Move))
	binary.LittleEndian.PutUint16(dst[12:], uint16(e.Score))
	dst[14] = uint8(e.Depth)
	dst[15] = uint8(e.Flag)
	dst[16] = e.Source
	dst[17] = e.Gen
	dst[18], dst[19] = 0, 0
}

func decodeL2Record(src []byte) TTEntry {
	return TTEntry{
		Hash:   binary.LittleEndian.Uint64(src[0:]),
		Move:   sg.Move(binary.LittleEndian.Uint32(src[8:])),
		Score:  int16(binary.LittleEndian.Uint16(src[12:])),
		Depth:  int8(src[14]),
		Flag:   int8(src[15]),
		Source: src[16],
		Gen:    src[17],
	}
}
