package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"

	"shogi-engine/engine"
	sg "shogi-engine/shogimg"
)

// Profiling harness: runs one fixed-depth search under pkg/profile and
// writes the result next to the binary. Use -mode mem for allocation
// profiles.

func main() {
	depth := flag.Int("depth", 12, "search depth")
	sfen := flag.String("sfen", sg.SFENStartPos, "position to search")
	mode := flag.String("mode", "cpu", "profile mode: cpu, mem, mutex, block")
	threads := flag.Int("threads", 1, "search worker threads")
	flag.Parse()

	var p interface{ Stop() }
	switch *mode {
	case "cpu":
		p = profile.Start(profile.CPUProfile, profile.ProfilePath("."))
	case "mem":
		p = profile.Start(profile.MemProfile, profile.ProfilePath("."))
	case "mutex":
		p = profile.Start(profile.MutexProfile, profile.ProfilePath("."))
	case "block":
		p = profile.Start(profile.BlockProfile, profile.ProfilePath("."))
	default:
		log.Fatalf("unknown profile mode %q", *mode)
	}
	defer p.Stop()

	board, err := sg.ParseSFEN(*sfen)
	if err != nil {
		log.Fatalf("ParseSFEN: %v", err)
	}

	cfg := engine.DefaultConfig()
	cfg.YBWC.Threads = *threads
	eng, err := engine.NewEngine(cfg, zerolog.New(os.Stderr).Level(zerolog.WarnLevel))
	if err != nil {
		log.Fatalf("engine setup: %v", err)
	}

	result, err := eng.Search(context.Background(), board, nil, engine.SearchOptions{Depth: int8(*depth)})
	if err != nil {
		log.Fatalf("search: %v", err)
	}
	fmt.Printf("bestmove %s score %d nodes %d\n", result.BestMove, result.Score, result.Stats.Nodes)
}
