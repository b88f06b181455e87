package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"shogi-engine/engine"
	sg "shogi-engine/shogimg"
)

func main() {
	depthFlag := flag.Int("depth", 10, "search depth in plies")
	repeatFlag := flag.Int("repeat", 1, "number of searches to run")
	sfenFlag := flag.String("sfen", "", "SFEN to search (empty = startpos)")
	threadsFlag := flag.Int("threads", 1, "search worker threads")
	hashFlag := flag.Int("hash", 64, "transposition table size in MB")
	cpuProfile := flag.String("cpuprofile", "", "write CPU profile to file")
	memProfile := flag.String("memprofile", "", "write memory profile (heap) to file")
	flag.Parse()

	if *depthFlag <= 0 {
		log.Fatalf("depth must be positive, got %d", *depthFlag)
	}

	var cpuFile *os.File
	var err error
	if *cpuProfile != "" {
		cpuFile, err = os.Create(*cpuProfile)
		if err != nil {
			log.Fatalf("could not create CPU profile: %v", err)
		}
		if err := pprof.StartCPUProfile(cpuFile); err != nil {
			log.Fatalf("could not start CPU profile: %v", err)
		}
		defer func() {
			pprof.StopCPUProfile()
			cpuFile.Close()
		}()
	}

	sfen := sg.SFENStartPos
	if *sfenFlag != "" {
		sfen = *sfenFlag
	}

	cfg := engine.DefaultConfig()
	cfg.YBWC.Threads = *threadsFlag
	cfg.TT.L1SizeMB = *hashFlag

	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)
	eng, err := engine.NewEngine(cfg, logger)
	if err != nil {
		log.Fatalf("engine setup: %v", err)
	}

	fmt.Printf("searchbench: sfen=%q depth=%d repeat=%d threads=%d\n", sfen, *depthFlag, *repeatFlag, *threadsFlag)

	startAll := time.Now()
	var totalNodes uint64
	for i := 0; i < *repeatFlag; i++ {
		board, err := sg.ParseSFEN(sfen)
		if err != nil {
			log.Fatalf("ParseSFEN: %v", err)
		}
		eng.NewGame()

		iterStart := time.Now()
		result, err := eng.Search(context.Background(), board, nil, engine.SearchOptions{
			Depth: int8(*depthFlag),
		})
		if err != nil {
			log.Fatalf("search: %v", err)
		}
		iterElapsed := time.Since(iterStart)
		totalNodes += result.Stats.Nodes

		fmt.Printf("iteration %d: bestmove %v  score=%s  nodes=%s  nps=%s  time=%v\n",
			i+1, result.BestMove, engine.FormatScore(result.Score),
			humanize.Comma(int64(result.Stats.Nodes)), humanize.Comma(int64(result.Stats.NPS)), iterElapsed)
		fmt.Printf("  tt: %s\n", result.Stats.TT)
	}
	totalElapsed := time.Since(startAll)
	fmt.Printf("total: nodes=%s time=%v\n", humanize.Comma(int64(totalNodes)), totalElapsed)

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			log.Fatalf("could not create memory profile: %v", err)
		}
		defer f.Close()

		runtime.GC() // get up-to-date heap info
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatalf("could not write memory profile: %v", err)
		}
	}
}
