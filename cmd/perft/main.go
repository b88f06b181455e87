package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/exp/slices"

	sg "shogi-engine/shogimg"
)

func main() {
	sfen := flag.String("sfen", sg.SFENStartPos, "SFEN string (defaults to initial position)")
	depth := flag.Int("depth", 0, "Perft depth (required)")
	divide := flag.Bool("divide", false, "Print per-move node counts at root")
	repeat := flag.Int("repeat", 1, "Repeat perft N times and report aggregate (for steadier timings)")
	label := flag.String("label", "", "Optional label prefix for one-line output")
	cpuProf := flag.String("cpuprofile", "", "Write CPU profile to file during run")
	flag.Parse()

	if *depth <= 0 {
		fmt.Fprintln(os.Stderr, "-depth must be > 0")
		os.Exit(2)
	}

	board, err := sg.ParseSFEN(*sfen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ParseSFEN error: %v\n", err)
		os.Exit(2)
	}

	// Optional divide output
	if *divide {
		div := sg.PerftDivide(board, *depth)
		type kv struct {
			m sg.Move
			n uint64
		}
		arr := make([]kv, 0, len(div))
		var sum uint64
		for m, n := range div {
			arr = append(arr, kv{m, n})
			sum += n
		}
		slices.SortFunc(arr, func(a, b kv) bool { return a.m.String() < b.m.String() })
		for _, x := range arr {
			fmt.Printf("%s: %d\n", x.m.String(), x.n)
		}
		fmt.Printf("Total: %d\n", sum)
		return
	}

	if *cpuProf != "" {
		f, err := os.Create(*cpuProf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "creating cpuprofile: %v\n", err)
			os.Exit(2)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "starting cpuprofile: %v\n", err)
			os.Exit(2)
		}
		defer pprof.StopCPUProfile()
	}

	var total uint64
	start := time.Now()
	for i := 0; i < *repeat; i++ {
		total += sg.Perft(board, *depth)
	}
	elapsed := time.Since(start)

	nps := uint64(0)
	if s := elapsed.Seconds(); s > 0 {
		nps = uint64(float64(total) / s)
	}

	prefix := ""
	if *label != "" {
		prefix = *label + " \t"
	}
	fmt.Printf("%sdepth=%d \tnodes=%s \ttime=%v \tnps=%s\n",
		prefix, *depth, humanize.Comma(int64(total)), elapsed.Round(time.Millisecond), humanize.Comma(int64(nps)))
}
