package main

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"shogi-engine/engine"
)

// syncWriter serializes writes from the loop and the search goroutine.
type syncWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func (w *syncWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

func runSession(t *testing.T, commands ...string) string {
	t.Helper()
	out := &syncWriter{}
	u, err := newUSIState(zerolog.Nop(), out)
	if err != nil {
		t.Fatalf("newUSIState: %v", err)
	}
	cfg := engine.DefaultConfig()
	cfg.TT.L1SizeMB = 4
	cfg.TT.L2Segments = 1 << 8
	if err := u.eng.SetConfig(cfg); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	u.pendingCfg = u.eng.Config()

	u.loop(strings.NewReader(strings.Join(commands, "\n") + "\n"))
	u.searching.Wait()
	return out.String()
}

func TestUSIHandshake(t *testing.T) {
	out := runSession(t, "usi", "isready", "quit")

	for _, want := range []string{
		"id name",
		"id author",
		"option name USI_Hash",
		"option name Threads",
		"usiok",
		"readyok",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestUSISearchProducesBestmove(t *testing.T) {
	out := runSession(t,
		"usi",
		"isready",
		"usinewgame",
		"position startpos moves 7g7f",
		"go depth 3",
		"quit",
	)

	if !strings.Contains(out, "bestmove ") {
		t.Fatalf("no bestmove in output:\n%s", out)
	}
	if !strings.Contains(out, "info depth") {
		t.Errorf("no iteration info in output:\n%s", out)
	}
	if strings.Contains(out, "bestmove resign") {
		t.Errorf("search resigned from the start position:\n%s", out)
	}
}

func TestUSIMatedPositionResigns(t *testing.T) {
	out := runSession(t,
		"usi",
		"isready",
		"position sfen 9/9/9/9/9/9/4g4/4g4/4K4 b - 1",
		"go depth 2",
		"quit",
	)

	if !strings.Contains(out, "bestmove resign") {
		t.Fatalf("mated position should resign:\n%s", out)
	}
}

func TestUSIPositionSFEN(t *testing.T) {
	out := runSession(t,
		"position sfen 4k4/9/9/9/9/9/9/9/4K4 b - 1",
		"d",
		"quit",
	)
	if !strings.Contains(out, "sfen 4k4/9/9/9/9/9/9/9/4K4 b - 1") {
		t.Fatalf("board not set from sfen:\n%s", out)
	}
}

func TestUSIRejectsIllegalMoveInPosition(t *testing.T) {
	out := runSession(t,
		"position startpos moves 7g7e",
		"quit",
	)
	if !strings.Contains(out, "rejected") {
		t.Fatalf("illegal move not reported:\n%s", out)
	}
}

func TestUSISetOptionInvalidValueReverts(t *testing.T) {
	out := runSession(t,
		"setoption name USI_Hash value 0",
		"isready",
		"isready",
		"quit",
	)
	if !strings.Contains(out, "invalid configuration") {
		t.Fatalf("invalid USI_Hash not reported:\n%s", out)
	}
	// The second isready must succeed against the reverted configuration.
	if strings.Count(out, "readyok") != 2 {
		t.Fatalf("expected two readyok responses:\n%s", out)
	}
}

func TestUSIUnknownCommand(t *testing.T) {
	out := runSession(t, "frobnicate", "quit")
	if !strings.Contains(out, "unknown command") {
		t.Fatalf("unknown command not reported:\n%s", out)
	}
}
