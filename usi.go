package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"shogi-engine/engine"
	sg "shogi-engine/shogimg"
)

const engineName = "ShogiEngine 0.3"
const engineAuthor = "ShogiEngine authors"

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.StampMilli}).
		With().Timestamp().Logger().Level(zerolog.InfoLevel)

	u, err := newUSIState(log, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("engine init failed")
	}
	u.loop(os.Stdin)
}

// usiState holds the protocol session: the current position, the game
// history for sennichite detection, and the engine itself. One search runs
// at a time; "go" returns immediately and "bestmove" is printed from the
// search goroutine so "stop" stays responsive.
type usiState struct {
	eng    *engine.Engine
	board  *sg.Board
	states *engine.StateStack
	log    zerolog.Logger
	out    io.Writer

	searchMu  sync.Mutex
	searching sync.WaitGroup

	pendingCfg engine.SearchConfig
	bookPath   string
}

func newUSIState(log zerolog.Logger, out io.Writer) (*usiState, error) {
	cfg := engine.DefaultConfig()
	eng, err := engine.NewEngine(cfg, log)
	if err != nil {
		return nil, err
	}

	u := &usiState{
		eng:        eng,
		board:      sg.ParseSFENOrPanic(sg.SFENStartPos),
		states:     &engine.StateStack{},
		log:        log,
		out:        out,
		pendingCfg: cfg,
	}
	u.states.ResetTracking(u.board)

	eng.Progress = func(info engine.IterationInfo) {
		elapsedMs := info.Elapsed.Milliseconds()
		nps := uint64(0)
		if elapsedMs > 0 {
			nps = info.Nodes * 1000 / uint64(elapsedMs)
		}
		pv := ""
		for _, m := range info.PV {
			pv += " " + m.String()
		}
		u.send("info depth %d score %s nodes %d time %d nps %d pv%s",
			info.Depth, scoreString(info.Score), info.Nodes, elapsedMs, nps, pv)
	}
	return u, nil
}

func (u *usiState) send(format string, args ...interface{}) {
	fmt.Fprintf(u.out, format+"\n", args...)
}

func (u *usiState) loop(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		tokens := strings.Fields(line)
		if len(tokens) == 0 { // ignore blank lines
			continue
		}
		switch tokens[0] {
		case "usi":
			u.send("id name %s", engineName)
			u.send("id author %s", engineAuthor)
			u.send("option name USI_Hash type spin default %d min 1 max 4096", u.pendingCfg.TT.L1SizeMB)
			u.send("option name Threads type spin default %d min 1 max 64", u.pendingCfg.YBWC.Threads)
			u.send("option name BookFile type string default <empty>")
			u.send("option name CollectStats type check default %v", u.pendingCfg.CollectStats)
			u.send("usiok")
		case "isready":
			// Option changes are applied here so a rejected value never
			// leaves the engine half-configured mid-game.
			if err := u.eng.SetConfig(u.pendingCfg); err != nil {
				u.send("info string invalid configuration: %v", err)
				u.pendingCfg = u.eng.Config()
			}
			u.send("readyok")
		case "usinewgame":
			u.eng.NewGame()
			u.setStartpos()
		case "position":
			u.handlePosition(tokens[1:])
		case "go":
			u.handleGo(tokens[1:])
		case "stop":
			u.eng.Stop()
			u.searching.Wait()
		case "setoption":
			u.handleSetOption(tokens[1:])
		case "d":
			u.searching.Wait()
			fmt.Fprint(u.out, u.board.String())
			u.send("sfen %s", u.board.SFEN())
		case "quit":
			u.eng.Stop()
			u.searching.Wait()
			return
		default:
			u.send("info string unknown command: %s", line)
		}
	}
}

func (u *usiState) setStartpos() {
	u.board = sg.ParseSFENOrPanic(sg.SFENStartPos)
	u.states.ResetTracking(u.board)
}

func (u *usiState) handlePosition(tokens []string) {
	u.searching.Wait()
	if len(tokens) == 0 {
		u.send("info string malformed position command")
		return
	}

	movesAt := -1
	for i, tok := range tokens {
		if tok == "moves" {
			movesAt = i
			break
		}
	}

	switch tokens[0] {
	case "startpos":
		u.setStartpos()
	case "sfen":
		end := movesAt
		if end == -1 {
			end = len(tokens)
		}
		sfen := strings.Join(tokens[1:end], " ")
		board, err := sg.ParseSFEN(sfen)
		if err != nil {
			u.send("info string invalid sfen: %v", err)
			return
		}
		u.board = board
		u.states.ResetTracking(u.board)
	default:
		u.send("info string invalid position subcommand %s", tokens[0])
		return
	}

	if movesAt == -1 {
		return
	}
	for _, moveStr := range tokens[movesAt+1:] {
		move, err := u.board.ParseMove(moveStr)
		if err != nil {
			u.send("info string move %s rejected: %v", moveStr, err)
			return
		}
		u.board.MakeMove(move)
		u.states.RecordState(u.board)
	}
}

func (u *usiState) handleGo(tokens []string) {
	var opts engine.SearchOptions

	for i := 0; i < len(tokens); i++ {
		switch tokens[i] {
		case "infinite":
			opts.Infinite = true
		case "btime":
			i++
			opts.BlackTime = atoiOr(tokens, i, 0)
		case "wtime":
			i++
			opts.WhiteTime = atoiOr(tokens, i, 0)
		case "byoyomi":
			i++
			opts.Byoyomi = atoiOr(tokens, i, 0)
		case "binc":
			if u.board.SideToMove() == sg.Black {
				opts.Increment = atoiOr(tokens, i+1, 0)
			}
			i++
		case "winc":
			if u.board.SideToMove() == sg.White {
				opts.Increment = atoiOr(tokens, i+1, 0)
			}
			i++
		case "depth":
			i++
			opts.Depth = int8(atoiOr(tokens, i, 0))
		case "movetime":
			i++
			opts.MoveTime = int64(atoiOr(tokens, i, 0))
		case "mate", "ponder":
			// Not supported; searched as a normal go.
		default:
			u.send("info string unknown go subcommand %s", tokens[i])
		}
	}

	if !u.searchMu.TryLock() {
		u.send("info string search already running")
		return
	}

	board := u.board.Copy()
	states := u.states.Clone()
	u.searching.Add(1)
	go func() {
		defer u.searching.Done()
		defer u.searchMu.Unlock()
		result, err := u.eng.Search(context.Background(), board, states, opts)
		if err != nil {
			u.log.Error().Err(err).Msg("search failed")
			u.send("bestmove resign")
			return
		}
		if result.BestMove == engine.EmptyMove {
			u.send("bestmove resign")
			return
		}
		u.send("bestmove %s", result.BestMove.String())
	}()
}

func (u *usiState) handleSetOption(tokens []string) {
	name, value := "", ""
	for i := 0; i < len(tokens); i++ {
		switch tokens[i] {
		case "name":
			if i+1 < len(tokens) {
				name = tokens[i+1]
				i++
			}
		case "value":
			if i+1 < len(tokens) {
				value = strings.Join(tokens[i+1:], " ")
				i = len(tokens)
			}
		}
	}

	switch name {
	case "USI_Hash":
		mb, err := strconv.Atoi(value)
		if err != nil {
			u.send("info string bad USI_Hash value %q", value)
			return
		}
		u.pendingCfg.TT.L1SizeMB = mb
	case "Threads":
		n, err := strconv.Atoi(value)
		if err != nil {
			u.send("info string bad Threads value %q", value)
			return
		}
		u.pendingCfg.YBWC.Threads = n
	case "BookFile":
		if value == "" || value == "<empty>" {
			u.eng.SetBook(nil)
			return
		}
		book, err := engine.LoadCSVBook(value)
		if err != nil {
			u.send("info string %v", err)
			return
		}
		u.eng.SetBook(book)
	case "CollectStats":
		u.pendingCfg.CollectStats = value == "true"
	default:
		u.send("info string unknown option %s", name)
	}
}

func atoiOr(tokens []string, i int, fallback int) int {
	if i >= len(tokens) {
		return fallback
	}
	v, err := strconv.Atoi(tokens[i])
	if err != nil {
		return fallback
	}
	return v
}

func scoreString(score int32) string {
	return engine.FormatScore(score)
}
