package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"shogi-engine/engine"
	sg "shogi-engine/shogimg"
)

// Self-play driver: plays the engine against itself at a fixed depth and
// reports results. Useful for smoke-testing changes and generating game
// records; each game gets a UUID so logs from concurrent games interleave
// legibly.

const maxGamePlies = 512

func main() {
	games := flag.Int("games", 1, "number of games to play")
	concurrency := flag.Int("concurrency", 1, "games running at once")
	depth := flag.Int("depth", 6, "search depth per move")
	bookPath := flag.String("book", "", "optional opening book CSV")
	verbose := flag.Bool("v", false, "log every move")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.StampMilli}).
		With().Timestamp().Logger().Level(level)

	var book engine.OpeningBook
	if *bookPath != "" {
		b, err := engine.LoadCSVBook(*bookPath)
		if err != nil {
			log.Fatal().Err(err).Msg("loading book")
		}
		book = b
	}

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(*concurrency)

	results := make([]string, *games)
	start := time.Now()
	for i := 0; i < *games; i++ {
		i := i
		g.Go(func() error {
			outcome, err := playGame(ctx, log, book, int8(*depth))
			if err != nil {
				return err
			}
			results[i] = outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("selfplay failed")
	}

	tally := map[string]int{}
	for _, r := range results {
		tally[r]++
	}
	fmt.Printf("games=%d elapsed=%v\n", *games, time.Since(start).Round(time.Second))
	fmt.Printf("black wins=%d white wins=%d draws=%d\n",
		tally["black"], tally["white"], tally["draw"])
}

func playGame(ctx context.Context, parent zerolog.Logger, book engine.OpeningBook, depth int8) (string, error) {
	gameID := uuid.New().String()
	log := parent.With().Str("game", gameID).Logger()

	eng, err := engine.NewEngine(engine.DefaultConfig(), log)
	if err != nil {
		return "", err
	}
	eng.SetBook(book)

	board := sg.ParseSFENOrPanic(sg.Startpos)
	states := &engine.StateStack{}
	states.ResetTracking(board)

	var moves []string
	for ply := 0; ply < maxGamePlies; ply++ {
		if !board.HasLegalMoves() {
			// Mated (or stuck, which loses as well).
			winner := "black"
			if board.SideToMove() == sg.Black {
				winner = "white"
			}
			log.Info().Int("plies", ply).Str("winner", winner).
				Str("record", strings.Join(moves, " ")).Msg("game over")
			return winner, nil
		}

		result, err := eng.Search(ctx, board.Copy(), states, engine.SearchOptions{Depth: depth})
		if err != nil {
			return "", fmt.Errorf("game %s ply %d: %w", gameID, ply, err)
		}
		move := result.BestMove
		log.Debug().Int("ply", ply).Str("move", move.String()).Int32("score", result.Score).Msg("move")

		board.MakeMove(move)
		states.RecordState(board)
		moves = append(moves, move.String())

		if states.IsSennichite() {
			log.Info().Int("plies", ply+1).Str("record", strings.Join(moves, " ")).Msg("sennichite")
			return "draw", nil
		}
	}
	return "draw", nil
}
