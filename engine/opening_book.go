package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"

	sg "shogi-engine/shogimg"
)

// OpeningBook supplies a move for positions still in book. Probe returns
// EmptyMove and false once the game leaves it; the search then takes over.
type OpeningBook interface {
	Probe(b *sg.Board) (sg.Move, bool)
}

// CSVBook reads a book file of "sfen,move,weight" records keyed by the
// position's SFEN without the move counter. Weighted random pick between
// alternatives keeps repeat games varied.
type CSVBook struct {
	entries map[string][]bookEntry
	rng     *rand.Rand
}

type bookEntry struct {
	move   string
	weight int
}

func LoadCSVBook(path string) (*CSVBook, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening book %s: %w", path, err)
	}
	defer file.Close()

	book := &CSVBook{
		entries: make(map[string][]bookEntry),
		rng:     rand.New(rand.NewSource(int64(os.Getpid()))),
	}

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("opening book %s: %w", path, err)
		}
		line++
		if len(record) < 2 {
			return nil, fmt.Errorf("opening book %s line %d: want sfen,move[,weight]", path, line)
		}
		weight := 1
		if len(record) >= 3 {
			w, err := strconv.Atoi(record[2])
			if err != nil || w <= 0 {
				return nil, fmt.Errorf("opening book %s line %d: bad weight %q", path, line, record[2])
			}
			weight = w
		}
		key := record[0]
		book.entries[key] = append(book.entries[key], bookEntry{move: record[1], weight: weight})
	}
	return book, nil
}

func (bk *CSVBook) Probe(b *sg.Board) (sg.Move, bool) {
	candidates, ok := bk.entries[bookKey(b)]
	if !ok || len(candidates) == 0 {
		return EmptyMove, false
	}

	total := 0
	for _, c := range candidates {
		total += c.weight
	}
	pick := bk.rng.Intn(total)
	var chosen string
	for _, c := range candidates {
		pick -= c.weight
		if pick < 0 {
			chosen = c.move
			break
		}
	}

	// The book move still has to be legal in this position; a stale or
	// corrupted book must never inject an illegal move.
	move, err := b.ParseMove(chosen)
	if err != nil {
		return EmptyMove, false
	}
	return move, true
}

// bookKey strips the move counter so transposing move orders share entries.
func bookKey(b *sg.Board) string {
	sfen := b.SFEN()
	for i := len(sfen) - 1; i >= 0; i-- {
		if sfen[i] == ' ' {
			return sfen[:i]
		}
	}
	return sfen
}
