package shogimg

import (
	"fmt"
	"strconv"
	"strings"
)

// SFENStartPos is the standard shogi starting position.
const SFENStartPos = "lnsgkgsnl/1r5b1/ppppppppp/9/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b - 1"

// Startpos constant kept for callers that mirror the protocol wording.
const Startpos = SFENStartPos

// ParseSFEN parses an SFEN string into a Board. Malformed input returns an
// error; positions are never silently patched up.
func ParseSFEN(sfen string) (*Board, error) {
	fields := strings.Fields(strings.TrimSpace(sfen))
	if len(fields) < 3 {
		return nil, fmt.Errorf("sfen: want at least 3 fields, got %d", len(fields))
	}

	b := &Board{moveNumber: 1}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 9 {
		return nil, fmt.Errorf("sfen: want 9 ranks, got %d", len(ranks))
	}
	for r, row := range ranks {
		f := 0
		promoted := false
		for i := 0; i < len(row); i++ {
			ch := row[i]
			switch {
			case ch >= '1' && ch <= '9':
				if promoted {
					return nil, fmt.Errorf("sfen: dangling '+' in rank %d", r+1)
				}
				f += int(ch - '0')
			case ch == '+':
				promoted = true
			default:
				if f >= 9 {
					return nil, fmt.Errorf("sfen: rank %d overflows the board", r+1)
				}
				c := Black
				letter := ch
				if ch >= 'a' && ch <= 'z' {
					c = White
					letter = ch - 'a' + 'A'
				}
				pt := pieceTypeFromLetter(letter)
				if pt == PieceTypeNone {
					return nil, fmt.Errorf("sfen: bad piece letter %q", string(ch))
				}
				if promoted {
					if !pt.Promotes() {
						return nil, fmt.Errorf("sfen: %q cannot promote", string(ch))
					}
					pt = pt.Promoted()
					promoted = false
				}
				b.putPiece(PieceFromType(c, pt), SquareAt(r, f))
				f++
			}
		}
		if f != 9 {
			return nil, fmt.Errorf("sfen: rank %d has %d files", r+1, f)
		}
	}

	switch fields[1] {
	case "b":
		b.sideToMove = Black
	case "w":
		b.sideToMove = White
	default:
		return nil, fmt.Errorf("sfen: bad side to move %q", fields[1])
	}

	if fields[2] != "-" {
		count := 0
		for i := 0; i < len(fields[2]); i++ {
			ch := fields[2][i]
			if ch >= '0' && ch <= '9' {
				count = count*10 + int(ch-'0')
				continue
			}
			c := Black
			letter := ch
			if ch >= 'a' && ch <= 'z' {
				c = White
				letter = ch - 'a' + 'A'
			}
			pt := pieceTypeFromLetter(letter)
			if pt == PieceTypeNone || pt == PieceTypeKing {
				return nil, fmt.Errorf("sfen: bad hand piece %q", string(ch))
			}
			if count == 0 {
				count = 1
			}
			for n := 0; n < count; n++ {
				b.addToHand(c, pt)
			}
			count = 0
		}
	}

	if len(fields) >= 4 {
		n, err := strconv.Atoi(fields[3])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("sfen: bad move number %q", fields[3])
		}
		b.moveNumber = n
	}

	if err := b.validate(); err != nil {
		return nil, err
	}
	b.hash = b.ComputeZobrist()
	return b, nil
}

// validate rejects positions that would make search misbehave, per the
// contract that bad positions never reach the engine core.
func (b *Board) validate() error {
	for c := Color(0); c <= White; c++ {
		if n := b.bitboards[c][PieceTypeKing].Count(); n > 1 {
			return fmt.Errorf("sfen: side %s has %d kings", c, n)
		}
		for f := 0; f < 9; f++ {
			if b.bitboards[c][PieceTypePawn].And(FileMask[f]).Count() > 1 {
				return fmt.Errorf("sfen: side %s has two pawns on file %d", c, 9-f)
			}
		}
	}
	return nil
}

// ParseSFENOrPanic is a test/fixture helper mirroring the teacher-style
// ParseFen that panics on invalid input.
func ParseSFENOrPanic(sfen string) *Board {
	b, err := ParseSFEN(sfen)
	if err != nil {
		panic(err)
	}
	return b
}

// SFEN serializes the position.
func (b *Board) SFEN() string {
	var sb strings.Builder
	for r := 0; r < 9; r++ {
		if r > 0 {
			sb.WriteByte('/')
		}
		empties := 0
		for f := 0; f < 9; f++ {
			p := b.pieces[SquareAt(r, f)]
			if p == NoPiece {
				empties++
				continue
			}
			if empties > 0 {
				sb.WriteByte(byte('0' + empties))
				empties = 0
			}
			sb.WriteString(p.String())
		}
		if empties > 0 {
			sb.WriteByte(byte('0' + empties))
		}
	}
	sb.WriteByte(' ')
	sb.WriteString(b.sideToMove.String())
	sb.WriteByte(' ')
	sb.WriteString(b.handsSFEN())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(b.moveNumber))
	return sb.String()
}

func (b *Board) handsSFEN() string {
	var sb strings.Builder
	for _, c := range []Color{Black, White} {
		for _, pt := range HandTypes {
			n := int(b.hands[c][pt])
			if n == 0 {
				continue
			}
			if n > 1 {
				sb.WriteString(strconv.Itoa(n))
			}
			s := pt.String()
			if c == White {
				s = lowerASCII(s)
			}
			sb.WriteString(s)
		}
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}
