package shogimg

// Color of a side. Black (sente) moves first and plays "up" the board
// toward rank a; White (gote) plays down toward rank i.
type Color uint8

const (
	Black Color = 0
	White Color = 1
)

// Other returns the opposing color.
func (c Color) Other() Color { return c ^ 1 }

func (c Color) String() string {
	if c == Black {
		return "b"
	}
	return "w"
}

// Square indexes the 81 board squares. Index = rank*9 + fileIndex, where
// rank 0 is USI rank 'a' and fileIndex 0 is USI file 9 (the leftmost file
// from Black's seat). NoSquare marks the origin of a drop.
type Square uint8

const (
	NumSquares        = 81
	NoSquare   Square = 127
)

// FileIndex returns the internal 0..8 file index (0 = USI file 9).
func (sq Square) FileIndex() int { return int(sq) % 9 }

// RankIndex returns the 0..8 rank index (0 = USI rank a).
func (sq Square) RankIndex() int { return int(sq) / 9 }

// USIFile returns the 1..9 file number used by the USI protocol.
func (sq Square) USIFile() int { return 9 - sq.FileIndex() }

// USIRank returns the a..i rank letter used by the USI protocol.
func (sq Square) USIRank() byte { return byte('a' + sq.RankIndex()) }

func (sq Square) String() string {
	if sq == NoSquare {
		return "--"
	}
	return string([]byte{byte('0' + sq.USIFile()), sq.USIRank()})
}

// SquareAt builds a square from internal rank/file indices.
func SquareAt(rank, file int) Square { return Square(rank*9 + file) }

// PieceType is the colorless kind of a piece, including promoted kinds.
type PieceType uint8

const (
	PieceTypeNone PieceType = iota
	PieceTypePawn
	PieceTypeLance
	PieceTypeKnight
	PieceTypeSilver
	PieceTypeGold
	PieceTypeBishop
	PieceTypeRook
	PieceTypeKing
	PieceTypePromotedPawn
	PieceTypePromotedLance
	PieceTypePromotedKnight
	PieceTypePromotedSilver
	PieceTypeHorse
	PieceTypeDragon

	NumPieceTypes = 15
)

// HandTypes lists the piece kinds that can be held in hand, in the
// conventional SFEN order (rook first when printing).
var HandTypes = [7]PieceType{
	PieceTypeRook, PieceTypeBishop, PieceTypeGold,
	PieceTypeSilver, PieceTypeKnight, PieceTypeLance, PieceTypePawn,
}

// Promotes reports whether the piece type has a promoted form.
func (pt PieceType) Promotes() bool {
	return pt >= PieceTypePawn && pt <= PieceTypeRook && pt != PieceTypeGold
}

// Promoted returns the promoted form of the type (or the type itself when
// it cannot promote).
func (pt PieceType) Promoted() PieceType {
	switch pt {
	case PieceTypePawn:
		return PieceTypePromotedPawn
	case PieceTypeLance:
		return PieceTypePromotedLance
	case PieceTypeKnight:
		return PieceTypePromotedKnight
	case PieceTypeSilver:
		return PieceTypePromotedSilver
	case PieceTypeBishop:
		return PieceTypeHorse
	case PieceTypeRook:
		return PieceTypeDragon
	}
	return pt
}

// Demoted returns the base form of the type; captured pieces enter the
// capturer's hand in this form.
func (pt PieceType) Demoted() PieceType {
	switch pt {
	case PieceTypePromotedPawn:
		return PieceTypePawn
	case PieceTypePromotedLance:
		return PieceTypeLance
	case PieceTypePromotedKnight:
		return PieceTypeKnight
	case PieceTypePromotedSilver:
		return PieceTypeSilver
	case PieceTypeHorse:
		return PieceTypeBishop
	case PieceTypeDragon:
		return PieceTypeRook
	}
	return pt
}

// IsPromoted reports whether the type is a promoted form.
func (pt PieceType) IsPromoted() bool { return pt >= PieceTypePromotedPawn }

// MovesLikeGold reports whether the type steps exactly like a gold.
func (pt PieceType) MovesLikeGold() bool {
	switch pt {
	case PieceTypeGold, PieceTypePromotedPawn, PieceTypePromotedLance,
		PieceTypePromotedKnight, PieceTypePromotedSilver:
		return true
	}
	return false
}

var pieceTypeLetters = [NumPieceTypes]string{
	"", "P", "L", "N", "S", "G", "B", "R", "K", "+P", "+L", "+N", "+S", "+B", "+R",
}

func (pt PieceType) String() string { return pieceTypeLetters[pt] }

// Piece packs a color and a piece type into one byte: type in the low
// nibble, color bit above it.
type Piece uint8

const NoPiece Piece = 0

// PieceFromType builds a colored piece.
func PieceFromType(c Color, pt PieceType) Piece {
	if pt == PieceTypeNone {
		return NoPiece
	}
	return Piece(uint8(pt) | uint8(c)<<4)
}

// Type returns the colorless kind of the piece.
func (p Piece) Type() PieceType { return PieceType(p & 0xF) }

// Color returns the owner of the piece. Only meaningful for non-empty pieces.
func (p Piece) Color() Color { return Color(p >> 4 & 1) }

func (p Piece) String() string {
	if p == NoPiece {
		return "."
	}
	s := p.Type().String()
	if p.Color() == White {
		return lowerASCII(s)
	}
	return s
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
