package bench

import (
	"testing"

	sg "shogi-engine/shogimg"
)

const midgameSFEN = "l6nl/5+P1gk/2np1S3/p1p4Pp/3P2Sp1/1PPb2P1P/P5GS1/R8/LN4bKL w RGgsn2p 124"

func benchPerft(b *testing.B, sfen string, depth int) {
	board, err := sg.ParseSFEN(sfen)
	if err != nil {
		b.Fatalf("ParseSFEN: %v", err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = sg.Perft(board, depth)
	}
}

func BenchmarkPerft_Initial_D3(b *testing.B) {
	benchPerft(b, sg.SFENStartPos, 3)
}

func BenchmarkPerft_Midgame_D2(b *testing.B) {
	benchPerft(b, midgameSFEN, 2)
}
