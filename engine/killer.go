package engine

import (
	sg "shogi-engine/shogimg"
)

// Two killer slots per ply; quiet moves that caused a beta cutoff at the
// same distance from the root.
type KillerStruct struct {
	KillerMoves [MaxDepth + 1][2]sg.Move
}

func (k *KillerStruct) InsertKiller(move sg.Move, ply int8) {
	if move != k.KillerMoves[ply][0] {
		k.KillerMoves[ply][1] = k.KillerMoves[ply][0]
		k.KillerMoves[ply][0] = move
	}
}

// Clear the killer moves table.
func (k *KillerStruct) ClearKillers() {
	for depth := 0; depth < MaxDepth+1; depth++ {
		k.KillerMoves[depth][0] = EmptyMove
		k.KillerMoves[depth][1] = EmptyMove
	}
}

// Clone copies the killers for a parallel helper so its cutoffs don't race
// with the parent's ordering state.
func (k *KillerStruct) Clone() *KillerStruct {
	out := &KillerStruct{}
	out.KillerMoves = k.KillerMoves
	return out
}
