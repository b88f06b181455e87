package engine

// Search tables shared by every searcher; filled once at package init.
var LMR [100][100]int8

func init() {
	InitLMRTable()
}

func InitLMRTable() {
	for d := 1; d < 100; d++ {
		for m := 1; m < 100; m++ {
			r := 1 + d/8 + m/16 // gentle growth with depth & lateness
			if r > d-2 {
				r = d - 2
			} // keep depth-1-r >= 1
			if r < 0 {
				r = 0
			}
			LMR[d][m] = int8(r)
		}
	}
}
