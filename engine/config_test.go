package engine

import (
	"strings"
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config rejected: %v", err)
	}
}

func TestConfigValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SearchConfig)
		want   string
	}{
		{"zero aspiration window", func(c *SearchConfig) { c.AspirationWindow = 0 }, "AspirationWindow"},
		{"negative aspiration window", func(c *SearchConfig) { c.AspirationWindow = -10 }, "AspirationWindow"},
		{"zero aspiration fails", func(c *SearchConfig) { c.AspirationMaxFails = 0 }, "AspirationMaxFails"},
		{"zero null move depth", func(c *SearchConfig) { c.NullMoveMinDepth = 0 }, "NullMoveMinDepth"},
		{"negative endgame guard", func(c *SearchConfig) { c.NullMoveEndgameGuard = -1 }, "NullMoveEndgameGuard"},
		{"zero lmr depth", func(c *SearchConfig) { c.LMRDepthLimit = 0 }, "LMRDepthLimit"},
		{"zero lmr moves", func(c *SearchConfig) { c.LMRMoveLimit = 0 }, "LMRMoveLimit"},
		{"iid too shallow", func(c *SearchConfig) { c.IIDMinDepth = 1 }, "IIDMinDepth"},
		{"zero quiescence depth", func(c *SearchConfig) { c.QuiescenceDepth = 0 }, "QuiescenceDepth"},
		{"negative delta margin", func(c *SearchConfig) { c.DeltaMargin = -1 }, "DeltaMargin"},
		{"zero poll interval", func(c *SearchConfig) { c.TimeCheckInterval = 0 }, "TimeCheckInterval"},
		{"non power of two poll interval", func(c *SearchConfig) { c.TimeCheckInterval = 1000 }, "TimeCheckInterval"},
		{"zero tt size", func(c *SearchConfig) { c.TT.L1SizeMB = 0 }, "L1SizeMB"},
		{"non power of two segments", func(c *SearchConfig) { c.TT.L2Segments = 100 }, "L2Segments"},
		{"zero promote depth", func(c *SearchConfig) { c.TT.PromoteMinDepth = 0 }, "PromoteMinDepth"},
		{"zero threads", func(c *SearchConfig) { c.YBWC.Threads = 0 }, "Threads"},
		{"split too shallow", func(c *SearchConfig) { c.YBWC.MinDepth = 1 }, "MinDepth"},
		{"one sibling minimum", func(c *SearchConfig) { c.YBWC.MinSiblings = 1 }, "MinSiblings"},
		{"max below min siblings", func(c *SearchConfig) { c.YBWC.MaxSiblings = 2; c.YBWC.MinSiblings = 4 }, "MaxSiblings"},
		{"zero divisor", func(c *SearchConfig) { c.YBWC.MidDivisor = 0 }, "divisors"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not name %q", err, tc.want)
			}
		})
	}
}

func TestWorkerBudgetBands(t *testing.T) {
	yc := YBWCConfig{
		Threads:        16,
		MinDepth:       6,
		MinSiblings:    4,
		MaxSiblings:    8,
		ShallowDivisor: 4,
		MidDivisor:     2,
		DeepDivisor:    1,
	}

	if got := yc.workerBudget(6); got != 4 {
		t.Errorf("shallow budget = %d, want 4", got)
	}
	if got := yc.workerBudget(10); got != 8 {
		t.Errorf("mid budget = %d, want 8", got)
	}
	if got := yc.workerBudget(14); got != 8 { // capped by MaxSiblings
		t.Errorf("deep budget = %d, want 8", got)
	}
}
