package theme

import "testing"

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"light":  ModeLight,
		"DARK":   ModeDark,
		"system": ModeSystem,
		"":       ModeSystem,
		"sepia":  ModeSystem,
	}
	for in, want := range tests {
		if got := ParseMode(in); got != want {
			t.Errorf("ParseMode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestModeCycle(t *testing.T) {
	m := ModeLight
	seen := []Mode{m}
	for i := 0; i < 3; i++ {
		m = m.Next()
		seen = append(seen, m)
	}
	want := []Mode{ModeLight, ModeDark, ModeSystem, ModeLight}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("cycle = %v, want %v", seen, want)
		}
	}
}

func TestApplySystemFollowsTerminal(t *testing.T) {
	orig := hasDarkBackground
	t.Cleanup(func() {
		hasDarkBackground = orig
		Apply(ModeDark)
	})

	hasDarkBackground = func() bool { return false }
	Apply(ModeSystem)
	if ColorBright != LightPalette.Bright {
		t.Errorf("system mode on light terminal should use light palette")
	}

	hasDarkBackground = func() bool { return true }
	Apply(ModeSystem)
	if ColorBright != DarkPalette.Bright {
		t.Errorf("system mode on dark terminal should use dark palette")
	}
	if Current() != ModeSystem {
		t.Errorf("Current() = %q, want system", Current())
	}
}

func TestApplyExplicit(t *testing.T) {
	t.Cleanup(func() { Apply(ModeDark) })

	Apply(ModeLight)
	if ColorDanger != LightPalette.Danger {
		t.Error("light mode should use light palette")
	}
	Apply(ModeDark)
	if ColorDanger != DarkPalette.Danger {
		t.Error("dark mode should use dark palette")
	}
}

func TestAmount(t *testing.T) {
	tests := map[float64]string{
		0:       "0 CFA",
		500:     "500 CFA",
		12500:   "12 500 CFA",
		1000000: "1 000 000 CFA",
		-2500:   "-2 500 CFA",
		99.6:    "100 CFA",
	}
	for in, want := range tests {
		if got := Amount(in); got != want {
			t.Errorf("Amount(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestStatusColor(t *testing.T) {
	if StatusColor("Active") != ColorHealthy {
		t.Error("active should be healthy")
	}
	if StatusColor("Cancelled") != ColorDanger {
		t.Error("cancelled should be danger")
	}
}
