package script

import "testing"

func TestLoad_ValidTable(t *testing.T) {
	reg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for n := 1; n <= SessionCount; n++ {
		sc := reg.Lookup(n)
		if sc.Number != n {
			t.Errorf("lookup %d returned script %d", n, sc.Number)
		}
		if sc.Title == "" || sc.Opening == "" || sc.Closing == "" {
			t.Errorf("script %d has empty required fields", n)
		}
		if len(sc.Questions) == 0 {
			t.Errorf("script %d has no questions", n)
		}
	}
}

func TestLoad_ThemePhases(t *testing.T) {
	reg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	phases := map[string][2]int{
		"Origins":      {1, 4},
		"Formation":    {5, 8},
		"Achievements": {9, 12},
		"Reflections":  {13, 16},
		"Messages":     {17, 20},
	}
	for theme, span := range phases {
		for n := span[0]; n <= span[1]; n++ {
			if got := reg.Lookup(n).Theme; got != theme {
				t.Errorf("script %d: expected theme %q, got %q", n, theme, got)
			}
		}
	}
}

func TestLookup_UnknownOrdinalFallsBack(t *testing.T) {
	reg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	first := reg.Lookup(1)
	for _, n := range []int{0, -1, 21, 99, 1000} {
		sc := reg.Lookup(n)
		if sc.Number != 1 {
			t.Errorf("lookup %d: expected fallback to script 1, got %d", n, sc.Number)
		}
		if sc.Title != first.Title {
			t.Errorf("lookup %d: fallback returned different content", n)
		}
	}
}
