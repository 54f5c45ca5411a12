package lesson

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"
)

func makePairs(n int) []Pair {
	pairs := make([]Pair, n)
	for i := range pairs {
		pairs[i] = Pair{
			ID:     fmt.Sprintf("p%d", i+1),
			Source: fmt.Sprintf("word %d", i+1),
			Target: fmt.Sprintf("translation %d", i+1),
		}
	}
	return pairs
}

func newTestGame(t *testing.T, n int) (*MatchGame, *ManualScheduler) {
	t.Helper()
	sched := &ManualScheduler{}
	g, err := NewMatchGame(makePairs(n), sched, rand.New(rand.NewPCG(1, 2)), 0, 0)
	if err != nil {
		t.Fatalf("NewMatchGame: %v", err)
	}
	return g, sched
}

func src(g *MatchGame, pair string) string { return g.CardID(pair, ColumnSource) }
func dst(g *MatchGame, pair string) string { return g.CardID(pair, ColumnTarget) }

func TestNewMatchGameValidation(t *testing.T) {
	tests := []struct {
		name  string
		pairs []Pair
	}{
		{"empty", nil},
		{"missing id", []Pair{{Source: "a", Target: "b"}}},
		{"duplicate id", []Pair{{ID: "x", Source: "a", Target: "b"}, {ID: "x", Source: "c", Target: "d"}}},
		{"missing side", []Pair{{ID: "x", Source: "a"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMatchGame(tt.pairs, &ManualScheduler{}, rand.New(rand.NewPCG(1, 1)), 0, 0)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
		})
	}
}

func TestMatchSelectAndDeselect(t *testing.T) {
	g, _ := newTestGame(t, 3)

	g.Select(src(g, "p1"))
	if g.Selected() != src(g, "p1") || g.State(src(g, "p1")) != CardSelected {
		t.Fatalf("first card not selected")
	}

	g.Select(src(g, "p1"))
	if g.Selected() != "" || g.State(src(g, "p1")) != CardUnselected {
		t.Fatalf("second click did not deselect")
	}
	if g.Moves() != 0 {
		t.Errorf("moves = %d, want 0", g.Moves())
	}
}

func TestMatchSameColumnReassigns(t *testing.T) {
	g, _ := newTestGame(t, 3)

	g.Select(src(g, "p1"))
	g.Select(src(g, "p2"))

	if g.Moves() != 0 {
		t.Errorf("moves = %d, want 0 for same-column click", g.Moves())
	}
	if g.Selected() != src(g, "p2") {
		t.Errorf("selected = %q, want %q", g.Selected(), src(g, "p2"))
	}
	if g.State(src(g, "p1")) != CardUnselected {
		t.Errorf("old selection state = %s", g.State(src(g, "p1")))
	}

	g.Select(dst(g, "p3"))
	g.Select(dst(g, "p1"))
	if g.Moves() != 1 {
		t.Fatalf("moves = %d after one cross-column attempt", g.Moves())
	}
}

func TestMatchWrongPairCooldown(t *testing.T) {
	g, sched := newTestGame(t, 3)

	g.Select(src(g, "p1"))
	g.Select(dst(g, "p2"))

	if g.Moves() != 1 || g.Matched() != 0 || g.Selected() != "" {
		t.Fatalf("moves=%d matched=%d selected=%q", g.Moves(), g.Matched(), g.Selected())
	}
	for _, id := range []string{src(g, "p1"), dst(g, "p2")} {
		if g.State(id) != CardWrong {
			t.Errorf("card %s state = %s, want wrong", id, g.State(id))
		}
	}

	sched.Advance(DefaultWrongCooldown)
	for _, id := range []string{src(g, "p1"), dst(g, "p2")} {
		if g.State(id) != CardUnselected {
			t.Errorf("card %s state = %s after cooldown", id, g.State(id))
		}
	}
}

func TestMatchReclickDuringCooldownKeepsSelection(t *testing.T) {
	g, sched := newTestGame(t, 3)

	g.Select(src(g, "p1"))
	g.Select(dst(g, "p2"))
	g.Select(src(g, "p1"))

	sched.Advance(DefaultWrongCooldown)
	if g.State(src(g, "p1")) != CardSelected || g.Selected() != src(g, "p1") {
		t.Errorf("cooldown cleared a fresh selection: state=%s selected=%q", g.State(src(g, "p1")), g.Selected())
	}
	if g.State(dst(g, "p2")) != CardUnselected {
		t.Errorf("other card state = %s", g.State(dst(g, "p2")))
	}
}

func TestMatchOverlappingCooldowns(t *testing.T) {
	g, sched := newTestGame(t, 3)

	// s1 goes wrong twice; the first cooldown must not cut the second short.
	g.Select(src(g, "p1"))
	g.Select(dst(g, "p2"))
	sched.Advance(400 * time.Millisecond)

	g.Select(src(g, "p1"))
	g.Select(dst(g, "p3"))
	if g.State(src(g, "p1")) != CardWrong {
		t.Fatalf("s1 = %s after second wrong attempt", g.State(src(g, "p1")))
	}

	sched.Advance(400 * time.Millisecond)
	if got := g.State(src(g, "p1")); got != CardWrong {
		t.Errorf("s1 = %s halfway through its second cooldown, want wrong", got)
	}
	if got := g.State(dst(g, "p2")); got != CardUnselected {
		t.Errorf("t(p2) = %s after its own cooldown, want unselected", got)
	}

	sched.Advance(400 * time.Millisecond)
	for _, id := range []string{src(g, "p1"), dst(g, "p3")} {
		if got := g.State(id); got != CardUnselected {
			t.Errorf("%s = %s after second cooldown, want unselected", id, got)
		}
	}
	if g.Moves() != 2 {
		t.Errorf("moves = %d, want 2", g.Moves())
	}
}

func TestMatchedCardNotReselectable(t *testing.T) {
	g, _ := newTestGame(t, 2)

	g.Select(src(g, "p1"))
	g.Select(dst(g, "p1"))
	if g.State(src(g, "p1")) != CardMatched {
		t.Fatalf("pair not matched")
	}

	g.Select(src(g, "p1"))
	if g.Selected() != "" || g.State(src(g, "p1")) != CardMatched {
		t.Errorf("matched card reselected")
	}

	g.Select(src(g, "p2"))
	g.Select(dst(g, "p1"))
	if g.Moves() != 1 || g.Selected() != src(g, "p2") {
		t.Errorf("click on matched card counted: moves=%d selected=%q", g.Moves(), g.Selected())
	}
}

func TestMatchFullRun(t *testing.T) {
	g, sched := newTestGame(t, 5)

	completedMoves := -1
	g.OnComplete(func(moves int) { completedMoves = moves })

	g.Select(src(g, "p1"))
	g.Select(dst(g, "p2"))
	if g.Moves() != 1 || g.Matched() != 0 {
		t.Fatalf("after wrong attempt moves=%d matched=%d", g.Moves(), g.Matched())
	}
	sched.Advance(DefaultWrongCooldown)

	g.Select(src(g, "p1"))
	g.Select(dst(g, "p1"))
	if g.Moves() != 2 || g.Matched() != 1 {
		t.Fatalf("after first match moves=%d matched=%d", g.Moves(), g.Matched())
	}

	for _, p := range []string{"p2", "p3", "p4", "p5"} {
		g.Select(dst(g, p))
		g.Select(src(g, p))
	}
	if g.Moves() != 6 || g.Matched() != 5 {
		t.Fatalf("after all pairs moves=%d matched=%d", g.Moves(), g.Matched())
	}
	if g.Phase() != GamePlaying {
		t.Fatalf("completed before display delay")
	}

	sched.Advance(DefaultCompleteDelay)
	if g.Phase() != GameComplete {
		t.Fatalf("phase = %s, want complete", g.Phase())
	}
	if completedMoves != 6 {
		t.Errorf("completion hook moves = %d, want 6", completedMoves)
	}
}

func TestMatchRestartDropsPendingCompletion(t *testing.T) {
	g, sched := newTestGame(t, 2)
	called := false
	g.OnComplete(func(int) { called = true })

	for _, p := range []string{"p1", "p2"} {
		g.Select(src(g, p))
		g.Select(dst(g, p))
	}
	g.Restart()
	sched.Flush()

	if called || g.Phase() != GamePlaying {
		t.Errorf("stale completion fired: called=%v phase=%s", called, g.Phase())
	}
	if g.Matched() != 0 || g.Moves() != 0 || g.Selected() != "" {
		t.Errorf("restart left matched=%d moves=%d selected=%q", g.Matched(), g.Moves(), g.Selected())
	}
	for _, col := range []Column{ColumnSource, ColumnTarget} {
		for _, id := range g.Order(col) {
			if g.State(id) != CardUnselected {
				t.Errorf("card %s state = %s after restart", id, g.State(id))
			}
		}
	}
}

func TestMatchRestartDropsPendingCooldown(t *testing.T) {
	g, sched := newTestGame(t, 3)

	g.Select(src(g, "p1"))
	g.Select(dst(g, "p2"))
	g.Restart()
	g.Select(src(g, "p1"))
	sched.Flush()

	if g.State(src(g, "p1")) != CardSelected {
		t.Errorf("stale cooldown touched new selection: %s", g.State(src(g, "p1")))
	}
}

func TestMatchRestartKeepsColumnsSeparate(t *testing.T) {
	g, _ := newTestGame(t, 5)

	for i := 0; i < 20; i++ {
		g.Restart()
		for _, id := range g.Order(ColumnSource) {
			if id[0] != 's' {
				t.Fatalf("target card %s in source column", id)
			}
		}
		if len(g.Order(ColumnTarget)) != 5 {
			t.Fatalf("target column has %d cards", len(g.Order(ColumnTarget)))
		}
	}
}

func TestMatchMatchedReachesTotalOnlyWhenAllPaired(t *testing.T) {
	g, _ := newTestGame(t, 4)
	rng := rand.New(rand.NewPCG(7, 7))

	sources := g.Order(ColumnSource)
	targets := g.Order(ColumnTarget)
	for i := 0; i < 500 && g.Matched() < g.Total(); i++ {
		a := sources[rng.IntN(len(sources))]
		b := targets[rng.IntN(len(targets))]
		if rng.IntN(2) == 0 {
			a, b = b, a
		}
		g.Select(a)
		g.Select(b)

		matchedCards := 0
		for _, col := range []Column{ColumnSource, ColumnTarget} {
			for _, id := range g.Order(col) {
				if g.State(id) == CardMatched {
					matchedCards++
				}
			}
		}
		if matchedCards != 2*g.Matched() {
			t.Fatalf("matched pairs = %d but %d matched cards", g.Matched(), matchedCards)
		}
	}
	if g.Matched() != g.Total() {
		t.Fatalf("random play did not finish: matched %d", g.Matched())
	}
}

func TestShuffleUniform(t *testing.T) {
	const (
		trials = 40000
		n      = 4
	)
	rng := rand.New(rand.NewPCG(42, 99))
	items := []int{0, 1, 2, 3}

	var counts [n][n]int
	for i := 0; i < trials; i++ {
		for pos, item := range Shuffle(rng, items) {
			counts[item][pos]++
		}
	}

	want := trials / n
	tolerance := want / 20
	for item := 0; item < n; item++ {
		for pos := 0; pos < n; pos++ {
			if d := counts[item][pos] - want; d > tolerance || d < -tolerance {
				t.Errorf("item %d at position %d: %d times, want %d±%d", item, pos, counts[item][pos], want, tolerance)
			}
		}
	}
	if items[0] != 0 || items[3] != 3 {
		t.Error("Shuffle modified its input")
	}
}

func TestRestartShuffleUniform(t *testing.T) {
	const trials = 30000
	g, _ := newTestGame(t, 3)
	first := src(g, "p1")

	var counts [3]int
	for i := 0; i < trials; i++ {
		g.Restart()
		for pos, id := range g.Order(ColumnSource) {
			if id == first {
				counts[pos]++
			}
		}
	}

	want := trials / 3
	tolerance := want / 15
	for pos, c := range counts {
		if d := c - want; d > tolerance || d < -tolerance {
			t.Errorf("card at position %d: %d times, want %d±%d", pos, c, want, tolerance)
		}
	}
}
