package lesson

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const (
	DefaultWrongCooldown = 800 * time.Millisecond
	DefaultCompleteDelay = 500 * time.Millisecond
)

// Pair is one correct source/target match, e.g. an English word and its
// translation.
type Pair struct {
	ID     string `json:"id" yaml:"id"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// ValidatePairs checks pair ids are present and unique and both sides have a
// label.
func ValidatePairs(pairs []Pair) error {
	seen := make(map[string]bool, len(pairs))
	for i, p := range pairs {
		if p.ID == "" {
			return &ValidationError{Field: "pairs", Msg: fmt.Sprintf("pair %d has no id", i+1)}
		}
		if seen[p.ID] {
			return &ValidationError{Field: "pairs", Msg: fmt.Sprintf("pair id %q repeated", p.ID)}
		}
		seen[p.ID] = true
		if p.Source == "" || p.Target == "" {
			return &ValidationError{Field: "pairs", Msg: fmt.Sprintf("pair %q needs both sides", p.ID)}
		}
	}
	return nil
}

type Column string

const (
	ColumnSource Column = "source"
	ColumnTarget Column = "target"
)

type CardState string

const (
	CardUnselected CardState = "unselected"
	CardSelected   CardState = "selected"
	CardMatched    CardState = "matched"
	CardWrong      CardState = "wrong"
)

type card struct {
	id     string
	column Column
	pairID string
	label  string
	state  CardState
	// wrongGen counts the times the card entered CardWrong; a cooldown
	// only clears the attempt it was scheduled for.
	wrongGen uint64
}

type GamePhase string

const (
	GamePlaying  GamePhase = "playing"
	GameComplete GamePhase = "complete"
)

// MatchGame is the "connect the pairs" puzzle. It is not safe for
// concurrent use; Session serializes access.
type MatchGame struct {
	sched         Scheduler
	rng           *rand.Rand
	wrongCooldown time.Duration
	completeDelay time.Duration
	onComplete    func(moves int)

	cards   map[string]*card
	columns map[Column][]string // card ids in display order

	epoch    uint64
	phase    GamePhase
	selected string
	matched  int
	total    int
	moves    int
}

func NewMatchGame(pairs []Pair, sched Scheduler, rng *rand.Rand, wrongCooldown, completeDelay time.Duration) (*MatchGame, error) {
	if len(pairs) == 0 {
		return nil, &ValidationError{Field: "pairs", Msg: "at least one pair is required"}
	}
	if err := ValidatePairs(pairs); err != nil {
		return nil, err
	}
	if wrongCooldown <= 0 {
		wrongCooldown = DefaultWrongCooldown
	}
	if completeDelay <= 0 {
		completeDelay = DefaultCompleteDelay
	}

	g := &MatchGame{
		sched:         sched,
		rng:           rng,
		wrongCooldown: wrongCooldown,
		completeDelay: completeDelay,
		cards:         make(map[string]*card, 2*len(pairs)),
		columns:       make(map[Column][]string, 2),
		total:         len(pairs),
	}

	// Target ids are numbered in shuffled order so they don't mirror the
	// source ids.
	targetNums := g.rng.Perm(len(pairs))
	for i, p := range pairs {
		src := &card{id: fmt.Sprintf("s%d", i+1), column: ColumnSource, pairID: p.ID, label: p.Source}
		dst := &card{id: fmt.Sprintf("t%d", targetNums[i]+1), column: ColumnTarget, pairID: p.ID, label: p.Target}
		g.cards[src.id] = src
		g.cards[dst.id] = dst
		g.columns[ColumnSource] = append(g.columns[ColumnSource], src.id)
		g.columns[ColumnTarget] = append(g.columns[ColumnTarget], dst.id)
	}

	g.Restart()
	return g, nil
}

// OnComplete registers the hook fired once the game reaches Complete.
func (g *MatchGame) OnComplete(f func(moves int)) { g.onComplete = f }

// Select handles a click on cardID. Unknown and matched cards are ignored.
func (g *MatchGame) Select(cardID string) {
	c, ok := g.cards[cardID]
	if !ok || c.state == CardMatched || g.phase == GameComplete {
		return
	}

	if g.selected == cardID {
		c.state = CardUnselected
		g.selected = ""
		return
	}

	if g.selected == "" {
		c.state = CardSelected
		g.selected = cardID
		return
	}

	first := g.cards[g.selected]
	if first.column == c.column {
		first.state = CardUnselected
		c.state = CardSelected
		g.selected = cardID
		return
	}

	g.moves++
	g.selected = ""

	if first.pairID == c.pairID {
		first.state = CardMatched
		c.state = CardMatched
		g.matched++
		if g.matched == g.total {
			epoch := g.epoch
			g.sched.AfterFunc(g.completeDelay, func() { g.complete(epoch) })
		}
		return
	}

	first.state = CardWrong
	c.state = CardWrong
	first.wrongGen++
	c.wrongGen++
	epoch := g.epoch
	ids := [2]string{first.id, c.id}
	gens := [2]uint64{first.wrongGen, c.wrongGen}
	g.sched.AfterFunc(g.wrongCooldown, func() { g.clearWrong(epoch, ids, gens) })
}

func (g *MatchGame) clearWrong(epoch uint64, ids [2]string, gens [2]uint64) {
	if epoch != g.epoch {
		return
	}
	for i, id := range ids {
		// The card may have been clicked again during the cooldown, or
		// gone wrong again in a later attempt with its own cooldown.
		if c := g.cards[id]; c.state == CardWrong && c.wrongGen == gens[i] {
			c.state = CardUnselected
		}
	}
}

func (g *MatchGame) complete(epoch uint64) {
	if epoch != g.epoch || g.phase == GameComplete || g.matched != g.total {
		return
	}
	g.phase = GameComplete
	if g.onComplete != nil {
		g.onComplete(g.moves)
	}
}

// Restart clears all progress and reshuffles each column independently.
// Pending cooldown and completion timers become no-ops.
func (g *MatchGame) Restart() {
	g.epoch++
	g.phase = GamePlaying
	g.selected = ""
	g.matched = 0
	g.moves = 0
	for _, c := range g.cards {
		c.state = CardUnselected
	}
	for col, ids := range g.columns {
		g.columns[col] = Shuffle(g.rng, ids)
	}
}

// Shuffle returns a uniformly random permutation of items using
// Fisher-Yates. The input slice is left untouched.
func Shuffle[T any](rng *rand.Rand, items []T) []T {
	shuffled := make([]T, len(items))
	copy(shuffled, items)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}

// CardID returns the id of the card holding pairID in col, or "" if none.
func (g *MatchGame) CardID(pairID string, col Column) string {
	for _, id := range g.columns[col] {
		if g.cards[id].pairID == pairID {
			return id
		}
	}
	return ""
}

// Order returns the card ids of col in display order.
func (g *MatchGame) Order(col Column) []string {
	out := make([]string, len(g.columns[col]))
	copy(out, g.columns[col])
	return out
}

func (g *MatchGame) State(cardID string) CardState {
	if c, ok := g.cards[cardID]; ok {
		return c.state
	}
	return ""
}

func (g *MatchGame) Phase() GamePhase { return g.phase }
func (g *MatchGame) Selected() string { return g.selected }
func (g *MatchGame) Matched() int     { return g.matched }
func (g *MatchGame) Total() int       { return g.total }
func (g *MatchGame) Moves() int       { return g.moves }

type CardView struct {
	ID    string    `json:"id"`
	Label string    `json:"label"`
	State CardState `json:"state"`
}

type GameView struct {
	Phase   GamePhase  `json:"phase"`
	Matched int        `json:"matched"`
	Total   int        `json:"total"`
	Moves   int        `json:"moves"`
	Source  []CardView `json:"source"`
	Target  []CardView `json:"target"`
}

func (g *MatchGame) View() GameView {
	v := GameView{Phase: g.phase, Matched: g.matched, Total: g.total, Moves: g.moves}
	for _, id := range g.columns[ColumnSource] {
		c := g.cards[id]
		v.Source = append(v.Source, CardView{ID: c.id, Label: c.label, State: c.state})
	}
	for _, id := range g.columns[ColumnTarget] {
		c := g.cards[id]
		v.Target = append(v.Target, CardView{ID: c.id, Label: c.label, State: c.state})
	}
	return v
}
