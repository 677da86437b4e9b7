package network

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// seqSource replays vals in a loop and counts draws.
type seqSource struct {
	vals  []float64
	draws int
}

func (s *seqSource) Float64() float64 {
	v := s.vals[s.draws%len(s.vals)]
	s.draws++
	return v
}

func chain(t *testing.T) (*Network, *Computer, *Computer, *Computer) {
	t.Helper()
	x := NewComputer("x", MustProfile(1), true)
	y := NewComputer("y", MustProfile(1), false)
	z := NewComputer("z", MustProfile(1), false)
	n := New()
	if err := n.Link(x, y); err != nil {
		t.Fatal(err)
	}
	if err := n.Link(y, z); err != nil {
		t.Fatal(err)
	}
	return n, x, y, z
}

func TestCanInfect_ZeroChanceNeverInfects(t *testing.T) {
	c := NewComputer("immune", MustProfile(0), false)
	src := &seqSource{vals: []float64{0}}
	if CanInfect(c, src) {
		t.Error("expected zero chance to fail even on a zero draw")
	}
	if src.draws != 1 {
		t.Errorf("expected exactly one draw, got %d", src.draws)
	}
}

func TestCanInfect_Boundaries(t *testing.T) {
	tests := []struct {
		name   string
		chance float64
		draw   float64
		want   bool
	}{
		{"certain", 1, 0.999999, true},
		{"equal draw succeeds", 0.5, 0.5, true},
		{"draw above chance fails", 0.5, 0.5000001, false},
		{"draw below chance succeeds", 0.25, 0.1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewComputer("c", MustProfile(tt.chance), false)
			if got := CanInfect(c, &seqSource{vals: []float64{tt.draw}}); got != tt.want {
				t.Errorf("CanInfect(p=%v, r=%v) = %v, want %v", tt.chance, tt.draw, got, tt.want)
			}
		})
	}
}

func TestCanInfectProperties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("p=0 never infects", prop.ForAll(
		func(r float64) bool {
			c := NewComputer("c", MustProfile(0), false)
			return !CanInfect(c, &seqSource{vals: []float64{r}})
		},
		gen.Float64Range(0, 0.999999),
	))

	properties.Property("p=1 always infects", prop.ForAll(
		func(r float64) bool {
			c := NewComputer("c", MustProfile(1), false)
			return CanInfect(c, &seqSource{vals: []float64{r}})
		},
		gen.Float64Range(0, 0.999999),
	))

	properties.TestingRun(t)
}

func TestPropagate_IsBreadthSynchronous(t *testing.T) {
	n, _, y, z := chain(t)
	src := &seqSource{vals: []float64{0.5}}

	Propagate(n, src)
	if !y.Infected() {
		t.Error("expected y infected after one step")
	}
	if z.Infected() {
		t.Error("expected z untouched after one step")
	}

	Propagate(n, src)
	if !z.Infected() {
		t.Error("expected z infected after two steps")
	}
}

func TestPropagate_Report(t *testing.T) {
	a := NewComputer("a", MustProfile(1), true)
	b := NewComputer("b", MustProfile(0.5), false)
	c := NewComputer("c", MustProfile(0.5), false)
	n := New()
	if err := n.Link(a, b, c, a); err != nil {
		t.Fatal(err)
	}

	// b fails, c succeeds, a (already infected) succeeds.
	src := &seqSource{vals: []float64{0.9, 0.1, 0.1}}
	rep := Propagate(n, src)

	if rep.Trials != 3 {
		t.Errorf("expected 3 trials, got %d", rep.Trials)
	}
	if rep.Successes != 2 {
		t.Errorf("expected 2 successes, got %d", rep.Successes)
	}
	if len(rep.Newly) != 1 || rep.Newly[0] != c {
		t.Errorf("expected only c newly infected, got %v", rep.Newly)
	}
	if b.Infected() {
		t.Error("expected b to stay susceptible")
	}
}

func TestPropagate_SkipsUninfectedSources(t *testing.T) {
	a := NewComputer("a", MustProfile(1), false)
	b := NewComputer("b", MustProfile(1), false)
	n := New()
	if err := n.Link(a, b); err != nil {
		t.Fatal(err)
	}
	src := &seqSource{vals: []float64{0}}

	rep := Propagate(n, src)
	if rep.Trials != 0 || src.draws != 0 {
		t.Errorf("expected no trials from uninfected source, got %d trials, %d draws", rep.Trials, src.draws)
	}
	if b.Infected() {
		t.Error("expected b untouched")
	}
}

func TestIsStatic(t *testing.T) {
	inf := func(name string) *Computer { return NewComputer(name, MustProfile(0.5), true) }
	sus := func(name string) *Computer { return NewComputer(name, MustProfile(0.5), false) }

	tests := []struct {
		name      string
		computers []*Computer
		want      bool
	}{
		{"empty", nil, true},
		{"all infected", []*Computer{inf("a"), inf("b")}, true},
		{"none infected", []*Computer{sus("a"), sus("b")}, true},
		{"mixed", []*Computer{inf("a"), sus("b")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsStatic(tt.computers); got != tt.want {
				t.Errorf("IsStatic() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanSpread(t *testing.T) {
	t.Run("live edge", func(t *testing.T) {
		n, _, _, _ := chain(t)
		if !CanSpread(n) {
			t.Error("expected x->y to be able to spread")
		}
	})

	t.Run("immune target", func(t *testing.T) {
		a := NewComputer("a", MustProfile(1), true)
		b := NewComputer("b", MustProfile(0), false)
		n := New()
		_ = n.Link(a, b)
		if CanSpread(n) {
			t.Error("expected no spread into a zero-chance target")
		}
	})

	t.Run("isolated infected computer", func(t *testing.T) {
		a := NewComputer("a", MustProfile(0), true)
		n := New()
		_ = n.Link(a)
		_ = n.Link(NewComputer("b", MustProfile(0.5), false))
		if CanSpread(n) {
			t.Error("expected no spread without edges")
		}
	})
}

func TestLink_UniverseOrderAndDuplicates(t *testing.T) {
	a := NewComputer("a", MustProfile(0.5), true)
	b := NewComputer("b", MustProfile(0.5), false)
	c := NewComputer("c", MustProfile(0.5), false)
	n := New()
	if err := n.Link(a, b, c); err != nil {
		t.Fatal(err)
	}
	if err := n.Link(b, a); err != nil {
		t.Fatal(err)
	}
	if err := n.Link(a, c); err != nil {
		t.Fatal(err)
	}

	got := n.Computers()
	if len(got) != 3 || got[0] != a || got[1] != b || got[2] != c {
		t.Errorf("unexpected universe order: %v", got)
	}
	if len(n.Sources()) != 2 {
		t.Errorf("expected 2 sources, got %d", len(n.Sources()))
	}
	if len(n.Targets(a)) != 3 {
		t.Errorf("expected a to accumulate 3 targets, got %d", len(n.Targets(a)))
	}
	if n.Edges() != 4 {
		t.Errorf("expected 4 edges, got %d", n.Edges())
	}

	impostor := NewComputer("a", MustProfile(0.1), false)
	if err := n.Link(impostor, b); !errors.Is(err, ErrDuplicateComputer) {
		t.Errorf("expected ErrDuplicateComputer, got %v", err)
	}
	if n.Lookup("a") != a {
		t.Error("expected lookup to keep the original computer")
	}
}

func TestLink_MembershipSurvivesInfection(t *testing.T) {
	a := NewComputer("a", MustProfile(1), true)
	b := NewComputer("b", MustProfile(1), false)
	n := New()
	_ = n.Link(a, b)
	_ = n.Link(b, a)

	Propagate(n, &seqSource{vals: []float64{0}})
	if !b.Infected() {
		t.Fatal("expected b infected")
	}
	if len(n.Targets(b)) != 1 {
		t.Error("expected b's edges to survive its state change")
	}
	if n.Lookup("b") != b {
		t.Error("expected b to stay addressable by name")
	}
}

// randomNetwork builds a graph of size computers with random edges and chances.
func randomNetwork(seed uint64, size int) *Network {
	rng := rand.New(rand.NewPCG(seed, seed>>1))
	computers := make([]*Computer, size)
	for i := range computers {
		computers[i] = NewComputer(string(rune('a'+i)), MustProfile(rng.Float64()), i == 0)
	}
	n := New()
	for _, c := range computers {
		var targets []*Computer
		for _, t := range computers {
			if rng.Float64() < 0.4 {
				targets = append(targets, t)
			}
		}
		_ = n.Link(c, targets...)
	}
	return n
}

func TestInfectionMonotonicity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("infected computers stay infected", prop.ForAll(
		func(seed uint64) bool {
			n := randomNetwork(seed, 8)
			rng := rand.New(rand.NewPCG(seed, 7))
			prev := map[string]bool{}
			for step := 0; step < 12; step++ {
				for _, c := range n.Computers() {
					if prev[c.Name] && !c.Infected() {
						return false
					}
					prev[c.Name] = c.Infected()
				}
				Propagate(n, rng)
			}
			return true
		},
		gen.UInt64(),
	))

	properties.TestingRun(t)
}
