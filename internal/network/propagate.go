package network

// Source supplies uniform samples in [0,1). *rand.Rand from math/rand/v2
// satisfies it.
type Source interface {
	Float64() float64
}

// CanInfect runs one infection trial against c. It always consumes exactly
// one sample; a zero chance never succeeds, even on a zero draw.
func CanInfect(c *Computer, rnd Source) bool {
	r := rnd.Float64()
	p := c.Profile.Chance()
	return p != 0 && p >= r
}

// StepReport describes one propagation step.
type StepReport struct {
	Trials    int
	Successes int
	// Newly holds computers infected by this step, in first-success order.
	Newly []*Computer
}

// Propagate runs one breadth-synchronous step. All trials are decided against
// the infection state at the start of the step; flags are only set once every
// trial is done, so a computer infected now cannot spread until the next step.
func Propagate(n *Network, rnd Source) StepReport {
	var rep StepReport
	var pending []*Computer

	for _, src := range n.sources {
		if !src.Infected() {
			continue
		}
		for _, target := range n.links[src.Name] {
			rep.Trials++
			if CanInfect(target, rnd) {
				rep.Successes++
				pending = append(pending, target)
			}
		}
	}

	for _, c := range pending {
		if c.infect() {
			rep.Newly = append(rep.Newly, c)
		}
	}
	return rep
}

// IsStatic reports whether every computer shares one infection state.
func IsStatic(computers []*Computer) bool {
	infected, total := Counts(computers)
	return infected == 0 || infected == total
}

// Counts returns how many computers are infected and how many there are.
func Counts(computers []*Computer) (infected, total int) {
	for _, c := range computers {
		if c.Infected() {
			infected++
		}
	}
	return infected, len(computers)
}

// CanSpread reports whether any future step could still infect a computer:
// some infected source must have a susceptible target with a non-zero chance.
func CanSpread(n *Network) bool {
	for _, src := range n.sources {
		if !src.Infected() {
			continue
		}
		for _, target := range n.links[src.Name] {
			if !target.Infected() && target.Profile.Chance() > 0 {
				return true
			}
		}
	}
	return false
}
