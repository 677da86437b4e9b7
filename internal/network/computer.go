package network

// Computer is a single node of the simulated network. Its name is its
// identity; the infected flag is state and never takes part in lookups.
type Computer struct {
	Name    string
	Profile Profile

	infected bool
}

// NewComputer returns a computer that starts infected when infected is true.
func NewComputer(name string, profile Profile, infected bool) *Computer {
	return &Computer{Name: name, Profile: profile, infected: infected}
}

// Infected reports whether the computer has been infected.
func (c *Computer) Infected() bool { return c.infected }

// infect only ever moves a computer from susceptible to infected.
func (c *Computer) infect() bool {
	if c.infected {
		return false
	}
	c.infected = true
	return true
}
