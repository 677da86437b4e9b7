// Package network models a fixed directed graph of computers and the
// probabilistic step that spreads an infection along its edges.
package network

import "fmt"

// Network maps each source computer to the ordered computers it can infect.
// Maps are keyed by computer name so membership never depends on the
// infected flag.
type Network struct {
	sources []*Computer
	links   map[string][]*Computer
	byName  map[string]*Computer
	order   []*Computer
}

// New returns an empty network.
func New() *Network {
	return &Network{
		links:  make(map[string][]*Computer),
		byName: make(map[string]*Computer),
	}
}

// Link adds directed edges from source to each target, in order. Linking a
// source again appends to its targets.
func (n *Network) Link(source *Computer, targets ...*Computer) error {
	if err := n.register(source); err != nil {
		return err
	}
	for _, t := range targets {
		if err := n.register(t); err != nil {
			return err
		}
	}
	if _, ok := n.links[source.Name]; !ok {
		n.sources = append(n.sources, source)
		n.links[source.Name] = nil
	}
	n.links[source.Name] = append(n.links[source.Name], targets...)
	return nil
}

func (n *Network) register(c *Computer) error {
	if c == nil {
		return fmt.Errorf("network: nil computer")
	}
	if prev, ok := n.byName[c.Name]; ok {
		if prev != c {
			return fmt.Errorf("%w: %q", ErrDuplicateComputer, c.Name)
		}
		return nil
	}
	n.byName[c.Name] = c
	n.order = append(n.order, c)
	return nil
}

// Computers returns the universe: sources in insertion order, then
// computers that only ever appear as targets, in first-appearance order.
func (n *Network) Computers() []*Computer {
	out := make([]*Computer, 0, len(n.order))
	out = append(out, n.sources...)
	for _, c := range n.order {
		if _, isSource := n.links[c.Name]; !isSource {
			out = append(out, c)
		}
	}
	return out
}

// Sources returns the computers that have outgoing edges, in insertion order.
func (n *Network) Sources() []*Computer {
	out := make([]*Computer, len(n.sources))
	copy(out, n.sources)
	return out
}

// Targets returns the computers source can infect.
func (n *Network) Targets(source *Computer) []*Computer {
	return n.links[source.Name]
}

// Lookup returns the computer with the given name, or nil.
func (n *Network) Lookup(name string) *Computer {
	return n.byName[name]
}

// Edges returns the number of directed edges.
func (n *Network) Edges() int {
	total := 0
	for _, ts := range n.links {
		total += len(ts)
	}
	return total
}
