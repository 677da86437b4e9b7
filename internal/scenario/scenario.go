// Package scenario holds the built-in example network.
package scenario

import (
	"fmt"

	"github.com/gustycube/netspread/internal/network"
)

type computerSpec struct {
	Name     string
	Chance   float64
	Infected bool
}

type linkSpec struct {
	From string
	To   []string
}

func exampleComputers() []computerSpec {
	return []computerSpec{
		{"a", 0.5, true},
		{"b", 0.5, false},
		{"c", 0.75, false},
		{"d", 0.25, false},
		{"e", 0.5, false},
		{"f", 0.75, false},
	}
}

func exampleLinks() []linkSpec {
	return []linkSpec{
		{"a", []string{"b", "e"}},
		{"b", []string{"c", "e"}},
		{"c", []string{"a", "e"}},
		{"d", []string{"b", "c"}},
		{"e", []string{"d", "f"}},
		{"f", []string{"b", "a"}},
	}
}

// Example builds the six-computer network a..f with a as patient zero.
func Example() (*network.Network, error) {
	return build(exampleComputers(), exampleLinks())
}

func build(computers []computerSpec, links []linkSpec) (*network.Network, error) {
	byName := make(map[string]*network.Computer, len(computers))
	for _, spec := range computers {
		prof, err := network.NewProfile(spec.Chance)
		if err != nil {
			return nil, fmt.Errorf("computer %q: %w", spec.Name, err)
		}
		byName[spec.Name] = network.NewComputer(spec.Name, prof, spec.Infected)
	}

	n := network.New()
	for _, l := range links {
		src, ok := byName[l.From]
		if !ok {
			return nil, fmt.Errorf("link from unknown computer %q", l.From)
		}
		targets := make([]*network.Computer, 0, len(l.To))
		for _, name := range l.To {
			t, ok := byName[name]
			if !ok {
				return nil, fmt.Errorf("link %s -> unknown computer %q", l.From, name)
			}
			targets = append(targets, t)
		}
		if err := n.Link(src, targets...); err != nil {
			return nil, err
		}
	}
	return n, nil
}
