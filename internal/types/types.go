package types

import "time"

// NodeState is one computer's state at a given step
type NodeState struct {
	Name     string  `json:"name"`
	Chance   float64 `json:"chance"`
	Infected bool    `json:"infected"`
}

// Snapshot is the state of every computer after a step
type Snapshot struct {
	RunID     string      `json:"run_id"`
	Step      int         `json:"step"`
	Timestamp time.Time   `json:"timestamp"`
	Nodes     []NodeState `json:"nodes"`
}

// Infected returns the number of infected computers in the snapshot
func (s Snapshot) Infected() int {
	n := 0
	for _, node := range s.Nodes {
		if node.Infected {
			n++
		}
	}
	return n
}
