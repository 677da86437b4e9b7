package network

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidProbability is returned when an infection chance falls outside [0,1].
	ErrInvalidProbability = errors.New("chance to infect must be between 0 and 1")

	// ErrDuplicateComputer is returned when two distinct computers share a name.
	ErrDuplicateComputer = errors.New("duplicate computer name")
)

// Profile is the operating system a computer runs. It fixes the chance that a
// single infection attempt against that computer succeeds.
type Profile struct {
	chance float64
}

// NewProfile validates p and returns a Profile carrying it.
func NewProfile(p float64) (Profile, error) {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return Profile{}, fmt.Errorf("%w: got %v", ErrInvalidProbability, p)
	}
	return Profile{chance: p}, nil
}

// MustProfile is NewProfile for fixed fixtures; it panics on invalid input.
func MustProfile(p float64) Profile {
	prof, err := NewProfile(p)
	if err != nil {
		panic(err)
	}
	return prof
}

// Chance returns the per-attempt infection probability.
func (p Profile) Chance() float64 { return p.chance }
