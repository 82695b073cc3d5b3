package statemachine

import (
	"errors"
	"fmt"
)

var ErrTransitionNotAllowed = errors.New("statemachine: transition not allowed")

// Machine is an immutable set of allowed transitions over a status type.
// Build it once at package init and share it freely; it is read-only after
// construction and therefore safe for concurrent use.
type Machine[S comparable] struct {
	transitions map[S]map[S]struct{}
}

// New creates an empty Machine. Use Allow to register transitions.
func New[S comparable]() *Machine[S] {
	return &Machine[S]{transitions: make(map[S]map[S]struct{})}
}

// Allow registers a transition from -> to and returns the machine for chaining.
func (m *Machine[S]) Allow(from, to S) *Machine[S] {
	if _, ok := m.transitions[from]; !ok {
		m.transitions[from] = make(map[S]struct{})
	}
	m.transitions[from][to] = struct{}{}
	return m
}

// Can reports whether the transition from -> to is registered.
func (m *Machine[S]) Can(from, to S) bool {
	targets, ok := m.transitions[from]
	if !ok {
		return false
	}
	_, ok = targets[to]
	return ok
}

// Transition validates from -> to and returns ErrTransitionNotAllowed with
// both states in the message when the transition is not registered.
func (m *Machine[S]) Transition(from, to S) error {
	if !m.Can(from, to) {
		return fmt.Errorf("%w: %v -> %v", ErrTransitionNotAllowed, from, to)
	}
	return nil
}

// Terminal reports whether no transition leaves the given state.
func (m *Machine[S]) Terminal(s S) bool {
	return len(m.transitions[s]) == 0
}
