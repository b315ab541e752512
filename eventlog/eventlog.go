// This file is part of Fused.
//
// Fused is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Fused is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Fused.  If not, see <https://www.gnu.org/licenses/>.

// Package eventlog is an in-memory implementation of the core.Sink
// interface. It records every state transition and keeps a running total for
// each counter.
package eventlog

import (
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/fusedsim/fused/hardware/core"
	"github.com/fusedsim/fused/hardware/sim"
)

// Transition of a module to a new state.
type Transition struct {
	Module string
	State  string
	At     sim.Time
}

func (tr Transition) String() string {
	return fmt.Sprintf("%s %s -> %s", tr.At, tr.Module, tr.State)
}

// Log implements the core.Sink interface.
type Log struct {
	crit sync.Mutex

	// oldest transitions are dropped once the log holds this many
	maxTransitions int

	transitions []Transition
	dropped     int

	counters map[string]uint64
}

var _ core.Sink = (*Log)(nil)

// NewLog is the preferred method of initialisation for the Log type.
func NewLog(maxTransitions int) *Log {
	return &Log{
		maxTransitions: maxTransitions,
		counters:       make(map[string]uint64),
	}
}

// ReportState implements the core.Sink interface.
func (l *Log) ReportState(module string, state string, at sim.Time) {
	l.crit.Lock()
	defer l.crit.Unlock()

	l.transitions = append(l.transitions, Transition{Module: module, State: state, At: at})
	if len(l.transitions) > l.maxTransitions {
		n := len(l.transitions) - l.maxTransitions
		l.transitions = l.transitions[n:]
		l.dropped += n
	}
}

// Increment implements the core.Sink interface.
func (l *Log) Increment(counter string, n uint64) {
	l.crit.Lock()
	defer l.crit.Unlock()
	l.counters[counter] += n
}

// Counter returns the total for the named counter.
func (l *Log) Counter(counter string) uint64 {
	l.crit.Lock()
	defer l.crit.Unlock()
	return l.counters[counter]
}

// Transitions returns a copy of the recorded transitions, oldest first.
func (l *Log) Transitions() []Transition {
	l.crit.Lock()
	defer l.crit.Unlock()
	return slices.Clone(l.transitions)
}

// Write the counters and the transitions to the writer. Counters are written
// in name order.
func (l *Log) Write(w io.Writer) {
	l.crit.Lock()
	defer l.crit.Unlock()

	names := make([]string, 0, len(l.counters))
	for n := range l.counters {
		names = append(names, n)
	}
	slices.Sort(names)

	for _, n := range names {
		fmt.Fprintf(w, "%s: %d\n", n, l.counters[n])
	}

	if l.dropped > 0 {
		fmt.Fprintf(w, "(%d earlier transitions)\n", l.dropped)
	}
	for _, tr := range l.transitions {
		fmt.Fprintln(w, tr.String())
	}
}
