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

package sim

import "fmt"

// Signal carries a value of type T between components.
type Signal[T comparable] struct {
	name    string
	value   T
	changed Event
}

// NewSignal is the preferred method of initialisation for the Signal type.
func NewSignal[T comparable](name string, init T) *Signal[T] {
	return &Signal[T]{
		name:    name,
		value:   init,
		changed: Event{name: name + ".changed"},
	}
}

func (s *Signal[T]) String() string {
	return fmt.Sprintf("%s=%v", s.name, s.value)
}

// Name of the signal.
func (s *Signal[T]) Name() string {
	return s.name
}

// Read the current value of the signal.
func (s *Signal[T]) Read() T {
	return s.value
}

// Write a new value to the signal. The Changed() event is only notified if
// the value is different.
func (s *Signal[T]) Write(v T) {
	if v == s.value {
		return
	}
	s.value = v
	s.changed.Notify()
}

// Changed is notified whenever the value of the signal changes.
func (s *Signal[T]) Changed() *Event {
	return &s.changed
}

// Wire is a boolean signal with edge events.
type Wire struct {
	Signal[bool]
	posedge Event
	negedge Event
}

// NewWire is the preferred method of initialisation for the Wire type.
func NewWire(name string, init bool) *Wire {
	return &Wire{
		Signal: Signal[bool]{
			name:    name,
			value:   init,
			changed: Event{name: name + ".changed"},
		},
		posedge: Event{name: name + ".posedge"},
		negedge: Event{name: name + ".negedge"},
	}
}

// Write a new value to the wire. Edge events are notified before the
// Changed() event.
func (w *Wire) Write(v bool) {
	if v == w.value {
		return
	}
	w.value = v
	if v {
		w.posedge.Notify()
	} else {
		w.negedge.Notify()
	}
	w.changed.Notify()
}

// Posedge is notified when the wire changes from false to true.
func (w *Wire) Posedge() *Event {
	return &w.posedge
}

// Negedge is notified when the wire changes from true to false.
func (w *Wire) Negedge() *Event {
	return &w.negedge
}

// Clock converts cycle counts into simulated time. The period can be changed
// by an external clock system at any time.
type Clock struct {
	*Signal[Time]
}

// NewClock is the preferred method of initialisation for the Clock type.
func NewClock(name string, period Time) *Clock {
	return &Clock{Signal: NewSignal(name, period)}
}

// Period of one clock cycle.
func (c *Clock) Period() Time {
	return c.Read()
}

// Cycles returns the simulated time taken by n clock cycles.
func (c *Clock) Cycles(n int) Time {
	if n <= 0 {
		return 0
	}
	return Time(n) * c.Read()
}

// CyclesIn returns the number of whole clock cycles in the duration.
func (c *Clock) CyclesIn(d Time) uint64 {
	p := c.Read()
	if p == 0 {
		return 0
	}
	return uint64(d / p)
}
