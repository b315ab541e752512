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

// Event is a notification that other components can subscribe to. The
// kernel's WaitAny() function also watches events.
type Event struct {
	name        string
	count       uint64
	subscribers []func()
}

// NewEvent is the preferred method of initialisation for the Event type.
func NewEvent(name string) *Event {
	return &Event{name: name}
}

func (e *Event) String() string {
	return e.name
}

// Notify the event. Subscribers are called immediately, in the order in which
// they subscribed.
func (e *Event) Notify() {
	e.count++
	for _, f := range e.subscribers {
		f()
	}
}

// Subscribe adds a function to be called whenever the event is notified.
func (e *Event) Subscribe(f func()) {
	e.subscribers = append(e.subscribers, f)
}

// Subscribed returns true if anything has subscribed to the event.
func (e *Event) Subscribed() bool {
	return len(e.subscribers) > 0
}

// Count returns the number of times the event has been notified.
func (e *Event) Count() uint64 {
	return e.count
}
