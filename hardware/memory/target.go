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

package memory

import (
	"fmt"

	"github.com/fusedsim/fused/hardware/bus"
	"github.com/fusedsim/fused/hardware/sim"
)

// ReadHook is implemented by peripherals that must act before a timed read
// of their registers. The hook can update the store with Target.Poke(). A
// status other than bus.OK fails the transaction.
type ReadHook interface {
	BeforeRead(offset uint32, length int) bus.Status
}

// WriteHook is implemented by peripherals that must act after a timed write
// to their registers.
type WriteHook interface {
	AfterWrite(offset uint32, data []byte) bus.Status
}

// Option configures a Target.
type Option func(*Target)

// WithPower gates the target with a power wire.
func WithPower(power *sim.Wire) Option {
	return func(t *Target) {
		t.power = power
	}
}

// WithDelay sets the access delay of the target.
func WithDelay(delay sim.Time) Option {
	return func(t *Target) {
		t.delay = delay
	}
}

// Volatile targets are cleared when their power wire falls.
func Volatile() Option {
	return func(t *Target) {
		t.volatile = true
	}
}

// WithHooks attaches a ReadHook, a WriteHook or both. The argument is
// checked for each interface.
func WithHooks(h any) Option {
	return func(t *Target) {
		if r, ok := h.(ReadHook); ok {
			t.readHook = r
		}
		if w, ok := h.(WriteHook); ok {
			t.writeHook = w
		}
	}
}

// Target is a store-backed implementation of the bus.Target interface.
type Target struct {
	name     string
	start    uint32
	end      uint32
	delay    sim.Time
	power    *sim.Wire
	volatile bool

	readHook  ReadHook
	writeHook WriteHook

	store []byte

	// notified on completion of timed accesses only
	readEvent  *sim.Event
	writeEvent *sim.Event
}

// NewTarget is the preferred method of initialisation for the Target type.
// The range is inclusive.
func NewTarget(name string, start uint32, end uint32, opts ...Option) *Target {
	t := &Target{
		name:       name,
		start:      start,
		end:        end,
		store:      make([]byte, uint64(end)-uint64(start)+1),
		readEvent:  sim.NewEvent(name + ".read"),
		writeEvent: sim.NewEvent(name + ".write"),
	}

	for _, o := range opts {
		o(t)
	}

	if t.volatile && t.power != nil {
		t.power.Negedge().Subscribe(t.clear)
	}

	return t
}

func (t *Target) String() string {
	return fmt.Sprintf("%s [%#08x to %#08x]", t.name, t.start, t.end)
}

// Name of the target.
func (t *Target) Name() string {
	return t.name
}

// Range implements the bus.Target interface.
func (t *Target) Range() (uint32, uint32) {
	return t.start, t.end
}

// Size of the backing store in bytes.
func (t *Target) Size() int {
	return len(t.store)
}

// Powered returns true if the target has no power wire or if the power wire
// is asserted.
func (t *Target) Powered() bool {
	return t.power == nil || t.power.Read()
}

// ReadEvent is notified after every successful timed read.
func (t *Target) ReadEvent() *sim.Event {
	return t.readEvent
}

// WriteEvent is notified after every successful timed write.
func (t *Target) WriteEvent() *sim.Event {
	return t.writeEvent
}

func (t *Target) inRange(offset uint32, length int) bool {
	return length > 0 && uint64(offset)+uint64(length) <= uint64(len(t.store))
}

// Transport implements the bus.Target interface.
func (t *Target) Transport(tr *bus.Transaction) sim.Time {
	if !t.Powered() {
		tr.Status = bus.PowerError
		return t.delay
	}
	if !t.inRange(tr.Address, len(tr.Data)) {
		tr.Status = bus.AddressError
		return t.delay
	}

	switch tr.Command {
	case bus.Read:
		if t.readHook != nil {
			if st := t.readHook.BeforeRead(tr.Address, len(tr.Data)); st != bus.OK {
				tr.Status = st
				return t.delay
			}
		}
		copy(tr.Data, t.store[tr.Address:])
		tr.Status = bus.OK
		t.readEvent.Notify()

	case bus.Write:
		copy(t.store[tr.Address:], tr.Data)
		tr.Status = bus.OK
		if t.writeHook != nil {
			if st := t.writeHook.AfterWrite(tr.Address, tr.Data); st != bus.OK {
				tr.Status = st
				return t.delay
			}
		}
		t.writeEvent.Notify()

	default:
		tr.Status = bus.CommandError
	}

	return t.delay
}

// TransportDebug implements the bus.Target interface. The power gate and any
// hooks are bypassed.
func (t *Target) TransportDebug(tr *bus.Transaction) int {
	if int(tr.Address) >= len(t.store) {
		tr.Status = bus.AddressError
		return 0
	}

	var n int
	switch tr.Command {
	case bus.Read:
		n = copy(tr.Data, t.store[tr.Address:])
	case bus.Write:
		n = copy(t.store[tr.Address:], tr.Data)
	default:
		tr.Status = bus.CommandError
		return 0
	}

	tr.Status = bus.OK
	return n
}

// Reset implements the bus.Target interface. Volatile contents are cleared.
func (t *Target) Reset() {
	if t.volatile {
		t.clear()
	}
}

func (t *Target) clear() {
	clear(t.store)
}

// Peek returns a copy of the bytes at the offset. Intended for use by
// peripherals and tooling.
func (t *Target) Peek(offset uint32, length int) []byte {
	if !t.inRange(offset, length) {
		return nil
	}
	b := make([]byte, length)
	copy(b, t.store[offset:])
	return b
}

// Poke stores bytes at the offset. Returns false if the data does not fit.
func (t *Target) Poke(offset uint32, data []byte) bool {
	if !t.inRange(offset, len(data)) {
		return false
	}
	copy(t.store[offset:], data)
	return true
}
