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

package interrupts

import (
	"fmt"
	"strings"

	"github.com/fusedsim/fused/hardware/sim"
)

// NoRequest is the value of the Index signal when no line is requesting.
const NoRequest = -1

// Line is the pair of wires between an interrupt source and the arbiter.
type Line struct {
	// Request is driven by the source.
	Request *sim.Wire

	// Ack is driven by the arbiter.
	Ack *sim.Wire

	connected bool
}

// NewLine creates a request and acknowledge pair. Lines created outside of an
// arbiter are used for sources wired directly to a CPU input.
func NewLine(name string) *Line {
	return &Line{
		Request: sim.NewWire(name+".irq", false),
		Ack:     sim.NewWire(name+".ira", false),
	}
}

// Arbiter selects the lowest numbered requesting line.
type Arbiter struct {
	lines []*Line

	// IRQ is asserted when any line is requesting.
	IRQ *sim.Wire

	// Index of the winning line or NoRequest.
	Index *sim.Signal[int]

	// Ack is driven by the CPU.
	Ack *sim.Wire

	// the index returned by the most recent call to Select()
	selected int

	// the index selected when Ack was last asserted
	latched int
}

// NewArbiter is the preferred method of initialisation for the Arbiter type.
func NewArbiter(name string, n int) *Arbiter {
	arb := &Arbiter{
		lines:    make([]*Line, n),
		IRQ:      sim.NewWire(name+".irq", false),
		Index:    sim.NewSignal(name+".idx", NoRequest),
		Ack:      sim.NewWire(name+".ira", false),
		selected: NoRequest,
		latched:  NoRequest,
	}

	for i := range arb.lines {
		arb.lines[i] = NewLine(fmt.Sprintf("%s.%d", name, i))
		arb.lines[i].Request.Changed().Subscribe(arb.arbitrate)
	}

	arb.Ack.Posedge().Subscribe(arb.acknowledge)
	arb.Ack.Negedge().Subscribe(arb.release)

	return arb
}

func (arb *Arbiter) String() string {
	s := strings.Builder{}
	fmt.Fprintf(&s, "%s %s", arb.IRQ, arb.Index)
	for i, l := range arb.lines {
		if l.Request.Read() {
			fmt.Fprintf(&s, " [%d]", i)
		}
	}
	return s.String()
}

// Len returns the number of lines.
func (arb *Arbiter) Len() int {
	return len(arb.lines)
}

// Line returns the wires for line i. Returns nil if the index is out of
// range.
func (arb *Arbiter) Line(i int) *Line {
	if i < 0 || i >= len(arb.lines) {
		return nil
	}
	return arb.lines[i]
}

// Connect returns the wires for line i and marks the line as having a
// source that listens to the acknowledge wire.
func (arb *Arbiter) Connect(i int) *Line {
	l := arb.Line(i)
	if l != nil {
		l.connected = true
	}
	return l
}

// Connected returns true if the source of line i listens to the acknowledge
// wire.
func (arb *Arbiter) Connected(i int) bool {
	l := arb.Line(i)
	return l != nil && l.connected
}

// Latched returns the index routed to by the current acknowledge. Returns
// NoRequest if acknowledge is not asserted.
func (arb *Arbiter) Latched() int {
	return arb.latched
}

// Select returns the current winning line and records it as the target of the
// next acknowledge. A CPU calls Select when it decides which handler to run so
// that a request arriving before the acknowledge does not redirect it.
func (arb *Arbiter) Select() int {
	arb.selected = arb.Index.Read()
	return arb.selected
}

func (arb *Arbiter) arbitrate() {
	idx := NoRequest
	for i, l := range arb.lines {
		if l.Request.Read() {
			idx = i
			break
		}
	}
	arb.Index.Write(idx)
	arb.IRQ.Write(idx != NoRequest)
}

func (arb *Arbiter) acknowledge() {
	if arb.selected != NoRequest {
		arb.latched = arb.selected
		arb.selected = NoRequest
	} else {
		arb.latched = arb.Index.Read()
	}
	if l := arb.Line(arb.latched); l != nil {
		l.Ack.Write(true)
	}
}

func (arb *Arbiter) release() {
	if l := arb.Line(arb.latched); l != nil {
		l.Ack.Write(false)
	}
	arb.latched = NoRequest
	arb.arbitrate()
}
