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

package core

import (
	"github.com/fusedsim/fused/hardware/sim"
)

// ISA is the strategy interface implemented by each CPU model.
type ISA interface {
	// Name of the CPU. Used as the module name when reporting.
	Name() string

	// PowerOnReset resets the register file and loads the initial state from
	// the reset vectors. Called on every power-on edge.
	PowerOnReset() error

	// ExceptionCheck takes any pending and deliverable exception. Returns true
	// if an exception was entered, in which case no instruction is executed
	// in the current cycle.
	ExceptionCheck() (bool, error)

	// Sleeping returns true if the CPU is in a low power mode.
	Sleeping() bool

	// WakeEvents returns the events that should cause a sleeping CPU to check
	// for exceptions.
	WakeEvents() []*sim.Event

	// BreakpointAddress returns the address of the instruction that will be
	// executed next. The boolean is false if the CPU is not at a point where
	// a breakpoint can be taken, for example when the pipeline is refilling.
	BreakpointAddress() (uint32, bool)

	// Step executes a single instruction.
	Step() error

	// NumRegisters returns the number of registers visible to the debug
	// surface.
	NumRegisters() int

	// RegisterName returns the name of the register with the index.
	RegisterName(idx int) string

	// ReadRegister for the debug surface. An invalid index returns zero.
	ReadRegister(idx int) uint32

	// WriteRegister for the debug surface.
	WriteRegister(idx int, value uint32) error

	// NormaliseAddress converts an address into the form used by the
	// breakpoint set.
	NormaliseAddress(address uint32) uint32

	// Clock of the CPU.
	Clock() *sim.Clock
}

// Disassembler is implemented by CPU models that can describe the
// instruction at an address. Used for trace output.
type Disassembler interface {
	Disassemble(address uint32) string
}

// IdleCounter is implemented by CPU models that consume idle cycles outside
// of the sleep state.
type IdleCounter interface {
	IdleCycles() uint64
}

// Sink receives state changes and counter increments. Implementations must
// be safe to call from the simulation goroutine while being read from
// another.
type Sink interface {
	ReportState(module string, state string, at sim.Time)
	Increment(counter string, n uint64)
}

// Names of the counters reported to the Sink.
const (
	CounterInstructions = "instructions"
	CounterIdleCycles   = "idleCycles"
	CounterExceptions   = "exceptions"
)
