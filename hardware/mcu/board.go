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

package mcu

import (
	"fmt"
	"io"
	"os"

	"github.com/fusedsim/fused/curated"
	"github.com/fusedsim/fused/hardware/bus"
	"github.com/fusedsim/fused/hardware/core"
	"github.com/fusedsim/fused/hardware/interrupts"
	"github.com/fusedsim/fused/hardware/memory"
	"github.com/fusedsim/fused/hardware/peripherals"
	"github.com/fusedsim/fused/hardware/preferences"
	"github.com/fusedsim/fused/hardware/sim"
	"github.com/fusedsim/fused/logger"
	"github.com/fusedsim/fused/prefs"
)

// Sentinal error patterns.
const (
	BoardError = "mcu: %s: %v"
	LoadError  = "mcu: cannot load %s: %v"
)

// Options for a new Board.
type Options struct {
	// the core parks before the first instruction
	StartStalled bool

	// receives state changes and counters. can be nil
	Sink core.Sink

	// characters written to the monitor. can be nil
	Output io.Writer
}

// Board is a wired microcontroller.
type Board struct {
	Name string

	Kernel *sim.Kernel
	Power  *sim.Wire
	Clock  *sim.Clock
	Router *bus.Router

	// initiator used by the CPU
	Bus *bus.Initiator

	// initiator used for loading and for the debug surface
	Debug *bus.Initiator

	Core *core.Core

	// the arbiter for external interrupts
	Arbiter *interrupts.Arbiter

	Timer   *peripherals.IntervalTimer
	Monitor *peripherals.Monitor

	// only on the MSP430 board
	Reset *peripherals.ResetController

	// asserted by a DMA controller to hold the CPU's memory accesses. only on
	// the MSP430 board
	BusStall *sim.Wire

	// only on the Cortex-M0 board
	SysTick *peripherals.IntervalTimer

	memories []*memory.Target
}

func (b *Board) String() string {
	return b.Name
}

// memoryDelay returns the access delay for memory targets. A delay of zero
// in the preferences means one cycle of the CPU clock.
func memoryDelay(p *preferences.Preferences, clock *sim.Clock) sim.Time {
	if d := preferences.Period(&p.MemoryDelay); d > 0 {
		return d
	}
	return clock.Period()
}

// wire the router, the initiators and the core. called by the board
// constructors once the memories and the CPU specific parts are ready.
func (b *Board) wire(p *preferences.Preferences, targets []bus.Target) error {
	var err error
	b.Router, err = bus.NewRouter(preferences.Period(&p.BusDelay), targets...)
	if err != nil {
		return curated.Errorf(BoardError, b.Name, err)
	}
	b.Bus = bus.NewInitiator(b.Name, b.Kernel, b.Router)
	b.Debug = bus.NewInitiator(b.Name+".dbg", b.Kernel, b.Router)
	return nil
}

// attach the core to the ISA and bind the trace preference to it.
func (b *Board) attach(p *preferences.Preferences, isa core.ISA, opts Options) {
	b.Core = core.NewCore(isa, b.Kernel, b.Power, b.Debug, core.Options{
		StartStalled: opts.StartStalled,
		Sink:         opts.Sink,
	})

	b.Core.SetTrace(p.Trace.Get().(bool))
	p.Trace.SetHookPost(func(v prefs.Value) error {
		b.Core.SetTrace(v.(bool))
		return nil
	})

	logger.SetTimeSource(b.Kernel)
}

// Memory returns the memory with the name. Returns nil if there is no such
// memory.
func (b *Board) Memory(name string) *memory.Target {
	for _, m := range b.memories {
		if m.Name() == name {
			return m
		}
	}
	return nil
}

// Memories returns every memory on the board in address order.
func (b *Board) Memories() []*memory.Target {
	return b.memories
}

// PowerOn asserts the power wire.
func (b *Board) PowerOn() {
	b.Power.Write(true)
}

// PowerOff deasserts the power wire.
func (b *Board) PowerOff() {
	b.Power.Write(false)
}

// SchedulePower changes the state of the power wire at the simulated time.
func (b *Board) SchedulePower(at sim.Time, on bool) {
	b.Kernel.Schedule(at, func() {
		logger.Logf(logger.Allow, b.Name, "scheduled power %s", onOff(on))
		b.Power.Write(on)
	})
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

// StopAt schedules the end of the simulation.
func (b *Board) StopAt(at sim.Time) {
	b.Kernel.Schedule(at, func() {
		b.Kernel.Stop(nil)
	})
}

// LoadImage writes the data at the address.
func (b *Board) LoadImage(address uint32, data []byte) error {
	return memory.LoadImage(b.Debug, address, data)
}

// LoadELF writes the loadable segments of the ELF file. The entry point is
// not used because both CPU models start from their reset vector.
func (b *Board) LoadELF(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return curated.Errorf(LoadError, filename, err)
	}
	defer f.Close()

	entry, err := memory.LoadELF(b.Debug, f)
	if err != nil {
		return curated.Errorf(LoadError, filename, err)
	}
	logger.Logf(logger.Allow, b.Name, "loaded %s (entry %#08x)", filename, entry)

	return nil
}

// Run the board until the simulation ends. See core.Core.Run().
func (b *Board) Run() error {
	err := b.Core.Run()
	if err != nil {
		return curated.Errorf(BoardError, b.Name, err)
	}
	return nil
}

// Summary writes the state of the board to the writer.
func (b *Board) Summary(w io.Writer) {
	fmt.Fprintf(w, "%s at %s (%s)\n", b.Name, b.Kernel.Now(), b.Core.State())
	fmt.Fprintf(w, "instructions: %d\n", b.Core.Instructions())
	fmt.Fprintf(w, "idle cycles: %d\n", b.Core.IdleCycles())
	fmt.Fprintf(w, "monitor: %d passed, %d failed\n", b.Monitor.Passes(), b.Monitor.Failures())
}
