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
	"context"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/fusedsim/fused/hardware/bus"
	"github.com/fusedsim/fused/hardware/sim"
	"github.com/fusedsim/fused/logger"
)

// Options for a new Core.
type Options struct {
	// the core parks before the first instruction
	StartStalled bool

	// receives state changes and counters. can be nil
	Sink Sink
}

// Core drives an ISA through the run-control state machine.
type Core struct {
	isa    ISA
	kernel *sim.Kernel
	power  *sim.Wire
	dbg    *bus.Initiator
	sink   Sink

	ctl   *control
	state atomic.Int32

	// true once PowerOnReset() has been called for the current power cycle
	powered bool

	bpCrit      sync.Mutex
	breakpoints map[uint32]bool

	// the breakpoint address that caused the most recent stall. it is not
	// taken again until the instruction at that address has executed
	ignore    uint32
	ignoreSet bool

	trace atomic.Bool

	instructions atomic.Uint64
	idleCycles   atomic.Uint64
}

// NewCore is the preferred method of initialisation for the Core type. The
// initiator is used for debug memory access.
func NewCore(isa ISA, kernel *sim.Kernel, power *sim.Wire, dbg *bus.Initiator, opts Options) *Core {
	c := &Core{
		isa:         isa,
		kernel:      kernel,
		power:       power,
		dbg:         dbg,
		sink:        opts.Sink,
		ctl:         newControl(!opts.StartStalled),
		breakpoints: make(map[uint32]bool),
	}
	c.state.Store(int32(Off))
	return c
}

func (c *Core) String() string {
	return c.isa.Name()
}

// ISA returns the CPU model being driven by the core.
func (c *Core) ISA() ISA {
	return c.isa
}

// SetTrace turns per-instruction logging on or off.
func (c *Core) SetTrace(trace bool) {
	c.trace.Store(trace)
}

// State returns the current state of the run-control state machine.
func (c *Core) State() State {
	return State(c.state.Load())
}

func (c *Core) setState(s State) {
	if State(c.state.Swap(int32(s))) == s {
		return
	}
	if c.sink != nil {
		c.sink.ReportState(c.isa.Name(), s.String(), c.kernel.Now())
	}
}

func (c *Core) increment(counter string, n uint64) {
	if c.sink != nil && n > 0 {
		c.sink.Increment(counter, n)
	}
}

// Instructions returns the number of instructions executed.
func (c *Core) Instructions() uint64 {
	return c.instructions.Load()
}

// IdleCycles returns the number of clock cycles spent sleeping or otherwise
// idle.
func (c *Core) IdleCycles() uint64 {
	n := c.idleCycles.Load()
	if ic, ok := c.isa.(IdleCounter); ok {
		n += ic.IdleCycles()
	}
	return n
}

// Run the core until the simulation has nothing left to do, the simulation is
// stopped or Quit() is called. The returned error is the error that stopped
// the simulation, if any.
func (c *Core) Run() error {
	c.ctl.enter()
	defer c.ctl.exit()

	for {
		if c.kernel.Stopped() {
			return c.kernel.Err()
		}

		if !c.ctl.wait(func() { c.setState(Stalled) }) {
			return nil
		}

		if !c.power.Read() || !c.powered {
			if !c.powerUp() {
				return c.kernel.Err()
			}
			continue
		}

		taken, err := c.isa.ExceptionCheck()
		if err != nil {
			c.kernel.Stop(err)
			return err
		}
		if taken {
			c.increment(CounterExceptions, 1)
			continue
		}

		if c.isa.Sleeping() {
			if !c.sleep() {
				return c.kernel.Err()
			}
			continue
		}

		if c.ctl.step.Load() {
			c.setState(SingleStep)
		} else {
			c.setState(Running)
		}

		addr, boundary := c.isa.BreakpointAddress()
		if boundary && c.checkBreakpoint(addr) {
			logger.Logf(logger.Allow, c.isa.Name(), "breakpoint at %#08x", addr)
			c.ctl.halt()
			continue
		}

		if c.trace.Load() && boundary {
			if d, ok := c.isa.(Disassembler); ok {
				logger.Logf(logger.Allow, c.isa.Name(), "%#08x %s", addr, d.Disassemble(addr))
			}
		}

		if err := c.isa.Step(); err != nil {
			c.kernel.Stop(err)
			return err
		}

		c.clearIgnore()

		c.instructions.Add(1)
		c.increment(CounterInstructions, 1)

		if c.ctl.step.Load() {
			if _, boundary := c.isa.BreakpointAddress(); boundary {
				c.ctl.halt()
			}
		}
	}
}

// powerUp waits for the power wire to be asserted and then resets the ISA.
// Returns false if the simulation can not continue.
func (c *Core) powerUp() bool {
	if c.powered {
		if !c.isa.Sleeping() {
			logger.Logf(logger.Allow, c.isa.Name(), "power lost while active at %s", c.kernel.Now())
		}
		c.powered = false
	}
	c.setState(Off)

	for !c.power.Read() {
		if !c.kernel.WaitAny(c.power.Posedge()) {
			return false
		}
	}

	if err := c.isa.PowerOnReset(); err != nil {
		c.kernel.Stop(err)
		return false
	}
	c.powered = true
	c.ignoreSet = false
	c.setState(Running)

	return !c.kernel.Stopped()
}

// sleep waits for any of the wake events or for a change of power. Returns
// false if the simulation can not continue.
func (c *Core) sleep() bool {
	c.setState(Sleeping)

	start := c.kernel.Now()
	events := slices.Concat(c.isa.WakeEvents(), []*sim.Event{c.power.Changed()})
	ok := c.kernel.WaitAny(events...)

	n := c.isa.Clock().CyclesIn(c.kernel.Now() - start)
	c.idleCycles.Add(n)
	c.increment(CounterIdleCycles, n)

	return ok
}

func (c *Core) checkBreakpoint(addr uint32) bool {
	c.bpCrit.Lock()
	defer c.bpCrit.Unlock()

	if !c.breakpoints[addr] {
		return false
	}

	if c.ignoreSet && c.ignore == addr {
		return false
	}

	c.ignore = addr
	c.ignoreSet = true

	return true
}

// clearIgnore rearms the breakpoint that caused the most recent stall.
func (c *Core) clearIgnore() {
	c.bpCrit.Lock()
	defer c.bpCrit.Unlock()
	c.ignoreSet = false
}

// Stall the core at the next instruction boundary.
func (c *Core) Stall() {
	c.ctl.halt()
}

// Unstall the core.
func (c *Core) Unstall() {
	c.ctl.resume(false)
}

// Step executes one instruction and then stalls the core.
func (c *Core) Step() {
	c.ctl.resume(true)
}

// IsStalled returns true if the core is stalled and parked, or if the core is
// not running at all.
func (c *Core) IsStalled() bool {
	return c.ctl.isStalled()
}

// Parked returns true if Run() is blocked in the stall rendezvous. Unlike
// IsStalled() it is false once Run() has returned.
func (c *Core) Parked() bool {
	return c.ctl.isParked()
}

// WaitStalled blocks until the core parks or until the context is done.
func (c *Core) WaitStalled(ctx context.Context) error {
	return c.ctl.waitStalled(ctx)
}

// Quit releases a parked core and causes Run() to return at the next
// instruction boundary.
func (c *Core) Quit() {
	c.ctl.stop()
}

// InsertBreakpoint adds the address to the breakpoint set.
func (c *Core) InsertBreakpoint(addr uint32) {
	c.bpCrit.Lock()
	defer c.bpCrit.Unlock()
	c.breakpoints[c.isa.NormaliseAddress(addr)] = true
}

// RemoveBreakpoint removes the address from the breakpoint set.
func (c *Core) RemoveBreakpoint(addr uint32) {
	c.bpCrit.Lock()
	defer c.bpCrit.Unlock()
	delete(c.breakpoints, c.isa.NormaliseAddress(addr))
}

// Breakpoints returns the breakpoint set in address order.
func (c *Core) Breakpoints() []uint32 {
	c.bpCrit.Lock()
	defer c.bpCrit.Unlock()
	b := make([]uint32, 0, len(c.breakpoints))
	for a := range c.breakpoints {
		b = append(b, a)
	}
	slices.Sort(b)
	return b
}

// ReadRegister returns the value of the register. An invalid index is logged
// and returns zero.
func (c *Core) ReadRegister(idx int) uint32 {
	return c.isa.ReadRegister(idx)
}

// WriteRegister sets the value of the register.
func (c *Core) WriteRegister(idx int, value uint32) error {
	return c.isa.WriteRegister(idx, value)
}

// ReadMemory returns up to length bytes from the address using the debug
// transaction. Fewer bytes are returned if the address is not routed.
func (c *Core) ReadMemory(addr uint32, length int) []byte {
	b := make([]byte, length)
	n := c.dbg.ReadDebug(addr, b)
	return b[:n]
}

// WriteMemory writes data to the address using the debug transaction. Returns
// false if not every byte was written.
func (c *Core) WriteMemory(addr uint32, data []byte) bool {
	return c.dbg.WriteDebug(addr, data) == len(data)
}
