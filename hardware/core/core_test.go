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

package core_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fusedsim/fused/hardware/bus"
	"github.com/fusedsim/fused/hardware/core"
	"github.com/fusedsim/fused/hardware/memory"
	"github.com/fusedsim/fused/hardware/sim"
	"github.com/fusedsim/fused/logger"
	"github.com/fusedsim/fused/test"
)

// fakeISA executes two byte instructions that do nothing except advance the
// program counter.
type fakeISA struct {
	kernel *sim.Kernel
	clock  *sim.Clock

	pc       uint32
	executed []uint32
	resets   int

	// the core sleeps when the program counter reaches sleepAt
	sleepAt  uint32
	sleeping bool
	wake     *sim.Event
	woken    bool

	// simulation is stopped when the program counter reaches stopAt
	stopAt uint32

	// the instruction at loopAt branches to itself
	loopAt uint32
}

func newFakeISA(kernel *sim.Kernel, stopAt uint32) *fakeISA {
	f := &fakeISA{
		kernel: kernel,
		clock:  sim.NewClock("clk", sim.Nanosecond),
		wake:   sim.NewEvent("wake"),
		stopAt: stopAt,
	}
	f.wake.Subscribe(func() { f.woken = true })
	return f
}

func (f *fakeISA) Name() string { return "fake" }

func (f *fakeISA) PowerOnReset() error {
	f.resets++
	f.pc = 0
	f.sleeping = false
	return nil
}

func (f *fakeISA) ExceptionCheck() (bool, error) {
	if f.woken {
		f.woken = false
		f.sleeping = false
		return true, nil
	}
	return false, nil
}

func (f *fakeISA) Sleeping() bool { return f.sleeping }
func (f *fakeISA) WakeEvents() []*sim.Event { return []*sim.Event{f.wake} }
func (f *fakeISA) BreakpointAddress() (uint32, bool) { return f.pc, true }
func (f *fakeISA) NumRegisters() int { return 1 }
func (f *fakeISA) RegisterName(idx int) string { return "pc" }
func (f *fakeISA) NormaliseAddress(a uint32) uint32 { return a &^ 1 }
func (f *fakeISA) Clock() *sim.Clock { return f.clock }

func (f *fakeISA) ReadRegister(idx int) uint32 {
	if idx != 0 {
		return 0
	}
	return f.pc
}

func (f *fakeISA) WriteRegister(idx int, v uint32) error {
	f.pc = v
	return nil
}

func (f *fakeISA) Step() error {
	f.executed = append(f.executed, f.pc)
	if f.loopAt == 0 || f.pc != f.loopAt {
		f.pc += 2
	}
	f.kernel.Advance(f.clock.Cycles(1))
	if f.sleepAt != 0 && f.pc == f.sleepAt {
		f.sleeping = true
	}
	if f.pc == f.stopAt {
		f.kernel.Stop(nil)
	}
	return nil
}

type sink struct {
	crit     sync.Mutex
	states   []string
	counters map[string]uint64
}

func newSink() *sink {
	return &sink{counters: make(map[string]uint64)}
}

func (s *sink) ReportState(module string, state string, at sim.Time) {
	s.crit.Lock()
	defer s.crit.Unlock()
	s.states = append(s.states, state)
}

func (s *sink) Increment(counter string, n uint64) {
	s.crit.Lock()
	defer s.crit.Unlock()
	s.counters[counter] += n
}

func (s *sink) String() string {
	s.crit.Lock()
	defer s.crit.Unlock()
	return strings.Join(s.states, " ")
}

func newCore(t *testing.T, isa *fakeISA, power bool, opts core.Options) (*core.Core, *sim.Wire) {
	t.Helper()
	m := memory.NewTarget("ram", 0, 0xff)
	r, err := bus.NewRouter(0, m)
	test.DemandSuccess(t, err)
	pw := sim.NewWire("power", power)
	return core.NewCore(isa, isa.kernel, pw, bus.NewInitiator("fake", isa.kernel, r), opts), pw
}

func TestRunToCompletion(t *testing.T) {
	k := sim.NewKernel()
	isa := newFakeISA(k, 0x10)
	snk := newSink()
	c, _ := newCore(t, isa, true, core.Options{Sink: snk})

	test.ExpectSuccess(t, c.Run())
	test.ExpectEquality(t, c.Instructions(), uint64(8))
	test.ExpectEquality(t, isa.resets, 1)
	test.ExpectEquality(t, k.Now(), 8*sim.Nanosecond)
	test.ExpectEquality(t, snk.counters[core.CounterInstructions], uint64(8))
	test.ExpectEquality(t, snk.String(), "on")
}

func TestPowerOn(t *testing.T) {
	k := sim.NewKernel()
	isa := newFakeISA(k, 0x04)
	snk := newSink()
	c, power := newCore(t, isa, false, core.Options{Sink: snk})

	k.After(100*sim.Nanosecond, func() { power.Write(true) })

	test.ExpectSuccess(t, c.Run())
	test.ExpectEquality(t, isa.resets, 1)
	test.ExpectEquality(t, k.Now(), 102*sim.Nanosecond)
	test.ExpectEquality(t, snk.String(), "on")
}

func TestPowerNeverArrives(t *testing.T) {
	k := sim.NewKernel()
	isa := newFakeISA(k, 0x04)
	c, _ := newCore(t, isa, false, core.Options{})

	// nothing scheduled so the simulation ends
	test.ExpectSuccess(t, c.Run())
	test.ExpectEquality(t, isa.resets, 0)
	test.ExpectEquality(t, c.State(), core.Off)
}

func TestPowerLossWhileActive(t *testing.T) {
	logger.Clear()

	k := sim.NewKernel()
	isa := newFakeISA(k, 0x20)
	snk := newSink()
	c, power := newCore(t, isa, true, core.Options{Sink: snk})

	k.After(5*sim.Nanosecond, func() { power.Write(false) })
	k.After(50*sim.Nanosecond, func() { power.Write(true) })

	test.ExpectSuccess(t, c.Run())
	test.ExpectEquality(t, isa.resets, 2)
	test.ExpectEquality(t, snk.String(), "on off on")

	var warned bool
	for _, e := range logger.Copy() {
		warned = warned || strings.Contains(e.Detail, "power lost while active")
	}
	test.ExpectSuccess(t, warned)
}

func TestSleep(t *testing.T) {
	logger.Clear()

	k := sim.NewKernel()
	isa := newFakeISA(k, 0x10)
	isa.sleepAt = 0x04
	snk := newSink()
	c, _ := newCore(t, isa, true, core.Options{Sink: snk})

	k.After(sim.Microsecond, func() { isa.wake.Notify() })

	test.ExpectSuccess(t, c.Run())
	test.ExpectEquality(t, c.Instructions(), uint64(8))
	test.ExpectEquality(t, c.IdleCycles(), uint64(998))
	test.ExpectEquality(t, snk.counters[core.CounterIdleCycles], uint64(998))
	test.ExpectEquality(t, snk.counters[core.CounterExceptions], uint64(1))
	test.ExpectEquality(t, snk.String(), "on sleep on")

}

func TestBreakpoint(t *testing.T) {
	k := sim.NewKernel()
	isa := newFakeISA(k, 0x40)
	c, _ := newCore(t, isa, true, core.Options{StartStalled: true})

	// odd addresses are normalised
	c.InsertBreakpoint(0x11)
	test.ExpectEquality(t, len(c.Breakpoints()), 1)
	test.ExpectEquality(t, c.Breakpoints()[0], uint32(0x10))

	done := make(chan error)
	go func() { done <- c.Run() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	test.DemandSuccess(t, c.WaitStalled(ctx))
	test.ExpectEquality(t, c.State(), core.Stalled)
	test.ExpectEquality(t, len(isa.executed), 0)

	c.Unstall()
	test.DemandSuccess(t, c.WaitStalled(ctx))

	// stalled before the instruction at the breakpoint executed
	test.ExpectSuccess(t, c.IsStalled())
	test.ExpectEquality(t, c.ReadRegister(0), uint32(0x10))
	test.ExpectEquality(t, len(isa.executed), 8)

	// resuming makes progress even though the breakpoint is still set
	c.Step()
	test.DemandSuccess(t, c.WaitStalled(ctx))
	test.ExpectEquality(t, c.ReadRegister(0), uint32(0x12))
	test.ExpectEquality(t, len(isa.executed), 9)

	c.RemoveBreakpoint(0x10)
	test.ExpectEquality(t, len(c.Breakpoints()), 0)

	c.Unstall()
	test.ExpectSuccess(t, <-done)
	test.ExpectEquality(t, len(isa.executed), 32)
}

func TestBreakpointOnSelfLoop(t *testing.T) {
	k := sim.NewKernel()
	isa := newFakeISA(k, 0x40)
	isa.loopAt = 0x10
	c, _ := newCore(t, isa, true, core.Options{})
	c.InsertBreakpoint(0x10)

	done := make(chan error)
	go func() { done <- c.Run() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	test.DemandSuccess(t, c.WaitStalled(ctx))
	test.ExpectEquality(t, len(isa.executed), 8)

	// every pass through the loop stalls at the breakpoint again
	for i := 1; i <= 3; i++ {
		c.Unstall()
		test.DemandSuccess(t, c.WaitStalled(ctx))
		test.ExpectSuccess(t, c.Parked())
		test.ExpectEquality(t, c.ReadRegister(0), uint32(0x10))
		test.ExpectEquality(t, len(isa.executed), 8+i)
	}

	c.Quit()
	test.ExpectSuccess(t, <-done)
}

func TestStepAndQuit(t *testing.T) {
	k := sim.NewKernel()
	isa := newFakeISA(k, 0x40)
	c, _ := newCore(t, isa, true, core.Options{StartStalled: true})

	done := make(chan error)
	go func() { done <- c.Run() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	test.DemandSuccess(t, c.WaitStalled(ctx))

	for i := 1; i <= 3; i++ {
		c.Step()
		test.DemandSuccess(t, c.WaitStalled(ctx))
		test.ExpectEquality(t, len(isa.executed), i)
	}

	// debug memory access while stalled
	test.ExpectSuccess(t, c.WriteMemory(0x20, []byte{1, 2, 3}))
	test.ExpectEquality(t, c.ReadMemory(0x20, 3)[2], uint8(3))
	test.ExpectEquality(t, len(c.ReadMemory(0xfe, 4)), 2)
	test.ExpectFailure(t, c.WriteMemory(0x100, []byte{1}))

	test.ExpectSuccess(t, c.WriteRegister(0, 0x30))
	c.Step()
	test.DemandSuccess(t, c.WaitStalled(ctx))
	test.ExpectEquality(t, isa.executed[3], uint32(0x30))

	test.ExpectSuccess(t, c.Parked())

	c.Quit()
	test.ExpectSuccess(t, <-done)
	test.ExpectEquality(t, len(isa.executed), 4)

	// stalled but no longer parked once Run() has returned
	test.ExpectSuccess(t, c.IsStalled())
	test.ExpectFailure(t, c.Parked())
}

func TestStateNames(t *testing.T) {
	test.ExpectEquality(t, core.Off.String(), "off")
	test.ExpectEquality(t, core.Running.String(), "on")
	test.ExpectEquality(t, core.SingleStep.String(), "step")
	test.ExpectEquality(t, core.Stalled.String(), "stall")
	test.ExpectEquality(t, core.Sleeping.String(), "sleep")
}
