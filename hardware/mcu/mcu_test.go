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

package mcu_test

import (
	"encoding/binary"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fusedsim/fused/hardware/bus"
	"github.com/fusedsim/fused/hardware/cpu/cortexm0"
	"github.com/fusedsim/fused/hardware/cpu/msp430"
	"github.com/fusedsim/fused/hardware/mcu"
	"github.com/fusedsim/fused/hardware/preferences"
	"github.com/fusedsim/fused/hardware/sim"
	"github.com/fusedsim/fused/logger"
	"github.com/fusedsim/fused/test"
)

func newPrefs(t *testing.T) *preferences.Preferences {
	t.Helper()
	p, err := preferences.NewPreferences(filepath.Join(t.TempDir(), "prefs"))
	test.DemandSuccess(t, err)
	return p
}

func load16(t *testing.T, b *mcu.Board, addr uint32, words ...uint16) {
	t.Helper()
	data := make([]byte, 0, len(words)*2)
	for _, w := range words {
		data = binary.LittleEndian.AppendUint16(data, w)
	}
	test.DemandSuccess(t, b.LoadImage(addr, data))
}

func load32(t *testing.T, b *mcu.Board, addr uint32, words ...uint32) {
	t.Helper()
	data := make([]byte, 0, len(words)*4)
	for _, w := range words {
		data = binary.LittleEndian.AppendUint32(data, w)
	}
	test.DemandSuccess(t, b.LoadImage(addr, data))
}

func logged(tag string, detail string) bool {
	for _, e := range logger.Copy() {
		if e.Tag == tag && strings.Contains(e.Detail, detail) {
			return true
		}
	}
	return false
}

// msp430Vectors sets the reset vector and the stack vector.
func msp430Vectors(t *testing.T, b *mcu.Board, reset uint16) {
	t.Helper()
	load16(t, b, 0xfffc, 0x3c00, reset)
}

func TestMSP430Layout(t *testing.T) {
	b, err := mcu.NewMSP430(newPrefs(t), mcu.Options{})
	test.DemandSuccess(t, err)

	test.ExpectEquality(t, len(b.Router.Targets()), 6)
	test.ExpectEquality(t, len(b.Memories()), 4)
	test.ExpectSuccess(t, b.Memory("nothing") == nil)

	start, end := b.Memory("sram").Range()
	test.ExpectEquality(t, start, uint32(mcu.MSP430SRAM))
	test.ExpectEquality(t, end, uint32(mcu.MSP430SRAMEnd))

	test.ExpectSuccess(t, b.Arbiter.Connected(mcu.MSP430ResetLine))
	test.ExpectSuccess(t, b.Arbiter.Connected(mcu.MSP430TimerLine))
	test.ExpectFailure(t, b.Arbiter.Connected(1))

	// a memory delay of zero means one cycle of the clock
	tr := bus.Transaction{Address: 0, Data: make([]byte, 2), Command: bus.Read}
	test.ExpectEquality(t, b.Memory("fram").Transport(&tr), 125*sim.Nanosecond)
}

func TestMemoryDelayPreference(t *testing.T) {
	p := newPrefs(t)
	test.DemandSuccess(t, p.MemoryDelay.Set("50ns"))

	b, err := mcu.NewCortexM0(p, mcu.Options{})
	test.DemandSuccess(t, err)

	tr := bus.Transaction{Address: 0, Data: make([]byte, 4), Command: bus.Read}
	test.ExpectEquality(t, b.Memory("ram").Transport(&tr), 50*sim.Nanosecond)

	// the ram is not powered
	test.ExpectEquality(t, tr.Status, bus.PowerError)
}

func TestMSP430Program(t *testing.T) {
	logger.Clear()

	var out strings.Builder
	b, err := mcu.NewMSP430(newPrefs(t), mcu.Options{Output: &out})
	test.DemandSuccess(t, err)

	msp430Vectors(t, b, 0x4400)
	load16(t, b, 0x4400,
		0x40b2, 0x5a80, 0x015c, // MOV #0x5a80, &WDTCTL
		0x40f2, 0x0041, 0x0604, // MOV.B #'A', &PUTC
		0x40f2, 0x000a, 0x0604, // MOV.B #'\n', &PUTC
		0x4382, 0x0600, // CLR &EXIT
	)

	b.PowerOn()
	test.ExpectSuccess(t, b.Run())

	test.ExpectEquality(t, out.String(), "A\n")
	test.ExpectEquality(t, b.Reset.Resets(), 1)
	test.ExpectEquality(t, b.Core.Instructions(), uint64(4))
	test.ExpectEquality(t, b.Memory("wdt").Register16(0), uint16(0x5a80))
	test.ExpectSuccess(t, logged("monitor", "A"))
	test.ExpectSuccess(t, b.Kernel.Now() > 0)
}

func TestMSP430BusStall(t *testing.T) {
	program := func(b *mcu.Board) {
		msp430Vectors(t, b, 0x4400)
		load16(t, b, 0x4400,
			0x40b2, 0x5a80, 0x015c, // MOV #0x5a80, &WDTCTL
			0x4382, 0x0600, // CLR &EXIT
		)
	}

	b, err := mcu.NewMSP430(newPrefs(t), mcu.Options{})
	test.DemandSuccess(t, err)
	program(b)
	b.PowerOn()
	test.ExpectSuccess(t, b.Run())
	unstalled := b.Kernel.Now()

	b, err = mcu.NewMSP430(newPrefs(t), mcu.Options{})
	test.DemandSuccess(t, err)
	program(b)

	// the CPU can not reach memory until the DMA transfer has finished
	b.BusStall.Write(true)
	b.Kernel.After(50*sim.Microsecond, func() { b.BusStall.Write(false) })

	b.PowerOn()
	test.ExpectSuccess(t, b.Run())
	test.ExpectEquality(t, b.Core.Instructions(), uint64(2))
	test.ExpectSuccess(t, b.Kernel.Now() > 50*sim.Microsecond)
	test.ExpectSuccess(t, b.Kernel.Now() > unstalled)
}

func TestMSP430TimerWakesCPU(t *testing.T) {
	b, err := mcu.NewMSP430(newPrefs(t), mcu.Options{})
	test.DemandSuccess(t, err)

	msp430Vectors(t, b, 0x4400)

	// vector of interrupt 10
	load16(t, b, 0xffea, 0x4500)

	load16(t, b, 0x4400,
		0x40b2, 0x0064, 0x0342, // MOV #100, &TCCR
		0x4392, 0x0340, // MOV #1, &TCTL
		0xd032, 0x0018, // BIS #GIE|CPUOFF, SR
		0x3fff, // JMP $
	)
	load16(t, b, 0x4500,
		0x4382, 0x0600, // CLR &EXIT
	)

	b.PowerOn()
	test.ExpectSuccess(t, b.Run())

	test.ExpectEquality(t, b.Timer.Expiries(), 1)
	test.ExpectSuccess(t, b.Core.IdleCycles() > 0)

	// return address and status register on the stack
	test.ExpectEquality(t, b.Core.ReadRegister(msp430.SP), uint32(0x3bfc))
	sram := b.Memory("sram")
	test.ExpectEquality(t, sram.Register16(0x3bfe-mcu.MSP430SRAM), uint16(0x440e))
	test.ExpectEquality(t, sram.Register16(0x3bfc-mcu.MSP430SRAM), uint16(msp430.GIE|msp430.CPUOFF))
}

func TestMSP430PowerCycle(t *testing.T) {
	logger.Clear()

	b, err := mcu.NewMSP430(newPrefs(t), mcu.Options{})
	test.DemandSuccess(t, err)

	msp430Vectors(t, b, 0x4400)
	load16(t, b, 0x4400,
		0x40b2, 0x1234, 0x1c00, // MOV #0x1234, &0x1c00
		0x3fff, // JMP $
	)

	sram := b.Memory("sram")

	var whileOff uint16 = 0xffff
	b.Kernel.Schedule(15*sim.Microsecond, func() {
		whileOff = sram.Register16(0)
	})

	b.SchedulePower(0, true)
	b.SchedulePower(10*sim.Microsecond, false)
	b.SchedulePower(20*sim.Microsecond, true)
	b.StopAt(30 * sim.Microsecond)

	test.ExpectSuccess(t, b.Run())

	test.ExpectEquality(t, whileOff, uint16(0))
	test.ExpectEquality(t, sram.Register16(0), uint16(0x1234))
	test.ExpectEquality(t, b.Reset.Resets(), 2)
	test.ExpectSuccess(t, logged("msp430", "power lost while active"))
	test.ExpectSuccess(t, b.Kernel.Now() >= 30*sim.Microsecond)
}

func TestTracePreference(t *testing.T) {
	logger.Clear()

	p := newPrefs(t)
	b, err := mcu.NewMSP430(p, mcu.Options{})
	test.DemandSuccess(t, err)

	msp430Vectors(t, b, 0x4400)
	load16(t, b, 0x4400, 0x4382, 0x0600)

	// the preference is bound to the core after the board is created
	test.DemandSuccess(t, p.Trace.Set(true))

	b.PowerOn()
	test.ExpectSuccess(t, b.Run())
	test.ExpectSuccess(t, logged("msp430", "0x004400 "))
}

// cortexm0Vectors sets the initial stack pointer and the reset handler.
func cortexm0Vectors(t *testing.T, b *mcu.Board) {
	t.Helper()
	load32(t, b, 0, 0x20001000, 0x00000101)
}

func TestCortexM0Layout(t *testing.T) {
	b, err := mcu.NewCortexM0(newPrefs(t), mcu.Options{})
	test.DemandSuccess(t, err)

	test.ExpectEquality(t, len(b.Router.Targets()), 5)
	test.ExpectSuccess(t, b.Reset == nil)
	test.ExpectSuccess(t, b.SysTick != nil)
	test.ExpectSuccess(t, b.Arbiter.Connected(mcu.CortexM0TimerLine))

	target, offset, ok := b.Router.Route(mcu.CortexM0SysTick + 4)
	test.DemandSuccess(t, ok)
	test.ExpectEquality(t, target, b.SysTick.Target())
	test.ExpectEquality(t, offset, uint32(4))

	_, _, ok = b.Router.Route(0x10000000)
	test.ExpectFailure(t, ok)
}

func TestCortexM0Program(t *testing.T) {
	var out strings.Builder
	b, err := mcu.NewCortexM0(newPrefs(t), mcu.Options{Output: &out})
	test.DemandSuccess(t, err)

	cortexm0Vectors(t, b)
	load16(t, b, 0x100,
		0x2040, // MOVS r0, #0x40
		0x0600, // LSLS r0, r0, #24
		0x2141, // MOVS r1, #'A'
		0x6041, // STR r1, [r0, #4]
		0x2100, // MOVS r1, #0
		0x6001, // STR r1, [r0, #0]
		0xe7fe, // B .
	)

	b.PowerOn()
	test.ExpectSuccess(t, b.Run())

	test.ExpectEquality(t, out.String(), "A")

	// six instructions and the two steps that refill the pipeline after reset
	test.ExpectEquality(t, b.Core.Instructions(), uint64(8))
	test.ExpectEquality(t, b.Core.ReadRegister(0), uint32(mcu.CortexM0Monitor))
}

func TestCortexM0SysTick(t *testing.T) {
	b, err := mcu.NewCortexM0(newPrefs(t), mcu.Options{})
	test.DemandSuccess(t, err)

	cortexm0Vectors(t, b)
	load32(t, b, 4*cortexm0.SysTick, 0x201)
	load16(t, b, 0x100,
		0x2040, // MOVS r0, #0x40
		0x0600, // LSLS r0, r0, #24
		0x2101, // MOVS r1, #1
		0x0209, // LSLS r1, r1, #8
		0x1809, // ADDS r1, r1, r0
		0x2264, // MOVS r2, #100
		0x804a, // STRH r2, [r1, #2]
		0x2201, // MOVS r2, #1
		0x800a, // STRH r2, [r1, #0]
		0xbf30, // WFI
		0xe7fe, // B .
	)
	load16(t, b, 0x200,
		0x2100, // MOVS r1, #0
		0x6001, // STR r1, [r0, #0]
	)

	b.PowerOn()
	test.ExpectSuccess(t, b.Run())

	test.ExpectEquality(t, b.SysTick.Expiries(), 1)
	test.ExpectEquality(t, b.Timer.Expiries(), 0)
	test.ExpectSuccess(t, b.Core.IdleCycles() > 0)

	cpu := b.Core.ISA().(*cortexm0.CPU)
	test.ExpectEquality(t, cpu.Active.Read(), uint32(cortexm0.SysTick))

	// the stacked return address is the instruction after the WFI
	test.ExpectEquality(t, b.Memory("ram").Register32(0x0ff8), uint32(0x114))
}

func TestCortexM0ExitCode(t *testing.T) {
	b, err := mcu.NewCortexM0(newPrefs(t), mcu.Options{})
	test.DemandSuccess(t, err)

	cortexm0Vectors(t, b)
	load16(t, b, 0x100,
		0x2040, // MOVS r0, #0x40
		0x0600, // LSLS r0, r0, #24
		0x2103, // MOVS r1, #3
		0x6001, // STR r1, [r0, #0]
	)

	b.PowerOn()
	err = b.Run()
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, strings.Contains(err.Error(), "monitor: exit code 3"))
}

func TestTopology(t *testing.T) {
	b, err := mcu.NewMSP430(newPrefs(t), mcu.Options{})
	test.DemandSuccess(t, err)

	top := b.Topology()
	test.ExpectEquality(t, top.CPU, b.Core.ISA().Name())
	test.DemandEquality(t, len(top.Bus.Targets), 6)
	test.ExpectEquality(t, top.Bus.Targets[0].Name, "wdt")
	test.ExpectEquality(t, top.Bus.Targets[5].Name, "vectors")
	test.ExpectEquality(t, top.Bus.Targets[5].String(), "vectors [0x00ff80 to 0x00ffff]")

	test.DemandEquality(t, len(top.IRQ), 2)
	test.ExpectEquality(t, top.IRQ[0], mcu.MSP430ResetLine)
	test.ExpectEquality(t, top.IRQ[1], mcu.MSP430TimerLine)
}
