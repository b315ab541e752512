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

package msp430

import (
	"encoding/binary"
	"testing"

	"github.com/fusedsim/fused/curated"
	"github.com/fusedsim/fused/hardware/bus"
	"github.com/fusedsim/fused/hardware/interrupts"
	"github.com/fusedsim/fused/hardware/memory"
	"github.com/fusedsim/fused/hardware/sim"
	"github.com/fusedsim/fused/test"
)

const period = 125 * sim.Nanosecond

type harness struct {
	kernel *sim.Kernel
	mem    *memory.Target
	arb    *interrupts.Arbiter
	cpu    *CPU
}

func newHarness(t *testing.T, opts ...memory.Option) *harness {
	t.Helper()

	h := &harness{
		kernel: sim.NewKernel(),
		mem:    memory.NewTarget("ram", 0, 0xffff, opts...),
		arb:    interrupts.NewArbiter("arb", 37),
	}

	r, err := bus.NewRouter(0, h.mem)
	test.DemandSuccess(t, err)

	in := bus.NewInitiator("msp430", h.kernel, r)
	h.cpu = NewCPU("msp430", h.kernel, in, sim.NewClock("mclk", period), h.arb)

	return h
}

// putInstructions stores words starting at the origin and returns the address
// following the last word.
func (h *harness) putInstructions(origin uint16, words ...uint16) uint16 {
	for _, w := range words {
		h.mem.SetRegister16(uint32(origin), w)
		origin += 2
	}
	return origin
}

func (h *harness) word(addr uint16) uint16 {
	return h.mem.Register16(uint32(addr))
}

func (h *harness) step(t *testing.T) {
	t.Helper()
	if err := h.cpu.Step(); err != nil {
		t.Fatal(err)
	}
}

// run sets the program counter and clears the status register.
func (h *harness) run(pc uint16) {
	h.cpu.SetRegister(PC, pc)
	h.cpu.SetRegister(SR, 0)
}

func TestPowerOnReset(t *testing.T) {
	h := newHarness(t)
	h.putInstructions(0xfffc, 0x3000, 0x2000)

	for i := 4; i < NumRegisters; i++ {
		h.cpu.SetRegister(i, 0xffff)
	}

	test.DemandSuccess(t, h.cpu.PowerOnReset())
	test.ExpectEquality(t, h.cpu.Register(PC), uint16(0x2000))
	test.ExpectEquality(t, h.cpu.Register(SP), uint16(0x3000))
	test.ExpectEquality(t, h.cpu.Status(), CPUOFF)
	test.ExpectSuccess(t, h.cpu.Sleeping())
	for i := 4; i < NumRegisters; i++ {
		test.ExpectEquality(t, h.cpu.Register(i), uint16(0), RegisterName(i))
	}
}

func TestMovAdd(t *testing.T) {
	h := newHarness(t)
	h.putInstructions(0x4400,
		0x4225, // MOV #4, R5
		0x5225, // ADD #4, R5
	)
	h.run(0x4400)

	h.step(t)
	test.ExpectEquality(t, h.cpu.Register(5), uint16(4))
	h.step(t)
	test.ExpectEquality(t, h.cpu.Register(5), uint16(8))
	test.ExpectFailure(t, h.cpu.flag(Z))
	test.ExpectFailure(t, h.cpu.flag(C))
	test.ExpectEquality(t, h.cpu.Register(PC), uint16(0x4404))
	test.ExpectEquality(t, h.cpu.Status().String(), "v--opgnzc")
}

func TestSubtract(t *testing.T) {
	h := newHarness(t)
	h.putInstructions(0x4400,
		0x4315, // MOV #1, R5
		0x8315, // SUB #1, R5
		0x4315, // MOV #1, R5
		0x9325, // CMP #2, R5
	)
	h.run(0x4400)

	h.step(t)
	h.step(t)
	test.ExpectEquality(t, h.cpu.Register(5), uint16(0))
	test.ExpectSuccess(t, h.cpu.flag(Z))
	test.ExpectSuccess(t, h.cpu.flag(C))
	test.ExpectFailure(t, h.cpu.flag(N))

	h.step(t)
	h.step(t)
	test.ExpectEquality(t, h.cpu.Register(5), uint16(1))
	test.ExpectFailure(t, h.cpu.flag(Z))
	test.ExpectFailure(t, h.cpu.flag(C))
	test.ExpectSuccess(t, h.cpu.flag(N))
	test.ExpectFailure(t, h.cpu.flag(V))
}

func TestByteRegisterWrite(t *testing.T) {
	h := newHarness(t)
	h.putInstructions(0x4400,
		0x4375, // MOV.B #-1, R5
	)
	h.run(0x4400)
	h.cpu.SetRegister(5, 0x1234)

	h.step(t)
	test.ExpectEquality(t, h.cpu.Register(5), uint16(0x00ff))
}

func TestJumps(t *testing.T) {
	h := newHarness(t)
	h.putInstructions(0x4400,
		0x3fff, // JMP $
		0x2001, // JNZ $+4
	)
	h.run(0x4400)

	now := h.kernel.Now()
	h.step(t)
	test.ExpectEquality(t, h.cpu.Register(PC), uint16(0x4400))
	test.ExpectEquality(t, h.kernel.Now()-now, period)

	h.cpu.SetRegister(PC, 0x4402)
	h.step(t)
	test.ExpectEquality(t, h.cpu.Register(PC), uint16(0x4406))

	// not taken
	h.cpu.SetRegister(PC, 0x4402)
	h.cpu.setFlag(Z, true)
	h.step(t)
	test.ExpectEquality(t, h.cpu.Register(PC), uint16(0x4404))
}

func TestProgramCounterDestinationCycles(t *testing.T) {
	h := newHarness(t)
	h.putInstructions(0x4400,
		0x4582, 0x0002, // MOV R5, &0x0002
		0x4582, 0x0000, // MOV R5, &0x0000
		0x4500, // MOV R5, PC
	)
	h.run(0x4400)
	h.cpu.SetRegister(5, 0x4500)

	now := h.kernel.Now()
	h.step(t)
	absolute := h.kernel.Now() - now

	// an absolute destination of zero is not the program counter
	now = h.kernel.Now()
	h.step(t)
	test.ExpectEquality(t, h.kernel.Now()-now, absolute)

	now = h.kernel.Now()
	h.step(t)
	test.ExpectEquality(t, h.kernel.Now()-now, 2*period)
	test.ExpectEquality(t, h.cpu.Register(PC), uint16(0x4500))
}

func TestStackInstructions(t *testing.T) {
	h := newHarness(t)
	h.putInstructions(0x4400,
		0x1205,         // PUSH R5
		0x12b0, 0x5000, // CALL #0x5000
	)
	h.putInstructions(0x5000,
		0x4130, // MOV @SP+, PC (RET)
	)
	h.run(0x4400)
	h.cpu.SetRegister(SP, 0x3000)
	h.cpu.SetRegister(5, 0xcafe)

	now := h.kernel.Now()
	h.step(t)
	test.ExpectEquality(t, h.cpu.Register(SP), uint16(0x2ffe))
	test.ExpectEquality(t, h.word(0x2ffe), uint16(0xcafe))
	test.ExpectEquality(t, h.kernel.Now()-now, period)

	now = h.kernel.Now()
	h.step(t)
	test.ExpectEquality(t, h.cpu.Register(PC), uint16(0x5000))
	test.ExpectEquality(t, h.cpu.Register(SP), uint16(0x2ffc))
	test.ExpectEquality(t, h.word(0x2ffc), uint16(0x4406))
	test.ExpectEquality(t, h.kernel.Now()-now, period)

	// MOV with the program counter as the destination costs two extra cycles
	now = h.kernel.Now()
	h.step(t)
	test.ExpectEquality(t, h.cpu.Register(PC), uint16(0x4406))
	test.ExpectEquality(t, h.cpu.Register(SP), uint16(0x2ffe))
	test.ExpectEquality(t, h.kernel.Now()-now, 2*period)
}

func TestInvalidInstructions(t *testing.T) {
	h := newHarness(t)
	h.putInstructions(0x4400,
		0xa405,         // DADD R4, R5
		0x1380,         // unused single operand slot
		0x4583, 0x0000, // MOV R5, 0(R3)
	)
	h.run(0x4400)

	err := h.cpu.Step()
	test.ExpectSuccess(t, curated.Is(err, Unsupported))
	err = h.cpu.Step()
	test.ExpectSuccess(t, curated.Is(err, InvalidInstruction))
	err = h.cpu.Step()
	test.ExpectSuccess(t, curated.Is(err, InvalidDestination))
}

func TestInterrupt(t *testing.T) {
	h := newHarness(t)

	// vector for line 10 is 0xffea
	h.putInstructions(0xffea, 0x5000)
	h.putInstructions(0x5000, 0x1300) // RETI

	h.run(0x4400)
	h.cpu.SetRegister(SP, 0x3000)
	h.cpu.SetRegister(SR, uint16(GIE|C|N))
	for i := 4; i < NumRegisters; i++ {
		h.cpu.SetRegister(i, uint16(i*0x111))
	}
	before := h.cpu.regs

	line := h.arb.Connect(10)
	var ackStart, ackEnd sim.Time
	line.Ack.Posedge().Subscribe(func() {
		ackStart = h.kernel.Now()
		line.Request.Write(false)
	})
	line.Ack.Negedge().Subscribe(func() {
		ackEnd = h.kernel.Now()
	})

	line.Request.Write(true)

	taken, err := h.cpu.ExceptionCheck()
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, taken)

	test.ExpectEquality(t, h.cpu.Register(PC), uint16(0x5000))
	test.ExpectEquality(t, h.cpu.Register(SP), uint16(0x2ffc))
	test.ExpectEquality(t, h.word(0x2ffe), uint16(0x4400))
	test.ExpectEquality(t, h.word(0x2ffc), uint16(GIE|C|N))
	test.ExpectEquality(t, h.cpu.Status(), Status(0))
	test.ExpectEquality(t, ackEnd-ackStart, 2*period)
	test.ExpectFailure(t, h.arb.IRQ.Read())

	// return restores every register
	h.step(t)
	test.ExpectEquality(t, h.cpu.regs, before)
}

func TestInterruptRaisedDuringEntry(t *testing.T) {
	h := newHarness(t, memory.WithDelay(period))

	h.putInstructions(0xffea, 0x5000)
	h.putInstructions(0xfffa, 0x6000)

	h.run(0x4400)
	h.cpu.SetRegister(SP, 0x3000)
	h.cpu.SetRegister(SR, uint16(GIE))

	var ack10, ack2 bool
	low := h.arb.Connect(10)
	low.Ack.Posedge().Subscribe(func() {
		ack10 = true
		low.Request.Write(false)
	})
	high := h.arb.Connect(2)
	high.Ack.Posedge().Subscribe(func() {
		ack2 = true
	})

	low.Request.Write(true)

	// line 2 wins arbitration while the stack frame is being written
	h.kernel.After(period/2, func() { high.Request.Write(true) })

	taken, err := h.cpu.ExceptionCheck()
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, taken)
	test.ExpectEquality(t, h.cpu.Register(PC), uint16(0x5000))
	test.ExpectSuccess(t, ack10)
	test.ExpectFailure(t, ack2)

	// line 2 is still waiting to be serviced
	test.ExpectSuccess(t, h.arb.IRQ.Read())
	test.ExpectEquality(t, h.arb.Index.Read(), 2)
}

func TestInterruptMasking(t *testing.T) {
	h := newHarness(t)
	h.putInstructions(0xfffc, 0x6000) // line 1
	h.run(0x4400)
	h.cpu.SetRegister(SP, 0x3000)

	h.arb.Line(10).Request.Write(true)
	taken, err := h.cpu.ExceptionCheck()
	test.ExpectSuccess(t, err)
	test.ExpectFailure(t, taken)
	test.ExpectEquality(t, h.cpu.Register(SP), uint16(0x3000))

	// non-maskable
	h.arb.Line(1).Request.Write(true)
	taken, err = h.cpu.ExceptionCheck()
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, taken)
	test.ExpectEquality(t, h.cpu.Register(PC), uint16(0x6000))
}

func TestResetInterrupt(t *testing.T) {
	h := newHarness(t)
	h.putInstructions(0xfffc, 0x3000, 0x2000)
	test.DemandSuccess(t, h.cpu.PowerOnReset())
	h.cpu.regs[SR] |= uint16(SCG0 | GIE)

	h.arb.Line(0).Request.Write(true)
	taken, err := h.cpu.ExceptionCheck()
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, taken)
	test.ExpectEquality(t, h.cpu.Status(), SCG0)
	test.ExpectEquality(t, h.cpu.Register(PC), uint16(0x2000))
	test.ExpectEquality(t, h.cpu.Register(SP), uint16(0x3000))
	test.ExpectFailure(t, h.cpu.Sleeping())
}

func TestDebugRegisters(t *testing.T) {
	h := newHarness(t)
	h.cpu.regs[CG] = 0x1234

	test.ExpectEquality(t, h.cpu.ReadRegister(CG), uint32(0))
	test.ExpectEquality(t, h.cpu.ReadRegister(99), uint32(0))
	test.ExpectSuccess(t, h.cpu.WriteRegister(5, 0x10042))
	test.ExpectEquality(t, h.cpu.ReadRegister(5), uint32(0x0042))
	test.ExpectFailure(t, h.kernel.Stopped())

	err := h.cpu.WriteRegister(CG, 1)
	test.ExpectSuccess(t, curated.Is(err, ReadOnlyRegister))
	test.ExpectSuccess(t, h.kernel.Stopped())
}

func TestDisassemble(t *testing.T) {
	h := newHarness(t)
	h.putInstructions(0x4400,
		0x4225,         // MOV #4, R5
		0x4375,         // MOV.B #-1, R5
		0x5415, 0x0002, // ADD 2(R4), R5
		0x3fff,         // JMP $
		0x12b0, 0x5000, // CALL #0x5000
		0x1300,         // RETI
	)

	test.ExpectEquality(t, h.cpu.Disassemble(0x4400), "MOV #4, r5")
	test.ExpectEquality(t, h.cpu.Disassemble(0x4402), "MOV.B #-1, r5")
	test.ExpectEquality(t, h.cpu.Disassemble(0x4404), "ADD 2(r4), r5")
	test.ExpectEquality(t, h.cpu.Disassemble(0x4408), "JMP 0x4408")
	test.ExpectEquality(t, h.cpu.Disassemble(0x440a), "CALL #0x5000")
	test.ExpectEquality(t, h.cpu.Disassemble(0x440e), "RETI")
}

func TestStatusString(t *testing.T) {
	test.ExpectEquality(t, CPUOFF.String(), "v--oPgnzc")
	test.ExpectEquality(t, (GIE | Z | SCG1).String(), "v1-opGnZc")
}

func TestLittleEndian(t *testing.T) {
	h := newHarness(t)
	h.putInstructions(0x100, 0xbeef)
	b := h.mem.Peek(0x100, 2)
	test.ExpectEquality(t, binary.LittleEndian.Uint16(b), uint16(0xbeef))
	test.ExpectEquality(t, b[0], uint8(0xef))
}
