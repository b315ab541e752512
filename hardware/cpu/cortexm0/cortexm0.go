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

package cortexm0

import (
	"sync/atomic"

	"github.com/fusedsim/fused/curated"
	"github.com/fusedsim/fused/hardware/bus"
	"github.com/fusedsim/fused/hardware/core"
	"github.com/fusedsim/fused/hardware/cpu/thumb"
	"github.com/fusedsim/fused/hardware/interrupts"
	"github.com/fusedsim/fused/hardware/sim"
	"github.com/fusedsim/fused/logger"
)

// Sentinal error patterns.
const (
	ThumbModeLost          = "cortexm0: PC moved out of thumb mode (%#08x)"
	InvalidExceptionReturn = "cortexm0: invalid exception return (%#08x)"
	InvalidRegister        = "cortexm0: invalid register index (%d)"
)

// Index of the xPSR on the debug surface. Indexes below this are the core
// registers in the order used by the thumb package.
const XPSR = thumb.NumRegisters

// NumRegisters visible to the debug surface.
const NumRegisters = thumb.NumRegisters + 1

// CPU is the Cortex-M0 implementation of core.ISA.
type CPU struct {
	name   string
	kernel *sim.Kernel
	mem    *bus.Initiator
	clock  *sim.Clock

	systick *interrupts.Line
	nvic    *interrupts.Arbiter

	// start of the vector table
	romStart uint32

	thumb *thumb.CPU
	queue pipeline

	// set by the BranchTaken() hook during instruction execution
	taken bool

	sleeping bool

	// register file at the point of the most recent exception entry
	snapshot [NumRegisters]uint32

	// cycles consumed by the ConsumeCycles() hook
	idle atomic.Uint64

	// Active is the number of the exception being handled. Zero in thread
	// mode.
	Active *sim.Signal[uint32]

	// Returning is the number of the exception being returned from. It is
	// only non-zero between the exception return and the next exception
	// check.
	Returning *sim.Signal[uint32]
}

var _ core.ISA = (*CPU)(nil)
var _ core.Disassembler = (*CPU)(nil)
var _ core.IdleCounter = (*CPU)(nil)

// NewCPU is the preferred method of initialisation for the CPU type. The
// systick line and the nvic arbiter can be nil.
func NewCPU(name string, kernel *sim.Kernel, mem *bus.Initiator, clock *sim.Clock, systick *interrupts.Line, nvic *interrupts.Arbiter) *CPU {
	cpu := &CPU{
		name:      name,
		kernel:    kernel,
		mem:       mem,
		clock:     clock,
		systick:   systick,
		nvic:      nvic,
		Active:    sim.NewSignal(name+".active", uint32(0)),
		Returning: sim.NewSignal(name+".returning", uint32(0)),
	}
	cpu.thumb = thumb.New(&hooks{cpu: cpu})
	cpu.flush()
	return cpu
}

// SetROMStart sets the address of the vector table.
func (cpu *CPU) SetROMStart(addr uint32) {
	cpu.romStart = addr
}

func (cpu *CPU) String() string {
	return cpu.thumb.String()
}

// Thumb returns the interpreter.
func (cpu *CPU) Thumb() *thumb.CPU {
	return cpu.thumb
}

// Name implements the core.ISA interface.
func (cpu *CPU) Name() string {
	return cpu.name
}

// Clock implements the core.ISA interface.
func (cpu *CPU) Clock() *sim.Clock {
	return cpu.clock
}

// IdleCycles implements the core.IdleCounter interface.
func (cpu *CPU) IdleCycles() uint64 {
	return cpu.idle.Load()
}

// PowerOnReset implements the core.ISA interface. The stack pointer and the
// reset handler are loaded from the first two words of the vector table.
func (cpu *CPU) PowerOnReset() error {
	cpu.sleeping = false

	sp, err := cpu.mem.Read32(cpu.romStart)
	if err != nil {
		return err
	}
	pc, err := cpu.mem.Read32(cpu.romStart + 4)
	if err != nil {
		return err
	}

	cpu.thumb.Reset(sp, pc)
	cpu.flush()

	cpu.Active.Write(0)
	cpu.Returning.Write(0)

	return nil
}

// Sleeping implements the core.ISA interface.
func (cpu *CPU) Sleeping() bool {
	return cpu.sleeping
}

// WakeEvents implements the core.ISA interface.
func (cpu *CPU) WakeEvents() []*sim.Event {
	var ev []*sim.Event
	if cpu.systick != nil {
		ev = append(ev, cpu.systick.Request.Changed())
	}
	if cpu.nvic != nil {
		ev = append(ev, cpu.nvic.Index.Changed())
	}
	return ev
}

// nextAddress returns the address of the next instruction to be executed,
// taking into account the NOPs in a refilling pipeline.
func (cpu *CPU) nextAddress() uint32 {
	return (cpu.thumb.PC() &^ 0x01) - uint32(4-2*cpu.queue.bubbles)
}

// BreakpointAddress implements the core.ISA interface. The CPU is not at an
// instruction boundary while the pipeline is refilling.
func (cpu *CPU) BreakpointAddress() (uint32, bool) {
	return (cpu.thumb.PC() &^ 0x01) - 4, cpu.queue.bubbles == 0
}

// NormaliseAddress implements the core.ISA interface.
func (cpu *CPU) NormaliseAddress(addr uint32) uint32 {
	return addr &^ 0x01
}

// Step implements the core.ISA interface.
func (cpu *CPU) Step() error {
	pc := cpu.thumb.PC()
	if pc&0x01 == 0 {
		return curated.Errorf(ThumbModeLost, pc)
	}

	v, err := cpu.mem.Read16(pc &^ 0x01)
	if err != nil {
		return err
	}
	cpu.queue.push(v)

	opcode := cpu.queue.pop()
	cpu.taken = false

	switch opcode {
	case thumb.OpcodeWFE, thumb.OpcodeWFI:
		cpu.sleeping = true
		logger.Logf(logger.Allow, cpu.name, "sleeping at %#08x", (pc&^0x01)-4)
	default:
		if err := cpu.thumb.Execute(opcode); err != nil {
			return err
		}
	}

	if cpu.queue.bubbles > 0 {
		cpu.queue.bubbles--
	}

	if cpu.taken {
		cpu.flush()
	} else {
		cpu.thumb.SetPC(cpu.thumb.PC() + 2)
	}

	return nil
}

// Disassemble implements the core.Disassembler interface.
func (cpu *CPU) Disassemble(addr uint32) string {
	var b [4]byte
	cpu.mem.ReadDebug(addr&^0x01, b[:])
	opcode := uint16(b[0]) | uint16(b[1])<<8
	second := uint16(b[2]) | uint16(b[3])<<8
	return thumb.Disassemble(addr&^0x01, opcode, second)
}
