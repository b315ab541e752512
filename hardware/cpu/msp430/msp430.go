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
	"fmt"
	"strings"

	"github.com/fusedsim/fused/curated"
	"github.com/fusedsim/fused/hardware/bus"
	"github.com/fusedsim/fused/hardware/core"
	"github.com/fusedsim/fused/hardware/interrupts"
	"github.com/fusedsim/fused/hardware/sim"
	"github.com/fusedsim/fused/logger"
)

// Sentinal error patterns.
const (
	InvalidInstruction = "msp430: invalid instruction %#04x at %#04x"
	Unsupported        = "msp430: unsupported instruction %#04x at %#04x"
	InvalidRegister    = "msp430: invalid register index (%d)"
	ReadOnlyRegister   = "msp430: register %s is read only"
)

// Fixed addresses in the vector table.
const (
	ResetVector = 0xfffe
	VectorBase  = 0xfffe
)

// number of cycles the interrupt acknowledge is asserted for
const ackCycles = 2

// CPU is the MSP430 implementation of core.ISA.
type CPU struct {
	name   string
	kernel *sim.Kernel
	mem    *bus.Initiator
	clock  *sim.Clock
	arb    *interrupts.Arbiter

	// address from which the stack pointer is loaded on power-on
	stackVector uint16

	regs [NumRegisters]uint16

	// address of the instruction being executed
	lastPC uint16
}

var _ core.ISA = (*CPU)(nil)

// NewCPU is the preferred method of initialisation for the CPU type.
func NewCPU(name string, kernel *sim.Kernel, mem *bus.Initiator, clock *sim.Clock, arb *interrupts.Arbiter) *CPU {
	return &CPU{
		name:        name,
		kernel:      kernel,
		mem:         mem,
		clock:       clock,
		arb:         arb,
		stackVector: 0xfffc,
		regs:        [NumRegisters]uint16{SR: uint16(CPUOFF)},
	}
}

// SetStackVector sets the address from which the stack pointer is loaded on
// power-on.
func (cpu *CPU) SetStackVector(addr uint16) {
	cpu.stackVector = addr
}

func (cpu *CPU) String() string {
	s := strings.Builder{}
	for i := range cpu.regs {
		fmt.Fprintf(&s, "%s=%#04x ", RegisterName(i), cpu.regs[i])
	}
	s.WriteString(cpu.Status().String())
	return s.String()
}

// Name implements the core.ISA interface.
func (cpu *CPU) Name() string {
	return cpu.name
}

// Clock implements the core.ISA interface.
func (cpu *CPU) Clock() *sim.Clock {
	return cpu.clock
}

// Status returns the status register.
func (cpu *CPU) Status() Status {
	return Status(cpu.regs[SR])
}

func (cpu *CPU) flag(f Status) bool {
	return Status(cpu.regs[SR])&f == f
}

func (cpu *CPU) setFlag(f Status, v bool) {
	if v {
		cpu.regs[SR] |= uint16(f)
	} else {
		cpu.regs[SR] &^= uint16(f)
	}
}

// Register returns the value of a register without any special treatment of
// the constant generator.
func (cpu *CPU) Register(idx int) uint16 {
	return cpu.regs[idx&0xf]
}

// SetRegister sets the value of a register. The program counter is always
// even.
func (cpu *CPU) SetRegister(idx int, v uint16) {
	idx &= 0xf
	if idx == PC {
		v &^= 1
	}
	cpu.regs[idx] = v
}

// PowerOnReset implements the core.ISA interface. The CPU remains in the
// CPUOFF state until the reset interrupt (index zero) is taken.
func (cpu *CPU) PowerOnReset() error {
	cpu.regs = [NumRegisters]uint16{}
	cpu.regs[SR] = uint16(CPUOFF)

	pc, err := cpu.read16(ResetVector)
	if err != nil {
		return err
	}
	sp, err := cpu.read16(cpu.stackVector)
	if err != nil {
		return err
	}

	cpu.SetRegister(PC, pc)
	cpu.SetRegister(SP, sp)

	return nil
}

// Sleeping implements the core.ISA interface.
func (cpu *CPU) Sleeping() bool {
	return cpu.flag(CPUOFF)
}

// WakeEvents implements the core.ISA interface.
func (cpu *CPU) WakeEvents() []*sim.Event {
	return []*sim.Event{cpu.arb.IRQ.Changed(), cpu.arb.Index.Changed()}
}

// BreakpointAddress implements the core.ISA interface.
func (cpu *CPU) BreakpointAddress() (uint32, bool) {
	return uint32(cpu.regs[PC]), true
}

// NormaliseAddress implements the core.ISA interface.
func (cpu *CPU) NormaliseAddress(addr uint32) uint32 {
	return addr & 0xffff
}

func (cpu *CPU) waitCycles(n int) {
	cpu.kernel.Advance(cpu.clock.Cycles(n))
}

func (cpu *CPU) read16(addr uint16) (uint16, error) {
	return cpu.mem.Read16(uint32(addr))
}

func (cpu *CPU) read8(addr uint16) (uint8, error) {
	return cpu.mem.Read8(uint32(addr))
}

func (cpu *CPU) write16(addr uint16, v uint16) error {
	return cpu.mem.Write16(uint32(addr), v)
}

func (cpu *CPU) write8(addr uint16, v uint8) error {
	return cpu.mem.Write8(uint32(addr), v)
}

func (cpu *CPU) fetch() (uint16, error) {
	v, err := cpu.read16(cpu.regs[PC])
	cpu.regs[PC] += 2
	return v, err
}

func (cpu *CPU) push(v uint16) error {
	cpu.regs[SP] -= 2
	return cpu.write16(cpu.regs[SP], v)
}

func (cpu *CPU) pop() (uint16, error) {
	v, err := cpu.read16(cpu.regs[SP])
	cpu.regs[SP] += 2
	return v, err
}

// Step implements the core.ISA interface.
func (cpu *CPU) Step() error {
	cpu.lastPC = cpu.regs[PC]

	opcode, err := cpu.fetch()
	if err != nil {
		return err
	}

	switch opcode >> 13 {
	case 0:
		return cpu.executeSingleOperand(opcode)
	case 1:
		return cpu.executeJump(opcode)
	}
	return cpu.executeDoubleOperand(opcode)
}

// NumRegisters implements the core.ISA interface.
func (cpu *CPU) NumRegisters() int {
	return NumRegisters
}

// RegisterName implements the core.ISA interface.
func (cpu *CPU) RegisterName(idx int) string {
	return RegisterName(idx)
}

// ReadRegister implements the core.ISA interface. The constant generator
// always reads as zero.
func (cpu *CPU) ReadRegister(idx int) uint32 {
	if idx < 0 || idx >= NumRegisters {
		logger.Log(logger.Allow, cpu.name, curated.Errorf(InvalidRegister, idx))
		return 0
	}
	if idx == CG {
		return 0
	}
	return uint32(cpu.regs[idx])
}

// WriteRegister implements the core.ISA interface. Writing to the constant
// generator or to an invalid index stops the simulation.
func (cpu *CPU) WriteRegister(idx int, value uint32) error {
	var err error
	switch {
	case idx < 0 || idx >= NumRegisters:
		err = curated.Errorf(InvalidRegister, idx)
	case idx == CG:
		err = curated.Errorf(ReadOnlyRegister, RegisterName(idx))
	default:
		cpu.SetRegister(idx, uint16(value))
		return nil
	}

	logger.Log(logger.Allow, cpu.name, err)
	cpu.kernel.Stop(err)
	return err
}
