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

package thumb

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/fusedsim/fused/curated"
)

// Sentinal error patterns.
const (
	UndefinedInstruction = "thumb: undefined instruction %#04x at %#08x"
	UnalignedAccess      = "thumb: unaligned %d byte access at %#08x"
	InterworkingFault    = "thumb: branch to non-thumb address %#08x"
)

// Register indexes with special meaning.
const (
	SP = 13
	LR = 14
	PC = 15

	NumRegisters = 16
)

// Opcodes that the owning core handles itself.
const (
	OpcodeNOP uint16 = 0xbf00
	OpcodeWFE uint16 = 0xbf20
	OpcodeWFI uint16 = 0xbf30
)

// EPSRThumb is the thumb bit of the EPSR. It is always set on the Cortex-M0.
const EPSRThumb = 0x01000000

// SVCall is the exception number of the supervisor call.
const SVCall = 11

// bits of the CONTROL register.
const (
	controlNPRIV = 0x01
	controlSPSEL = 0x02
)

// CPU is the register file and execution state of the interpreter.
type CPU struct {
	hooks Hooks

	regs   [NumRegisters]uint32
	status status

	ipsr    uint32
	primask bool
	control uint32
	handler bool

	// the stack pointer that is not currently in R13
	spBanked uint32

	// an SVC instruction has been executed and the exception has not yet
	// been taken
	svcPending bool
}

// New is the preferred method of initialisation for the CPU type.
func New(hooks Hooks) *CPU {
	return &CPU{
		hooks: hooks,
	}
}

// Reset the CPU to the state following a reset exception. The stack pointer
// and program counter are the values read from the vector table.
func (cpu *CPU) Reset(sp uint32, pc uint32) {
	cpu.regs = [NumRegisters]uint32{}
	cpu.status = status{}
	cpu.ipsr = 0
	cpu.primask = false
	cpu.control = 0
	cpu.handler = false
	cpu.spBanked = 0
	cpu.svcPending = false

	cpu.regs[SP] = sp &^ 0x03
	cpu.regs[PC] = pc
}

func (cpu *CPU) String() string {
	s := strings.Builder{}
	for i := range cpu.regs {
		fmt.Fprintf(&s, "%s=%08x ", RegisterName(i), cpu.regs[i])
	}
	s.WriteString(cpu.status.String())
	return s.String()
}

// RegisterName returns the conventional name of the register.
func RegisterName(idx int) string {
	switch idx {
	case SP:
		return "sp"
	case LR:
		return "lr"
	case PC:
		return "pc"
	}
	if idx >= 0 && idx < SP {
		return fmt.Sprintf("r%d", idx)
	}
	return "invalid"
}

// Register returns the value of the register. The PC is the fetch address
// with the thumb bit.
func (cpu *CPU) Register(idx int) uint32 {
	return cpu.regs[idx&0x0f]
}

// SetRegister sets the value of the register. The two low bits of the stack
// pointer are always zero.
func (cpu *CPU) SetRegister(idx int, v uint32) {
	idx &= 0x0f
	if idx == SP {
		v &^= 0x03
	}
	cpu.regs[idx] = v
}

// PC returns the fetch address with the thumb bit.
func (cpu *CPU) PC() uint32 {
	return cpu.regs[PC]
}

// SetPC sets the fetch address. The thumb bit should be set.
func (cpu *CPU) SetPC(v uint32) {
	cpu.regs[PC] = v
}

// APSR returns the flags as they appear in the APSR.
func (cpu *CPU) APSR() uint32 {
	return cpu.status.value()
}

// SetAPSR sets the flags from an APSR or xPSR value. Other bits are ignored.
func (cpu *CPU) SetAPSR(v uint32) {
	cpu.status.set(v)
}

// IPSR returns the number of the active exception.
func (cpu *CPU) IPSR() uint32 {
	return cpu.ipsr
}

// SetIPSR sets the number of the active exception.
func (cpu *CPU) SetIPSR(v uint32) {
	cpu.ipsr = v & 0x3f
}

// XPSR returns the combined program status register.
func (cpu *CPU) XPSR() uint32 {
	return cpu.status.value() | EPSRThumb | cpu.ipsr
}

// PRIMASK returns true if configurable exceptions are masked.
func (cpu *CPU) PRIMASK() bool {
	return cpu.primask
}

// SetPRIMASK sets the exception mask.
func (cpu *CPU) SetPRIMASK(v bool) {
	cpu.primask = v
}

// Handler returns true if the CPU is in handler mode.
func (cpu *CPU) Handler() bool {
	return cpu.handler
}

// SetHandler sets handler mode (true) or thread mode (false).
func (cpu *CPU) SetHandler(v bool) {
	cpu.handler = v
}

// MainStack returns true if R13 is the main stack pointer.
func (cpu *CPU) MainStack() bool {
	return cpu.control&controlSPSEL == 0
}

// UseMainStack makes the main stack pointer the active stack pointer.
func (cpu *CPU) UseMainStack() {
	if cpu.MainStack() {
		return
	}
	cpu.regs[SP], cpu.spBanked = cpu.spBanked, cpu.regs[SP]
	cpu.control &^= controlSPSEL
}

// UseProcessStack makes the process stack pointer the active stack pointer.
func (cpu *CPU) UseProcessStack() {
	if !cpu.MainStack() {
		return
	}
	cpu.regs[SP], cpu.spBanked = cpu.spBanked, cpu.regs[SP]
	cpu.control |= controlSPSEL
}

func (cpu *CPU) msp() uint32 {
	if cpu.MainStack() {
		return cpu.regs[SP]
	}
	return cpu.spBanked
}

func (cpu *CPU) psp() uint32 {
	if cpu.MainStack() {
		return cpu.spBanked
	}
	return cpu.regs[SP]
}

func (cpu *CPU) setMSP(v uint32) {
	if cpu.MainStack() {
		cpu.regs[SP] = v &^ 0x03
	} else {
		cpu.spBanked = v &^ 0x03
	}
}

func (cpu *CPU) setPSP(v uint32) {
	if cpu.MainStack() {
		cpu.spBanked = v &^ 0x03
	} else {
		cpu.regs[SP] = v &^ 0x03
	}
}

// TakeSVC returns true if an SVC instruction has been executed since the
// last call.
func (cpu *CPU) TakeSVC() bool {
	p := cpu.svcPending
	cpu.svcPending = false
	return p
}

// address of the executing instruction.
func (cpu *CPU) instructionAddress() uint32 {
	return (cpu.regs[PC] &^ 0x01) - 4
}

// read a register as an operand. the PC reads as the word aligned address of
// the executing instruction plus four.
func (cpu *CPU) read(idx uint16) uint32 {
	if idx == PC {
		return cpu.regs[PC] &^ 0x01
	}
	return cpu.regs[idx]
}

// write a register that is not the PC.
func (cpu *CPU) write(idx uint16, v uint32) {
	if idx == SP {
		v &^= 0x03
	}
	cpu.regs[idx] = v
}

// branch to the address without interworking.
func (cpu *CPU) branch(addr uint32) {
	cpu.regs[PC] = addr | 0x01
	cpu.hooks.BranchTaken()
}

// branch to the address with interworking. in handler mode an EXC_RETURN
// value causes an exception return.
func (cpu *CPU) branchExchange(addr uint32) error {
	if cpu.handler && addr&0xf0000000 == 0xf0000000 {
		return cpu.hooks.ExceptionReturn(addr)
	}
	if addr&0x01 == 0 {
		return curated.Errorf(InterworkingFault, addr)
	}
	cpu.regs[PC] = addr
	cpu.hooks.BranchTaken()
	return nil
}

func (cpu *CPU) read32(addr uint32) (uint32, error) {
	if addr&0x03 != 0 {
		return 0, curated.Errorf(UnalignedAccess, 4, addr)
	}
	var b [4]byte
	if err := cpu.hooks.ReadMemory(addr, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func (cpu *CPU) read16(addr uint32) (uint16, error) {
	if addr&0x01 != 0 {
		return 0, curated.Errorf(UnalignedAccess, 2, addr)
	}
	var b [2]byte
	if err := cpu.hooks.ReadMemory(addr, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func (cpu *CPU) read8(addr uint32) (uint8, error) {
	var b [1]byte
	if err := cpu.hooks.ReadMemory(addr, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (cpu *CPU) write32(addr uint32, v uint32) error {
	if addr&0x03 != 0 {
		return curated.Errorf(UnalignedAccess, 4, addr)
	}
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return cpu.hooks.WriteMemory(addr, b[:])
}

func (cpu *CPU) write16(addr uint32, v uint16) error {
	if addr&0x01 != 0 {
		return curated.Errorf(UnalignedAccess, 2, addr)
	}
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return cpu.hooks.WriteMemory(addr, b[:])
}

func (cpu *CPU) write8(addr uint32, v uint8) error {
	return cpu.hooks.WriteMemory(addr, []byte{v})
}
