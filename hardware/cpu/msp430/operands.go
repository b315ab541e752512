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
	"github.com/fusedsim/fused/curated"
)

// InvalidDestination is returned for an indexed destination using the
// constant generator.
const InvalidDestination = "msp430: invalid destination register in opcode %#04x"

// operand is a decoded source or destination operand. If inMem is false then
// addr is a register index.
type operand struct {
	addr  uint16
	val   uint16
	inMem bool
	byte  bool

	// value was produced by the constant generator
	constant bool
}

// source addressing mode and register index.
func sourceMode(opcode uint16) (as uint8, reg int) {
	as = uint8(opcode&0x0030) >> 4
	if opcode&0xf000 == 0x1000 {
		reg = int(opcode & 0x000f)
	} else {
		reg = int(opcode&0x0f00) >> 8
	}
	return as, reg
}

func isConstant(as uint8, reg int) bool {
	return reg == CG || (reg == SR && as >= 2)
}

func constantValue(as uint8, reg int) uint16 {
	if reg == CG {
		if as == 3 {
			return 0xffff
		}
		return uint16(as)
	}
	if as == 2 {
		return 4
	}
	return 8
}

func (cpu *CPU) sourceOperand(opcode uint16) (operand, error) {
	as, reg := sourceMode(opcode)
	op := operand{byte: opcode&0x0040 == 0x0040}

	if isConstant(as, reg) {
		op.addr = uint16(reg)
		op.val = constantValue(as, reg)
		op.constant = true
		return op, nil
	}

	switch as {
	case 0:
		op.addr = uint16(reg)
	case 1:
		op.inMem = true
		switch reg {
		case PC:
			// symbolic
			op.addr = cpu.regs[PC]
			ofs, err := cpu.fetch()
			if err != nil {
				return op, err
			}
			op.addr += ofs
		case SR:
			// absolute
			a, err := cpu.fetch()
			if err != nil {
				return op, err
			}
			op.addr = a
		default:
			// indexed
			ofs, err := cpu.fetch()
			if err != nil {
				return op, err
			}
			op.addr = cpu.regs[reg] + ofs
		}
	case 2:
		op.inMem = true
		op.addr = cpu.regs[reg]
	case 3:
		op.inMem = true
		if reg == PC {
			// immediate
			op.addr = cpu.regs[PC]
			cpu.regs[PC] += 2
		} else {
			op.addr = cpu.regs[reg]
			if reg == SP || !op.byte {
				cpu.regs[reg] += 2
			} else {
				cpu.regs[reg]++
			}
		}
	}

	return op, cpu.load(&op)
}

func (cpu *CPU) destinationOperand(opcode uint16) (operand, error) {
	reg := int(opcode & 0x000f)
	op := operand{byte: opcode&0x0040 == 0x0040}

	if opcode&0x0080 == 0x0080 {
		op.inMem = true
		switch reg {
		case CG:
			return op, curated.Errorf(InvalidDestination, opcode)
		case PC:
			// symbolic
			op.addr = cpu.regs[PC]
			ofs, err := cpu.fetch()
			if err != nil {
				return op, err
			}
			op.addr += ofs
		case SR:
			// absolute
			a, err := cpu.fetch()
			if err != nil {
				return op, err
			}
			op.addr = a
		default:
			// indexed
			ofs, err := cpu.fetch()
			if err != nil {
				return op, err
			}
			op.addr = cpu.regs[reg] + ofs
		}
	} else {
		op.addr = uint16(reg)
	}

	// the destination of MOV is never read
	if opcode&0xf000 == 0x4000 {
		return op, nil
	}

	return op, cpu.load(&op)
}

func (cpu *CPU) load(op *operand) error {
	var err error
	if op.inMem {
		if op.byte {
			var v uint8
			v, err = cpu.read8(op.addr)
			op.val = uint16(v)
		} else {
			op.val, err = cpu.read16(op.addr)
		}
	} else {
		op.val = cpu.regs[op.addr&0xf]
		if op.byte {
			op.val &= 0x00ff
		}
	}
	return err
}

// writeback stores the value of the operand. A byte write to a register
// clears the upper byte of the register.
func (cpu *CPU) writeback(op operand) error {
	if op.inMem {
		if op.byte {
			return cpu.write8(op.addr, uint8(op.val))
		}
		return cpu.write16(op.addr, op.val)
	}

	// writes to the constant generator are discarded
	if op.constant || op.addr == CG {
		return nil
	}

	if op.byte {
		cpu.SetRegister(int(op.addr), op.val&0x00ff)
	} else {
		cpu.SetRegister(int(op.addr), op.val)
	}
	return nil
}
