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

func (cpu *CPU) executeJump(opcode uint16) error {
	ofs := int32(opcode & 0x03ff)
	if ofs&0x0200 == 0x0200 {
		ofs -= 0x0400
	}
	ofs *= 2

	var jump bool
	switch (opcode & 0x1c00) >> 10 {
	case 0: // JNZ
		jump = !cpu.flag(Z)
	case 1: // JZ
		jump = cpu.flag(Z)
	case 2: // JNC
		jump = !cpu.flag(C)
	case 3: // JC
		jump = cpu.flag(C)
	case 4: // JN
		jump = cpu.flag(N)
	case 5: // JGE
		jump = cpu.flag(N) == cpu.flag(V)
	case 6: // JL
		jump = cpu.flag(N) != cpu.flag(V)
	case 7: // JMP
		jump = true
	}

	if jump {
		cpu.regs[PC] = uint16(int32(cpu.regs[PC]) + ofs)
	}

	cpu.waitCycles(1)
	return nil
}

func (cpu *CPU) executeSingleOperand(opcode uint16) error {
	op, err := cpu.sourceOperand(opcode)
	if err != nil {
		return err
	}
	val := uint32(op.val)

	switch (opcode & 0x0380) >> 7 {
	case 0: // RRC
		res := val >> 1
		if cpu.flag(C) {
			if op.byte {
				res |= 0x80
			} else {
				res |= 0x8000
			}
		}
		cpu.setFlag(C, val&1 == 1)
		cpu.setFlag(V, false)
		cpu.setFlag(N, isNegative(res, op.byte))
		cpu.setFlag(Z, isZero(res, op.byte))
		op.val = uint16(res)
		return cpu.writeback(op)

	case 1: // SWPB
		op.val = op.val<<8 | op.val>>8
		return cpu.writeback(op)

	case 2: // RRA
		var res uint32
		if op.byte {
			res = val&0x80 | val>>1
		} else {
			res = val&0x8000 | val>>1
		}
		cpu.setFlag(C, val&1 == 1)
		cpu.setFlag(V, false)
		cpu.setFlag(N, isNegative(res, op.byte))
		cpu.setFlag(Z, isZero(res, op.byte))
		op.val = uint16(res)
		return cpu.writeback(op)

	case 3: // SXT
		if op.val&0x80 == 0x80 {
			op.val |= 0xff00
		} else {
			op.val &= 0x00ff
		}
		cpu.setFlag(C, !isZero(uint32(op.val), false))
		cpu.setFlag(V, false)
		cpu.setFlag(N, isNegative(uint32(op.val), false))
		cpu.setFlag(Z, isZero(uint32(op.val), false))
		op.byte = false
		if op.inMem {
			op.addr &^= 1
		}
		return cpu.writeback(op)

	case 4: // PUSH
		if !op.inMem {
			cpu.waitCycles(1)
		}
		cpu.regs[SP] -= 2
		op.addr = cpu.regs[SP]
		op.inMem = true
		op.byte = false
		return cpu.writeback(op)

	case 5: // CALL
		if err := cpu.push(cpu.regs[PC]); err != nil {
			return err
		}
		cpu.SetRegister(PC, op.val)
		if !op.inMem {
			cpu.waitCycles(2)
		} else {
			cpu.waitCycles(1)
			if opcode&0x000f == SR {
				cpu.waitCycles(1)
			}
		}
		return nil

	case 6: // RETI
		sr, err := cpu.pop()
		if err != nil {
			return err
		}
		cpu.regs[SR] = sr
		pc, err := cpu.pop()
		if err != nil {
			return err
		}
		cpu.SetRegister(PC, pc)
		cpu.waitCycles(1)
		return nil
	}

	return curated.Errorf(InvalidInstruction, opcode, cpu.lastPC)
}

func (cpu *CPU) executeDoubleOperand(opcode uint16) error {
	src, err := cpu.sourceOperand(opcode)
	if err != nil {
		return err
	}
	dst, err := cpu.destinationOperand(opcode)
	if err != nil {
		return err
	}

	b := src.byte
	s := uint32(src.val)
	d := uint32(dst.val)

	// extra cycles when the program counter is the destination register
	if !dst.inMem && dst.addr == PC {
		if as, reg := sourceMode(opcode); as == 3 && reg == PC {
			cpu.waitCycles(1)
		} else {
			cpu.waitCycles(2)
		}
	}

	switch opcode >> 12 {
	case 0x4: // MOV
		dst.val = src.val
		return cpu.writeback(dst)

	case 0x5: // ADD
		res := s + d
		cpu.setFlag(Z, isZero(res, b))
		cpu.setFlag(N, isNegative(res, b))
		cpu.setFlag(C, isCarry(s, d, false, b))
		cpu.setFlag(V, isOverflow(s, d, false, b))
		dst.val = uint16(res)
		return cpu.writeback(dst)

	case 0x6: // ADDC
		c := cpu.flag(C)
		res := s + d
		if c {
			res++
		}
		cpu.setFlag(Z, isZero(res, b))
		cpu.setFlag(N, isNegative(res, b))
		cpu.setFlag(V, isOverflow(s, d, c, b))
		cpu.setFlag(C, isCarry(s, d, c, b))
		dst.val = uint16(res)
		return cpu.writeback(dst)

	case 0x7: // SUBC
		c := cpu.flag(C)
		res := d + ^s
		if c {
			res++
		}
		cpu.setFlag(Z, isZero(res, b))
		cpu.setFlag(N, isNegative(res, b))
		cpu.setFlag(V, isOverflow(d, ^s, c, b))
		cpu.setFlag(C, isCarry(d, ^s, c, b))
		dst.val = uint16(res)
		return cpu.writeback(dst)

	case 0x8, 0x9: // SUB, CMP
		res := d + ^s + 1
		cpu.setFlag(Z, isZero(res, b))
		cpu.setFlag(N, isNegative(res, b))
		cpu.setFlag(V, isOverflow(d, ^s, true, b))
		cpu.setFlag(C, isCarry(d, ^s, true, b))
		if opcode>>12 == 0x9 {
			return nil
		}
		dst.val = uint16(res)
		return cpu.writeback(dst)

	case 0xa: // DADD
		return curated.Errorf(Unsupported, opcode, cpu.lastPC)

	case 0xb: // BIT
		res := s & d
		cpu.setFlag(Z, isZero(res, b))
		cpu.setFlag(N, isNegative(res, b))
		cpu.setFlag(V, false)
		cpu.setFlag(C, !isZero(res, b))
		return nil

	case 0xc: // BIC
		dst.val &^= src.val
		return cpu.writeback(dst)

	case 0xd: // BIS
		dst.val |= src.val
		return cpu.writeback(dst)

	case 0xe: // XOR
		res := s ^ d
		cpu.setFlag(Z, isZero(res, b))
		cpu.setFlag(N, isNegative(res, b))
		cpu.setFlag(V, isNegative(s, b) && isNegative(d, b))
		cpu.setFlag(C, !isZero(res, b))
		dst.val = uint16(res)
		return cpu.writeback(dst)

	case 0xf: // AND
		res := s & d
		cpu.setFlag(Z, isZero(res, b))
		cpu.setFlag(N, isNegative(res, b))
		cpu.setFlag(V, false)
		cpu.setFlag(C, !isZero(res, b))
		dst.val = uint16(res)
		return cpu.writeback(dst)
	}

	return curated.Errorf(InvalidInstruction, opcode, cpu.lastPC)
}
