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
	"fmt"
)

var singleMnemonics = [...]string{"RRC", "SWPB", "RRA", "SXT", "PUSH", "CALL", "RETI", "???"}

var doubleMnemonics = [...]string{
	0x4: "MOV", 0x5: "ADD", 0x6: "ADDC", 0x7: "SUBC",
	0x8: "SUB", 0x9: "CMP", 0xa: "DADD", 0xb: "BIT",
	0xc: "BIC", 0xd: "BIS", 0xe: "XOR", 0xf: "AND",
}

var jumpMnemonics = [...]string{"JNZ", "JZ", "JNC", "JC", "JN", "JGE", "JL", "JMP"}

// Disassemble returns a description of the instruction at the address. The
// instruction is read with debug transactions and does not advance time.
func (cpu *CPU) Disassemble(address uint32) string {
	pc := uint16(address)
	word := func() uint16 {
		var b [2]byte
		cpu.mem.ReadDebug(uint32(pc), b[:])
		pc += 2
		return binary.LittleEndian.Uint16(b[:])
	}

	opcode := word()

	switch opcode >> 13 {
	case 0:
		idx := (opcode & 0x0380) >> 7
		if idx == 6 {
			return "RETI"
		}
		src := cpu.disasmSource(opcode, &pc, word)
		return fmt.Sprintf("%s%s %s", singleMnemonics[idx], suffix(opcode), src)
	case 1:
		ofs := int32(opcode & 0x03ff)
		if ofs&0x0200 == 0x0200 {
			ofs -= 0x0400
		}
		target := uint16(int32(pc) + ofs*2)
		return fmt.Sprintf("%s %#04x", jumpMnemonics[(opcode&0x1c00)>>10], target)
	}

	src := cpu.disasmSource(opcode, &pc, word)
	dst := disasmDestination(opcode, &pc, word)
	return fmt.Sprintf("%s%s %s, %s", doubleMnemonics[opcode>>12], suffix(opcode), src, dst)
}

func suffix(opcode uint16) string {
	if opcode&0x0040 == 0x0040 {
		return ".B"
	}
	return ""
}

func (cpu *CPU) disasmSource(opcode uint16, pc *uint16, word func() uint16) string {
	as, reg := sourceMode(opcode)
	if isConstant(as, reg) {
		return fmt.Sprintf("#%d", int16(constantValue(as, reg)))
	}

	switch as {
	case 0:
		return RegisterName(reg)
	case 1:
		base := *pc
		ofs := word()
		switch reg {
		case PC:
			return fmt.Sprintf("%#04x", base+ofs)
		case SR:
			return fmt.Sprintf("&%#04x", ofs)
		}
		return fmt.Sprintf("%d(%s)", int16(ofs), RegisterName(reg))
	case 2:
		return fmt.Sprintf("@%s", RegisterName(reg))
	}

	if reg == PC {
		return fmt.Sprintf("#%#04x", word())
	}
	return fmt.Sprintf("@%s+", RegisterName(reg))
}

func disasmDestination(opcode uint16, pc *uint16, word func() uint16) string {
	reg := int(opcode & 0x000f)
	if opcode&0x0080 == 0 {
		return RegisterName(reg)
	}

	base := *pc
	ofs := word()
	switch reg {
	case PC:
		return fmt.Sprintf("%#04x", base+ofs)
	case SR:
		return fmt.Sprintf("&%#04x", ofs)
	}
	return fmt.Sprintf("%d(%s)", int16(ofs), RegisterName(reg))
}
