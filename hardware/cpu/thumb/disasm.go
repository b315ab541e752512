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
	"fmt"
	"strings"
)

var aluMnemonics = [...]string{
	"ANDS", "EORS", "LSLS", "LSRS", "ASRS", "ADCS", "SBCS", "RORS",
	"TST", "RSBS", "CMP", "CMN", "ORRS", "MULS", "BICS", "MVNS",
}

var registerOffsetMnemonics = [...]string{
	"STR", "STRH", "STRB", "LDRSB", "LDR", "LDRH", "LDRB", "LDRSH",
}

func r(idx uint16) string {
	return RegisterName(int(idx))
}

func registerList(list uint16, extra string) string {
	var s []string
	for i := range 8 {
		if list&(1<<i) != 0 {
			s = append(s, r(uint16(i)))
		}
	}
	if extra != "" {
		s = append(s, extra)
	}
	return fmt.Sprintf("{%s}", strings.Join(s, ", "))
}

// Disassemble returns a description of the instruction at the address. The
// second halfword is only used by 32-bit instructions.
func Disassemble(addr uint32, opcode uint16, second uint16) string {
	pc := addr + 4

	switch {
	case Is32bit(opcode):
		switch {
		case opcode&0xf800 == 0xf000 && second&0xd000 == 0xd000:
			return fmt.Sprintf("BL %#08x", uint32(int32(pc)+blOffset(opcode, second)))
		case opcode&0xfff0 == 0xf380 && second&0xff00 == 0x8800:
			return fmt.Sprintf("MSR %d, %s", second&0x00ff, r(opcode&0x000f))
		case opcode == 0xf3ef && second&0xf000 == 0x8000:
			return fmt.Sprintf("MRS %s, %d", r((second&0x0f00)>>8), second&0x00ff)
		case opcode == 0xf3bf && second&0xfff0 == 0x8f40:
			return "DSB"
		case opcode == 0xf3bf && second&0xfff0 == 0x8f50:
			return "DMB"
		case opcode == 0xf3bf && second&0xfff0 == 0x8f60:
			return "ISB"
		}
		return "UNDEFINED"

	case opcode&0xf800 == 0xe000:
		offset := int32(uint32(opcode&0x07ff)<<21) >> 20
		return fmt.Sprintf("B %#08x", uint32(int32(pc)+offset))

	case opcode&0xf000 == 0xd000:
		cond := (opcode & 0x0f00) >> 8
		switch cond {
		case 0b1110:
			return fmt.Sprintf("UDF #%d", opcode&0x00ff)
		case 0b1111:
			return fmt.Sprintf("SVC #%d", opcode&0x00ff)
		}
		offset := int32(int8(opcode&0x00ff)) << 1
		return fmt.Sprintf("B%s %#08x", conditionMnemonics[cond], uint32(int32(pc)+offset))

	case opcode&0xf000 == 0xc000:
		base := (opcode & 0x0700) >> 8
		if opcode&0x0800 == 0x0800 {
			return fmt.Sprintf("LDM %s!, %s", r(base), registerList(opcode&0x00ff, ""))
		}
		return fmt.Sprintf("STM %s!, %s", r(base), registerList(opcode&0x00ff, ""))

	case opcode&0xf000 == 0xb000:
		return disassembleMiscellaneous(opcode)

	case opcode&0xf000 == 0xa000:
		if opcode&0x0800 == 0x0800 {
			return fmt.Sprintf("ADD %s, sp, #%d", r((opcode&0x0700)>>8), (opcode&0x00ff)<<2)
		}
		return fmt.Sprintf("ADR %s, %#08x", r((opcode&0x0700)>>8), (pc&^0x03)+uint32(opcode&0x00ff)<<2)

	case opcode&0xf000 == 0x9000:
		m := "STR"
		if opcode&0x0800 == 0x0800 {
			m = "LDR"
		}
		return fmt.Sprintf("%s %s, [sp, #%d]", m, r((opcode&0x0700)>>8), (opcode&0x00ff)<<2)

	case opcode&0xf000 == 0x8000:
		m := "STRH"
		if opcode&0x0800 == 0x0800 {
			m = "LDRH"
		}
		return fmt.Sprintf("%s %s, [%s, #%d]", m, r(opcode&0x0007), r((opcode&0x0038)>>3), ((opcode&0x07c0)>>6)<<1)

	case opcode&0xe000 == 0x6000:
		m := "STR"
		if opcode&0x0800 == 0x0800 {
			m = "LDR"
		}
		offset := (opcode & 0x07c0) >> 6
		if opcode&0x1000 == 0x1000 {
			m += "B"
		} else {
			offset <<= 2
		}
		return fmt.Sprintf("%s %s, [%s, #%d]", m, r(opcode&0x0007), r((opcode&0x0038)>>3), offset)

	case opcode&0xf000 == 0x5000:
		return fmt.Sprintf("%s %s, [%s, %s]", registerOffsetMnemonics[(opcode&0x0e00)>>9],
			r(opcode&0x0007), r((opcode&0x0038)>>3), r((opcode&0x01c0)>>6))

	case opcode&0xf800 == 0x4800:
		return fmt.Sprintf("LDR %s, [pc, #%d]", r((opcode&0x0700)>>8), (opcode&0x00ff)<<2)

	case opcode&0xfc00 == 0x4400:
		src := r((opcode & 0x0078) >> 3)
		dest := r((opcode&0x0080)>>4 | opcode&0x0007)
		switch (opcode & 0x0300) >> 8 {
		case 0b00:
			return fmt.Sprintf("ADD %s, %s", dest, src)
		case 0b01:
			return fmt.Sprintf("CMP %s, %s", dest, src)
		case 0b10:
			return fmt.Sprintf("MOV %s, %s", dest, src)
		}
		if opcode&0x0080 == 0x0080 {
			return fmt.Sprintf("BLX %s", src)
		}
		return fmt.Sprintf("BX %s", src)

	case opcode&0xfc00 == 0x4000:
		op := (opcode & 0x03c0) >> 6
		if op == aluRSB {
			return fmt.Sprintf("RSBS %s, %s, #0", r(opcode&0x0007), r((opcode&0x0038)>>3))
		}
		return fmt.Sprintf("%s %s, %s", aluMnemonics[op], r(opcode&0x0007), r((opcode&0x0038)>>3))

	case opcode&0xe000 == 0x2000:
		m := [...]string{"MOVS", "CMP", "ADDS", "SUBS"}[(opcode&0x1800)>>11]
		return fmt.Sprintf("%s %s, #%d", m, r((opcode&0x0700)>>8), opcode&0x00ff)

	case opcode&0xf800 == 0x1800:
		m := "ADDS"
		if opcode&0x0200 == 0x0200 {
			m = "SUBS"
		}
		operand := r((opcode & 0x01c0) >> 6)
		if opcode&0x0400 == 0x0400 {
			operand = fmt.Sprintf("#%d", (opcode&0x01c0)>>6)
		}
		return fmt.Sprintf("%s %s, %s, %s", m, r(opcode&0x0007), r((opcode&0x0038)>>3), operand)
	}

	shift := (opcode & 0x07c0) >> 6
	if opcode&0x1800 == 0 && shift == 0 {
		return fmt.Sprintf("MOVS %s, %s", r(opcode&0x0007), r((opcode&0x0038)>>3))
	}
	m := [...]string{"LSLS", "LSRS", "ASRS"}[(opcode&0x1800)>>11]
	if shift == 0 {
		shift = 32
	}
	return fmt.Sprintf("%s %s, %s, #%d", m, r(opcode&0x0007), r((opcode&0x0038)>>3), shift)
}

func disassembleMiscellaneous(opcode uint16) string {
	src := r((opcode & 0x0038) >> 3)
	dest := r(opcode & 0x0007)

	switch {
	case opcode&0xff00 == 0xb000:
		if opcode&0x0080 == 0x0080 {
			return fmt.Sprintf("SUB sp, #%d", (opcode&0x007f)<<2)
		}
		return fmt.Sprintf("ADD sp, #%d", (opcode&0x007f)<<2)

	case opcode&0xff00 == 0xb200:
		m := [...]string{"SXTH", "SXTB", "UXTH", "UXTB"}[(opcode&0x00c0)>>6]
		return fmt.Sprintf("%s %s, %s", m, dest, src)

	case opcode&0xf600 == 0xb400:
		if opcode&0x0800 == 0x0800 {
			extra := ""
			if opcode&0x0100 == 0x0100 {
				extra = "pc"
			}
			return fmt.Sprintf("POP %s", registerList(opcode&0x00ff, extra))
		}
		extra := ""
		if opcode&0x0100 == 0x0100 {
			extra = "lr"
		}
		return fmt.Sprintf("PUSH %s", registerList(opcode&0x00ff, extra))

	case opcode == 0xb662:
		return "CPSIE i"
	case opcode == 0xb672:
		return "CPSID i"

	case opcode&0xff00 == 0xba00:
		switch (opcode & 0x00c0) >> 6 {
		case 0b00:
			return fmt.Sprintf("REV %s, %s", dest, src)
		case 0b01:
			return fmt.Sprintf("REV16 %s, %s", dest, src)
		case 0b11:
			return fmt.Sprintf("REVSH %s, %s", dest, src)
		}

	case opcode&0xff00 == 0xbe00:
		return fmt.Sprintf("BKPT #%d", opcode&0x00ff)

	case opcode == OpcodeNOP:
		return "NOP"
	case opcode == 0xbf10:
		return "YIELD"
	case opcode == OpcodeWFE:
		return "WFE"
	case opcode == OpcodeWFI:
		return "WFI"
	case opcode == 0xbf40:
		return "SEV"
	}

	return "UNDEFINED"
}
