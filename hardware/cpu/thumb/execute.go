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
	"math/bits"

	"github.com/fusedsim/fused/curated"
	"github.com/fusedsim/fused/logger"
)

// ALU operations of format 4.
const (
	aluAND = iota
	aluEOR
	aluLSL
	aluLSR
	aluASR
	aluADC
	aluSBC
	aluROR
	aluTST
	aluRSB
	aluCMP
	aluCMN
	aluORR
	aluMUL
	aluBIC
	aluMVN
)

// Is32bit returns true if the opcode is the first half of a 32-bit
// instruction.
func Is32bit(opcode uint16) bool {
	return opcode&0xf800 >= 0xe800
}

// Execute the instruction. The PC register must be the address of the
// instruction plus four with the thumb bit set. The PC is not advanced.
func (cpu *CPU) Execute(opcode uint16) error {
	// working backwards up the table in "A5.2 16-bit Thumb instruction
	// encoding" in "ARMv6-M Architecture Reference Manual"
	switch {
	case Is32bit(opcode):
		// BL, MSR, MRS and the barriers
		return cpu.execute32bit(opcode)
	case opcode&0xf800 == 0xe000:
		// format 18 - Unconditional branch
		cpu.executeUnconditionalBranch(opcode)
		return nil
	case opcode&0xf000 == 0xd000:
		// format 16 - Conditional branch and format 17 - Software interrupt
		return cpu.executeConditionalBranch(opcode)
	case opcode&0xf000 == 0xc000:
		// format 15 - Multiple load/store
		return cpu.executeMultipleLoadStore(opcode)
	case opcode&0xf000 == 0xb000:
		// formats 13 and 14 and the miscellaneous instructions
		return cpu.executeMiscellaneous(opcode)
	case opcode&0xf000 == 0xa000:
		// format 12 - Load address
		cpu.executeLoadAddress(opcode)
		return nil
	case opcode&0xf000 == 0x9000:
		// format 11 - SP-relative load/store
		return cpu.executeSPRelativeLoadStore(opcode)
	case opcode&0xf000 == 0x8000:
		// format 10 - Load/store halfword
		return cpu.executeLoadStoreHalfword(opcode)
	case opcode&0xe000 == 0x6000:
		// format 9 - Load/store with immediate offset
		return cpu.executeLoadStoreWithImmOffset(opcode)
	case opcode&0xf000 == 0x5000:
		// formats 7 and 8 - Load/store with register offset
		return cpu.executeLoadStoreWithRegisterOffset(opcode)
	case opcode&0xf800 == 0x4800:
		// format 6 - PC-relative load
		return cpu.executePCRelativeLoad(opcode)
	case opcode&0xfc00 == 0x4400:
		// format 5 - Hi register operations/branch exchange
		return cpu.executeHiRegisterOps(opcode)
	case opcode&0xfc00 == 0x4000:
		// format 4 - ALU operations
		cpu.executeALUOperations(opcode)
		return nil
	case opcode&0xe000 == 0x2000:
		// format 3 - Move/compare/add/subtract immediate
		cpu.executeMovCmpAddSubImm(opcode)
		return nil
	case opcode&0xf800 == 0x1800:
		// format 2 - Add/subtract
		cpu.executeAddSubtract(opcode)
		return nil
	}

	// format 1 - Move shifted register
	cpu.executeMoveShiftedRegister(opcode)
	return nil
}

func (cpu *CPU) undefined(opcode uint16) error {
	return curated.Errorf(UndefinedInstruction, opcode, cpu.instructionAddress())
}

// addWithCarry sets all four flags for a + b + c.
func (cpu *CPU) addWithCarry(a, b, c uint32) uint32 {
	cpu.status.isCarry(a, b, c)
	cpu.status.isOverflow(a, b, c)
	r := a + b + c
	cpu.status.isZero(r)
	cpu.status.isNegative(r)
	return r
}

func (cpu *CPU) setNZ(r uint32) {
	cpu.status.isZero(r)
	cpu.status.isNegative(r)
}

func (cpu *CPU) carryIn() uint32 {
	if cpu.status.carry {
		return 1
	}
	return 0
}

func (cpu *CPU) executeMoveShiftedRegister(opcode uint16) {
	op := (opcode & 0x1800) >> 11
	shift := uint32((opcode & 0x07c0) >> 6)
	srcReg := (opcode & 0x0038) >> 3
	destReg := opcode & 0x0007

	v := cpu.regs[srcReg]
	var res uint32

	switch op {
	case 0b00:
		// LSL. a shift of zero is MOVS and the carry flag is unaffected
		if shift == 0 {
			res = v
		} else {
			cpu.status.carry = v&(uint32(1)<<(32-shift)) != 0
			res = v << shift
		}
	case 0b01:
		// LSR. a shift of zero is encoded for a shift of 32
		if shift == 0 {
			shift = 32
		}
		cpu.status.carry = v&(uint32(1)<<(shift-1)) != 0
		res = v >> shift
	case 0b10:
		// ASR. a shift of zero is encoded for a shift of 32
		if shift == 0 {
			shift = 32
		}
		cpu.status.carry = v&(uint32(1)<<(shift-1)) != 0
		res = uint32(int32(v) >> shift)
	}

	cpu.regs[destReg] = res
	cpu.setNZ(res)
}

func (cpu *CPU) executeAddSubtract(opcode uint16) {
	immediate := opcode&0x0400 == 0x0400
	subtract := opcode&0x0200 == 0x0200
	imm := (opcode & 0x01c0) >> 6
	srcReg := (opcode & 0x0038) >> 3
	destReg := opcode & 0x0007

	// value to work with is either an immediate value or is in a register
	val := uint32(imm)
	if !immediate {
		val = cpu.regs[imm]
	}

	if subtract {
		cpu.regs[destReg] = cpu.addWithCarry(cpu.regs[srcReg], ^val, 1)
	} else {
		cpu.regs[destReg] = cpu.addWithCarry(cpu.regs[srcReg], val, 0)
	}
}

func (cpu *CPU) executeMovCmpAddSubImm(opcode uint16) {
	op := (opcode & 0x1800) >> 11
	destReg := (opcode & 0x0700) >> 8
	imm := uint32(opcode & 0x00ff)

	switch op {
	case 0b00:
		cpu.regs[destReg] = imm
		cpu.setNZ(imm)
	case 0b01:
		cpu.addWithCarry(cpu.regs[destReg], ^imm, 1)
	case 0b10:
		cpu.regs[destReg] = cpu.addWithCarry(cpu.regs[destReg], imm, 0)
	case 0b11:
		cpu.regs[destReg] = cpu.addWithCarry(cpu.regs[destReg], ^imm, 1)
	}
}

// shift by the value in the bottom byte of a register. "A6.7.36 LSL
// (register)" and the equivalents in "ARMv6-M Architecture Reference Manual"
func (cpu *CPU) shiftRegister(op uint16, v uint32, amount uint32) uint32 {
	amount &= 0xff
	if amount == 0 {
		return v
	}

	switch op {
	case aluLSL:
		switch {
		case amount < 32:
			cpu.status.carry = v&(uint32(1)<<(32-amount)) != 0
			return v << amount
		case amount == 32:
			cpu.status.carry = v&0x01 == 0x01
			return 0
		}
		cpu.status.carry = false
		return 0

	case aluLSR:
		switch {
		case amount < 32:
			cpu.status.carry = v&(uint32(1)<<(amount-1)) != 0
			return v >> amount
		case amount == 32:
			cpu.status.carry = v&0x80000000 == 0x80000000
			return 0
		}
		cpu.status.carry = false
		return 0

	case aluASR:
		if amount >= 32 {
			cpu.status.carry = v&0x80000000 == 0x80000000
			return uint32(int32(v) >> 31)
		}
		cpu.status.carry = v&(uint32(1)<<(amount-1)) != 0
		return uint32(int32(v) >> amount)

	case aluROR:
		amount &= 0x1f
		if amount == 0 {
			cpu.status.carry = v&0x80000000 == 0x80000000
			return v
		}
		r := bits.RotateLeft32(v, -int(amount))
		cpu.status.carry = r&0x80000000 == 0x80000000
		return r
	}

	return v
}

func (cpu *CPU) executeALUOperations(opcode uint16) {
	op := (opcode & 0x03c0) >> 6
	srcReg := (opcode & 0x0038) >> 3
	destReg := opcode & 0x0007

	a := cpu.regs[destReg]
	b := cpu.regs[srcReg]

	var res uint32

	switch op {
	case aluAND:
		res = a & b
	case aluEOR:
		res = a ^ b
	case aluLSL, aluLSR, aluASR, aluROR:
		res = cpu.shiftRegister(op, a, b)
	case aluADC:
		cpu.regs[destReg] = cpu.addWithCarry(a, b, cpu.carryIn())
		return
	case aluSBC:
		cpu.regs[destReg] = cpu.addWithCarry(a, ^b, cpu.carryIn())
		return
	case aluTST:
		cpu.setNZ(a & b)
		return
	case aluRSB:
		// NEG
		cpu.regs[destReg] = cpu.addWithCarry(^b, 0, 1)
		return
	case aluCMP:
		cpu.addWithCarry(a, ^b, 1)
		return
	case aluCMN:
		cpu.addWithCarry(a, b, 0)
		return
	case aluORR:
		res = a | b
	case aluMUL:
		// single cycle multiplier. carry and overflow are unaffected
		res = a * b
	case aluBIC:
		res = a &^ b
	case aluMVN:
		res = ^b
	}

	cpu.regs[destReg] = res
	cpu.setNZ(res)
}

func (cpu *CPU) executeHiRegisterOps(opcode uint16) error {
	op := (opcode & 0x0300) >> 8
	srcReg := (opcode & 0x0078) >> 3
	destReg := (opcode&0x0080)>>4 | opcode&0x0007

	switch op {
	case 0b00:
		// ADD. flags are not affected
		res := cpu.read(destReg) + cpu.read(srcReg)
		if destReg == PC {
			cpu.branch(res &^ 0x01)
			return nil
		}
		cpu.write(destReg, res)

	case 0b01:
		// CMP
		cpu.addWithCarry(cpu.read(destReg), ^cpu.read(srcReg), 1)

	case 0b10:
		// MOV. flags are not affected
		res := cpu.read(srcReg)
		if destReg == PC {
			cpu.branch(res &^ 0x01)
			return nil
		}
		cpu.write(destReg, res)

	case 0b11:
		// BX and BLX
		target := cpu.read(srcReg)
		if opcode&0x0080 == 0x0080 {
			cpu.regs[LR] = (cpu.instructionAddress() + 2) | 0x01
		}
		return cpu.branchExchange(target)
	}

	return nil
}

func (cpu *CPU) executePCRelativeLoad(opcode uint16) error {
	destReg := (opcode & 0x0700) >> 8
	imm := uint32(opcode&0x00ff) << 2

	v, err := cpu.read32((cpu.read(PC) &^ 0x03) + imm)
	if err != nil {
		return err
	}
	cpu.regs[destReg] = v

	return nil
}

func (cpu *CPU) executeLoadStoreWithRegisterOffset(opcode uint16) error {
	op := (opcode & 0x0e00) >> 9
	offsetReg := (opcode & 0x01c0) >> 6
	baseReg := (opcode & 0x0038) >> 3
	reg := opcode & 0x0007

	addr := cpu.regs[baseReg] + cpu.regs[offsetReg]

	switch op {
	case 0b000:
		// STR
		return cpu.write32(addr, cpu.regs[reg])
	case 0b001:
		// STRH
		return cpu.write16(addr, uint16(cpu.regs[reg]))
	case 0b010:
		// STRB
		return cpu.write8(addr, uint8(cpu.regs[reg]))
	case 0b011:
		// LDRSB
		v, err := cpu.read8(addr)
		if err != nil {
			return err
		}
		cpu.regs[reg] = uint32(int32(int8(v)))
	case 0b100:
		// LDR
		v, err := cpu.read32(addr)
		if err != nil {
			return err
		}
		cpu.regs[reg] = v
	case 0b101:
		// LDRH
		v, err := cpu.read16(addr)
		if err != nil {
			return err
		}
		cpu.regs[reg] = uint32(v)
	case 0b110:
		// LDRB
		v, err := cpu.read8(addr)
		if err != nil {
			return err
		}
		cpu.regs[reg] = uint32(v)
	case 0b111:
		// LDRSH
		v, err := cpu.read16(addr)
		if err != nil {
			return err
		}
		cpu.regs[reg] = uint32(int32(int16(v)))
	}

	return nil
}

func (cpu *CPU) executeLoadStoreWithImmOffset(opcode uint16) error {
	byteTransfer := opcode&0x1000 == 0x1000
	load := opcode&0x0800 == 0x0800
	offset := uint32((opcode & 0x07c0) >> 6)
	baseReg := (opcode & 0x0038) >> 3
	reg := opcode & 0x0007

	if !byteTransfer {
		offset <<= 2
	}
	addr := cpu.regs[baseReg] + offset

	if load {
		if byteTransfer {
			v, err := cpu.read8(addr)
			if err != nil {
				return err
			}
			cpu.regs[reg] = uint32(v)
			return nil
		}
		v, err := cpu.read32(addr)
		if err != nil {
			return err
		}
		cpu.regs[reg] = v
		return nil
	}

	if byteTransfer {
		return cpu.write8(addr, uint8(cpu.regs[reg]))
	}
	return cpu.write32(addr, cpu.regs[reg])
}

func (cpu *CPU) executeLoadStoreHalfword(opcode uint16) error {
	load := opcode&0x0800 == 0x0800
	offset := uint32((opcode&0x07c0)>>6) << 1
	baseReg := (opcode & 0x0038) >> 3
	reg := opcode & 0x0007

	addr := cpu.regs[baseReg] + offset

	if load {
		v, err := cpu.read16(addr)
		if err != nil {
			return err
		}
		cpu.regs[reg] = uint32(v)
		return nil
	}
	return cpu.write16(addr, uint16(cpu.regs[reg]))
}

func (cpu *CPU) executeSPRelativeLoadStore(opcode uint16) error {
	load := opcode&0x0800 == 0x0800
	reg := (opcode & 0x0700) >> 8
	offset := uint32(opcode&0x00ff) << 2

	addr := cpu.regs[SP] + offset

	if load {
		v, err := cpu.read32(addr)
		if err != nil {
			return err
		}
		cpu.regs[reg] = v
		return nil
	}
	return cpu.write32(addr, cpu.regs[reg])
}

func (cpu *CPU) executeLoadAddress(opcode uint16) {
	sp := opcode&0x0800 == 0x0800
	destReg := (opcode & 0x0700) >> 8
	offset := uint32(opcode&0x00ff) << 2

	if sp {
		cpu.regs[destReg] = cpu.regs[SP] + offset
	} else {
		cpu.regs[destReg] = (cpu.read(PC) &^ 0x03) + offset
	}
}

func (cpu *CPU) executeMiscellaneous(opcode uint16) error {
	switch {
	case opcode&0xff00 == 0xb000:
		// format 13 - Add offset to stack pointer
		imm := uint32(opcode&0x007f) << 2
		if opcode&0x0080 == 0x0080 {
			cpu.regs[SP] -= imm
		} else {
			cpu.regs[SP] += imm
		}

	case opcode&0xff00 == 0xb200:
		// SXTH, SXTB, UXTH, UXTB
		srcReg := (opcode & 0x0038) >> 3
		destReg := opcode & 0x0007
		v := cpu.regs[srcReg]
		switch (opcode & 0x00c0) >> 6 {
		case 0b00:
			cpu.regs[destReg] = uint32(int32(int16(v)))
		case 0b01:
			cpu.regs[destReg] = uint32(int32(int8(v)))
		case 0b10:
			cpu.regs[destReg] = v & 0xffff
		case 0b11:
			cpu.regs[destReg] = v & 0xff
		}

	case opcode&0xf600 == 0xb400:
		// format 14 - Push/pop registers
		return cpu.executePushPopRegisters(opcode)

	case opcode&0xffef == 0xb662:
		// CPSIE i and CPSID i
		cpu.primask = opcode&0x0010 == 0x0010

	case opcode&0xff00 == 0xba00:
		// REV, REV16, REVSH
		srcReg := (opcode & 0x0038) >> 3
		destReg := opcode & 0x0007
		v := cpu.regs[srcReg]
		switch (opcode & 0x00c0) >> 6 {
		case 0b00:
			cpu.regs[destReg] = bits.ReverseBytes32(v)
		case 0b01:
			cpu.regs[destReg] = (v&0x00ff00ff)<<8 | (v&0xff00ff00)>>8
		case 0b11:
			cpu.regs[destReg] = uint32(int32(int16(bits.ReverseBytes16(uint16(v)))))
		default:
			return cpu.undefined(opcode)
		}

	case opcode&0xff00 == 0xbe00:
		// BKPT. there is no debug monitor so the instruction does nothing
		logger.Logf(logger.Allow, "thumb", "BKPT #%d at %#08x ignored", opcode&0x00ff, cpu.instructionAddress())

	case opcode&0xff0f == 0xbf00 && opcode <= 0xbf40:
		// NOP, YIELD, WFE, WFI, SEV. sleeping is the responsibility of the
		// core that owns the interpreter

	default:
		return cpu.undefined(opcode)
	}

	return nil
}

func (cpu *CPU) executePushPopRegisters(opcode uint16) error {
	pop := opcode&0x0800 == 0x0800

	// LR for PUSH and PC for POP
	extra := opcode&0x0100 == 0x0100

	list := uint32(opcode & 0x00ff)

	if pop {
		addr := cpu.regs[SP]
		for i := range 8 {
			if list&(1<<i) == 0 {
				continue
			}
			v, err := cpu.read32(addr)
			if err != nil {
				return err
			}
			cpu.regs[i] = v
			addr += 4
		}

		if !extra {
			cpu.regs[SP] = addr
			return nil
		}

		v, err := cpu.read32(addr)
		if err != nil {
			return err
		}
		cpu.regs[SP] = addr + 4

		return cpu.branchExchange(v)
	}

	n := uint32(bits.OnesCount32(list))
	if extra {
		n++
	}

	start := cpu.regs[SP] - 4*n
	addr := start
	for i := range 8 {
		if list&(1<<i) == 0 {
			continue
		}
		if err := cpu.write32(addr, cpu.regs[i]); err != nil {
			return err
		}
		addr += 4
	}

	if extra {
		if err := cpu.write32(addr, cpu.regs[LR]); err != nil {
			return err
		}
	}

	cpu.regs[SP] = start

	return nil
}

func (cpu *CPU) executeMultipleLoadStore(opcode uint16) error {
	load := opcode&0x0800 == 0x0800
	baseReg := (opcode & 0x0700) >> 8
	list := opcode & 0x00ff

	if list == 0 {
		return cpu.undefined(opcode)
	}

	addr := cpu.regs[baseReg]

	for i := range 8 {
		if list&(1<<i) == 0 {
			continue
		}
		if load {
			v, err := cpu.read32(addr)
			if err != nil {
				return err
			}
			cpu.regs[i] = v
		} else {
			if err := cpu.write32(addr, cpu.regs[i]); err != nil {
				return err
			}
		}
		addr += 4
	}

	// the base register is not written back by LDM if it is in the list
	if !load || list&(1<<baseReg) == 0 {
		cpu.regs[baseReg] = addr
	}

	return nil
}

func (cpu *CPU) executeConditionalBranch(opcode uint16) error {
	cond := uint8((opcode & 0x0f00) >> 8)

	switch cond {
	case 0b1110:
		// UDF
		return cpu.undefined(opcode)
	case 0b1111:
		// format 17 - Software interrupt
		cpu.svcPending = true
		return nil
	}

	if !cpu.status.condition(cond) {
		return nil
	}

	offset := int32(int8(opcode&0x00ff)) << 1
	cpu.branch(uint32(int32(cpu.read(PC)) + offset))

	return nil
}

func (cpu *CPU) executeUnconditionalBranch(opcode uint16) {
	offset := int32(uint32(opcode&0x07ff)<<21) >> 20
	cpu.branch(uint32(int32(cpu.read(PC)) + offset))
}

// blOffset returns the branch offset of a BL instruction.
func blOffset(opcode uint16, second uint16) int32 {
	s := uint32(opcode>>10) & 0x01
	j1 := uint32(second>>13) & 0x01
	j2 := uint32(second>>11) & 0x01
	i1 := ^(j1 ^ s) & 0x01
	i2 := ^(j2 ^ s) & 0x01
	imm := s<<24 | i1<<23 | i2<<22 | uint32(opcode&0x03ff)<<12 | uint32(second&0x07ff)<<1
	return int32(imm<<7) >> 7
}

func (cpu *CPU) execute32bit(opcode uint16) error {
	addr := cpu.instructionAddress()
	second := cpu.hooks.NextInstruction()

	switch {
	case opcode&0xf800 == 0xf000 && second&0xd000 == 0xd000:
		// BL
		next := addr + 4
		cpu.regs[LR] = next | 0x01
		cpu.hooks.ConsumeCycles(1)
		cpu.branch(uint32(int32(next) + blOffset(opcode, second)))
		return nil

	case opcode&0xfff0 == 0xf380 && second&0xff00 == 0x8800:
		// MSR
		cpu.writeSpecial(uint8(second), cpu.regs[opcode&0x000f])

	case opcode == 0xf3ef && second&0xf000 == 0x8000:
		// MRS
		cpu.write((second&0x0f00)>>8, cpu.readSpecial(uint8(second)))

	case opcode == 0xf3bf && (second&0xfff0 == 0x8f40 || second&0xfff0 == 0x8f50 || second&0xfff0 == 0x8f60):
		// DSB, DMB, ISB. memory accesses are never reordered

	default:
		return curated.Errorf(UndefinedInstruction, uint32(opcode)<<16|uint32(second), addr)
	}

	// only one halfword of the instruction queue was consumed by the
	// instruction so the pipeline is refilled from the next instruction
	cpu.hooks.ConsumeCycles(1)
	cpu.branch(addr + 4)

	return nil
}

// special register numbers used by MRS and MSR.
const (
	sysmAPSR    = 0
	sysmIAPSR   = 1
	sysmEAPSR   = 2
	sysmXPSR    = 3
	sysmIPSR    = 5
	sysmEPSR    = 6
	sysmIEPSR   = 7
	sysmMSP     = 8
	sysmPSP     = 9
	sysmPRIMASK = 16
	sysmCONTROL = 20
)

// the EPSR always reads as zero with MRS.
func (cpu *CPU) readSpecial(sysm uint8) uint32 {
	switch sysm {
	case sysmAPSR, sysmEAPSR:
		return cpu.status.value()
	case sysmIAPSR, sysmXPSR:
		return cpu.status.value() | cpu.ipsr
	case sysmIPSR, sysmIEPSR:
		return cpu.ipsr
	case sysmEPSR:
		return 0
	case sysmMSP:
		return cpu.msp()
	case sysmPSP:
		return cpu.psp()
	case sysmPRIMASK:
		if cpu.primask {
			return 1
		}
		return 0
	case sysmCONTROL:
		return cpu.control
	}
	return 0
}

// the IPSR and EPSR can not be written with MSR.
func (cpu *CPU) writeSpecial(sysm uint8, v uint32) {
	switch sysm {
	case sysmAPSR, sysmIAPSR, sysmEAPSR, sysmXPSR:
		cpu.status.set(v)
	case sysmMSP:
		cpu.setMSP(v)
	case sysmPSP:
		cpu.setPSP(v)
	case sysmPRIMASK:
		cpu.primask = v&0x01 == 0x01
	case sysmCONTROL:
		// the stack selection can not be changed in handler mode
		if !cpu.handler {
			if v&controlSPSEL == controlSPSEL {
				cpu.UseProcessStack()
			} else {
				cpu.UseMainStack()
			}
		}
		cpu.control = cpu.control&^controlNPRIV | v&controlNPRIV
	}
}
