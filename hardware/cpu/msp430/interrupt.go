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
	"github.com/fusedsim/fused/logger"
)

// number of interrupt sources that are taken regardless of the GIE bit
const nonMaskable = 3

// ExceptionCheck implements the core.ISA interface. An interrupt is taken if
// the arbiter is requesting and either the GIE bit is set or the source is
// non-maskable. Index zero is the reset interrupt, which does not use the
// stack.
func (cpu *CPU) ExceptionCheck() (bool, error) {
	if !cpu.arb.IRQ.Read() {
		return false, nil
	}

	idx := cpu.arb.Select()
	if idx < 0 {
		return false, nil
	}

	if idx == 0 {
		cpu.acknowledge()
		cpu.regs[SR] &= uint16(SCG0)
		pc, err := cpu.read16(ResetVector)
		if err != nil {
			return true, err
		}
		cpu.SetRegister(PC, pc)
		logger.Logf(logger.Allow, cpu.name, "reset handler at %#04x", pc)
		return true, nil
	}

	if !cpu.flag(GIE) && idx >= nonMaskable {
		return false, nil
	}

	if err := cpu.push(cpu.regs[PC]); err != nil {
		return true, err
	}
	if err := cpu.push(cpu.regs[SR]); err != nil {
		return true, err
	}

	vector := uint16(VectorBase - 2*idx)

	cpu.acknowledge()
	cpu.regs[SR] &= uint16(SCG0)

	pc, err := cpu.read16(vector)
	if err != nil {
		return true, err
	}
	cpu.SetRegister(PC, pc)

	return true, nil
}

// acknowledge the interrupt with a pulse on the arbiter's acknowledge wire.
func (cpu *CPU) acknowledge() {
	cpu.arb.Ack.Write(true)
	cpu.waitCycles(ackCycles)
	cpu.arb.Ack.Write(false)
}
