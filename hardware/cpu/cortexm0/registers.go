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
	"github.com/fusedsim/fused/curated"
	"github.com/fusedsim/fused/hardware/cpu/thumb"
	"github.com/fusedsim/fused/logger"
)

// NumRegisters implements the core.ISA interface.
func (cpu *CPU) NumRegisters() int {
	return NumRegisters
}

// RegisterName implements the core.ISA interface.
func (cpu *CPU) RegisterName(idx int) string {
	if idx == XPSR {
		return "xpsr"
	}
	return thumb.RegisterName(idx)
}

// ReadRegister implements the core.ISA interface. The PC reads as the address
// of the next instruction to be executed.
func (cpu *CPU) ReadRegister(idx int) uint32 {
	switch {
	case idx == thumb.PC:
		return cpu.nextAddress()
	case idx == XPSR:
		return cpu.thumb.XPSR()
	case idx >= 0 && idx < thumb.NumRegisters:
		return cpu.thumb.Register(idx)
	}
	logger.Log(logger.Allow, cpu.name, curated.Errorf(InvalidRegister, idx))
	return 0
}

// WriteRegister implements the core.ISA interface. Writing the PC flushes the
// pipeline so that the next instruction executed is at the new address.
// Writes to the xPSR are ignored.
func (cpu *CPU) WriteRegister(idx int, value uint32) error {
	switch {
	case idx == thumb.PC:
		cpu.thumb.SetPC(value | 0x01)
		cpu.flush()
		return nil
	case idx == XPSR:
		logger.Logf(logger.Allow, cpu.name, "write to xpsr ignored (%#08x)", value)
		return nil
	case idx >= 0 && idx < thumb.NumRegisters:
		cpu.thumb.SetRegister(idx, value)
		return nil
	}

	err := curated.Errorf(InvalidRegister, idx)
	logger.Log(logger.Allow, cpu.name, err)
	cpu.kernel.Stop(err)
	return err
}
