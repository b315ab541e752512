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

// Package msp430 implements the 16-bit MSP430 CPU as a core.ISA.
//
// Instructions are decoded into one of three formats: single operand,
// conditional jump and double operand. The format is selected by the top
// three bits of the opcode. Source operands support every addressing mode of
// the architecture including the constant generator; destination operands
// support register direct, indexed, symbolic and absolute modes.
//
// Memory is accessed through a bus.Initiator and every access advances
// simulated time by the delay reported by the bus. Additional cycles that do
// not involve a memory access are consumed with the clock of the CPU.
//
// The DADD instruction is not supported and is fatal, as is the unused slot
// in the single operand format. The 20-bit extensions of the MSP430X are not
// supported.
package msp430
