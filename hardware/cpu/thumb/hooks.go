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

// Hooks connects the interpreter to the core that owns it. The implementation
// is the context through which every callback reaches the core, so more than
// one interpreter can exist at the same time.
type Hooks interface {
	// ReadMemory and WriteMemory perform a timed access on the bus
	ReadMemory(addr uint32, data []byte) error
	WriteMemory(addr uint32, data []byte) error

	// ConsumeCycles is called for cycles that do not involve the bus
	ConsumeCycles(n int)

	// ExceptionReturn is called when an EXC_RETURN value is written to the
	// program counter in handler mode
	ExceptionReturn(excReturn uint32) error

	// NextInstruction returns the next halfword in the core's instruction
	// queue. Used to complete a 32-bit instruction
	NextInstruction() uint16

	// BranchTaken is called after the program counter has been redirected
	BranchTaken()
}
