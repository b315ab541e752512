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

// Package thumb is an interpreter for the ARMv6-M Thumb instruction set as
// implemented by the Cortex-M0.
//
// The interpreter has no notion of time or of where instructions come from.
// Everything that involves the rest of the microcontroller goes through the
// Hooks interface given to New(). The owning core fetches each instruction,
// passes it to Execute() and is told through the hooks when memory is
// accessed, when extra cycles are consumed, when the program counter has been
// redirected and when an exception return has been requested.
//
// The PC register holds the fetch address with the thumb bit set. When an
// instruction executes the PC reads as the address of that instruction plus
// four, which is the same as the architectural PC value.
//
// The second half of a 32-bit instruction (BL, MSR, MRS and the barriers) is
// requested from the core with the NextInstruction() hook.
package thumb
