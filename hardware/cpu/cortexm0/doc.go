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

// Package cortexm0 implements the ARMv6-M Cortex-M0 as a core.ISA.
//
// Instructions are interpreted by the thumb package. The CPU provides the
// interpreter with its memory, its sense of time and its exception handling
// through the thumb.Hooks interface.
//
// The CPU models the two stage fetch/execute pipeline with a small queue of
// fetched halfwords. Every call to Step() fetches one halfword at the PC and
// executes the halfword at the front of the queue. A taken branch replaces the
// queue with two NOP instructions and sets a bubble count. The bubble count is
// used to report the address of the next instruction to execute and to
// prevent a breakpoint or single step halting the CPU while the pipeline is
// refilling.
//
// Exceptions are the supervisor call, the SysTick line and the lines of an
// NVIC arbiter. Nested exceptions are not supported and an exception is only
// taken in thread mode. Exception entry records the state of the register
// file and exception return compares the restored registers against that
// record. Differences are logged but are not fatal.
package cortexm0
