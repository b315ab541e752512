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

// Package cpu is the parent of the instruction set models. Each model
// implements the core.ISA interface and is driven by a core.Core, which owns
// the run-control state and the debug surface.
//
// The msp430 package is an interpreter for the 16-bit MSP430 instruction set.
// The cortexm0 package models an ARMv6-M core with a two stage pipeline and
// the exception entry and return sequence. Instructions are decoded and
// executed by the thumb package, which is reached through a small set of
// callbacks for memory access, cycle counting and exception return.
package cpu
