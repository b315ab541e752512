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

// Package core implements the run-control state machine shared by every CPU
// model. The ISA specific work of resetting, taking exceptions and executing
// instructions is delegated to an implementation of the ISA interface. The
// Core type handles power, sleep, breakpoints, single stepping and the
// debug control surface.
//
// The Run() function is called by the goroutine that owns the simulation.
// Every other goroutine interacts with the core through Stall(), Unstall(),
// Step(), Quit() and the query functions. Registers and memory should only be
// accessed through the debug surface while the core is stalled.
//
// The stall rendezvous does not advance simulated time. A stalled core parks
// its goroutine on a condition variable until it is released.
package core
