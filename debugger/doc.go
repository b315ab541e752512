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

// Package debugger implements an interactive console for a simulated
// microcontroller. The simulation runs in its own goroutine and the console
// controls it through the run-control surface of the core: stalling,
// stepping, breakpoints and access to registers and memory.
//
// Registers and memory can only be accessed when the core is stalled or when
// the simulation has ended. The RUN command blocks until the core stalls,
// either because of a breakpoint or because of an interrupt signal from the
// terminal.
//
// Input and output happen through the terminal.Terminal interface.
// Implementations can be found in the plainterm and colorterm packages.
package debugger
