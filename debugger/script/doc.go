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

// Package script drives the run-control surface of a simulated
// microcontroller from a Lua script. The simulation and the script run in
// separate goroutines and the simulation is ended when the script finishes.
//
// The following functions are available to the script:
//
//	stall()                stall the core at the next instruction boundary
//	unstall()              let the core run
//	step([n])              execute n instructions. false if the simulation ended
//	brk(addr)              add a breakpoint
//	clear([addr])          remove a breakpoint or every breakpoint
//	reg(r)                 value of a register, by name or number
//	setreg(r, v)           change a register
//	peek(addr [, n])       a byte, or a table of n bytes. nil if not routed
//	poke(addr, byte...)    change memory. false if not every byte was written
//	state()                state of the core: off, on, step, stall or sleep
//	wait_stalled([ms])     wait for the core to stall. false on timeout or end
//	ended()                true if the simulation has ended, and the error
//	log(msg)               add an entry to the log
//
// Registers and memory can only be accessed when the core is stalled or when
// the simulation has ended.
package script
