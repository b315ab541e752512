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

// Package peripherals contains the devices that are wired to the CPU of a
// board, other than memory.
//
// The ResetController requests interrupt zero on every rising edge of the
// power wire and releases the request when it is acknowledged. On the MSP430
// this is the power-on reset interrupt that takes the CPU out of the CPUOFF
// state.
//
// The IntervalTimer is a down counter with a selectable clock divider. It
// requests an interrupt every time the count reaches zero.
//
// The Monitor is a register block used by test programs to report progress,
// to print characters and to end the simulation with an exit code.
//
// Register based peripherals are built on memory.Target. The Target() function
// returns the bus.Target to be added to the router.
package peripherals
