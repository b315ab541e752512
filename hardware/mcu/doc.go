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

// Package mcu assembles the components of a microcontroller into a Board.
// There is one constructor for each CPU model: NewMSP430() and NewCortexM0().
//
// A board owns the simulation kernel, the power wire, the bus router and the
// core that drives the CPU. Programs are loaded through the debug
// transaction, which bypasses the power gate of the memories, so a program can
// be loaded before the board is powered.
//
// The power wire starts deasserted. PowerOn() can be called before Run() or
// the power can be scheduled with SchedulePower(). Once Run() has been called
// the power wire must only be changed from the simulation goroutine, usually
// by a scheduled callback.
//
// Memory map of the MSP430 board:
//
//	0x015c - 0x015d		watchdog control (accepts and ignores writes)
//	0x0340 - 0x0347		interval timer (interrupt 10)
//	0x0600 - 0x060f		monitor
//	0x1c00 - 0x3bff		SRAM (volatile)
//	0x4000 - 0xff7f		FRAM
//	0xff80 - 0xffff		interrupt vectors
//
// Memory map of the Cortex-M0 board:
//
//	0x00000000 - 0x0001ffff	ROM
//	0x20000000 - 0x20007fff	RAM (volatile)
//	0x40000000 - 0x4000000f	monitor
//	0x40000100 - 0x40000107	SysTick timer
//	0x40000200 - 0x40000207	interval timer (NVIC line 0)
package mcu
