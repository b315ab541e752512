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

// Package bus implements the timed transaction protocol between an initiator
// (a CPU core) and the memory-mapped targets of the microcontroller.
//
// A Transaction carries an address, a data buffer, a command and a response
// status. The Router forwards a transaction to the unique Target whose
// address range contains the address, with the address made relative to the
// target's base. The delay returned by Router.Transport() is the sum of the
// router's forwarding delay and the target's access delay.
//
// The Initiator type binds a router to the simulation kernel. Its Read() and
// Write() functions are the blocking variant of the protocol and suspend the
// caller for the aggregated delay. ReadDebug() and WriteDebug() move data
// without advancing simulated time and report the number of bytes that were
// transferred.
package bus
