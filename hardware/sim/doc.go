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

// Package sim is the discrete-event kernel that all simulated components
// share. Simulated time is measured in picoseconds with the Time type and
// only ever advances when the running process suspends itself.
//
// There is one process: the CPU core. It suspends with Kernel.Advance() for
// the duration of a bus access or an instruction's extra cycles, and with
// Kernel.WaitAny() while it is sleeping. Every other component is passive
// and reacts to scheduled callbacks (Kernel.Schedule() and Kernel.After())
// or to Event notifications, which are delivered immediately and in
// subscription order.
//
// Signals carry a value between components. Writing a different value to a
// signal notifies its Changed() event. A Wire is a boolean signal with
// additional Posedge() and Negedge() events.
package sim
