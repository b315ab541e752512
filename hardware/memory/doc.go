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

// Package memory implements the store-backed bus target. A Target models
// RAM, ROM, FRAM and the register banks of peripherals.
//
// Every Target is gated by an optional power wire. Timed accesses to an
// unpowered target fail with the bus.PowerError status. Debug accesses
// always succeed. A volatile target loses its contents when power falls.
//
// Peripherals that need side effects on register access implement the
// ReadHook and/or WriteHook interfaces and attach them with the WithHooks()
// option. The default store-backed behaviour still applies; hooks are
// called around it.
package memory
