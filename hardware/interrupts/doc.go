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

// Package interrupts implements a fixed-priority interrupt arbiter. The
// arbiter reduces N request lines to a single request and index pair for the
// CPU, and routes the CPU's acknowledge back to the source that the CPU
// selected with Select(). Without a selection the acknowledge goes to the
// winner at the time it is asserted.
package interrupts
