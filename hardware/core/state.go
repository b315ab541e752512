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

package core

// State of the run-control state machine.
type State int

// List of valid State values.
const (
	Off State = iota
	Running
	SingleStep
	Stalled
	Sleeping
)

// String returns the name of the state as reported to the diagnostic sink.
func (s State) String() string {
	switch s {
	case Off:
		return "off"
	case Running:
		return "on"
	case SingleStep:
		return "step"
	case Stalled:
		return "stall"
	case Sleeping:
		return "sleep"
	}
	return "unknown"
}
