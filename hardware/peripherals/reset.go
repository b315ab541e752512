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

package peripherals

import (
	"github.com/fusedsim/fused/hardware/interrupts"
	"github.com/fusedsim/fused/hardware/sim"
	"github.com/fusedsim/fused/logger"
)

// ResetController requests an interrupt on the power-on edge.
type ResetController struct {
	name string
	line *interrupts.Line

	resets int
}

// NewResetController is the preferred method of initialisation for the
// ResetController type.
func NewResetController(name string, power *sim.Wire, line *interrupts.Line) *ResetController {
	rc := &ResetController{
		name: name,
		line: line,
	}

	power.Posedge().Subscribe(rc.assert)
	power.Negedge().Subscribe(rc.release)
	line.Ack.Posedge().Subscribe(rc.release)

	return rc
}

func (rc *ResetController) assert() {
	rc.resets++
	logger.Logf(logger.Allow, rc.name, "power-on reset #%d", rc.resets)
	rc.line.Request.Write(true)
}

func (rc *ResetController) release() {
	rc.line.Request.Write(false)
}

// Resets returns the number of power-on resets requested.
func (rc *ResetController) Resets() int {
	return rc.resets
}
