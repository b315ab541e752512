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

package performance

import (
	"time"

	"github.com/fusedsim/fused/hardware/sim"
)

// CalcRate takes the number of instructions executed, the simulated time and
// the wall clock time taken, and returns the instructions-per-second and the
// ratio of simulated time to wall clock time. A ratio of one means the board
// ran at real speed.
func CalcRate(instructions uint64, simulated sim.Time, elapsed time.Duration) (ips float64, ratio float64) {
	if elapsed <= 0 {
		return 0, 0
	}
	ips = float64(instructions) / elapsed.Seconds()
	ratio = float64(simulated.Duration()) / float64(elapsed)
	return ips, ratio
}
