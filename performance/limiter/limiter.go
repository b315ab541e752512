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

// Package limiter provides a rough and ready way of limiting a simulation to
// real time.
//
// A Limiter is attached to the kernel of a board before the board is run:
//
//	lim := limiter.NewLimiter(board.Kernel, time.Millisecond)
//	lim.Attach()
//
// Every quantum of simulated time the Limiter compares the simulated time
// with the wall clock time since the limiter was attached, and sleeps the
// simulation goroutine if the simulation is ahead.
//
// An attached Limiter always has a callback scheduled with the kernel, so a
// simulation will not end because it has run out of events.
package limiter

import (
	"sync/atomic"
	"time"

	"github.com/fusedsim/fused/hardware/sim"
)

// Limiter paces a simulation kernel against the wall clock.
type Limiter struct {
	kernel  *sim.Kernel
	quantum sim.Time

	// wall clock and simulated time at the point the limiter was attached
	start    time.Time
	simStart sim.Time

	// scale is stored as the number of simulated picoseconds per wall clock
	// nanosecond multiplied by 1000. a value of 1000 is real time
	scale atomic.Int64

	enabled atomic.Bool

	// the total time spent sleeping
	slept atomic.Int64
}

// NewLimiter is the preferred method of initialisation for the Limiter type.
// The quantum is the wall clock resolution of the limiter.
func NewLimiter(kernel *sim.Kernel, quantum time.Duration) *Limiter {
	lim := &Limiter{
		kernel:  kernel,
		quantum: sim.FromDuration(quantum),
	}
	lim.scale.Store(1000)
	lim.enabled.Store(true)
	return lim
}

// SetScale changes the speed of the simulation relative to real time. A
// scale of 2 runs the simulation at twice real speed. The scale is ignored if
// it is not greater than zero.
func (lim *Limiter) SetScale(scale float64) {
	if scale <= 0 {
		return
	}
	lim.scale.Store(int64(scale * 1000))
}

// SetEnabled turns the limiter on or off. Can be called from any goroutine.
func (lim *Limiter) SetEnabled(enabled bool) {
	lim.enabled.Store(enabled)
}

// Slept returns the total time the limiter has slept for.
func (lim *Limiter) Slept() time.Duration {
	return time.Duration(lim.slept.Load())
}

// Attach the limiter to the kernel. Must be called from the simulation
// goroutine, or before the simulation is started.
func (lim *Limiter) Attach() {
	lim.start = time.Now()
	lim.simStart = lim.kernel.Now()
	lim.kernel.After(lim.quantum, lim.tick)
}

// the wall clock time that should have elapsed for the simulated time
func (lim *Limiter) target() time.Duration {
	elapsed := lim.kernel.Now() - lim.simStart
	return time.Duration(uint64(elapsed.Duration()) * 1000 / uint64(lim.scale.Load()))
}

func (lim *Limiter) tick() {
	if lim.enabled.Load() {
		ahead := lim.target() - time.Since(lim.start)
		if ahead > 0 {
			time.Sleep(ahead)
			lim.slept.Add(int64(ahead))
		}
	} else {
		// the limiter restarts from the current time when it is enabled again
		lim.start = time.Now()
		lim.simStart = lim.kernel.Now()
	}

	if !lim.kernel.Stopped() {
		lim.kernel.After(lim.quantum, lim.tick)
	}
}
