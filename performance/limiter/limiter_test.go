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

package limiter_test

import (
	"testing"
	"time"

	"github.com/fusedsim/fused/hardware/sim"
	"github.com/fusedsim/fused/performance/limiter"
	"github.com/fusedsim/fused/test"
)

func TestLimiter(t *testing.T) {
	k := sim.NewKernel()
	lim := limiter.NewLimiter(k, time.Millisecond)
	lim.Attach()

	start := time.Now()
	k.Advance(sim.FromDuration(20 * time.Millisecond))
	test.ExpectSuccess(t, time.Since(start) >= 15*time.Millisecond)
	test.ExpectSuccess(t, lim.Slept() > 0)

	// the limiter is always waiting for the next quantum
	test.ExpectEquality(t, k.Pending(), 1)
}

func TestDisabled(t *testing.T) {
	k := sim.NewKernel()
	lim := limiter.NewLimiter(k, time.Millisecond)
	lim.SetEnabled(false)
	lim.Attach()

	start := time.Now()
	k.Advance(sim.FromDuration(time.Second))
	test.ExpectSuccess(t, time.Since(start) < 500*time.Millisecond)
	test.ExpectEquality(t, lim.Slept(), time.Duration(0))
}

func TestScale(t *testing.T) {
	k := sim.NewKernel()
	lim := limiter.NewLimiter(k, time.Millisecond)

	// ignored
	lim.SetScale(0)
	lim.SetScale(-1)

	// ten times real speed
	lim.SetScale(10)
	lim.Attach()

	start := time.Now()
	k.Advance(sim.FromDuration(100 * time.Millisecond))
	elapsed := time.Since(start)
	test.ExpectSuccess(t, elapsed >= 5*time.Millisecond)
	test.ExpectSuccess(t, elapsed < 80*time.Millisecond)
}
