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
	"fmt"
	"io"
	"time"

	"github.com/fusedsim/fused/curated"
	"github.com/fusedsim/fused/hardware/mcu"
	"github.com/fusedsim/fused/paths"
)

// Sentinal error patterns.
const (
	PerformanceError = "performance: %v"

	// the simulation is stopped with this error when the duration has
	// elapsed
	timedOut = "performance: timed out"
)

// Result of a performance check.
type Result struct {
	Instructions uint64
	Elapsed      time.Duration
	IPS          float64
	Ratio        float64
}

func (r Result) String() string {
	return fmt.Sprintf("%.0f instructions/sec (%d instructions in %.2f seconds) %.3fx real speed",
		r.IPS, r.Instructions, r.Elapsed.Seconds(), r.Ratio)
}

// Check the performance of the simulator by running the board for the
// duration. The board must be powered and loaded. The check ends early if the
// program running on the board ends.
func Check(output io.Writer, profile Profile, board *mcu.Board, duration time.Duration) (Result, error) {
	var res Result

	runner := func() error {
		timer := time.AfterFunc(duration, func() {
			board.Kernel.Stop(curated.Errorf(timedOut))
		})
		defer timer.Stop()

		start := time.Now()
		err := board.Run()
		res.Elapsed = time.Since(start)

		if err != nil && !curated.Has(err, timedOut) {
			return err
		}
		return nil
	}

	err := RunProfiler(profile, paths.UniqueFilename("performance", board.Name), runner)
	if err != nil {
		return res, curated.Errorf(PerformanceError, err)
	}

	res.Instructions = board.Core.Instructions()
	res.IPS, res.Ratio = CalcRate(res.Instructions, board.Kernel.Now(), res.Elapsed)

	if output != nil {
		fmt.Fprintln(output, res.String())
	}

	return res, nil
}
