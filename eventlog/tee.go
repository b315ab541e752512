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

package eventlog

import (
	"github.com/fusedsim/fused/hardware/core"
	"github.com/fusedsim/fused/hardware/sim"
)

type tee []core.Sink

// Tee returns a sink that forwards to every non-nil sink in the list. Returns
// nil if there are no sinks.
func Tee(sinks ...core.Sink) core.Sink {
	var t tee
	for _, s := range sinks {
		if s != nil {
			t = append(t, s)
		}
	}
	switch len(t) {
	case 0:
		return nil
	case 1:
		return t[0]
	}
	return t
}

func (t tee) ReportState(module string, state string, at sim.Time) {
	for _, s := range t {
		s.ReportState(module, state, at)
	}
}

func (t tee) Increment(counter string, n uint64) {
	for _, s := range t {
		s.Increment(counter, n)
	}
}
