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

package sim

import (
	"strconv"
	"time"
)

// Time is a quantity of simulated time in picoseconds.
type Time uint64

// Common units of simulated time.
const (
	Picosecond  Time = 1
	Nanosecond       = 1000 * Picosecond
	Microsecond      = 1000 * Nanosecond
	Millisecond      = 1000 * Microsecond
	Second           = 1000 * Millisecond
)

var units = []struct {
	unit   Time
	suffix string
}{
	{Second, "s"},
	{Millisecond, "ms"},
	{Microsecond, "us"},
	{Nanosecond, "ns"},
}

func (t Time) String() string {
	for _, u := range units {
		if t >= u.unit {
			return strconv.FormatFloat(float64(t)/float64(u.unit), 'f', -1, 64) + u.suffix
		}
	}
	return strconv.FormatUint(uint64(t), 10) + "ps"
}

// FromDuration converts a time.Duration to simulated time.
func FromDuration(d time.Duration) Time {
	if d < 0 {
		return 0
	}
	return Time(d) * Nanosecond
}

// Duration converts simulated time to a time.Duration. Precision below one
// nanosecond is lost.
func (t Time) Duration() time.Duration {
	return time.Duration(t / Nanosecond)
}
