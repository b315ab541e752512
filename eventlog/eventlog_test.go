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

package eventlog_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/fusedsim/fused/eventlog"
	"github.com/fusedsim/fused/hardware/core"
	"github.com/fusedsim/fused/hardware/mcu"
	"github.com/fusedsim/fused/hardware/preferences"
	"github.com/fusedsim/fused/hardware/sim"
	"github.com/fusedsim/fused/test"
)

func TestLog(t *testing.T) {
	l := eventlog.NewLog(2)
	l.Increment(core.CounterInstructions, 10)
	l.Increment(core.CounterInstructions, 5)
	l.Increment(core.CounterExceptions, 1)

	l.ReportState("a", "on", 0)
	l.ReportState("a", "sleep", sim.Microsecond)
	l.ReportState("a", "on", 2*sim.Microsecond)

	test.ExpectEquality(t, l.Counter(core.CounterInstructions), uint64(15))
	test.ExpectEquality(t, l.Counter(core.CounterIdleCycles), uint64(0))

	tr := l.Transitions()
	test.DemandEquality(t, len(tr), 2)
	test.ExpectEquality(t, tr[0].State, "sleep")
	test.ExpectEquality(t, tr[1].At, 2*sim.Microsecond)

	w := &strings.Builder{}
	l.Write(w)
	test.ExpectSuccess(t, strings.HasPrefix(w.String(), "exceptions: 1\ninstructions: 15\n(1 earlier transitions)\n"))
}

func TestTee(t *testing.T) {
	test.ExpectSuccess(t, eventlog.Tee() == nil)
	test.ExpectSuccess(t, eventlog.Tee(nil, nil) == nil)

	a := eventlog.NewLog(10)
	test.ExpectEquality(t, eventlog.Tee(nil, a), core.Sink(a))

	b := eventlog.NewLog(10)
	s := eventlog.Tee(a, b)
	s.Increment("x", 3)
	s.ReportState("m", "on", 0)

	test.ExpectEquality(t, a.Counter("x"), uint64(3))
	test.ExpectEquality(t, b.Counter("x"), uint64(3))
	test.ExpectEquality(t, len(b.Transitions()), 1)
}

func TestBoardSink(t *testing.T) {
	p, err := preferences.NewPreferences(filepath.Join(t.TempDir(), "prefs"))
	test.DemandSuccess(t, err)

	l := eventlog.NewLog(100)
	b, err := mcu.NewMSP430(p, mcu.Options{Sink: l})
	test.DemandSuccess(t, err)

	// reset and stack vectors followed by CLR &EXIT
	test.DemandSuccess(t, b.LoadImage(0xfffc, []byte{0x00, 0x3c, 0x00, 0x44}))
	test.DemandSuccess(t, b.LoadImage(0x4400, []byte{0x82, 0x43, 0x00, 0x06}))

	b.PowerOn()
	test.DemandSuccess(t, b.Run())

	test.ExpectEquality(t, l.Counter(core.CounterInstructions), uint64(1))
	test.ExpectEquality(t, l.Counter(core.CounterExceptions), uint64(1))

	tr := l.Transitions()
	test.DemandEquality(t, len(tr), 1)
	test.ExpectEquality(t, tr[0].Module, "msp430")
	test.ExpectEquality(t, tr[0].State, core.Running.String())
}
