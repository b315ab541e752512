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

package performance_test

import (
	"encoding/binary"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fusedsim/fused/hardware/mcu"
	"github.com/fusedsim/fused/hardware/preferences"
	"github.com/fusedsim/fused/hardware/sim"
	"github.com/fusedsim/fused/performance"
	"github.com/fusedsim/fused/test"
)

func TestParseProfileString(t *testing.T) {
	p, err := performance.ParseProfileString("none")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, p, performance.ProfileNone)

	p, err = performance.ParseProfileString("cpu, Mem")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, p, performance.ProfileCPU|performance.ProfileMem)

	p, err = performance.ParseProfileString("all")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, p, performance.ProfileAll)

	_, err = performance.ParseProfileString("cpu,gpu")
	test.ExpectFailure(t, err)
}

func TestCalcRate(t *testing.T) {
	ips, ratio := performance.CalcRate(1000, sim.FromDuration(time.Second), 2*time.Second)
	test.ExpectEquality(t, ips, 500.0)
	test.ExpectEquality(t, ratio, 0.5)

	ips, ratio = performance.CalcRate(1000, 0, 0)
	test.ExpectEquality(t, ips, 0.0)
	test.ExpectEquality(t, ratio, 0.0)
}

func newBoard(t *testing.T, words ...uint16) *mcu.Board {
	t.Helper()
	p, err := preferences.NewPreferences(filepath.Join(t.TempDir(), "prefs"))
	test.DemandSuccess(t, err)
	b, err := mcu.NewMSP430(p, mcu.Options{})
	test.DemandSuccess(t, err)

	data := binary.LittleEndian.AppendUint16(nil, 0x3c00)
	data = binary.LittleEndian.AppendUint16(data, 0x4400)
	test.DemandSuccess(t, b.LoadImage(0xfffc, data))

	data = data[:0]
	for _, w := range words {
		data = binary.LittleEndian.AppendUint16(data, w)
	}
	test.DemandSuccess(t, b.LoadImage(0x4400, data))

	b.PowerOn()
	return b
}

func TestCheck(t *testing.T) {
	b := newBoard(t,
		0x40b2, 0x5a80, 0x015c, // MOV #0x5a80, &WDTCTL
		0x3fff, // JMP $
	)

	out := &test.CompareWriter{}
	res, err := performance.Check(out, performance.ProfileNone, b, 50*time.Millisecond)
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, res.Instructions > 1)
	test.ExpectSuccess(t, res.Elapsed >= 50*time.Millisecond)
	test.ExpectSuccess(t, res.IPS > 0)
	test.ExpectSuccess(t, strings.Contains(out.String(), "instructions/sec"))
}

func TestCheckEndsEarly(t *testing.T) {
	b := newBoard(t,
		0x4382, 0x0600, // CLR &EXIT
	)

	res, err := performance.Check(nil, performance.ProfileNone, b, time.Minute)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, res.Instructions, uint64(1))
	test.ExpectSuccess(t, res.Elapsed < time.Minute)
}

func TestCheckError(t *testing.T) {
	b := newBoard(t,
		0x40b2, 0x0003, 0x0600, // MOV #3, &EXIT
	)

	_, err := performance.Check(nil, performance.ProfileNone, b, time.Minute)
	test.DemandFailure(t, err)
	test.ExpectSuccess(t, strings.Contains(err.Error(), "monitor: exit code 3"))
}
