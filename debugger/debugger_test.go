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

package debugger_test

import (
	"context"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fusedsim/fused/debugger"
	"github.com/fusedsim/fused/debugger/terminal/plainterm"
	"github.com/fusedsim/fused/hardware/mcu"
	"github.com/fusedsim/fused/hardware/preferences"
	"github.com/fusedsim/fused/test"
)

func newBoard(t *testing.T, build func(*preferences.Preferences, mcu.Options) (*mcu.Board, error), output io.Writer) *mcu.Board {
	t.Helper()
	p, err := preferences.NewPreferences(filepath.Join(t.TempDir(), "prefs"))
	test.DemandSuccess(t, err)
	b, err := build(p, mcu.Options{StartStalled: true, Output: output})
	test.DemandSuccess(t, err)
	return b
}

func load16(t *testing.T, b *mcu.Board, addr uint32, words ...uint16) {
	t.Helper()
	data := make([]byte, 0, len(words)*2)
	for _, w := range words {
		data = binary.LittleEndian.AppendUint16(data, w)
	}
	test.DemandSuccess(t, b.LoadImage(addr, data))
}

// run the debugger with the input and return the output as lines.
func run(t *testing.T, b *mcu.Board, input ...string) []string {
	t.Helper()
	out := &test.CompareWriter{}
	trm := plainterm.NewPlainTerminal(strings.NewReader(strings.Join(input, "\n")), out)
	dbg := debugger.NewDebugger(b, trm)
	test.ExpectSuccess(t, dbg.Start(context.Background()))
	return strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
}

func TestBreakAndStep(t *testing.T) {
	var monitor strings.Builder
	b := newBoard(t, mcu.NewMSP430, &monitor)

	load16(t, b, 0xfffc, 0x3c00, 0x4400)
	load16(t, b, 0x4400,
		0x40b2, 0x5a80, 0x015c, // MOV #0x5a80, &WDTCTL
		0x40f2, 0x0041, 0x0604, // MOV.B #'A', &PUTC
		0x40f2, 0x000a, 0x0604, // MOV.B #'\n', &PUTC
		0x4382, 0x0600, // CLR &EXIT
	)
	b.PowerOn()

	output := run(t, b,
		"break $4406",
		"list",
		"run",
		"reg pc",
		"peek $4406 6",
		"poke $4408 0x42",
		"step",
		"clear $4406",
		"list",
		"run",
		"state",
		"quit",
	)

	expected := []string{
		"breakpoint at 0x004406",
		"0x004406",
		"msp430 0x004406 (stall)",
		"pc=0x004406",
		"0x004406: f2 40 41 00 04 06",
		"0x004408: 42",
		"msp430 0x00440c (stall)",
		"breakpoint at 0x004406 cleared",
		"no breakpoints",
		"msp430 0x004416 (on)",
		"simulation ended",
	}

	test.DemandSuccess(t, len(output) > len(expected))
	for i, s := range expected {
		test.ExpectEquality(t, output[i], s, i)
	}

	// the summary printed by the state command
	test.ExpectSuccess(t, strings.HasPrefix(output[len(expected)], "msp430 at "))
	test.ExpectEquality(t, output[len(expected)+1], "instructions: 4")

	// the poke changed the character written to the monitor
	test.ExpectEquality(t, monitor.String(), "B\n")
}

func TestRegistersAndErrors(t *testing.T) {
	b := newBoard(t, mcu.NewCortexM0, nil)

	// initial stack pointer and reset handler
	load16(t, b, 0, 0x1000, 0x2000, 0x0101, 0x0000)
	load16(t, b, 0x100,
		0x2040, // MOVS r0, #0x40
		0xe7fe, // B .
	)
	b.PowerOn()

	output := run(t, b,
		"step",
		"reg r1 $20",
		"reg 1",
		"reg 99",
		"regs",
		"peek 0x10000000",
		"bogus",
		"step 2",
		"reg r0",
	)

	expected := []string{
		"cortexm0 0x000100 (stall)",
		"r1=0x000020",
		"r1=0x000020",
		"* REG: invalid argument: 99",
	}

	test.DemandEquality(t, len(output), len(expected)+5+4)
	for i, s := range expected {
		test.ExpectEquality(t, output[i], s, i)
	}

	// seventeen registers, four to a line
	regs := output[len(expected) : len(expected)+5]
	test.ExpectSuccess(t, strings.HasPrefix(regs[0], "  r0=0x000000"))
	test.ExpectSuccess(t, strings.Contains(regs[0], "  r1=0x000020"))
	test.ExpectSuccess(t, strings.HasPrefix(regs[4], "xpsr="))

	rest := output[len(expected)+5:]
	test.ExpectEquality(t, rest[0], "* PEEK: no memory at 0x10000000")
	test.ExpectEquality(t, rest[1], "* unknown command: BOGUS")
	test.ExpectEquality(t, rest[2], "cortexm0 0x000102 (stall)")
	test.ExpectEquality(t, rest[3], "r0=0x000040")
}

func TestDot(t *testing.T) {
	b := newBoard(t, mcu.NewMSP430, nil)
	fn := filepath.Join(t.TempDir(), "board.dot")

	output := run(t, b, "dot "+fn, "help step", "help nothing")
	test.DemandEquality(t, len(output), 4)
	test.ExpectEquality(t, output[0], "topology written to "+fn)
	test.ExpectEquality(t, output[1], "STEP [n]")
	test.ExpectEquality(t, output[3], "no help for nothing")

	dot, err := os.ReadFile(fn)
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, strings.Contains(string(dot), "digraph"))
	test.ExpectSuccess(t, strings.Contains(string(dot), "vectors"))
}
