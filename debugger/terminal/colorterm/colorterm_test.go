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

package colorterm_test

import (
	"io"
	"strings"
	"testing"

	"github.com/fusedsim/fused/debugger/commandline"
	"github.com/fusedsim/fused/debugger/terminal"
	"github.com/fusedsim/fused/debugger/terminal/colorterm"
	"github.com/fusedsim/fused/test"
)

func TestReadLine(t *testing.T) {
	out := &test.CompareWriter{}
	ct := colorterm.NewColorTerminal(strings.NewReader("step 2\rquit\r"), out)
	test.DemandSuccess(t, ct.Initialise())
	defer ct.CleanUp()

	test.ExpectFailure(t, ct.IsInteractive())

	s, err := ct.TermRead(terminal.Prompt{Content: "test"})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, s, "step 2")

	s, err = ct.TermRead(terminal.Prompt{Content: "test", Stalled: true})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, s, "quit")

	_, err = ct.TermRead(terminal.Prompt{Content: "test"})
	test.ExpectEquality(t, err, io.EOF)

	test.ExpectSuccess(t, strings.Contains(out.String(), "[ test ] >> "))
}

func TestTabCompletion(t *testing.T) {
	ct := colorterm.NewColorTerminal(strings.NewReader("re\t\r"), io.Discard)
	ct.RegisterTabCompletion(commandline.NewTabCompletion([]string{"regs", "run"}))

	s, err := ct.TermRead(terminal.Prompt{})
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, s, "REGS ")
}

func TestPrintLine(t *testing.T) {
	out := &test.CompareWriter{}
	ct := colorterm.NewColorTerminal(strings.NewReader(""), out)

	ct.TermPrintLine(terminal.StyleEcho, "echo")
	test.ExpectSuccess(t, out.Compare(""))

	ct.TermPrintLine(terminal.StyleFeedback, "feedback")
	test.ExpectSuccess(t, out.Compare("feedback\r\n"))

	out.Clear()
	ct.Silence(true)
	ct.TermPrintLine(terminal.StyleFeedback, "feedback")
	test.ExpectSuccess(t, out.Compare(""))
	ct.TermPrintLine(terminal.StyleError, "error")
	test.ExpectSuccess(t, strings.Contains(out.String(), "error"))
}
