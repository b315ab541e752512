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

// Package colorterm implements the Terminal interface for the debugger. It
// supports color output, history and tab completion.
//
// Line editing is provided by golang.org/x/term. The terminal is put into raw
// mode only while a line is being read so that the interrupt key works as
// normal while the simulation is running.
package colorterm

import (
	"io"
	"os"

	"golang.org/x/term"

	"github.com/fusedsim/fused/debugger/terminal"
)

// ColorTerminal implements debugger UI interface with a basic ANSI terminal.
type ColorTerminal struct {
	term *term.Terminal

	// file descriptor of the input if it is a real terminal. -1 otherwise
	fd int

	tabCompletion terminal.TabCompletion

	silenced bool
}

// NewColorTerminal is the preferred method of initialisation for the
// ColorTerminal type.
func NewColorTerminal(input io.Reader, output io.Writer) *ColorTerminal {
	ct := &ColorTerminal{
		fd: -1,
	}

	if f, ok := input.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		ct.fd = int(f.Fd())
	}

	ct.term = term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{input, output}, "")

	ct.term.AutoCompleteCallback = ct.complete

	return ct
}

// Initialise perfoms any setting up required for the terminal.
func (ct *ColorTerminal) Initialise() error {
	if ct.fd >= 0 {
		w, h, err := term.GetSize(ct.fd)
		if err == nil {
			return ct.term.SetSize(w, h)
		}
	}
	return nil
}

// CleanUp perfoms any cleaning up required for the terminal.
func (ct *ColorTerminal) CleanUp() {
	ct.term.Write(ct.term.Escape.Reset)
}

// RegisterTabCompletion adds an implementation of TabCompletion to the
// ColorTerminal.
func (ct *ColorTerminal) RegisterTabCompletion(tc terminal.TabCompletion) {
	ct.tabCompletion = tc
}

func (ct *ColorTerminal) complete(line string, pos int, key rune) (string, int, bool) {
	if ct.tabCompletion == nil {
		return "", 0, false
	}

	if key != '\t' {
		ct.tabCompletion.Reset()
		return "", 0, false
	}

	s := ct.tabCompletion.Complete(line[:pos])
	return s, len(s), true
}

// IsInteractive implements the terminal.Input interface.
func (ct *ColorTerminal) IsInteractive() bool {
	return ct.fd >= 0
}

// Silence implements the terminal.Terminal interface.
func (ct *ColorTerminal) Silence(silenced bool) {
	ct.silenced = silenced
}

// TermRead implements the terminal.Input interface.
func (ct *ColorTerminal) TermRead(prompt terminal.Prompt) (string, error) {
	if ct.fd >= 0 {
		state, err := term.MakeRaw(ct.fd)
		if err != nil {
			return "", err
		}
		defer term.Restore(ct.fd, state)
	}

	pen := ct.term.Escape.Blue
	if prompt.Stalled {
		pen = ct.term.Escape.Yellow
	}
	ct.term.SetPrompt(string(pen) + prompt.String() + string(ct.term.Escape.Reset))

	return ct.term.ReadLine()
}

// TermPrintLine implements the terminal.Output interface.
func (ct *ColorTerminal) TermPrintLine(style terminal.Style, s string) {
	if ct.silenced && style != terminal.StyleError {
		return
	}

	var pen []byte

	switch style {
	case terminal.StyleEcho:
		// the line editor has already echoed the input
		return
	case terminal.StyleHelp:
		pen = ct.term.Escape.White
	case terminal.StyleCPUStep:
		pen = ct.term.Escape.Yellow
	case terminal.StyleLog:
		pen = ct.term.Escape.Cyan
	case terminal.StyleError:
		pen = ct.term.Escape.Red
	}

	b := make([]byte, 0, len(pen)+len(s)+8)
	b = append(b, pen...)
	b = append(b, s...)
	if len(pen) > 0 {
		b = append(b, ct.term.Escape.Reset...)
	}
	b = append(b, '\n')

	ct.term.Write(b)
}
