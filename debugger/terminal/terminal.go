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

package terminal

// Input defines the operations required by an interface that allows input.
type Input interface {
	// TermRead returns the next line of input without the line ending.
	// Returns io.EOF when there is no more input.
	TermRead(prompt Prompt) (string, error)

	// IsInteractive should return true for implementations that require user
	// interaction. Instances that don't expect user intervention should
	// return false.
	IsInteractive() bool
}

// Output defines the operations required by an interface that allows output.
type Output interface {
	TermPrintLine(Style, string)
}

// Terminal defines the operations required by the debugger's command line
// interface.
type Terminal interface {
	Input
	Output

	// Initialise the terminal. Not all terminal implementations will need to
	// do anything.
	Initialise() error

	// Restore the terminal to its original state, if possible.
	CleanUp()

	// Register a tab completion implementation to use with the terminal. Not
	// all implementations need to respond meaningfully to this.
	RegisterTabCompletion(TabCompletion)

	// Silence all output except error messages.
	Silence(silenced bool)
}

// TabCompletion defines the operations required for tab completion. An
// implementation can be found in the commandline package.
type TabCompletion interface {
	Complete(input string) string
	Reset()
}

// Style is used to identify the category of text being sent to the
// Terminal.TermPrintLine() function. The terminal implementation can then
// choose how to display the text.
type Style int

// List of valid Style values.
const (
	// the input as understood by the debugger. terminals that echo input
	// themselves should ignore this style
	StyleEcho Style = iota

	// information in response to a command
	StyleFeedback

	// help text
	StyleHelp

	// the state of the core after a step or stall
	StyleCPUStep

	// entries from the log
	StyleLog

	// errors in commands or from the simulation
	StyleError
)
