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

package commandline

import (
	"slices"
	"strings"
)

// TabCompletion completes the first word of the input from a list of command
// names. Repeated calls with the same input cycle through the matching
// commands.
type TabCompletion struct {
	commands []string

	// the matches for the most recent input and the index of the last match
	// to be returned
	matches []string
	match   int
	last    string
}

// NewTabCompletion is the preferred method of initialisation for the
// TabCompletion type. Command names are stored in upper case.
func NewTabCompletion(commands []string) *TabCompletion {
	tc := &TabCompletion{}
	for _, c := range commands {
		tc.commands = append(tc.commands, strings.ToUpper(c))
	}
	slices.Sort(tc.commands)
	return tc
}

// Complete returns the completed input. The input is returned unchanged if
// there is nothing to complete.
func (tc *TabCompletion) Complete(input string) string {
	// cycle through matches if the input is the previous completion
	if input == tc.last && len(tc.matches) > 1 {
		tc.match = (tc.match + 1) % len(tc.matches)
		tc.last = tc.matches[tc.match] + " "
		return tc.last
	}

	// only the command word is completed
	if strings.ContainsAny(input, " \t") {
		return input
	}

	tc.matches = tc.matches[:0]
	prefix := strings.ToUpper(input)
	for _, c := range tc.commands {
		if strings.HasPrefix(c, prefix) {
			tc.matches = append(tc.matches, c)
		}
	}

	if len(tc.matches) == 0 {
		tc.last = ""
		return input
	}

	tc.match = 0
	tc.last = tc.matches[0] + " "
	return tc.last
}

// Reset forgets the previous completion.
func (tc *TabCompletion) Reset() {
	tc.matches = tc.matches[:0]
	tc.match = 0
	tc.last = ""
}
