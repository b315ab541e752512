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

import (
	"fmt"
	"strings"
)

// Prompt specifies the prompt text and the prompt style.
type Prompt struct {
	// the CPU name and the address of the next instruction
	Content string

	// the state of the core. the prompt is decorated differently when the
	// core is not stalled
	State string

	// the core is stalled and can be inspected
	Stalled bool
}

// String returns the prompt with standard decoration. Good for terminals with
// no graphical capabilities at all.
func (p Prompt) String() string {
	s := strings.Builder{}
	s.WriteString("[ ")
	s.WriteString(strings.TrimSpace(p.Content))
	if p.State != "" {
		fmt.Fprintf(&s, " (%s)", p.State)
	}
	s.WriteString(" ]")

	if p.Stalled {
		s.WriteString(" >> ")
	} else {
		s.WriteString(" > ")
	}

	return s.String()
}
