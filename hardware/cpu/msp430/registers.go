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

package msp430

import (
	"fmt"
	"strings"
)

// Indexes of the special purpose registers.
const (
	PC = 0
	SP = 1
	SR = 2
	CG = 3

	NumRegisters = 16
)

// RegisterName returns the name of the register with the index.
func RegisterName(idx int) string {
	switch idx {
	case PC:
		return "pc"
	case SP:
		return "sp"
	case SR:
		return "sr"
	case CG:
		return "cg"
	}
	if idx > CG && idx < NumRegisters {
		return fmt.Sprintf("r%d", idx)
	}
	return "invalid"
}

// Status is the value of the status register.
type Status uint16

// Bits of the status register.
const (
	C      Status = 0x0001
	Z      Status = 0x0002
	N      Status = 0x0004
	GIE    Status = 0x0008
	CPUOFF Status = 0x0010
	OSCOFF Status = 0x0020
	SCG0   Status = 0x0040
	SCG1   Status = 0x0080
	V      Status = 0x0100
)

var statusLetters = []struct {
	bit    Status
	letter rune
}{
	{V, 'v'},
	{SCG1, '1'},
	{SCG0, '0'},
	{OSCOFF, 'o'},
	{CPUOFF, 'p'},
	{GIE, 'g'},
	{N, 'n'},
	{Z, 'z'},
	{C, 'c'},
}

// String returns one letter for each bit. Upper case letters indicate that
// the bit is set. The SCG bits are shown as a dash when clear.
func (s Status) String() string {
	b := strings.Builder{}
	for _, l := range statusLetters {
		switch {
		case s&l.bit != l.bit && (l.letter == '0' || l.letter == '1'):
			b.WriteRune('-')
		case s&l.bit == l.bit:
			b.WriteString(strings.ToUpper(string(l.letter)))
		default:
			b.WriteRune(l.letter)
		}
	}
	return b.String()
}
