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

package thumb

import (
	"strings"
)

// bits of the APSR.
const (
	apsrN = 0x80000000
	apsrZ = 0x40000000
	apsrC = 0x20000000
	apsrV = 0x10000000
)

// the arithmetic flags of the APSR.
type status struct {
	negative bool
	zero     bool
	carry    bool
	overflow bool
}

func (sr status) String() string {
	s := strings.Builder{}

	if sr.negative {
		s.WriteRune('N')
	} else {
		s.WriteRune('n')
	}
	if sr.zero {
		s.WriteRune('Z')
	} else {
		s.WriteRune('z')
	}
	if sr.carry {
		s.WriteRune('C')
	} else {
		s.WriteRune('c')
	}
	if sr.overflow {
		s.WriteRune('V')
	} else {
		s.WriteRune('v')
	}

	return s.String()
}

func (sr status) value() uint32 {
	var v uint32
	if sr.negative {
		v |= apsrN
	}
	if sr.zero {
		v |= apsrZ
	}
	if sr.carry {
		v |= apsrC
	}
	if sr.overflow {
		v |= apsrV
	}
	return v
}

func (sr *status) set(v uint32) {
	sr.negative = v&apsrN == apsrN
	sr.zero = v&apsrZ == apsrZ
	sr.carry = v&apsrC == apsrC
	sr.overflow = v&apsrV == apsrV
}

func (sr *status) isNegative(a uint32) {
	sr.negative = a&0x80000000 == 0x80000000
}

func (sr *status) isZero(a uint32) {
	sr.zero = a == 0x00
}

// overflow of a + b + c where c is the carry in.
func (sr *status) isOverflow(a, b, c uint32) {
	d := (a & 0x7fffffff) + (b & 0x7fffffff) + c
	d >>= 31
	e := (d & 0x01) + ((a >> 31) & 0x01) + ((b >> 31) & 0x01)
	e >>= 1
	sr.overflow = (d^e)&0x01 == 0x01
}

// carry out of a + b + c where c is the carry in.
func (sr *status) isCarry(a, b, c uint32) {
	d := (a & 0x7fffffff) + (b & 0x7fffffff) + c
	d = (d >> 31) + (a >> 31) + (b >> 31)
	sr.carry = d&0x02 == 0x02
}

// conditions from "A6.3 Conditional execution" in "ARMv6-M Architecture
// Reference Manual". Condition 0b1111 is never true.
func (sr status) condition(cond uint8) bool {
	switch cond {
	case 0b0000:
		return sr.zero
	case 0b0001:
		return !sr.zero
	case 0b0010:
		return sr.carry
	case 0b0011:
		return !sr.carry
	case 0b0100:
		return sr.negative
	case 0b0101:
		return !sr.negative
	case 0b0110:
		return sr.overflow
	case 0b0111:
		return !sr.overflow
	case 0b1000:
		return sr.carry && !sr.zero
	case 0b1001:
		return !sr.carry || sr.zero
	case 0b1010:
		return sr.negative == sr.overflow
	case 0b1011:
		return sr.negative != sr.overflow
	case 0b1100:
		return !sr.zero && sr.negative == sr.overflow
	case 0b1101:
		return sr.zero || sr.negative != sr.overflow
	case 0b1110:
		return true
	}
	return false
}

var conditionMnemonics = [...]string{
	"EQ", "NE", "CS", "CC", "MI", "PL", "VS", "VC",
	"HI", "LS", "GE", "LT", "GT", "LE", "", "NV",
}
