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

func isNegative(v uint32, byteOp bool) bool {
	if byteOp {
		return v&0x80 == 0x80
	}
	return v&0x8000 == 0x8000
}

func isZero(v uint32, byteOp bool) bool {
	if byteOp {
		return uint8(v) == 0
	}
	return uint16(v) == 0
}

// isCarry returns true if a + b + c does not fit in the width of the
// operation.
func isCarry(a uint32, b uint32, c bool, byteOp bool) bool {
	var ci uint32
	if c {
		ci = 1
	}
	if byteOp {
		return (a&0xff)+(b&0xff)+ci > 0xff
	}
	return (a&0xffff)+(b&0xffff)+ci > 0xffff
}

// isOverflow returns true if a and b have the same sign and the sign of
// a + b + c is different.
func isOverflow(a uint32, b uint32, c bool, byteOp bool) bool {
	var ci uint32
	if c {
		ci = 1
	}
	res := a + b + ci
	an := isNegative(a, byteOp)
	bn := isNegative(b, byteOp)
	rn := isNegative(res, byteOp)
	return (rn && !an && !bn) || (!rn && an && bn)
}
