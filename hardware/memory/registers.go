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

package memory

import "encoding/binary"

// Register16 returns the little-endian halfword at the offset.
func (t *Target) Register16(offset uint32) uint16 {
	if !t.inRange(offset, 2) {
		return 0
	}
	return binary.LittleEndian.Uint16(t.store[offset:])
}

// SetRegister16 stores a little-endian halfword at the offset.
func (t *Target) SetRegister16(offset uint32, v uint16) {
	if !t.inRange(offset, 2) {
		return
	}
	binary.LittleEndian.PutUint16(t.store[offset:], v)
}

// Register32 returns the little-endian word at the offset.
func (t *Target) Register32(offset uint32) uint32 {
	if !t.inRange(offset, 4) {
		return 0
	}
	return binary.LittleEndian.Uint32(t.store[offset:])
}

// SetRegister32 stores a little-endian word at the offset.
func (t *Target) SetRegister32(offset uint32, v uint32) {
	if !t.inRange(offset, 4) {
		return
	}
	binary.LittleEndian.PutUint32(t.store[offset:], v)
}
