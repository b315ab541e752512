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

import (
	"debug/elf"
	"io"

	"github.com/fusedsim/fused/curated"
	"github.com/fusedsim/fused/hardware/bus"
)

// Sentinal error patterns returned by the loader functions.
const (
	LoadFailed = "memory: load failed: %v"
	LoadShort  = "memory: load failed: only %d of %d bytes written at %#08x"
)

// Debugger is the part of the bus.Initiator used by the loader functions.
type Debugger interface {
	WriteDebug(address uint32, data []byte) int
}

var _ Debugger = (*bus.Initiator)(nil)

// LoadImage writes the data at the address using debug transactions.
func LoadImage(dbg Debugger, address uint32, data []byte) error {
	// the image can continue into the next target if the targets are
	// contiguous
	var written int
	for written < len(data) {
		n := dbg.WriteDebug(address+uint32(written), data[written:])
		if n == 0 {
			return curated.Errorf(LoadShort, written, len(data), address)
		}
		written += n
	}
	return nil
}

// LoadELF writes every loadable segment of the ELF file using debug
// transactions. The entry point of the file is returned.
func LoadELF(dbg Debugger, r io.ReaderAt) (uint32, error) {
	f, err := elf.NewFile(r)
	if err != nil {
		return 0, curated.Errorf(LoadFailed, err)
	}
	defer f.Close()

	for _, p := range f.Progs {
		if p.Type != elf.PT_LOAD || p.Filesz == 0 {
			continue
		}

		data := make([]byte, p.Filesz)
		_, err := p.ReadAt(data, 0)
		if err != nil && err != io.EOF {
			return 0, curated.Errorf(LoadFailed, err)
		}

		err = LoadImage(dbg, uint32(p.Paddr), data)
		if err != nil {
			return 0, err
		}
	}

	return uint32(f.Entry), nil
}
