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

package debugger

import (
	"io"

	"github.com/bradleyjkemp/memviz"

	"github.com/fusedsim/fused/hardware/mcu"
)

// WriteDot writes the topology of the board to the writer in the graphviz
// format. The live board is not walked, only a description of it.
func WriteDot(w io.Writer, board *mcu.Board) {
	top := board.Topology()
	memviz.Map(w, &top)
}
