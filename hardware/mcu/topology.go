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

package mcu

import (
	"fmt"
)

// Topology is a plain description of how a Board is wired. It contains no
// references to the live simulation and so is safe to walk with reflection.
type Topology struct {
	Board  string
	CPU    string
	Period string
	Bus    BusTopology
	IRQ    []int
}

// BusTopology describes the router of a Board.
type BusTopology struct {
	Delay   string
	Targets []TargetTopology
}

// TargetTopology describes a single target on the bus.
type TargetTopology struct {
	Name  string
	Start uint32
	End   uint32
}

func (t TargetTopology) String() string {
	return fmt.Sprintf("%s [%#08x to %#08x]", t.Name, t.Start, t.End)
}

// Topology returns a description of the board. The IRQ field lists the
// interrupt lines that have a peripheral connected.
func (b *Board) Topology() Topology {
	top := Topology{
		Board:  b.Name,
		CPU:    b.Core.ISA().Name(),
		Period: b.Clock.Period().String(),
		Bus: BusTopology{
			Delay: b.Router.Delay().String(),
		},
	}

	for _, t := range b.Router.Targets() {
		tt := TargetTopology{}
		tt.Start, tt.End = t.Range()
		if n, ok := t.(interface{ Name() string }); ok {
			tt.Name = n.Name()
		} else {
			tt.Name = fmt.Sprintf("%T", t)
		}
		top.Bus.Targets = append(top.Bus.Targets, tt)
	}

	for i := 0; i < b.Arbiter.Len(); i++ {
		if b.Arbiter.Connected(i) {
			top.IRQ = append(top.IRQ, i)
		}
	}

	return top
}
