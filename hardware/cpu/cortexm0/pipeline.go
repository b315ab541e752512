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

package cortexm0

import (
	"github.com/fusedsim/fused/hardware/cpu/thumb"
)

// number of halfwords held by the pipeline between instructions
const pipelineDepth = 2

// pipeline is the queue of fetched halfwords. One extra entry is needed
// because a halfword is pushed before the front of the queue is popped.
type pipeline struct {
	entries [pipelineDepth + 1]uint16
	n       int

	// number of NOPs in the queue that were injected by a flush
	bubbles int
}

func (p *pipeline) push(v uint16) {
	if p.n == len(p.entries) {
		p.pop()
	}
	p.entries[p.n] = v
	p.n++
}

func (p *pipeline) pop() uint16 {
	if p.n == 0 {
		return thumb.OpcodeNOP
	}
	v := p.entries[0]
	copy(p.entries[:], p.entries[1:p.n])
	p.n--
	return v
}

// flush the pipeline and refill it with NOPs.
func (cpu *CPU) flush() {
	cpu.queue.n = 0
	for range pipelineDepth {
		cpu.queue.push(thumb.OpcodeNOP)
	}
	cpu.queue.bubbles = pipelineDepth
}

// hooks is the context through which the interpreter calls back into the CPU.
type hooks struct {
	cpu *CPU
}

func (h *hooks) ReadMemory(addr uint32, data []byte) error {
	return h.cpu.mem.Read(addr, data)
}

func (h *hooks) WriteMemory(addr uint32, data []byte) error {
	return h.cpu.mem.Write(addr, data)
}

func (h *hooks) ConsumeCycles(n int) {
	h.cpu.kernel.Advance(h.cpu.clock.Cycles(n))
	h.cpu.idle.Add(uint64(n))
}

func (h *hooks) ExceptionReturn(excReturn uint32) error {
	return h.cpu.exceptionReturn(excReturn)
}

func (h *hooks) NextInstruction() uint16 {
	return h.cpu.queue.pop()
}

func (h *hooks) BranchTaken() {
	h.cpu.taken = true
}
