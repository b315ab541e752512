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
	"github.com/fusedsim/fused/hardware/bus"
	"github.com/fusedsim/fused/hardware/cpu/cortexm0"
	"github.com/fusedsim/fused/hardware/interrupts"
	"github.com/fusedsim/fused/hardware/memory"
	"github.com/fusedsim/fused/hardware/peripherals"
	"github.com/fusedsim/fused/hardware/preferences"
	"github.com/fusedsim/fused/hardware/sim"
)

// Addresses of the Cortex-M0 board.
const (
	CortexM0ROM     = 0x00000000
	CortexM0ROMEnd  = 0x0001ffff
	CortexM0RAM     = 0x20000000
	CortexM0RAMEnd  = 0x20007fff
	CortexM0Monitor = 0x40000000
	CortexM0SysTick = 0x40000100
	CortexM0Timer   = 0x40000200
)

// NVIC lines of the Cortex-M0 board.
const (
	CortexM0TimerLine = 0

	cortexm0Lines = 32
)

// NewCortexM0 creates a board with a Cortex-M0 CPU.
func NewCortexM0(p *preferences.Preferences, opts Options) (*Board, error) {
	b := &Board{
		Name:    "cortexm0",
		Kernel:  sim.NewKernel(),
		Power:   sim.NewWire("vcc", false),
		Clock:   sim.NewClock("hclk", preferences.Period(&p.CortexM0Clock)),
		Arbiter: interrupts.NewArbiter("nvic", cortexm0Lines),
	}

	delay := memoryDelay(p, b.Clock)

	b.memories = []*memory.Target{
		memory.NewTarget("rom", CortexM0ROM, CortexM0ROMEnd,
			memory.WithDelay(delay), memory.WithPower(b.Power)),
		memory.NewTarget("ram", CortexM0RAM, CortexM0RAMEnd,
			memory.WithDelay(delay), memory.WithPower(b.Power), memory.Volatile()),
	}

	systick := interrupts.NewLine("systick")

	b.Monitor = peripherals.NewMonitor("monitor", CortexM0Monitor, b.Kernel, opts.Output)
	b.SysTick = peripherals.NewIntervalTimer("systick", CortexM0SysTick, b.Kernel, b.Clock, systick, b.Power)
	b.Timer = peripherals.NewIntervalTimer("timer", CortexM0Timer, b.Kernel, b.Clock,
		b.Arbiter.Connect(CortexM0TimerLine), b.Power)

	targets := []bus.Target{b.Monitor.Target(), b.SysTick.Target(), b.Timer.Target()}
	for _, m := range b.memories {
		targets = append(targets, m)
	}
	if err := b.wire(p, targets); err != nil {
		return nil, err
	}

	cpu := cortexm0.NewCPU(b.Name, b.Kernel, b.Bus, b.Clock, systick, b.Arbiter)
	cpu.SetROMStart(uint32(p.ROMStart.Get().(int)))

	b.attach(p, cpu, opts)

	return b, nil
}
