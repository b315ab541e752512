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
	"github.com/fusedsim/fused/hardware/cpu/msp430"
	"github.com/fusedsim/fused/hardware/interrupts"
	"github.com/fusedsim/fused/hardware/memory"
	"github.com/fusedsim/fused/hardware/peripherals"
	"github.com/fusedsim/fused/hardware/preferences"
	"github.com/fusedsim/fused/hardware/sim"
)

// Addresses of the MSP430 board.
const (
	MSP430Watchdog = 0x015c
	MSP430Timer    = 0x0340
	MSP430Monitor  = 0x0600
	MSP430SRAM     = 0x1c00
	MSP430SRAMEnd  = 0x3bff
	MSP430FRAM     = 0x4000
	MSP430FRAMEnd  = 0xff7f
	MSP430Vectors  = 0xff80
)

// Interrupt lines of the MSP430 board.
const (
	MSP430ResetLine = 0
	MSP430TimerLine = 10

	msp430Lines = 37
)

// NewMSP430 creates a board with an MSP430 CPU.
func NewMSP430(p *preferences.Preferences, opts Options) (*Board, error) {
	b := &Board{
		Name:     "msp430",
		Kernel:   sim.NewKernel(),
		Power:    sim.NewWire("vcc", false),
		Clock:    sim.NewClock("mclk", preferences.Period(&p.MSP430Clock)),
		Arbiter:  interrupts.NewArbiter("irq", msp430Lines),
		BusStall: sim.NewWire("busStall", false),
	}

	delay := memoryDelay(p, b.Clock)

	b.memories = []*memory.Target{
		memory.NewTarget("wdt", MSP430Watchdog, MSP430Watchdog+1, memory.WithDelay(delay)),
		memory.NewTarget("sram", MSP430SRAM, MSP430SRAMEnd,
			memory.WithDelay(delay), memory.WithPower(b.Power), memory.Volatile()),
		memory.NewTarget("fram", MSP430FRAM, MSP430FRAMEnd,
			memory.WithDelay(delay), memory.WithPower(b.Power)),
		memory.NewTarget("vectors", MSP430Vectors, 0xffff,
			memory.WithDelay(delay), memory.WithPower(b.Power)),
	}

	b.Reset = peripherals.NewResetController("por", b.Power, b.Arbiter.Connect(MSP430ResetLine))
	b.Timer = peripherals.NewIntervalTimer("timer", MSP430Timer, b.Kernel, b.Clock,
		b.Arbiter.Connect(MSP430TimerLine), b.Power)
	b.Monitor = peripherals.NewMonitor("monitor", MSP430Monitor, b.Kernel, opts.Output)

	targets := []bus.Target{b.Timer.Target(), b.Monitor.Target()}
	for _, m := range b.memories {
		targets = append(targets, m)
	}
	if err := b.wire(p, targets); err != nil {
		return nil, err
	}
	b.Bus.SetStall(b.BusStall)

	cpu := msp430.NewCPU(b.Name, b.Kernel, b.Bus, b.Clock, b.Arbiter)
	cpu.SetStackVector(uint16(p.StackVector.Get().(int)))

	b.attach(p, cpu, opts)

	return b, nil
}
