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

package peripherals

import (
	"fmt"

	"github.com/fusedsim/fused/hardware/bus"
	"github.com/fusedsim/fused/hardware/interrupts"
	"github.com/fusedsim/fused/hardware/memory"
	"github.com/fusedsim/fused/hardware/sim"
)

// Interval indicates how often (in clock cycles) the timer count decreases.
type Interval int

// List of valid Interval values.
const (
	DIV1    Interval = 1
	DIV8    Interval = 8
	DIV64   Interval = 64
	DIV1024 Interval = 1024
)

// the interval selected by the two divider bits of the control register
var intervals = [...]Interval{DIV1, DIV8, DIV64, DIV1024}

func (in Interval) String() string {
	switch in {
	case DIV1:
		return "DIV1"
	case DIV8:
		return "DIV8"
	case DIV64:
		return "DIV64"
	case DIV1024:
		return "DIV1024"
	}
	return "unknown timer interval"
}

// Offsets of the 16-bit timer registers.
const (
	TimerCTL = 0x00
	TimerCCR = 0x02
	TimerCNT = 0x04
	TimerFLG = 0x06

	timerSize = 0x08
)

// Bits of the TimerCTL register.
const (
	TimerEnable  = 0x0001
	TimerDivider = 0x0006
	TimerOneShot = 0x0008
)

// TimerDividerBits returns the TimerCTL bits that select the interval.
func TimerDividerBits(in Interval) uint16 {
	for i, v := range intervals {
		if v == in {
			return uint16(i) << 1
		}
	}
	return 0
}

// IntervalTimer counts down from the value in the TimerCCR register and
// requests an interrupt when the count reaches zero. The count is reloaded
// unless the TimerOneShot bit is set.
//
// The interrupt request is released when it is acknowledged or when the
// TimerFLG register is written.
type IntervalTimer struct {
	name   string
	kernel *sim.Kernel
	clock  *sim.Clock
	line   *interrupts.Line
	regs   *memory.Target

	// the interval most recently selected by the control register
	Divider Interval

	running bool

	// the time at which the count reaches zero
	deadline sim.Time

	// incremented whenever the timer is started or stopped. an expiry
	// scheduled in an earlier generation is ignored
	generation int

	expiries int
}

// NewIntervalTimer is the preferred method of initialisation for the
// IntervalTimer type. The registers are placed at the base address. The
// power wire can be nil.
func NewIntervalTimer(name string, base uint32, kernel *sim.Kernel, clock *sim.Clock, line *interrupts.Line, power *sim.Wire) *IntervalTimer {
	tmr := &IntervalTimer{
		name:    name,
		kernel:  kernel,
		clock:   clock,
		line:    line,
		Divider: DIV1,
	}

	opts := []memory.Option{memory.WithHooks(tmr)}
	if power != nil {
		opts = append(opts, memory.WithPower(power), memory.Volatile())
		power.Negedge().Subscribe(tmr.powerOff)
	}
	tmr.regs = memory.NewTarget(name, base, base+timerSize-1, opts...)

	line.Ack.Posedge().Subscribe(tmr.clearFlag)

	return tmr
}

func (tmr *IntervalTimer) String() string {
	return fmt.Sprintf("%s: CNT=%#04x CCR=%#04x intv=%s FLG=%v",
		tmr.name,
		tmr.count(),
		tmr.regs.Register16(TimerCCR),
		tmr.Divider,
		tmr.regs.Register16(TimerFLG) != 0,
	)
}

// Target returns the register block of the timer.
func (tmr *IntervalTimer) Target() bus.Target {
	return tmr.regs
}

// Running returns true if the timer is counting.
func (tmr *IntervalTimer) Running() bool {
	return tmr.running
}

// Expiries returns the number of times the count has reached zero.
func (tmr *IntervalTimer) Expiries() int {
	return tmr.expiries
}

// count returns the current value of the counter, rounded up to the next
// whole tick.
func (tmr *IntervalTimer) count() uint16 {
	if !tmr.running {
		return 0
	}
	cycles := tmr.clock.CyclesIn(tmr.deadline - tmr.kernel.Now())
	div := uint64(tmr.Divider)
	return uint16((cycles + div - 1) / div)
}

func covers(offset uint32, length int, reg uint32) bool {
	return reg >= offset && reg < offset+uint32(length)
}

// BeforeRead implements the memory.ReadHook interface.
func (tmr *IntervalTimer) BeforeRead(offset uint32, length int) bus.Status {
	if covers(offset, length, TimerCNT) {
		tmr.regs.SetRegister16(TimerCNT, tmr.count())
	}
	return bus.OK
}

// AfterWrite implements the memory.WriteHook interface.
func (tmr *IntervalTimer) AfterWrite(offset uint32, data []byte) bus.Status {
	if covers(offset, len(data), TimerFLG) {
		tmr.clearFlag()
	}
	if covers(offset, len(data), TimerCTL) {
		ctl := tmr.regs.Register16(TimerCTL)
		tmr.Divider = intervals[(ctl&TimerDivider)>>1]
		if ctl&TimerEnable == TimerEnable {
			tmr.start()
		} else {
			tmr.stop()
		}
	}
	return bus.OK
}

func (tmr *IntervalTimer) start() {
	tmr.generation++

	ccr := tmr.regs.Register16(TimerCCR)
	if ccr == 0 {
		tmr.running = false
		return
	}

	tmr.running = true
	tmr.deadline = tmr.kernel.Now() + tmr.clock.Cycles(int(ccr)*int(tmr.Divider))

	g := tmr.generation
	tmr.kernel.Schedule(tmr.deadline, func() {
		if g == tmr.generation {
			tmr.expire()
		}
	})
}

func (tmr *IntervalTimer) stop() {
	tmr.generation++
	tmr.running = false
}

func (tmr *IntervalTimer) expire() {
	tmr.expiries++

	tmr.regs.SetRegister16(TimerFLG, 1)
	tmr.line.Request.Write(true)

	ctl := tmr.regs.Register16(TimerCTL)
	if ctl&TimerOneShot == TimerOneShot {
		tmr.regs.SetRegister16(TimerCTL, ctl&^TimerEnable)
		tmr.stop()
		return
	}

	tmr.start()
}

func (tmr *IntervalTimer) clearFlag() {
	tmr.regs.SetRegister16(TimerFLG, 0)
	tmr.line.Request.Write(false)
}

func (tmr *IntervalTimer) powerOff() {
	tmr.stop()
	tmr.line.Request.Write(false)
}
