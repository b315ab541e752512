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
	"github.com/fusedsim/fused/curated"
	"github.com/fusedsim/fused/hardware/cpu/thumb"
	"github.com/fusedsim/fused/hardware/interrupts"
	"github.com/fusedsim/fused/logger"
)

// Exception numbers.
const (
	SVCall      = thumb.SVCall
	SysTick     = 15
	ExternalIRQ = 16
)

// EXC_RETURN values written to the LR on exception entry.
const (
	ReturnHandler       = 0xfffffff1
	ReturnThreadMain    = 0xfffffff9
	ReturnThreadProcess = 0xfffffffd
)

// size of the exception stack frame
const frameSize = 0x20

// bit of the stacked xPSR that records the realignment of the stack
const frameAlign = 0x200

// ExceptionCheck implements the core.ISA interface. The supervisor call has
// the highest priority, followed by SysTick and then the NVIC lines. Every
// exception except the supervisor call is masked by PRIMASK, although a
// masked exception still wakes a sleeping CPU.
func (cpu *CPU) ExceptionCheck() (bool, error) {
	cpu.Returning.Write(0)

	if cpu.thumb.IPSR() != 0 {
		return false, nil
	}

	var id uint32
	switch {
	case cpu.thumb.TakeSVC():
		id = SVCall
	case cpu.systick != nil && cpu.systick.Request.Read():
		id = SysTick
	case cpu.nvic != nil && cpu.nvic.Index.Read() != interrupts.NoRequest:
		id = ExternalIRQ + uint32(cpu.nvic.Select())
	default:
		return false, nil
	}

	if cpu.thumb.PRIMASK() && id != SVCall {
		if cpu.sleeping {
			cpu.sleeping = false
			logger.Logf(logger.Allow, cpu.name, "woken by masked exception %d", id)
		}
		return false, nil
	}

	cpu.sleeping = false

	if err := cpu.enter(id); err != nil {
		return true, err
	}

	switch {
	case id == SysTick:
		cpu.systick.Ack.Write(true)
		cpu.systick.Ack.Write(false)
	case id >= ExternalIRQ:
		cpu.nvic.Ack.Write(true)
		cpu.nvic.Ack.Write(false)
	}

	return true, nil
}

// enter the exception handler. "B1.5.6 Exception entry behavior" in "ARMv6-M
// Architecture Reference Manual".
func (cpu *CPU) enter(id uint32) error {
	t := cpu.thumb

	returnAddress := cpu.nextAddress()

	for i := range thumb.NumRegisters {
		cpu.snapshot[i] = t.Register(i)
	}
	cpu.snapshot[thumb.PC] = returnAddress | 0x01
	cpu.snapshot[XPSR] = t.APSR()

	sp := t.Register(thumb.SP)
	align := sp&0x04 == 0x04
	frame := (sp - frameSize) &^ 0x04

	psr := t.XPSR()
	stackedPSR := psr&0xfffffc00 | psr&0x1ff
	if align {
		stackedPSR |= frameAlign
	}

	stacked := [...]uint32{
		t.Register(0), t.Register(1), t.Register(2), t.Register(3),
		t.Register(12), t.Register(thumb.LR), returnAddress, stackedPSR,
	}
	for i, v := range stacked {
		if err := cpu.mem.Write32(frame+uint32(i*4), v); err != nil {
			return err
		}
	}
	t.SetRegister(thumb.SP, frame)

	switch {
	case t.Handler():
		t.SetRegister(thumb.LR, ReturnHandler)
	case t.MainStack():
		t.SetRegister(thumb.LR, ReturnThreadMain)
	default:
		t.SetRegister(thumb.LR, ReturnThreadProcess)
	}

	t.SetHandler(true)
	t.SetIPSR(id)
	t.UseMainStack()

	handler, err := cpu.mem.Read32(cpu.romStart + 4*id)
	if err != nil {
		return err
	}

	cpu.Active.Write(id)
	t.SetPC(handler)
	cpu.flush()

	return nil
}

// exceptionReturn is called by the interpreter when an EXC_RETURN value is
// loaded into the PC in handler mode.
func (cpu *CPU) exceptionReturn(excReturn uint32) error {
	t := cpu.thumb

	cpu.Returning.Write(t.IPSR())

	switch excReturn {
	case ReturnHandler:
		t.SetHandler(true)
		t.UseMainStack()
	case ReturnThreadMain:
		t.SetHandler(false)
		t.UseMainStack()
	case ReturnThreadProcess:
		t.SetHandler(false)
		t.UseProcessStack()
	default:
		err := curated.Errorf(InvalidExceptionReturn, excReturn)
		logger.Log(logger.Allow, cpu.name, err)
		cpu.kernel.Stop(err)
		return err
	}

	t.SetIPSR(0)

	frame := t.Register(thumb.SP)

	var stacked [frameSize / 4]uint32
	for i := range stacked {
		v, err := cpu.mem.Read32(frame + uint32(i*4))
		if err != nil {
			return err
		}
		stacked[i] = v
	}

	for i := range 4 {
		t.SetRegister(i, stacked[i])
	}
	t.SetRegister(12, stacked[4])
	t.SetRegister(thumb.LR, stacked[5])
	t.SetPC(stacked[6] | 0x01)
	t.SetAPSR(stacked[7])

	sp := frame + frameSize
	if stacked[7]&frameAlign == frameAlign {
		sp |= 0x04
	}
	t.SetRegister(thumb.SP, sp)

	cpu.taken = true
	cpu.Active.Write(0)

	cpu.checkSnapshot()

	return nil
}

// checkSnapshot compares the register file with the snapshot taken on
// exception entry.
func (cpu *CPU) checkSnapshot() {
	t := cpu.thumb
	for i := range thumb.NumRegisters {
		if v := t.Register(i); v != cpu.snapshot[i] {
			logger.Logf(logger.Allow, cpu.name, "%s is %#08x after exception return (%#08x on entry)",
				thumb.RegisterName(i), v, cpu.snapshot[i])
		}
	}
	if v := t.APSR(); v != cpu.snapshot[XPSR] {
		logger.Logf(logger.Allow, cpu.name, "apsr is %#08x after exception return (%#08x on entry)", v, cpu.snapshot[XPSR])
	}
}
