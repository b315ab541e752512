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
	"io"
	"strings"

	"github.com/fusedsim/fused/curated"
	"github.com/fusedsim/fused/hardware/bus"
	"github.com/fusedsim/fused/hardware/memory"
	"github.com/fusedsim/fused/hardware/sim"
	"github.com/fusedsim/fused/logger"
)

// ExitCode is the error pattern used to stop the simulation when a program
// exits with a non-zero code.
const ExitCode = "monitor: exit code %d"

// Offsets of the 32-bit monitor registers.
const (
	MonitorExit = 0x00
	MonitorPutc = 0x04
	MonitorPass = 0x08
	MonitorFail = 0x0c

	monitorSize = 0x10
)

// Monitor is a register block through which a program reports to the
// simulator. Writing MonitorExit stops the simulation. A byte written to
// MonitorPutc is sent to the output and logged when a line is complete.
// Writes to MonitorPass and MonitorFail are counted.
type Monitor struct {
	name   string
	kernel *sim.Kernel
	regs   *memory.Target
	output io.Writer

	line strings.Builder

	passes   int
	failures int
}

// NewMonitor is the preferred method of initialisation for the Monitor type.
// The output can be nil.
func NewMonitor(name string, base uint32, kernel *sim.Kernel, output io.Writer) *Monitor {
	mon := &Monitor{
		name:   name,
		kernel: kernel,
		output: output,
	}
	mon.regs = memory.NewTarget(name, base, base+monitorSize-1, memory.WithHooks(mon))
	return mon
}

// Target returns the register block of the monitor.
func (mon *Monitor) Target() bus.Target {
	return mon.regs
}

// Passes returns the number of writes to the pass register.
func (mon *Monitor) Passes() int {
	return mon.passes
}

// Failures returns the number of writes to the fail register.
func (mon *Monitor) Failures() int {
	return mon.failures
}

// value of a little-endian write of up to four bytes
func value(data []byte) uint32 {
	var v uint32
	for i := len(data) - 1; i >= 0; i-- {
		v = v<<8 | uint32(data[i])
	}
	return v
}

// AfterWrite implements the memory.WriteHook interface.
func (mon *Monitor) AfterWrite(offset uint32, data []byte) bus.Status {
	switch offset &^ 0x03 {
	case MonitorExit:
		code := value(data)
		mon.flush()
		if code == 0 {
			logger.Logf(logger.Allow, mon.name, "exit at %s", mon.kernel.Now())
			mon.kernel.Stop(nil)
		} else {
			err := curated.Errorf(ExitCode, code)
			logger.Log(logger.Allow, mon.name, err)
			mon.kernel.Stop(err)
		}

	case MonitorPutc:
		c := data[0]
		if mon.output != nil {
			mon.output.Write([]byte{c})
		}
		if c == '\n' {
			mon.flush()
		} else {
			mon.line.WriteByte(c)
		}

	case MonitorPass:
		mon.passes++

	case MonitorFail:
		mon.failures++
		logger.Logf(logger.Allow, mon.name, "failure #%d reported (%#x)", mon.failures, value(data))
	}

	return bus.OK
}

func (mon *Monitor) flush() {
	if mon.line.Len() == 0 {
		return
	}
	logger.Log(logger.Allow, mon.name, mon.line.String())
	mon.line.Reset()
}
