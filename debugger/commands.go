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
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fusedsim/fused/curated"
	"github.com/fusedsim/fused/debugger/commandline"
	"github.com/fusedsim/fused/debugger/terminal"
	"github.com/fusedsim/fused/logger"
)

// List of commands understood by the debugger.
const (
	cmdStep  = "STEP"
	cmdRun   = "RUN"
	cmdStall = "STALL"
	cmdBreak = "BREAK"
	cmdClear = "CLEAR"
	cmdList  = "LIST"
	cmdRegs  = "REGS"
	cmdReg   = "REG"
	cmdPeek  = "PEEK"
	cmdPoke  = "POKE"
	cmdState = "STATE"
	cmdLog   = "LOG"
	cmdDot   = "DOT"
	cmdHelp  = "HELP"
	cmdQuit  = "QUIT"
)

var commandNames = []string{
	cmdStep, cmdRun, cmdStall, cmdBreak, cmdClear, cmdList, cmdRegs, cmdReg,
	cmdPeek, cmdPoke, cmdState, cmdLog, cmdDot, cmdHelp, cmdQuit,
}

// the number of log entries shown by the LOG command if no number is given
const defaultLogTail = 10

// the number of bytes shown on each line of PEEK output
const peekWidth = 16

func (dbg *Debugger) parseInput(ctx context.Context, input string) error {
	tk := commandline.TokeniseInput(input)

	command, ok := tk.Get()
	if !ok {
		return nil
	}
	command = strings.ToUpper(command)

	dbg.printLine(terminal.StyleEcho, tk.String())

	switch command {
	case cmdStep:
		n := uint64(1)
		if arg, ok := tk.Get(); ok {
			n, ok = commandline.ParseNumber(arg, 32)
			if !ok || n == 0 {
				return curated.Errorf(BadArgument, command, arg)
			}
		}

		for range n {
			if dbg.hasEnded() {
				break // for loop
			}
			dbg.board.Core.Step()
			if err := dbg.waitStalled(ctx); err != nil {
				return err
			}
		}
		dbg.printCPU()

	case cmdRun:
		err := dbg.run(ctx)
		if err != nil {
			return err
		}
		dbg.printCPU()

	case cmdStall:
		dbg.board.Core.Stall()
		sctx, cancel := context.WithTimeout(ctx, stallTimeout)
		defer cancel()
		if dbg.board.Core.WaitStalled(sctx) != nil {
			dbg.printLine(terminal.StyleFeedback, "core will stall at the next instruction boundary")
			return nil
		}
		dbg.printCPU()

	case cmdBreak:
		addr, err := dbg.address(command, tk)
		if err != nil {
			return err
		}
		dbg.board.Core.InsertBreakpoint(addr)
		dbg.printLine(terminal.StyleFeedback, fmt.Sprintf("breakpoint at %#08x", addr))

	case cmdClear:
		if tk.IsEnd() {
			for _, addr := range dbg.board.Core.Breakpoints() {
				dbg.board.Core.RemoveBreakpoint(addr)
			}
			dbg.printLine(terminal.StyleFeedback, "breakpoints cleared")
			return nil
		}
		addr, err := dbg.address(command, tk)
		if err != nil {
			return err
		}
		dbg.board.Core.RemoveBreakpoint(addr)
		dbg.printLine(terminal.StyleFeedback, fmt.Sprintf("breakpoint at %#08x cleared", addr))

	case cmdList:
		bps := dbg.board.Core.Breakpoints()
		if len(bps) == 0 {
			dbg.printLine(terminal.StyleFeedback, "no breakpoints")
		}
		for _, addr := range bps {
			dbg.printLine(terminal.StyleFeedback, fmt.Sprintf("%#08x", addr))
		}

	case cmdRegs:
		if !dbg.inspectable() {
			return curated.Errorf(CoreNotStalled, command)
		}
		dbg.printRegisters()

	case cmdReg:
		if !dbg.inspectable() {
			return curated.Errorf(CoreNotStalled, command)
		}

		arg, ok := tk.Get()
		if !ok {
			return curated.Errorf(MissingArgument, command)
		}
		idx, ok := dbg.registerIndex(arg)
		if !ok {
			return curated.Errorf(BadArgument, command, arg)
		}

		if arg, ok := tk.Get(); ok {
			v, ok := commandline.ParseNumber(arg, 32)
			if !ok {
				return curated.Errorf(BadArgument, command, arg)
			}
			err := dbg.board.Core.WriteRegister(idx, uint32(v))
			if err != nil {
				return err
			}
		}

		isa := dbg.board.Core.ISA()
		dbg.printLine(terminal.StyleFeedback, fmt.Sprintf("%s=%#08x", isa.RegisterName(idx), dbg.board.Core.ReadRegister(idx)))

	case cmdPeek:
		if !dbg.inspectable() {
			return curated.Errorf(CoreNotStalled, command)
		}

		addr, err := dbg.address(command, tk)
		if err != nil {
			return err
		}

		n := uint64(1)
		if arg, ok := tk.Get(); ok {
			n, ok = commandline.ParseNumber(arg, 16)
			if !ok || n == 0 {
				return curated.Errorf(BadArgument, command, arg)
			}
		}

		data := dbg.board.Core.ReadMemory(addr, int(n))
		if len(data) == 0 {
			return curated.Errorf(UnroutedMemory, command, addr)
		}
		dbg.printMemory(addr, data)

	case cmdPoke:
		if !dbg.inspectable() {
			return curated.Errorf(CoreNotStalled, command)
		}

		addr, err := dbg.address(command, tk)
		if err != nil {
			return err
		}

		var data []byte
		for arg, ok := tk.Get(); ok; arg, ok = tk.Get() {
			v, ok := commandline.ParseNumber(arg, 8)
			if !ok {
				return curated.Errorf(BadArgument, command, arg)
			}
			data = append(data, byte(v))
		}
		if len(data) == 0 {
			return curated.Errorf(MissingArgument, command)
		}

		if !dbg.board.Core.WriteMemory(addr, data) {
			return curated.Errorf(UnroutedMemory, command, addr)
		}
		dbg.printMemory(addr, dbg.board.Core.ReadMemory(addr, len(data)))

	case cmdState:
		if !dbg.inspectable() {
			c := dbg.board.Core
			dbg.printLine(terminal.StyleFeedback, fmt.Sprintf("%s (%s)", c.ISA().Name(), c.State()))
			dbg.printLine(terminal.StyleFeedback, fmt.Sprintf("instructions: %d", c.Instructions()))
			return nil
		}
		dbg.board.Summary(styleWriter{dbg: dbg, style: terminal.StyleFeedback})

	case cmdLog:
		n := uint64(defaultLogTail)
		if arg, ok := tk.Get(); ok {
			n, ok = commandline.ParseNumber(arg, 16)
			if !ok {
				return curated.Errorf(BadArgument, command, arg)
			}
		}
		logger.Tail(styleWriter{dbg: dbg, style: terminal.StyleLog}, int(n))

	case cmdDot:
		filename, ok := tk.Get()
		if !ok {
			return curated.Errorf(MissingArgument, command)
		}

		f, err := os.Create(filename)
		if err != nil {
			return err
		}
		WriteDot(f, dbg.board)
		err = f.Close()
		if err != nil {
			return err
		}
		dbg.printLine(terminal.StyleFeedback, fmt.Sprintf("topology written to %s", filename))

	case cmdHelp:
		dbg.printHelp(tk)

	case cmdQuit:
		dbg.quit = true

	default:
		return curated.Errorf(UnknownCommand, command)
	}

	return nil
}

// run the core until it stalls or until the simulation ends. An interrupt
// signal stalls the core.
func (dbg *Debugger) run(ctx context.Context) error {
	// discard interrupts received while waiting for input
	select {
	case <-dbg.interrupt:
	default:
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-dbg.interrupt:
			dbg.board.Core.Stall()
		case <-ctx.Done():
		}
	}()

	dbg.board.Core.Unstall()

	return dbg.waitStalled(ctx)
}

func (dbg *Debugger) address(command string, tk *commandline.Tokens) (uint32, error) {
	arg, ok := tk.Get()
	if !ok {
		return 0, curated.Errorf(MissingArgument, command)
	}
	v, ok := commandline.ParseNumber(arg, 32)
	if !ok {
		return 0, curated.Errorf(BadArgument, command, arg)
	}
	return uint32(v), nil
}

// registerIndex accepts a register name or a register number.
func (dbg *Debugger) registerIndex(arg string) (int, bool) {
	isa := dbg.board.Core.ISA()

	for i := range isa.NumRegisters() {
		if strings.EqualFold(isa.RegisterName(i), arg) {
			return i, true
		}
	}

	i, err := strconv.Atoi(arg)
	if err != nil || i < 0 || i >= isa.NumRegisters() {
		return 0, false
	}
	return i, true
}

// printCPU prints the address of the next instruction and the state of the
// core.
func (dbg *Debugger) printCPU() {
	if !dbg.inspectable() {
		return
	}

	c := dbg.board.Core
	if addr, ok := c.ISA().BreakpointAddress(); ok {
		dbg.printLine(terminal.StyleCPUStep, fmt.Sprintf("%s %#08x (%s)", c.ISA().Name(), addr, c.State()))
	} else {
		dbg.printLine(terminal.StyleCPUStep, fmt.Sprintf("%s (%s)", c.ISA().Name(), c.State()))
	}
}

// the number of registers shown on each line of REGS output
const regsWidth = 4

func (dbg *Debugger) printRegisters() {
	c := dbg.board.Core
	isa := c.ISA()

	s := strings.Builder{}
	for i := range isa.NumRegisters() {
		if i > 0 {
			if i%regsWidth == 0 {
				dbg.printLine(terminal.StyleFeedback, s.String())
				s.Reset()
			} else {
				s.WriteString(" ")
			}
		}
		fmt.Fprintf(&s, "%4s=%#08x", isa.RegisterName(i), c.ReadRegister(i))
	}
	if s.Len() > 0 {
		dbg.printLine(terminal.StyleFeedback, s.String())
	}
}

func (dbg *Debugger) printMemory(addr uint32, data []byte) {
	for len(data) > 0 {
		n := min(len(data), peekWidth)
		s := strings.Builder{}
		fmt.Fprintf(&s, "%#08x:", addr)
		for _, b := range data[:n] {
			fmt.Fprintf(&s, " %02x", b)
		}
		dbg.printLine(terminal.StyleFeedback, s.String())
		addr += uint32(n)
		data = data[n:]
	}
}
