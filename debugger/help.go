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
	"fmt"
	"strings"

	"github.com/fusedsim/fused/debugger/commandline"
	"github.com/fusedsim/fused/debugger/terminal"
)

var commandHelp = map[string]string{
	cmdStep:  "STEP [n]\n\tExecute n instructions (default 1) and stall",
	cmdRun:   "RUN\n\tRun until a breakpoint, an interrupt signal or the end of the simulation",
	cmdStall: "STALL\n\tStall the core at the next instruction boundary",
	cmdBreak: "BREAK addr\n\tAdd a breakpoint",
	cmdClear: "CLEAR [addr]\n\tRemove a breakpoint or every breakpoint",
	cmdList:  "LIST\n\tList breakpoints",
	cmdRegs:  "REGS\n\tShow every register",
	cmdReg:   "REG reg [value]\n\tShow or change a register. Registers can be named or numbered",
	cmdPeek:  "PEEK addr [n]\n\tShow n bytes of memory (default 1)",
	cmdPoke:  "POKE addr byte...\n\tChange memory",
	cmdState: "STATE\n\tShow the state of the board",
	cmdLog:   "LOG [n]\n\tShow the most recent n log entries",
	cmdDot:   "DOT file\n\tWrite the topology of the board as a graphviz file",
	cmdHelp:  "HELP [command]\n\tShow help",
	cmdQuit:  "QUIT\n\tEnd the simulation and exit",
}

func (dbg *Debugger) printHelp(tk *commandline.Tokens) {
	if arg, ok := tk.Get(); ok {
		if h, ok := commandHelp[strings.ToUpper(arg)]; ok {
			for _, l := range strings.Split(h, "\n") {
				dbg.printLine(terminal.StyleHelp, strings.ReplaceAll(l, "\t", "  "))
			}
			return
		}
		dbg.printLine(terminal.StyleHelp, fmt.Sprintf("no help for %s", arg))
		return
	}

	dbg.printLine(terminal.StyleHelp, strings.Join(commandNames, " "))
}
