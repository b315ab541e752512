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
	"io"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fusedsim/fused/curated"
	"github.com/fusedsim/fused/debugger/commandline"
	"github.com/fusedsim/fused/debugger/terminal"
	"github.com/fusedsim/fused/hardware/mcu"
)

// Sentinal error patterns.
const (
	DebuggerError   = "debugger: %v"
	UnknownCommand  = "unknown command: %s"
	BadArgument     = "%s: invalid argument: %s"
	MissingArgument = "%s: missing argument"
	CoreNotStalled  = "%s: core must be stalled"
	UnroutedMemory  = "%s: no memory at %#08x"
)

// how long the STALL command waits for the core to park
const stallTimeout = 250 * time.Millisecond

// Debugger is the interactive console for a Board. The simulation runs in its
// own goroutine and is controlled through the run-control surface of the
// core.
type Debugger struct {
	board *mcu.Board
	term  terminal.Terminal

	// interrupt signals from the operating system. nil if the terminal is
	// not interactive
	interrupt chan os.Signal

	// closed when the simulation goroutine has finished. simErr is the error
	// returned by the board and is valid once ended is closed
	ended    chan struct{}
	simErr   error
	reported bool

	quit bool
}

// NewDebugger is the preferred method of initialisation for the Debugger
// type. The board should have been created with the StartStalled option.
func NewDebugger(board *mcu.Board, term terminal.Terminal) *Debugger {
	return &Debugger{
		board: board,
		term:  term,
		ended: make(chan struct{}),
	}
}

// Start the simulation and the input loop. Returns when the input is
// exhausted or when the QUIT command is used. The returned error is the error
// that ended the simulation, if any.
func (dbg *Debugger) Start(ctx context.Context) error {
	err := dbg.term.Initialise()
	if err != nil {
		return curated.Errorf(DebuggerError, err)
	}
	defer dbg.term.CleanUp()

	dbg.term.RegisterTabCompletion(commandline.NewTabCompletion(commandNames))

	if dbg.term.IsInteractive() {
		dbg.interrupt = make(chan os.Signal, 1)
		signal.Notify(dbg.interrupt, os.Interrupt)
		defer signal.Stop(dbg.interrupt)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(dbg.ended)
		dbg.simErr = dbg.board.Run()
		return nil
	})

	g.Go(func() error {
		defer dbg.shutdown()
		return dbg.inputLoop(ctx)
	})

	err = g.Wait()
	if err != nil {
		return curated.Errorf(DebuggerError, err)
	}

	return dbg.simErr
}

// shutdown releases the simulation goroutine wherever it is waiting.
func (dbg *Debugger) shutdown() {
	dbg.board.Core.Quit()
	dbg.board.Kernel.Stop(nil)
}

func (dbg *Debugger) inputLoop(ctx context.Context) error {
	for !dbg.quit {
		dbg.reportEnd()

		input, err := dbg.term.TermRead(dbg.prompt())
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		err = dbg.parseInput(ctx, input)
		if err != nil {
			dbg.printLine(terminal.StyleError, err.Error())
		}

		if ctx.Err() != nil {
			return nil
		}
	}

	return nil
}

// reportEnd prints the result of the simulation once it has ended.
func (dbg *Debugger) reportEnd() {
	if dbg.reported || !dbg.hasEnded() {
		return
	}
	dbg.reported = true

	if dbg.simErr != nil {
		dbg.printLine(terminal.StyleError, fmt.Sprintf("simulation ended: %v", dbg.simErr))
	} else {
		dbg.printLine(terminal.StyleFeedback, "simulation ended")
	}
}

func (dbg *Debugger) hasEnded() bool {
	select {
	case <-dbg.ended:
		return true
	default:
		return false
	}
}

// inspectable returns true if the registers and memory can be accessed without
// racing the simulation goroutine.
func (dbg *Debugger) inspectable() bool {
	return dbg.board.Core.IsStalled() || dbg.hasEnded()
}

func (dbg *Debugger) prompt() terminal.Prompt {
	c := dbg.board.Core
	p := terminal.Prompt{
		Content: c.ISA().Name(),
		State:   c.State().String(),
		Stalled: dbg.inspectable(),
	}

	if p.Stalled {
		if addr, ok := c.ISA().BreakpointAddress(); ok {
			p.Content = fmt.Sprintf("%s %#08x", p.Content, addr)
		}
	}

	return p
}

// waitStalled waits for the core to park after a STEP or RUN. If the
// simulation ends instead then it also waits for the simulation goroutine to
// finish.
func (dbg *Debugger) waitStalled(ctx context.Context) error {
	err := dbg.board.Core.WaitStalled(ctx)
	if err != nil {
		return err
	}

	if !dbg.board.Core.Parked() {
		select {
		case <-dbg.ended:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

func (dbg *Debugger) printLine(style terminal.Style, s string) {
	dbg.term.TermPrintLine(style, s)
}

// styleWriter prints every line written to it with the same style.
type styleWriter struct {
	dbg   *Debugger
	style terminal.Style
}

func (w styleWriter) Write(p []byte) (int, error) {
	start := 0
	for i, b := range p {
		if b == '\n' {
			w.dbg.printLine(w.style, string(p[start:i]))
			start = i + 1
		}
	}
	if start < len(p) {
		w.dbg.printLine(w.style, string(p[start:]))
	}
	return len(p), nil
}
