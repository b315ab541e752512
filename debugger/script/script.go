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

package script

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"golang.org/x/sync/errgroup"

	"github.com/fusedsim/fused/curated"
	"github.com/fusedsim/fused/hardware/mcu"
	"github.com/fusedsim/fused/logger"
)

// Sentinal error patterns.
const (
	ScriptError = "script: %v"
	NotStalled  = "%s: core must be stalled"
	InvalidReg  = "%s: invalid register: %s"
)

// Script drives the run-control surface of a board from Lua.
type Script struct {
	board  *mcu.Board
	output io.Writer
	state  *lua.LState

	// closed when the simulation goroutine has finished
	ended  chan struct{}
	simErr error
}

// NewScript is the preferred method of initialisation for the Script type.
// Output from the Lua print function is sent to the writer. The board should
// have been created with the StartStalled option.
func NewScript(board *mcu.Board, output io.Writer) *Script {
	scr := &Script{
		board:  board,
		output: output,
		state:  lua.NewState(),
		ended:  make(chan struct{}),
	}

	for name, fn := range map[string]lua.LGFunction{
		"stall":        scr.stall,
		"unstall":      scr.unstall,
		"step":         scr.step,
		"brk":          scr.brk,
		"clear":        scr.clear,
		"reg":          scr.reg,
		"setreg":       scr.setreg,
		"peek":         scr.peek,
		"poke":         scr.poke,
		"state":        scr.coreState,
		"wait_stalled": scr.waitStalledFn,
		"ended":        scr.endedFn,
		"log":          scr.log,
		"print":        scr.print,
	} {
		scr.state.SetGlobal(name, scr.state.NewFunction(fn))
	}

	return scr
}

// Close releases the Lua state.
func (scr *Script) Close() {
	scr.state.Close()
}

// RunFile runs the board and the Lua script in the file concurrently. The
// simulation is ended when the script finishes. The returned error is the
// error from the script or, if there is none, the error that ended the
// simulation.
func (scr *Script) RunFile(ctx context.Context, filename string) error {
	return scr.run(ctx, func(L *lua.LState) error {
		return L.DoFile(filename)
	})
}

// RunString is the same as RunFile but with the script given as a string.
func (scr *Script) RunString(ctx context.Context, source string) error {
	return scr.run(ctx, func(L *lua.LState) error {
		return L.DoString(source)
	})
}

func (scr *Script) run(ctx context.Context, chunk func(*lua.LState) error) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(scr.ended)
		scr.simErr = scr.board.Run()
		return nil
	})

	g.Go(func() error {
		defer func() {
			scr.board.Core.Quit()
			scr.board.Kernel.Stop(nil)
		}()

		scr.state.SetContext(ctx)
		err := chunk(scr.state)
		if err != nil {
			return curated.Errorf(ScriptError, err)
		}
		return nil
	})

	err := g.Wait()
	if err != nil {
		return err
	}

	return scr.simErr
}

func (scr *Script) hasEnded() bool {
	select {
	case <-scr.ended:
		return true
	default:
		return false
	}
}

func (scr *Script) inspectable(L *lua.LState, fn string) {
	if !scr.board.Core.IsStalled() && !scr.hasEnded() {
		L.RaiseError(NotStalled, fn)
	}
}

// waitStalled waits for the core to park. Returns false if the simulation
// ended instead or if the timeout elapsed. A timeout of zero waits forever.
func (scr *Script) waitStalled(ctx context.Context, timeout time.Duration) bool {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if scr.board.Core.WaitStalled(ctx) != nil {
		return false
	}

	if !scr.board.Core.Parked() {
		select {
		case <-scr.ended:
		case <-ctx.Done():
		}
		return false
	}

	return true
}

func (scr *Script) stall(L *lua.LState) int {
	scr.board.Core.Stall()
	return 0
}

func (scr *Script) unstall(L *lua.LState) int {
	scr.board.Core.Unstall()
	return 0
}

// step([n]) executes n instructions. Returns false if the simulation ended
// before all the instructions were executed.
func (scr *Script) step(L *lua.LState) int {
	n := L.OptInt(1, 1)
	for range n {
		if scr.hasEnded() {
			L.Push(lua.LFalse)
			return 1
		}
		scr.board.Core.Step()
		if !scr.waitStalled(L.Context(), 0) {
			L.Push(lua.LFalse)
			return 1
		}
	}
	L.Push(lua.LTrue)
	return 1
}

func (scr *Script) brk(L *lua.LState) int {
	scr.board.Core.InsertBreakpoint(uint32(L.CheckNumber(1)))
	return 0
}

func (scr *Script) clear(L *lua.LState) int {
	if L.GetTop() == 0 {
		for _, addr := range scr.board.Core.Breakpoints() {
			scr.board.Core.RemoveBreakpoint(addr)
		}
		return 0
	}
	scr.board.Core.RemoveBreakpoint(uint32(L.CheckNumber(1)))
	return 0
}

// registerIndex accepts a register name or a register number.
func (scr *Script) registerIndex(L *lua.LState, fn string) int {
	isa := scr.board.Core.ISA()

	switch v := L.Get(1).(type) {
	case lua.LNumber:
		idx := int(v)
		if idx >= 0 && idx < isa.NumRegisters() {
			return idx
		}
	case lua.LString:
		for i := range isa.NumRegisters() {
			if strings.EqualFold(isa.RegisterName(i), string(v)) {
				return i
			}
		}
	}

	L.RaiseError(InvalidReg, fn, L.Get(1).String())
	return 0
}

func (scr *Script) reg(L *lua.LState) int {
	idx := scr.registerIndex(L, "reg")
	scr.inspectable(L, "reg")
	L.Push(lua.LNumber(scr.board.Core.ReadRegister(idx)))
	return 1
}

func (scr *Script) setreg(L *lua.LState) int {
	idx := scr.registerIndex(L, "setreg")
	scr.inspectable(L, "setreg")
	err := scr.board.Core.WriteRegister(idx, uint32(L.CheckNumber(2)))
	if err != nil {
		L.RaiseError("setreg: %v", err)
	}
	return 0
}

// peek(addr) returns a single byte. peek(addr, n) returns a table of n
// bytes. Returns nil if the address is not routed.
func (scr *Script) peek(L *lua.LState) int {
	scr.inspectable(L, "peek")
	addr := uint32(L.CheckNumber(1))

	if L.GetTop() < 2 {
		data := scr.board.Core.ReadMemory(addr, 1)
		if len(data) == 0 {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(data[0]))
		return 1
	}

	data := scr.board.Core.ReadMemory(addr, L.CheckInt(2))
	if len(data) == 0 {
		L.Push(lua.LNil)
		return 1
	}

	tbl := L.NewTable()
	for _, b := range data {
		tbl.Append(lua.LNumber(b))
	}
	L.Push(tbl)
	return 1
}

// poke(addr, byte...) returns true if every byte was written.
func (scr *Script) poke(L *lua.LState) int {
	scr.inspectable(L, "poke")
	addr := uint32(L.CheckNumber(1))

	data := make([]byte, 0, L.GetTop())
	for i := 2; i <= L.GetTop(); i++ {
		data = append(data, byte(L.CheckInt(i)))
	}

	L.Push(lua.LBool(scr.board.Core.WriteMemory(addr, data)))
	return 1
}

func (scr *Script) coreState(L *lua.LState) int {
	L.Push(lua.LString(scr.board.Core.State().String()))
	return 1
}

// wait_stalled([milliseconds]) returns true once the core has stalled.
func (scr *Script) waitStalledFn(L *lua.LState) int {
	timeout := time.Duration(L.OptInt(1, 0)) * time.Millisecond
	L.Push(lua.LBool(scr.waitStalled(L.Context(), timeout)))
	return 1
}

// ended() returns true if the simulation has ended and the error that ended
// it, if any.
func (scr *Script) endedFn(L *lua.LState) int {
	if !scr.hasEnded() {
		L.Push(lua.LFalse)
		return 1
	}
	L.Push(lua.LTrue)
	if scr.simErr != nil {
		L.Push(lua.LString(scr.simErr.Error()))
		return 2
	}
	return 1
}

func (scr *Script) log(L *lua.LState) int {
	logger.Log(logger.Allow, "script", L.CheckString(1))
	return 0
}

func (scr *Script) print(L *lua.LState) int {
	if scr.output == nil {
		return 0
	}
	s := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		s = append(s, L.ToStringMeta(L.Get(i)).String())
	}
	fmt.Fprintln(scr.output, strings.Join(s, "\t"))
	return 0
}
