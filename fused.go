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

package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/fusedsim/fused/curated"
	"github.com/fusedsim/fused/debugger"
	"github.com/fusedsim/fused/debugger/script"
	"github.com/fusedsim/fused/debugger/terminal"
	"github.com/fusedsim/fused/debugger/terminal/colorterm"
	"github.com/fusedsim/fused/debugger/terminal/plainterm"
	"github.com/fusedsim/fused/eventlog"
	"github.com/fusedsim/fused/hardware/core"
	"github.com/fusedsim/fused/hardware/mcu"
	"github.com/fusedsim/fused/hardware/preferences"
	"github.com/fusedsim/fused/hardware/sim"
	"github.com/fusedsim/fused/logger"
	"github.com/fusedsim/fused/modalflag"
	"github.com/fusedsim/fused/paths"
	"github.com/fusedsim/fused/performance"
	"github.com/fusedsim/fused/performance/limiter"
	"github.com/fusedsim/fused/prefs"
	"github.com/fusedsim/fused/statsview"
	"github.com/fusedsim/fused/version"
	"github.com/fusedsim/fused/wavwriter"
)

// Sentinal error patterns.
const (
	unknownMCU      = "unknown microcontroller: %s"
	unknownTerminal = "unknown terminal: %s"
	tooManyArgs     = "too many arguments for %s mode"
	programRequired = "program required for %s mode"
	scriptRequired  = "-script required for %s mode"

	// the simulation is stopped with this error on an interrupt signal
	interrupted = "interrupted"
)

func main() {
	exitVal := launch(os.Args[1:], os.Stdout)
	os.Exit(exitVal)
}

// launch parses the arguments and runs the selected mode. returns the value
// to be used with os.Exit().
func launch(args []string, output io.Writer) int {
	md := &modalflag.Modes{Output: output}
	md.NewArgs(args)
	md.NewMode()
	md.AddSubModes("RUN", "DEBUG", "SCRIPT", "PERFORMANCE", "DOT", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		return 0

	case modalflag.ParseError:
		fmt.Fprintf(output, "* error: %v\n", err)
		return 10
	}

	switch md.Mode() {
	case "RUN":
		err = run(md, output)

	case "DEBUG":
		err = debug(md, output)

	case "SCRIPT":
		err = runScript(md, output)

	case "PERFORMANCE":
		err = perform(md, output)

	case "DOT":
		err = dot(md, output)

	case "VERSION":
		fmt.Fprintln(output, version.String())
	}

	if err != nil {
		fmt.Fprintf(output, "* error in %s mode: %s\n", md.String(), err)
		return 20
	}

	return 0
}

// flags shared by every mode that creates a board.
type boardFlags struct {
	mcu       *string
	prefs     *string
	trace     *bool
	log       *bool
	base      *uint32
	stopAfter *time.Duration
}

func addBoardFlags(md *modalflag.Modes) boardFlags {
	return boardFlags{
		mcu:       md.AddString("mcu", "msp430", "microcontroller to simulate: msp430, cortexm0"),
		prefs:     md.AddString("prefs", "", "preferences for this run. for example: \"mcu.bus.delay::10ns; mcu.trace::true\""),
		trace:     md.AddBool("trace", false, "log every instruction"),
		log:       md.AddBool("log", false, "echo log to stdout"),
		base:      md.AddAddress("base", 0, "load address for images that are not ELF files"),
		stopAfter: md.AddDuration("stop", 0, "end the simulation after this much simulated time"),
	}
}

// newBoard creates the board selected by the flags and loads the program
// named by the first remaining argument. the board is powered on.
func newBoard(md *modalflag.Modes, fl boardFlags, opts mcu.Options) (*mcu.Board, error) {
	if *fl.log {
		logger.SetEcho(os.Stdout, false)
	} else {
		logger.SetEcho(nil, false)
	}

	if *fl.prefs != "" {
		prefs.PushCommandLineStack(*fl.prefs)
		defer func() {
			if unused := prefs.PopCommandLineStack(); unused != "" {
				logger.Logf(logger.Allow, "fused", "unused preferences: %s", unused)
			}
		}()
	}

	p, err := preferences.NewPreferences("")
	if err != nil {
		return nil, err
	}

	if *fl.trace {
		if err := p.Trace.Set(true); err != nil {
			return nil, err
		}
	}

	var board *mcu.Board
	switch strings.ToLower(*fl.mcu) {
	case "msp430":
		board, err = mcu.NewMSP430(p, opts)
	case "cortexm0":
		board, err = mcu.NewCortexM0(p, opts)
	default:
		return nil, curated.Errorf(unknownMCU, *fl.mcu)
	}
	if err != nil {
		return nil, err
	}

	switch len(md.RemainingArgs()) {
	case 0:
	case 1:
		err = loadProgram(board, md.GetArg(0), *fl.base)
		if err != nil {
			return nil, err
		}
	default:
		return nil, curated.Errorf(tooManyArgs, md)
	}

	if *fl.stopAfter > 0 {
		board.StopAt(sim.FromDuration(*fl.stopAfter))
	}

	board.PowerOn()

	return board, nil
}

// loadProgram loads an ELF file or, if the file is not an ELF file, a raw
// image at the base address.
func loadProgram(board *mcu.Board, filename string, base uint32) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	if bytes.HasPrefix(data, []byte("\x7fELF")) {
		return board.LoadELF(filename)
	}
	return board.LoadImage(base, data)
}

// sinks requested on the command line. the finish function writes or closes
// every sink that was created and should be called once the simulation has
// ended.
type sinks struct {
	events *eventlog.Log
	wav    *wavwriter.WavWriter
	output io.Writer
}

func (s *sinks) sink() core.Sink {
	var sk []core.Sink
	if s.events != nil {
		sk = append(sk, s.events)
	}
	if s.wav != nil {
		sk = append(sk, s.wav)
	}
	return eventlog.Tee(sk...)
}

func (s *sinks) finish() error {
	if s.events != nil {
		s.events.Write(s.output)
	}
	if s.wav != nil {
		return s.wav.Close()
	}
	return nil
}

// kernelTime forwards to the kernel of a board that has not been created yet.
type kernelTime struct {
	board *mcu.Board
}

func (kt *kernelTime) Now() sim.Time {
	if kt.board == nil {
		return 0
	}
	return kt.board.Kernel.Now()
}

func run(md *modalflag.Modes, output io.Writer) error {
	md.NewMode()

	fl := addBoardFlags(md)
	events := md.AddInt("events", 0, "record this many state transitions and print them at the end")
	wav := md.AddString("wav", "", "record core activity to wav file. AUTO creates a unique filename")
	wavPeriod := md.AddDuration("wavperiod", time.Microsecond, "simulated time between wav samples")
	limit := md.AddBool("limit", false, "limit the simulation to real time")
	speed := md.AddInt("speed", 100, "speed of the simulation as a percentage of real time (with -limit)")
	stats := md.AddBool("statsview", false, fmt.Sprintf("run stats server (%s)", statsview.Address))

	md.AdditionalHelp("The program can be an ELF file or a raw image. Raw images are loaded at the -base address.")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) == 0 {
		return curated.Errorf(programRequired, md)
	}

	snk := &sinks{output: output}
	kt := &kernelTime{}

	if *events > 0 {
		snk.events = eventlog.NewLog(*events)
	}
	if *wav != "" {
		if strings.EqualFold(*wav, "auto") {
			*wav = fmt.Sprintf("%s.wav", paths.UniqueFilename("wav", *fl.mcu))
		}
		snk.wav, err = wavwriter.New(*wav, sim.FromDuration(*wavPeriod), kt)
		if err != nil {
			return err
		}
	}

	board, err := newBoard(md, fl, mcu.Options{Sink: snk.sink(), Output: output})
	if err != nil {
		return err
	}
	kt.board = board

	if *limit {
		lim := limiter.NewLimiter(board.Kernel, time.Millisecond)
		lim.SetScale(float64(*speed) / 100)
		lim.Attach()
	}

	if *stats {
		if statsview.Available() {
			statsview.Launch(output)
		} else {
			fmt.Fprintln(output, "* stats server not available in this build")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	ended := make(chan struct{})

	g.Go(func() error {
		defer close(ended)
		return board.Run()
	})

	g.Go(func() error {
		select {
		case <-ended:
		case <-ctx.Done():
			board.Kernel.Stop(curated.Errorf(interrupted))
		}
		return nil
	})

	err = g.Wait()
	if curated.Has(err, interrupted) {
		fmt.Fprintln(output, "\r")
		err = nil
	}

	board.Summary(output)

	if ferr := snk.finish(); err == nil {
		err = ferr
	}

	return err
}

func debug(md *modalflag.Modes, output io.Writer) error {
	md.NewMode()

	fl := addBoardFlags(md)
	termType := md.AddString("term", "COLOR", "terminal type to use in debug mode: COLOR, PLAIN")
	events := md.AddInt("events", 0, "record this many state transitions and print them at the end")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	snk := &sinks{output: output}
	if *events > 0 {
		snk.events = eventlog.NewLog(*events)
	}

	board, err := newBoard(md, fl, mcu.Options{StartStalled: true, Sink: snk.sink(), Output: output})
	if err != nil {
		return err
	}

	var trm terminal.Terminal
	switch strings.ToUpper(*termType) {
	case "COLOR":
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			trm = plainterm.NewPlainTerminal(os.Stdin, os.Stdout)
			break // switch
		}
		trm = colorterm.NewColorTerminal(os.Stdin, os.Stdout)
	case "PLAIN":
		trm = plainterm.NewPlainTerminal(os.Stdin, os.Stdout)
	default:
		return curated.Errorf(unknownTerminal, *termType)
	}

	dbg := debugger.NewDebugger(board, trm)
	err = dbg.Start(context.Background())

	if ferr := snk.finish(); err == nil {
		err = ferr
	}

	return err
}

func runScript(md *modalflag.Modes, output io.Writer) error {
	md.NewMode()

	fl := addBoardFlags(md)
	scriptFile := md.AddString("script", "", "lua script to run")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if *scriptFile == "" {
		return curated.Errorf(scriptRequired, md)
	}

	board, err := newBoard(md, fl, mcu.Options{StartStalled: true, Output: output})
	if err != nil {
		return err
	}

	scr := script.NewScript(board, output)
	defer scr.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = scr.RunFile(ctx, *scriptFile)
	board.Summary(output)

	return err
}

func perform(md *modalflag.Modes, output io.Writer) error {
	md.NewMode()

	fl := addBoardFlags(md)
	duration := md.AddDuration("duration", 5*time.Second, "run duration")
	profile := md.AddString("profile", "none", "run performance check with profiling: CPU, MEM, TRACE, ALL (comma separated)")
	stats := md.AddBool("statsview", false, fmt.Sprintf("run stats server (%s)", statsview.Address))

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) == 0 {
		return curated.Errorf(programRequired, md)
	}

	prf, err := performance.ParseProfileString(*profile)
	if err != nil {
		return err
	}

	board, err := newBoard(md, fl, mcu.Options{})
	if err != nil {
		return err
	}

	if *stats && statsview.Available() {
		statsview.Launch(output)
	}

	_, err = performance.Check(output, prf, board, *duration)
	return err
}

func dot(md *modalflag.Modes, output io.Writer) error {
	md.NewMode()

	fl := addBoardFlags(md)
	out := md.AddString("o", "", "write to file instead of stdout")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	board, err := newBoard(md, fl, mcu.Options{})
	if err != nil {
		return err
	}

	if *out == "" {
		debugger.WriteDot(output, board)
		return nil
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	defer f.Close()

	debugger.WriteDot(f, board)
	return nil
}
