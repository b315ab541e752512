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

// Package wavwriter renders the activity of a core as a WAV file. Note that
// the waveform is buffered in memory in its entirity, and written to disk when
// the writer is closed. It is therefore probably only suitable for short
// simulations.
//
// The file has two channels. The first channel is a level for the state of
// the core. The second channel has a single negative sample for every
// exception taken.
package wavwriter

import (
	"os"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/fusedsim/fused/curated"
	"github.com/fusedsim/fused/hardware/core"
	"github.com/fusedsim/fused/hardware/sim"
	"github.com/fusedsim/fused/logger"
)

// Sentinal error pattern.
const WavWriterError = "wavwriter: %v"

// the waveform is truncated to this many samples
const maxSamples = 1 << 24

const (
	bitDepth    = 16
	numChannels = 2
	pcmFormat   = 1
	fullScale   = 1<<(bitDepth-1) - 1
)

// level of the first channel for each state
var levels = map[string]int{
	core.Off.String():        0,
	core.Sleeping.String():   fullScale / 4,
	core.Stalled.String():    fullScale / 2,
	core.SingleStep.String(): fullScale * 3 / 4,
	core.Running.String():    fullScale,
}

// TimeSource provides the simulated time for counter increments, which are
// not timestamped by the core.
type TimeSource interface {
	Now() sim.Time
}

type event struct {
	at    sim.Time
	level int
}

// WavWriter implements the core.Sink interface.
type WavWriter struct {
	crit sync.Mutex

	filename string
	period   sim.Time
	time     TimeSource

	states     []event
	exceptions []sim.Time
}

var _ core.Sink = (*WavWriter)(nil)

// New is the preferred method of initialisation for the WavWriter type. The
// period is the simulated time between samples.
func New(filename string, period sim.Time, time TimeSource) (*WavWriter, error) {
	if period == 0 {
		return nil, curated.Errorf(WavWriterError, "sample period must be greater than zero")
	}
	if sim.Second/period == 0 {
		return nil, curated.Errorf(WavWriterError, "sample period must be less than one second")
	}

	return &WavWriter{
		filename: filename,
		period:   period,
		time:     time,
	}, nil
}

// ReportState implements the core.Sink interface.
func (aw *WavWriter) ReportState(_ string, state string, at sim.Time) {
	aw.crit.Lock()
	defer aw.crit.Unlock()
	aw.states = append(aw.states, event{at: at, level: levels[state]})
}

// Increment implements the core.Sink interface.
func (aw *WavWriter) Increment(counter string, n uint64) {
	if counter != core.CounterExceptions {
		return
	}
	aw.crit.Lock()
	defer aw.crit.Unlock()
	aw.exceptions = append(aw.exceptions, aw.time.Now())
}

// render the buffered events up to the end time.
func (aw *WavWriter) render(end sim.Time) []int {
	n := uint64(end/aw.period) + 1
	if n > maxSamples {
		logger.Logf(logger.Allow, "wavwriter", "waveform truncated to %d samples", maxSamples)
		n = maxSamples
	}

	data := make([]int, n*numChannels)

	var level int
	var s int
	for i := range n {
		t := sim.Time(i) * aw.period
		for s < len(aw.states) && aw.states[s].at <= t {
			level = aw.states[s].level
			s++
		}
		data[i*numChannels] = level
	}

	for _, at := range aw.exceptions {
		i := uint64(at / aw.period)
		if i < n {
			data[i*numChannels+1] = -fullScale
		}
	}

	return data
}

// Close renders the waveform from time zero to the current time of the time
// source and writes it to disk.
func (aw *WavWriter) Close() (rerr error) {
	aw.crit.Lock()
	defer aw.crit.Unlock()

	f, err := os.Create(aw.filename)
	if err != nil {
		return curated.Errorf(WavWriterError, err)
	}
	defer func() {
		err := f.Close()
		if err != nil && rerr == nil {
			rerr = curated.Errorf(WavWriterError, err)
		}
	}()

	rate := int(sim.Second / aw.period)
	enc := wav.NewEncoder(f, rate, bitDepth, numChannels, pcmFormat)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: numChannels,
			SampleRate:  rate,
		},
		Data:           aw.render(aw.time.Now()),
		SourceBitDepth: bitDepth,
	}

	logger.Logf(logger.Allow, "wavwriter", "writing %d samples to %s", len(buf.Data)/numChannels, aw.filename)

	if err := enc.Write(buf); err != nil {
		return curated.Errorf(WavWriterError, err)
	}
	if err := enc.Close(); err != nil {
		return curated.Errorf(WavWriterError, err)
	}

	return nil
}
