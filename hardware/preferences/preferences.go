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

package preferences

import (
	"time"

	"github.com/fusedsim/fused/hardware/sim"
	"github.com/fusedsim/fused/paths"
	"github.com/fusedsim/fused/prefs"
)

// DefaultPrefsFile is the name of the preferences file in the resource
// directory.
const DefaultPrefsFile = "preferences"

// Preferences for the simulated microcontroller.
type Preferences struct {
	dsk *prefs.Disk

	// clock period of the MSP430 master clock (MCLK)
	MSP430Clock prefs.Duration

	// clock period of the Cortex-M0 core clock
	CortexM0Clock prefs.Duration

	// fixed forwarding delay of the bus router
	BusDelay prefs.Duration

	// access delay of memory targets
	MemoryDelay prefs.Duration

	// log every instruction as it is executed
	Trace prefs.Bool

	// base address of the Cortex-M0 vector table
	ROMStart prefs.Int

	// the MSP430 stack pointer is loaded from this address on power-on
	StackVector prefs.Int
}

func (p *Preferences) String() string {
	return p.dsk.String()
}

// NewPreferences is the preferred method of initialisation for the
// Preferences type. If path is empty the preferences file in the resource
// directory is used.
func NewPreferences(path string) (*Preferences, error) {
	p := &Preferences{}
	p.SetDefaults()

	if path == "" {
		var err error
		path, err = paths.ResourcePath("", DefaultPrefsFile)
		if err != nil {
			return nil, err
		}
	}

	var err error
	p.dsk, err = prefs.NewDisk(path)
	if err != nil {
		return nil, err
	}

	err = p.dsk.Add("mcu.msp430.clock", &p.MSP430Clock)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("mcu.cortexm0.clock", &p.CortexM0Clock)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("mcu.bus.delay", &p.BusDelay)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("mcu.memory.delay", &p.MemoryDelay)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("mcu.trace", &p.Trace)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("mcu.romStart", &p.ROMStart)
	if err != nil {
		return nil, err
	}
	err = p.dsk.Add("mcu.msp430.stackVector", &p.StackVector)
	if err != nil {
		return nil, err
	}

	if err := p.dsk.Load(); err != nil {
		return nil, err
	}

	return p, nil
}

// SetDefaults reverts all preferences to their default values.
func (p *Preferences) SetDefaults() {
	// 8MHz
	p.MSP430Clock.Set(125 * time.Nanosecond)

	// 50MHz
	p.CortexM0Clock.Set(20 * time.Nanosecond)

	p.BusDelay.Set(time.Duration(0))
	p.MemoryDelay.Set(time.Duration(0))
	p.Trace.Set(false)
	p.ROMStart.Set(0)
	p.StackVector.Set(0xfffc)
}

// Period converts a duration preference to simulated time.
func Period(p *prefs.Duration) sim.Time {
	return sim.FromDuration(p.Get().(time.Duration))
}

// Reset all preferences to their default value.
func (p *Preferences) Reset() error {
	p.SetDefaults()
	return nil
}

// Load preferences from disk.
func (p *Preferences) Load() error {
	return p.dsk.Load()
}

// Save current preferences to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}
