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

package bus

import (
	"encoding/binary"

	"github.com/fusedsim/fused/curated"
	"github.com/fusedsim/fused/hardware/sim"
	"github.com/fusedsim/fused/logger"
)

// Sentinal error patterns for failed blocking transactions.
const (
	FailedRead  = "bus: %s failed read from address %#08x (%v)"
	FailedWrite = "bus: %s failed write to address %#08x (%v)"
)

// Initiator issues transactions on behalf of a CPU core.
type Initiator struct {
	name   string
	kernel *sim.Kernel
	router *Router
	stall  *sim.Wire
}

// NewInitiator is the preferred method of initialisation for the Initiator
// type.
func NewInitiator(name string, kernel *sim.Kernel, router *Router) *Initiator {
	return &Initiator{
		name:   name,
		kernel: kernel,
		router: router,
	}
}

// SetStall attaches a bus stall wire. While the wire is asserted, typically
// by a DMA controller, blocking transactions are held until it is released.
func (in *Initiator) SetStall(w *sim.Wire) {
	in.stall = w
}

// a stall longer than this is reported in the log
const stallWarning = sim.Millisecond

// waitForStall holds the transaction for as long as the stall wire is
// asserted. A stall that nothing can release does not block the access.
func (in *Initiator) waitForStall(address uint32) {
	var warned bool
	for in.stall != nil && in.stall.Read() {
		notified, timeout := in.kernel.WaitAnyFor(stallWarning, in.stall.Negedge())
		switch {
		case notified:
		case timeout && in.kernel.Pending() > 0:
			if !warned {
				logger.Logf(logger.Allow, in.name, "access to %#08x stalled for more than %s", address, stallWarning)
				warned = true
			}
		default:
			return
		}
	}
}

// Router returns the router used by the initiator.
func (in *Initiator) Router() *Router {
	return in.router
}

func (in *Initiator) transact(address uint32, data []byte, cmd Command) error {
	in.waitForStall(address)

	tr := Transaction{
		Address: address,
		Data:    data,
		Command: cmd,
		Status:  Incomplete,
	}
	d := in.router.Transport(&tr)
	in.kernel.Advance(d)

	if tr.Status != OK {
		var err error
		if cmd == Read {
			err = curated.Errorf(FailedRead, in.name, address, tr.Status)
		} else {
			err = curated.Errorf(FailedWrite, in.name, address, tr.Status)
		}
		logger.Log(logger.Allow, in.name, err)
		in.kernel.Stop(err)
		return err
	}

	return nil
}

// Read fills data from the address. Simulated time advances by the delay of
// the access. A failed access stops the simulation.
func (in *Initiator) Read(address uint32, data []byte) error {
	return in.transact(address, data, Read)
}

// Write data to the address. Simulated time advances by the delay of the
// access. A failed access stops the simulation.
func (in *Initiator) Write(address uint32, data []byte) error {
	return in.transact(address, data, Write)
}

// Read8 reads a single byte.
func (in *Initiator) Read8(address uint32) (uint8, error) {
	var b [1]byte
	err := in.Read(address, b[:])
	return b[0], err
}

// Read16 reads a little-endian halfword.
func (in *Initiator) Read16(address uint32) (uint16, error) {
	var b [2]byte
	err := in.Read(address, b[:])
	return binary.LittleEndian.Uint16(b[:]), err
}

// Read32 reads a little-endian word.
func (in *Initiator) Read32(address uint32) (uint32, error) {
	var b [4]byte
	err := in.Read(address, b[:])
	return binary.LittleEndian.Uint32(b[:]), err
}

// Write8 writes a single byte.
func (in *Initiator) Write8(address uint32, v uint8) error {
	return in.Write(address, []byte{v})
}

// Write16 writes a little-endian halfword.
func (in *Initiator) Write16(address uint32, v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return in.Write(address, b[:])
}

// Write32 writes a little-endian word.
func (in *Initiator) Write32(address uint32, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return in.Write(address, b[:])
}

// ReadDebug fills data from the address without advancing simulated time.
// Returns the number of bytes read, zero if the address is not routable.
func (in *Initiator) ReadDebug(address uint32, data []byte) int {
	tr := Transaction{Address: address, Data: data, Command: Read}
	return in.router.TransportDebug(&tr)
}

// WriteDebug writes data to the address without advancing simulated time.
// Returns the number of bytes written, zero if the address is not routable.
func (in *Initiator) WriteDebug(address uint32, data []byte) int {
	tr := Transaction{Address: address, Data: data, Command: Write}
	return in.router.TransportDebug(&tr)
}
