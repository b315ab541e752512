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
	"fmt"

	"github.com/fusedsim/fused/hardware/sim"
)

// Command is the direction of a transaction.
type Command int

// List of valid Command values.
const (
	Read Command = iota
	Write
)

func (c Command) String() string {
	switch c {
	case Read:
		return "read"
	case Write:
		return "write"
	}
	return "unknown command"
}

// Status is the response status of a transaction.
type Status int

// List of valid Status values. A transaction starts with the Incomplete
// status and must be changed by the target.
const (
	Incomplete Status = iota
	OK
	AddressError
	PowerError
	CommandError
	GenericError
)

func (s Status) String() string {
	switch s {
	case Incomplete:
		return "incomplete"
	case OK:
		return "ok"
	case AddressError:
		return "address error"
	case PowerError:
		return "target unpowered"
	case CommandError:
		return "command error"
	case GenericError:
		return "generic error"
	}
	return "unknown status"
}

// Transaction is a single access across the bus.
type Transaction struct {
	Address uint32
	Data    []byte
	Command Command
	Status  Status
}

func (tr *Transaction) String() string {
	return fmt.Sprintf("%s %d byte(s) at %#08x: %s", tr.Command, len(tr.Data), tr.Address, tr.Status)
}

// Target is implemented by every device reachable through the router. The
// address of a transaction presented to a target is relative to the start of
// the target's range.
type Target interface {
	// Range returns the inclusive address window of the target.
	Range() (start uint32, end uint32)

	// Transport services the transaction and returns the access delay. The
	// Status field of the transaction must be set.
	Transport(tr *Transaction) sim.Time

	// TransportDebug services the transaction without side effects and
	// without a power check. Returns the number of bytes transferred.
	TransportDebug(tr *Transaction) int

	// Reset the target to its initial state.
	Reset()
}
