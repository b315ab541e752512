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
	"slices"
	"sort"

	"github.com/fusedsim/fused/curated"
	"github.com/fusedsim/fused/hardware/sim"
)

// Sentinal error patterns returned by NewRouter().
const (
	InvalidRange      = "bus: invalid range for target (%#08x to %#08x)"
	OverlappingRanges = "bus: target ranges overlap (%#08x to %#08x and %#08x to %#08x)"
)

type mapping struct {
	start  uint32
	end    uint32
	target Target
}

// Router forwards transactions to the target that contains the address. The
// list of targets is fixed when the router is created.
type Router struct {
	delay    sim.Time
	mappings []mapping
}

// NewRouter is the preferred method of initialisation for the Router type.
// Targets can be supplied in any order. An error is returned if the range of
// any two targets overlap.
func NewRouter(delay sim.Time, targets ...Target) (*Router, error) {
	r := &Router{delay: delay}

	for _, t := range targets {
		start, end := t.Range()
		if end < start {
			return nil, curated.Errorf(InvalidRange, start, end)
		}
		r.mappings = append(r.mappings, mapping{start: start, end: end, target: t})
	}

	slices.SortFunc(r.mappings, func(a, b mapping) int {
		if a.start < b.start {
			return -1
		}
		if a.start > b.start {
			return 1
		}
		return 0
	})

	for i := 1; i < len(r.mappings); i++ {
		p := r.mappings[i-1]
		m := r.mappings[i]
		if m.start <= p.end {
			return nil, curated.Errorf(OverlappingRanges, p.start, p.end, m.start, m.end)
		}
	}

	return r, nil
}

// Delay returns the forwarding delay of the router.
func (r *Router) Delay() sim.Time {
	return r.delay
}

// Targets returns the targets in order of their start address.
func (r *Router) Targets() []Target {
	t := make([]Target, len(r.mappings))
	for i := range r.mappings {
		t[i] = r.mappings[i].target
	}
	return t
}

func (r *Router) route(address uint32) (mapping, bool) {
	i := sort.Search(len(r.mappings), func(i int) bool {
		return r.mappings[i].start > address
	}) - 1
	if i < 0 || address > r.mappings[i].end {
		return mapping{}, false
	}
	return r.mappings[i], true
}

// Route returns the target that contains the address and the address
// relative to the start of that target.
func (r *Router) Route(address uint32) (Target, uint32, bool) {
	m, ok := r.route(address)
	if !ok {
		return nil, 0, false
	}
	return m.target, address - m.start, true
}

// routeAccess is like route() but also checks that the entire access fits
// inside the target.
func (r *Router) routeAccess(tr *Transaction) (mapping, bool) {
	m, ok := r.route(tr.Address)
	if !ok || len(tr.Data) == 0 {
		return mapping{}, false
	}
	if uint64(tr.Address)+uint64(len(tr.Data))-1 > uint64(m.end) {
		return mapping{}, false
	}
	return m, true
}

// Transport forwards the transaction and returns the aggregated delay. An
// unroutable transaction is given the AddressError status and the delay is
// the router's forwarding delay only.
func (r *Router) Transport(tr *Transaction) sim.Time {
	m, ok := r.routeAccess(tr)
	if !ok {
		tr.Status = AddressError
		return r.delay
	}

	address := tr.Address
	tr.Address -= m.start
	d := m.target.Transport(tr)
	tr.Address = address

	return r.delay + d
}

// TransportDebug forwards the transaction without advancing time. Returns the
// number of bytes transferred, zero if the address is not routable. An access
// that runs off the end of a target is truncated by the target.
func (r *Router) TransportDebug(tr *Transaction) int {
	m, ok := r.route(tr.Address)
	if !ok {
		tr.Status = AddressError
		return 0
	}

	address := tr.Address
	tr.Address -= m.start
	n := m.target.TransportDebug(tr)
	tr.Address = address

	return n
}

// Reset every target.
func (r *Router) Reset() {
	for _, m := range r.mappings {
		m.target.Reset()
	}
}
