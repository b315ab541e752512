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

package core

import (
	"context"
	"sync"
	"sync/atomic"
)

// control is the rendezvous between the simulation goroutine and the
// goroutines controlling it. The run, step and quit flags are read on every
// instruction without taking the lock. They are only written with the lock
// held so that a parked core cannot miss a change.
type control struct {
	run  atomic.Bool
	step atomic.Bool
	quit atomic.Bool

	crit   sync.Mutex
	cond   *sync.Cond
	active bool
	parked bool

	// closed when the core parks or Run() returns
	parkCh chan struct{}
}

func newControl(run bool) *control {
	ctl := &control{
		parkCh: make(chan struct{}),
	}
	ctl.cond = sync.NewCond(&ctl.crit)
	ctl.run.Store(run)
	return ctl
}

func (ctl *control) resume(step bool) {
	ctl.crit.Lock()
	defer ctl.crit.Unlock()
	ctl.step.Store(step)
	ctl.run.Store(true)
	if ctl.parked && ctl.active {
		ctl.parked = false
		ctl.parkCh = make(chan struct{})
	}
	ctl.cond.Broadcast()
}

func (ctl *control) halt() {
	ctl.crit.Lock()
	defer ctl.crit.Unlock()
	ctl.run.Store(false)
	ctl.step.Store(false)
}

func (ctl *control) stop() {
	ctl.crit.Lock()
	defer ctl.crit.Unlock()
	ctl.quit.Store(true)
	ctl.cond.Broadcast()
}

func (ctl *control) enter() {
	ctl.crit.Lock()
	defer ctl.crit.Unlock()
	ctl.active = true
	if ctl.parked {
		ctl.parked = false
		ctl.parkCh = make(chan struct{})
	}
}

func (ctl *control) exit() {
	ctl.crit.Lock()
	defer ctl.crit.Unlock()
	ctl.active = false
	if !ctl.parked {
		ctl.parked = true
		close(ctl.parkCh)
	}
}

// wait parks the calling goroutine for as long as the core is stalled. The
// onPark function is called once, with the lock held, when the core parks and
// before any waiter is released.
// Returns false if the core has been told to quit.
func (ctl *control) wait(onPark func()) bool {
	if ctl.quit.Load() {
		return false
	}
	if ctl.run.Load() {
		return true
	}

	ctl.crit.Lock()
	defer ctl.crit.Unlock()

	for !ctl.run.Load() && !ctl.quit.Load() {
		if !ctl.parked {
			ctl.parked = true
			onPark()
			close(ctl.parkCh)
		}
		ctl.cond.Wait()
	}

	if ctl.parked {
		ctl.parked = false
		ctl.parkCh = make(chan struct{})
	}

	return !ctl.quit.Load()
}

func (ctl *control) isStalled() bool {
	ctl.crit.Lock()
	defer ctl.crit.Unlock()
	return !ctl.run.Load() && (ctl.parked || !ctl.active)
}

func (ctl *control) isParked() bool {
	ctl.crit.Lock()
	defer ctl.crit.Unlock()
	return ctl.active && ctl.parked
}

func (ctl *control) waitStalled(ctx context.Context) error {
	ctl.crit.Lock()
	if ctl.parked {
		ctl.crit.Unlock()
		return nil
	}
	ch := ctl.parkCh
	ctl.crit.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
