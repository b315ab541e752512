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

package sim

import (
	"container/heap"
	"sync"
	"sync/atomic"
)

type scheduled struct {
	at  Time
	seq uint64
	fn  func()
}

// queue is ordered by time and then by the order in which entries were
// scheduled.
type queue []*scheduled

func (q queue) Len() int { return len(q) }

func (q queue) Less(i, j int) bool {
	if q[i].at == q[j].at {
		return q[i].seq < q[j].seq
	}
	return q[i].at < q[j].at
}

func (q queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *queue) Push(x any) { *q = append(*q, x.(*scheduled)) }

func (q *queue) Pop() any {
	old := *q
	n := len(old)
	s := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return s
}

// Kernel is the discrete-event scheduler. Only the goroutine running the
// simulation may call Schedule(), After(), Advance() or WaitAny(). Now(),
// Stop(), Stopped() and Err() are safe to call from any goroutine.
type Kernel struct {
	now   atomic.Uint64
	queue queue
	seq   uint64

	stopped atomic.Bool
	crit    sync.Mutex
	err     error
}

// NewKernel is the preferred method of initialisation for the Kernel type.
func NewKernel() *Kernel {
	return &Kernel{}
}

// Now returns the current simulated time.
func (k *Kernel) Now() Time {
	return Time(k.now.Load())
}

// Timestamp implements the logger.TimeSource interface.
func (k *Kernel) Timestamp() string {
	return k.Now().String()
}

// Schedule a function to be called at the simulated time. A time in the past
// is treated as the current time.
func (k *Kernel) Schedule(at Time, fn func()) {
	at = max(at, k.Now())
	k.seq++
	heap.Push(&k.queue, &scheduled{at: at, seq: k.seq, fn: fn})
}

// After schedules a function to be called after the duration has elapsed.
func (k *Kernel) After(d Time, fn func()) {
	k.Schedule(k.Now()+d, fn)
}

// Pending returns the number of scheduled callbacks.
func (k *Kernel) Pending() int {
	return len(k.queue)
}

// next runs the earliest scheduled callback if it is due at or before the
// limit. Returns false if there is nothing to run.
func (k *Kernel) next(limit Time) bool {
	if len(k.queue) == 0 || k.queue[0].at > limit || k.stopped.Load() {
		return false
	}
	s := heap.Pop(&k.queue).(*scheduled)
	k.now.Store(uint64(s.at))
	s.fn()
	return true
}

// Advance suspends the calling process for the duration. Callbacks scheduled
// within the duration are run in time order. On return the simulated time
// has advanced by the full duration, even if the kernel was stopped.
func (k *Kernel) Advance(d Time) {
	target := k.Now() + d
	for k.next(target) {
	}
	k.now.Store(uint64(target))
}

// WaitAny suspends the calling process until one of the events is notified.
// Returns false if there are no more scheduled callbacks that could notify an
// event, or if the kernel has been stopped.
func (k *Kernel) WaitAny(events ...*Event) bool {
	ok, _ := k.wait(^Time(0), events)
	return ok
}

// WaitAnyFor is the same as WaitAny() but will return after the duration if
// none of the events are notified. The timeout return value is true if the
// duration elapsed.
func (k *Kernel) WaitAnyFor(d Time, events ...*Event) (notified bool, timeout bool) {
	target := k.Now() + d
	ok, _ := k.wait(target, events)
	if ok {
		return true, false
	}
	if k.stopped.Load() {
		return false, false
	}
	k.now.Store(uint64(target))
	return false, true
}

func (k *Kernel) wait(limit Time, events []*Event) (bool, bool) {
	counts := make([]uint64, len(events))
	for i, e := range events {
		counts[i] = e.count
	}

	notified := func() bool {
		for i, e := range events {
			if e.count != counts[i] {
				return true
			}
		}
		return false
	}

	for k.next(limit) {
		if notified() {
			return true, false
		}
	}

	return false, len(k.queue) == 0
}

// Stop the simulation. The first non-nil error is retained and returned by
// Err(). Stop can be called more than once and from any goroutine.
func (k *Kernel) Stop(err error) {
	k.crit.Lock()
	if k.err == nil {
		k.err = err
	}
	k.crit.Unlock()
	k.stopped.Store(true)
}

// Stopped returns true if Stop() has been called.
func (k *Kernel) Stopped() bool {
	return k.stopped.Load()
}

// Err returns the error that stopped the simulation, if any.
func (k *Kernel) Err() error {
	k.crit.Lock()
	defer k.crit.Unlock()
	return k.err
}
