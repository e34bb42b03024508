/*
 * aodvd: AODV ad-hoc routing daemon.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

package route

import (
	"net/netip"
	"sync"
	"time"
)

const sweepInterval = 200 * time.Millisecond

// internal per-entry state. deleteAt is only meaningful once the
// entry has gone invalid; it is set when the sweep or Invalidate marks
// the entry invalid, and a row installed by SetRoute or PutRoute
// starts with a zero deleteAt. There is no per-entry timer to cancel,
// since expiry is driven by the sweep in Start.
type row struct {
	Entry
	deleteAt time.Time // meaningful only once Valid == false
}

// Table is the routing table keyed by destination IPv4 address (§4.2).
// A single mutex guards the whole map; no operation performs I/O while
// holding it (§5).
type Table struct {
	self netip.Addr

	mu   sync.Mutex
	rows map[netip.Addr]*row

	activeRouteTimeout time.Duration
	deletePeriod       time.Duration

	stop chan struct{}
	once sync.Once
}

// NewTable constructs an empty routing table for the local node self.
// activeRouteTimeout and deletePeriod are the corresponding derived
// config values (§6).
func NewTable(self netip.Addr, activeRouteTimeout, deletePeriod time.Duration) *Table {
	return &Table{
		self:               self,
		rows:               map[netip.Addr]*row{},
		activeRouteTimeout: activeRouteTimeout,
		deletePeriod:       deletePeriod,
		stop:               make(chan struct{}),
	}
}

// Start launches the background lifetime sweep. Stop must be called
// to release the goroutine.
func (t *Table) Start() {
	go sweeper(sweepInterval, t.stop, t.sweep)
}

// Stop releases the background sweep goroutine.
func (t *Table) Stop() {
	t.once.Do(func() { close(t.stop) })
}

func (t *Table) sweep(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for dest, r := range t.rows {
		if r.Valid {
			if !now.Before(r.Lifetime) {
				r.Valid = false
				r.deleteAt = now.Add(t.deletePeriod)
			}
			continue
		}

		if !now.Before(r.deleteAt) {
			delete(t.rows, dest)
		}
	}
}

// SetRoute inserts incoming if no route to its destination exists, or
// replaces the existing route unless the existing one is strictly
// preferable per RFC 3561 §6.2. A route to the local node is always
// rejected.
func (t *Table) SetRoute(incoming Entry) {
	if incoming.Destination == t.self {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	existing, ok := t.rows[incoming.Destination]
	if ok && preferred(existing.Entry, incoming) {
		return
	}

	t.rows[incoming.Destination] = &row{Entry: incoming.clone()}
}

// PutRoute unconditionally installs incoming, overwriting any existing
// entry. Used by handlers that have already reconciled precedence
// themselves.
func (t *Table) PutRoute(incoming Entry) {
	if incoming.Destination == t.self {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.rows[incoming.Destination] = &row{Entry: incoming.clone()}
}

// AddPrecursor inserts neighbor into destination's precursor set. It
// is a no-op if destination has no route.
func (t *Table) AddPrecursor(destination, neighbor netip.Addr) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.rows[destination]
	if !ok {
		return
	}

	if r.Precursors == nil {
		r.Precursors = map[netip.Addr]struct{}{}
	}
	r.Precursors[neighbor] = struct{}{}
}

// Lookup returns a snapshot copy of the route to destination, if any.
func (t *Table) Lookup(destination netip.Addr) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.rows[destination]
	if !ok {
		return Entry{}, false
	}

	return r.Entry.clone(), true
}

// Used refreshes destination's lifetime to now + ACTIVE_ROUTE_TIMEOUT.
// Only affects entries currently Valid (§4.2).
func (t *Table) Used(destination netip.Addr) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.rows[destination]
	if !ok || !r.Valid {
		return
	}

	r.Lifetime = time.Now().Add(t.activeRouteTimeout)
}

// Invalidate marks destination unusable, bumps its destination
// sequence number, and schedules its deletion after DELETE_PERIOD
// (RFC 3561 §6.11).
func (t *Table) Invalidate(destination netip.Addr) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.rows[destination]
	if !ok {
		return
	}

	now := time.Now()
	r.Valid = false
	r.DestinationSeqValid = true
	r.DestinationSeqNum++
	r.deleteAt = now.Add(t.deletePeriod)
}

// Precursors returns a snapshot of destination's precursor set.
func (t *Table) Precursors(destination netip.Addr) map[netip.Addr]struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.rows[destination]
	if !ok {
		return nil
	}

	return clonePrecursors(r.Precursors)
}

// AdoptSeqNumIfGreater raises destination's stored sequence number to
// seq if seq is greater, leaving the route otherwise untouched. Used
// when reconciling an RERR's reported unreachable_seq_num (§4.5.4).
func (t *Table) AdoptSeqNumIfGreater(destination netip.Addr, seq uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.rows[destination]
	if !ok {
		return
	}

	if !r.DestinationSeqValid || seq > r.DestinationSeqNum {
		r.DestinationSeqNum = seq
		r.DestinationSeqValid = true
	}
}

// Len reports the number of routes currently held, for metrics.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

// ValidLen reports the number of routes currently marked Valid, for
// metrics.
func (t *Table) ValidLen() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, r := range t.rows {
		if r.Valid {
			n++
		}
	}
	return n
}
