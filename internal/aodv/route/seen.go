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

type seenKey struct {
	origin netip.Addr
	rreqID uint32
}

// SeenIndex suppresses duplicate RREQ processing: an (originator,
// rreq_id) pair already seen within PATH_DISCOVERY_TIME is dropped
// (RFC 3561 §6.5). Entries expire via the same tick-driven sweep used
// by Table rather than one timer per entry.
type SeenIndex struct {
	ttl time.Duration

	mu   sync.Mutex
	seen map[seenKey]time.Time // value is the expiry deadline

	stop chan struct{}
	once sync.Once
}

// NewSeenIndex creates an index whose entries expire after ttl
// (PATH_DISCOVERY_TIME).
func NewSeenIndex(ttl time.Duration) *SeenIndex {
	return &SeenIndex{
		ttl:  ttl,
		seen: map[seenKey]time.Time{},
		stop: make(chan struct{}),
	}
}

// Start launches the background expiry sweep.
func (s *SeenIndex) Start() {
	go sweeper(sweepInterval, s.stop, s.sweep)
}

// Stop releases the background sweep goroutine.
func (s *SeenIndex) Stop() {
	s.once.Do(func() { close(s.stop) })
}

func (s *SeenIndex) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, deadline := range s.seen {
		if !now.Before(deadline) {
			delete(s.seen, k)
		}
	}
}

// SeenBefore reports whether (origin, rreqID) was already recorded
// and still within its suppression window. A true answer has no side
// effect; a false answer is NOT side-effect-free: the fresh pair is
// immediately remembered, matching how receivers are required to
// record the pair before deciding whether to forward (§4.5.1).
func (s *SeenIndex) SeenBefore(origin netip.Addr, rreqID uint32) bool {
	now := time.Now()
	key := seenKey{origin: origin, rreqID: rreqID}

	s.mu.Lock()
	defer s.mu.Unlock()

	deadline, ok := s.seen[key]
	if ok && now.Before(deadline) {
		return true
	}

	s.seen[key] = now.Add(s.ttl)
	return false
}
