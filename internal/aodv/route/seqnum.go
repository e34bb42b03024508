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

import "sync"

// SequenceNumber is the node's own monotone AODV sequence number
// (RFC 3561 §6.1). It only ever increases, wrapping per the protocol's
// unsigned-arithmetic comparison rules being the caller's concern, not
// this counter's.
type SequenceNumber struct {
	mu  sync.Mutex
	cur uint32
}

// NewSequenceNumber creates a counter starting at initial.
func NewSequenceNumber(initial uint32) *SequenceNumber {
	return &SequenceNumber{cur: initial}
}

// Get returns the current value without advancing it.
func (s *SequenceNumber) Get() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// IncrementThenGet advances the counter by one and returns the new
// value. Used when this node answers an RREQ addressed to itself and
// the requested sequence number is one past the current value.
func (s *SequenceNumber) IncrementThenGet() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur++
	return s.cur
}

// AdoptIfGreater raises the counter to seq if seq is larger than the
// current value, otherwise leaves it untouched. The protocol handlers
// do not call it; per-route sequence numbers are raised with
// Table.AdoptSeqNumIfGreater instead.
func (s *SequenceNumber) AdoptIfGreater(seq uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq > s.cur {
		s.cur = seq
	}
}
