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

// Package route implements the AODV routing state store: the routing
// table, the monotone sequence-number counter, and the duplicate-RREQ
// suppression index (spec §3-4.4). Each is governed by a single
// exclusive critical section per operation; none perform I/O while
// holding their lock (spec §5).
package route

import (
	"net/netip"
	"time"
)

// Entry is a snapshot of one routing table row. Lookups return copies;
// callers must not assume pointer stability (§4.2).
type Entry struct {
	Destination         netip.Addr
	DestinationSeqNum   uint32
	DestinationSeqValid bool
	Valid               bool
	Interface           string
	HopCount            uint8
	NextHop             netip.Addr
	Precursors          map[netip.Addr]struct{}
	Lifetime            time.Time
}

// clonePrecursors returns an independent copy of a precursor set.
func clonePrecursors(p map[netip.Addr]struct{}) map[netip.Addr]struct{} {
	out := make(map[netip.Addr]struct{}, len(p))
	for k := range p {
		out[k] = struct{}{}
	}
	return out
}

func (e Entry) clone() Entry {
	e.Precursors = clonePrecursors(e.Precursors)
	return e
}

// preferred reports whether existing should be kept over incoming per
// RFC 3561 §6.2: the existing entry wins if it has a valid sequence
// number and the incoming one is stale, or if the sequence numbers are
// equal and the incoming hop count is not strictly better. Ties default
// to the existing entry.
func preferred(existing, incoming Entry) bool {
	if existing.DestinationSeqValid {
		if incoming.DestinationSeqNum < existing.DestinationSeqNum {
			return true
		}
		if incoming.DestinationSeqNum == existing.DestinationSeqNum && incoming.HopCount >= existing.HopCount {
			return true
		}
	}
	return false
}
