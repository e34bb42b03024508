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

package wire

import "net/netip"

// Unreachable is one (destination, last known sequence number) pair
// carried in an RERR.
type Unreachable struct {
	IP     netip.Addr
	SeqNum uint32
}

// RERR is a Route Error message (RFC 3561 §5.3), carrying 1..N
// unreachable-destination pairs.
//
//	 0                   1                   2                   3
//	 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|     Type      |N|          Reserved          |   DestCount   |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                 Unreachable Destination IP Address (1)       |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|            Unreachable Destination Sequence Number (1)       |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                             ...                               |
type RERR struct {
	N bool

	Unreachable []Unreachable
}

func (r *RERR) Type() uint8 { return TypeRERR }

func parseRERR(b []byte) (*RERR, error) {
	n := (len(b) - 4) / 8
	if n < 1 {
		return nil, &ParseError{Reason: "RERR must list at least one destination"}
	}

	declared := int(b[3])
	if declared != n {
		return nil, &ParseError{Reason: "RERR dest_count does not match encoded list"}
	}

	r := &RERR{N: b[1]&(1<<7) != 0}

	for i := 0; i < n; i++ {
		off := 4 + i*8
		r.Unreachable = append(r.Unreachable, Unreachable{
			IP:     getIP(b[off : off+4]),
			SeqNum: ntohl(b[off+4 : off+8]),
		})
	}

	return r, nil
}

func (r *RERR) Encode() []byte {
	n := len(r.Unreachable)

	b := make([]byte, 4+8*n)
	b[0] = TypeRERR

	var flags byte
	if r.N {
		flags |= 1 << 7
	}
	b[1] = flags
	b[2] = 0
	b[3] = byte(n)

	for i, u := range r.Unreachable {
		off := 4 + i*8
		putIP(b[off:off+4], u.IP)
		seq := htonl(u.SeqNum)
		copy(b[off+4:off+8], seq[:])
	}

	return b
}
