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

// RREQ is a Route Request message (RFC 3561 §5.1).
//
//	 0                   1                   2                   3
//	 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|     Type      |J|R|G|D|U|   Reserved          |   Hop Count   |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                            RREQ ID                            |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                    Destination IP Address                     |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                  Destination Sequence Number                  |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                    Originator IP Address                      |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                  Originator Sequence Number                   |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
type RREQ struct {
	J, R, G, D, U bool

	HopCount uint8
	RreqID   uint32

	DestIP     netip.Addr
	DestSeqNum uint32
	OrigIP     netip.Addr
	OrigSeqNum uint32
}

func (r *RREQ) Type() uint8 { return TypeRREQ }

func parseRREQ(b []byte) (*RREQ, error) {
	if len(b) != 24 {
		return nil, &ParseError{Reason: "RREQ must be 24 bytes"}
	}

	return &RREQ{
		J: b[1]&(1<<7) != 0,
		R: b[1]&(1<<6) != 0,
		G: b[1]&(1<<5) != 0,
		D: b[1]&(1<<4) != 0,
		U: b[1]&(1<<3) != 0,

		HopCount: b[3],
		RreqID:   ntohl(b[4:8]),

		DestIP:     getIP(b[8:12]),
		DestSeqNum: ntohl(b[12:16]),
		OrigIP:     getIP(b[16:20]),
		OrigSeqNum: ntohl(b[20:24]),
	}, nil
}

func (r *RREQ) Encode() []byte {
	b := make([]byte, 24)
	b[0] = TypeRREQ

	var flags byte
	if r.J {
		flags |= 1 << 7
	}
	if r.R {
		flags |= 1 << 6
	}
	if r.G {
		flags |= 1 << 5
	}
	if r.D {
		flags |= 1 << 4
	}
	if r.U {
		flags |= 1 << 3
	}
	b[1] = flags
	b[2] = 0
	b[3] = r.HopCount

	id := htonl(r.RreqID)
	copy(b[4:8], id[:])

	putIP(b[8:12], r.DestIP)

	ds := htonl(r.DestSeqNum)
	copy(b[12:16], ds[:])

	putIP(b[16:20], r.OrigIP)

	os := htonl(r.OrigSeqNum)
	copy(b[20:24], os[:])

	return b
}
