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

import (
	"net/netip"
	"time"
)

// RREP is a Route Reply message (RFC 3561 §5.2). A HELLO is an RREP
// with DestIP == OrigIP == the sender's own address, sent to the
// broadcast address; it shares this exact wire layout (§6).
//
//	 0                   1                   2                   3
//	 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|     Type      |R|A|   Reserved   |Prefix Sz|   Hop Count   |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                     Destination IP address                   |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                  Destination Sequence Number                  |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                    Originator IP address                      |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                           Lifetime                            |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
type RREP struct {
	R, A bool

	PrefixSize uint8
	HopCount   uint8

	DestIP     netip.Addr
	DestSeqNum uint32
	OrigIP     netip.Addr
	Lifetime   time.Duration
}

func (r *RREP) Type() uint8 { return TypeRREP }

// IsHello reports whether this RREP has the shape of a HELLO
// announcement (DestIP == OrigIP). It looks only at the message body;
// the address the datagram was sent to is not carried in it, and a
// received datagram's source is the sender's unicast address, so the
// body's shape is the only HELLO signal a receiver has.
func (r *RREP) IsHello() bool {
	return r.DestIP == r.OrigIP
}

func parseRREP(b []byte) (*RREP, error) {
	if len(b) != 20 {
		return nil, &ParseError{Reason: "RREP must be 20 bytes"}
	}

	return &RREP{
		R: b[1]&(1<<7) != 0,
		A: b[1]&(1<<6) != 0,

		PrefixSize: b[2] & 0x1f,
		HopCount:   b[3],

		DestIP:     getIP(b[4:8]),
		DestSeqNum: ntohl(b[8:12]),
		OrigIP:     getIP(b[12:16]),
		Lifetime:   time.Duration(ntohl(b[16:20])) * time.Millisecond,
	}, nil
}

func (r *RREP) Encode() []byte {
	b := make([]byte, 20)
	b[0] = TypeRREP

	var flags byte
	if r.R {
		flags |= 1 << 7
	}
	if r.A {
		flags |= 1 << 6
	}
	b[1] = flags

	b[2] = r.PrefixSize & 0x1f
	b[3] = r.HopCount

	putIP(b[4:8], r.DestIP)

	ds := htonl(r.DestSeqNum)
	copy(b[8:12], ds[:])

	putIP(b[12:16], r.OrigIP)

	lt := htonl(uint32(r.Lifetime / time.Millisecond))
	copy(b[16:20], lt[:])

	return b
}
