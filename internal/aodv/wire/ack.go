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

// ACK is the two-byte acknowledgement message: `04 00`.
type ACK struct{}

func (ACK) Type() uint8 { return TypeACK }

func parseACK(b []byte) (ACK, error) {
	if len(b) != 2 {
		return ACK{}, &ParseError{Reason: "ACK must be 2 bytes"}
	}
	if b[1] != 0 {
		return ACK{}, &ParseError{Reason: "ACK second byte must be 0"}
	}
	return ACK{}, nil
}

func (ACK) Encode() []byte {
	return []byte{TypeACK, 0}
}
