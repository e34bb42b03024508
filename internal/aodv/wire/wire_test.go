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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustAddr(s string) netip.Addr {
	return netip.MustParseAddr(s)
}

func TestRREQEncodeDecode(t *testing.T) {
	rreq := &RREQ{
		J: true, R: false, G: true, D: false, U: true,
		HopCount:   144,
		RreqID:     14425,
		DestIP:     mustAddr("192.168.10.14"),
		DestSeqNum: 12,
		OrigIP:     mustAddr("192.168.10.19"),
		OrigSeqNum: 63,
	}

	want := []byte{
		0x01, 0xA8, 0x00, 0x90, 0x00, 0x00, 0x38, 0x59,
		0xC0, 0xA8, 0x0A, 0x0E, 0x00, 0x00, 0x00, 0x0C,
		0xC0, 0xA8, 0x0A, 0x13, 0x00, 0x00, 0x00, 0x3F,
	}

	assert.Equal(t, want, rreq.Encode())

	msg, err := Parse(want)
	require.NoError(t, err)

	got, ok := msg.(*RREQ)
	require.True(t, ok)
	assert.Equal(t, rreq, got)
}

func TestRREPEncodeDecode(t *testing.T) {
	rrep := &RREP{
		R: true, A: false,
		PrefixSize: 31,
		HopCount:   98,
		DestIP:     mustAddr("192.168.10.14"),
		DestSeqNum: 12,
		OrigIP:     mustAddr("192.168.10.19"),
		Lifetime:   32603 * time.Millisecond,
	}

	want := []byte{
		0x02, 0x80, 0x1F, 0x62,
		0xC0, 0xA8, 0x0A, 0x0E, 0x00, 0x00, 0x00, 0x0C,
		0xC0, 0xA8, 0x0A, 0x13, 0x00, 0x00, 0x7F, 0x5B,
	}

	assert.Equal(t, want, rrep.Encode())

	msg, err := Parse(want)
	require.NoError(t, err)

	got, ok := msg.(*RREP)
	require.True(t, ok)
	assert.Equal(t, rrep, got)
}

func TestRERREncodeDecode(t *testing.T) {
	rerr := &RERR{
		N: false,
		Unreachable: []Unreachable{
			{IP: mustAddr("192.168.10.18"), SeqNum: 482755},
			{IP: mustAddr("255.255.255.255"), SeqNum: 0},
			{IP: mustAddr("192.168.10.15"), SeqNum: 58392910},
		},
	}

	want := []byte{
		0x03, 0x00, 0x00, 0x03,
		0xC0, 0xA8, 0x0A, 0x12, 0x00, 0x07, 0x5D, 0xC3,
		0xFF, 0xFF, 0xFF, 0xFF, 0x00, 0x00, 0x00, 0x00,
		0xC0, 0xA8, 0x0A, 0x0F, 0x03, 0x7B, 0x01, 0x4E,
	}

	assert.Equal(t, want, rerr.Encode())

	msg, err := Parse(want)
	require.NoError(t, err)

	got, ok := msg.(*RERR)
	require.True(t, ok)
	assert.Equal(t, rerr, got)
}

func TestACKEncodeDecode(t *testing.T) {
	assert.Equal(t, []byte{0x04, 0x00}, ACK{}.Encode())

	msg, err := Parse([]byte{0x04, 0x00})
	require.NoError(t, err)
	_, ok := msg.(ACK)
	require.True(t, ok)
}

func TestHelloIsRREPShaped(t *testing.T) {
	self := mustAddr("10.0.0.1")
	hello := &RREP{DestIP: self, OrigIP: self, Lifetime: 3 * time.Second}

	assert.True(t, hello.IsHello())

	b := hello.Encode()
	assert.Len(t, b, 20)
	assert.Equal(t, uint8(TypeRREP), b[0])
}

func TestParseRejectsEmptyBuffer(t *testing.T) {
	_, err := Parse(nil)
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestParseRejectsUnknownType(t *testing.T) {
	_, err := Parse([]byte{0x09, 0x00})
	require.Error(t, err)
}

func TestParseRERRDestCountMismatchRejected(t *testing.T) {
	b := []byte{
		0x03, 0x00, 0x00, 0x02, // claims 2 but only 1 pair follows
		0xC0, 0xA8, 0x0A, 0x12, 0x00, 0x07, 0x5D, 0xC3,
	}
	_, err := Parse(b)
	require.Error(t, err)
}

func TestRERRRequiresAtLeastOneDestination(t *testing.T) {
	b := []byte{0x03, 0x00, 0x00, 0x00}
	_, err := Parse(b)
	require.Error(t, err)
}

// round-trip property: parse(encode(m)) == m for every well-formed message.
func TestRoundTripProperty(t *testing.T) {
	msgs := []Message{
		&RREQ{HopCount: 1, RreqID: 2, DestIP: mustAddr("1.2.3.4"), OrigIP: mustAddr("5.6.7.8")},
		&RREP{HopCount: 1, DestIP: mustAddr("1.2.3.4"), OrigIP: mustAddr("5.6.7.8"), Lifetime: time.Second},
		&RERR{Unreachable: []Unreachable{{IP: mustAddr("9.9.9.9"), SeqNum: 1}}},
		ACK{},
	}

	for _, m := range msgs {
		encoded := Encode(m)
		decoded, err := Parse(encoded)
		require.NoError(t, err)
		assert.Equal(t, m, decoded)
		assert.Equal(t, encoded, Encode(decoded))
	}
}
