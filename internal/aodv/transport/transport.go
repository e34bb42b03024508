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

// Package transport binds the daemon to the well-known AODV UDP port
// (RFC 3561 §8), decodes inbound datagrams, and carries outbound
// messages back out — unicast or, via the configured broadcast
// address, to the whole segment.
package transport

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/aodvd/aodvd/internal/aodv/wire"
	"github.com/aodvd/aodvd/internal/log"
)

// Port is the IANA-assigned AODV control traffic port.
const Port = 654

// InstancePort is the local instance-control channel mentioned in
// spec §6. It is out of scope for this daemon; the constant exists so
// the value is on record and nothing else claims it.
const InstancePort = 15292

// Sender is the outbound surface handlers emit messages through.
// Broadcast is expressed by passing the configured broadcast address
// as dst, not by a distinct method.
type Sender interface {
	Send(dst netip.Addr, msg wire.Message) error
}

// Handler processes one successfully decoded inbound message from src.
type Handler func(src netip.Addr, msg wire.Message)

// UDPTransport is a Sender backed by a single UDP socket with
// SO_BROADCAST enabled. The read goroutine hands inbound datagrams to
// a worker pool, which parses each one and calls the handler, so one
// slow handler cannot stall the read loop.
type UDPTransport struct {
	conn      *net.UDPConn
	port      uint16
	broadcast netip.Addr
	workers   int
	log       log.Log

	wg sync.WaitGroup
}

// New binds a UDP socket on (ip, port) and enables broadcast sends to
// broadcastAddr. workers sizes the inbound processing pool.
func New(ip netip.Addr, port uint16, broadcastAddr netip.Addr, workers int, logger log.Log) (*UDPTransport, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: ip.AsSlice(), Port: int(port)})
	if err != nil {
		return nil, fmt.Errorf("transport: listen: %w", err)
	}

	if err := enableBroadcast(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("transport: enable broadcast: %w", err)
	}

	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = log.Nil{}
	}

	return &UDPTransport{conn: conn, port: port, broadcast: broadcastAddr, workers: workers, log: logger}, nil
}

func enableBroadcast(conn *net.UDPConn) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}

	var sockErr error
	err = raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}

type datagram struct {
	src     netip.Addr
	payload []byte
}

// Run reads datagrams until ctx is cancelled, parsing each and
// dispatching successfully decoded messages to handler on one of a
// fixed pool of worker goroutines. Parse failures are logged and
// dropped; they never reach handler and never stop the loop (spec
// §7). Blocks until every outstanding handler call has returned.
func (t *UDPTransport) Run(ctx context.Context, handler Handler) error {
	jobs := make(chan datagram, t.workers*4)

	for i := 0; i < t.workers; i++ {
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			for j := range jobs {
				msg, err := wire.Parse(j.payload)
				if err != nil {
					t.log.DEBUG("dropping unparseable datagram from %s: %v", j.src, err)
					continue
				}
				handler(j.src, msg)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		t.conn.Close()
	}()

	buf := make([]byte, 65507)
	for {
		n, addr, err := t.conn.ReadFromUDP(buf)
		if err != nil {
			close(jobs)
			t.wg.Wait()
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("transport: read: %w", err)
		}

		src, ok := netip.AddrFromSlice(addr.IP.To4())
		if !ok {
			continue
		}

		payload := make([]byte, n)
		copy(payload, buf[:n])

		select {
		case jobs <- datagram{src: src, payload: payload}:
		case <-ctx.Done():
		}
	}
}

// Send transmits msg to dst, which may be a unicast neighbor address
// or the configured broadcast address, on the port this transport was
// bound to (not necessarily the IANA-assigned Port — a deployment may
// override it).
func (t *UDPTransport) Send(dst netip.Addr, msg wire.Message) error {
	_, err := t.conn.WriteToUDP(wire.Encode(msg), &net.UDPAddr{IP: dst.AsSlice(), Port: int(t.port)})
	return err
}

// Close releases the underlying socket.
func (t *UDPTransport) Close() error {
	return t.conn.Close()
}
