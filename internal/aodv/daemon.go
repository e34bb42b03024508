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

// Package aodv implements the AODV (RFC 3561) protocol state machine:
// on receipt of a control message, consult and mutate the routing
// state store and emit zero or more outgoing messages.
package aodv

import (
	"net/netip"
	"sort"
	"sync"
	"time"

	"github.com/aodvd/aodvd/internal/aodv/config"
	"github.com/aodvd/aodvd/internal/aodv/metrics"
	"github.com/aodvd/aodvd/internal/aodv/ratelimit"
	"github.com/aodvd/aodvd/internal/aodv/route"
	"github.com/aodvd/aodvd/internal/aodv/transport"
	"github.com/aodvd/aodvd/internal/aodv/wire"
	"github.com/aodvd/aodvd/internal/log"
)

// metricsInterval is how often the route-count gauges are resynced
// from the routing table.
const metricsInterval = 5 * time.Second

// Daemon holds the state store and collaborators a running node needs
// to process AODV control traffic. It is the explicit context passed
// to every handler, replacing the lazy-static globals of the source
// this behavior was distilled from.
type Daemon struct {
	self      netip.Addr
	iface     string
	cfg       *config.Config
	table     *route.Table
	seqNum    *route.SequenceNumber
	seen      *route.SeenIndex
	sender    transport.Sender
	metrics   *metrics.Metrics
	rreqLimit *ratelimit.Limiter
	rerrLimit *ratelimit.Limiter
	l         log.Log

	metricsStop chan struct{}
	metricsOnce sync.Once
}

// New constructs a Daemon for the local node at self, reachable over
// iface, using cfg's derived timers and sender for all outbound
// traffic. m may be nil, in which case metrics are not recorded.
func New(self netip.Addr, iface string, cfg *config.Config, sender transport.Sender, m *metrics.Metrics, logger log.Log) *Daemon {
	if logger == nil {
		logger = log.Nil{}
	}
	return &Daemon{
		self:        self,
		iface:       iface,
		cfg:         cfg,
		table:       route.NewTable(self, cfg.ActiveRouteTimeout, cfg.DeletePeriod),
		seqNum:      route.NewSequenceNumber(0),
		seen:        route.NewSeenIndex(cfg.PathDiscoveryTime),
		sender:      sender,
		metrics:     m,
		rreqLimit:   ratelimit.New(cfg.RreqRatelimit),
		rerrLimit:   ratelimit.New(cfg.RerrRatelimit),
		l:           logger,
		metricsStop: make(chan struct{}),
	}
}

// Start launches the routing table's and suppression index's
// background lifetime sweeps, plus the route-count gauge refresh.
func (d *Daemon) Start() {
	d.table.Start()
	d.seen.Start()
	if d.metrics != nil {
		go d.runMetrics()
	}
}

// Stop releases the background sweep goroutines.
func (d *Daemon) Stop() {
	d.table.Stop()
	d.seen.Stop()
	d.metricsOnce.Do(func() { close(d.metricsStop) })
}

// runMetrics resyncs the route-count gauges on a fixed tick, the same
// periodic-resync shape the table and seen-index sweeps use rather
// than updating the gauges inline on every mutation.
func (d *Daemon) runMetrics() {
	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.metrics.RoutesTotal.Set(float64(d.table.Len()))
			d.metrics.RoutesValid.Set(float64(d.table.ValidLen()))
		case <-d.metricsStop:
			return
		}
	}
}

// Table exposes the routing table for read-only inspection (status
// reporting, metrics collection).
func (d *Daemon) Table() *route.Table { return d.table }

// Handle dispatches one successfully decoded inbound message to its
// handler. This is the sole entry point transport.Handler wires to.
func (d *Daemon) Handle(src netip.Addr, msg wire.Message) {
	switch m := msg.(type) {
	case *wire.RREQ:
		d.countRx("rreq")
		d.handleRREQ(src, m)
	case *wire.RREP:
		d.countRx("rrep")
		d.handleRREP(src, m)
	case *wire.RERR:
		d.countRx("rerr")
		d.handleRERR(src, m)
	case wire.ACK:
		d.countRx("ack")
		d.l.DEBUG("ack received from %s", src)
	}
}

func (d *Daemon) countRx(kind string) {
	if d.metrics != nil {
		d.metrics.MessagesRx.WithLabelValues(kind).Inc()
	}
}

func (d *Daemon) countTx(kind string) {
	if d.metrics != nil {
		d.metrics.MessagesTx.WithLabelValues(kind).Inc()
	}
}

// minimalReverseRoute seeds neighbor into the table without asserting
// its freshness (spec §4.5.1 step 1 / §4.5.3 step 2): a placeholder
// route good only until something legitimate replaces or the next
// sweep reaps it. SetRoute's own precedence rule (route.go's preferred)
// already leaves an existing, better entry untouched, so no lookup is
// needed here first.
func (d *Daemon) minimalReverseRoute(neighbor netip.Addr) {
	d.table.SetRoute(route.Entry{
		Destination:         neighbor,
		NextHop:             neighbor,
		HopCount:            1,
		Valid:               false,
		DestinationSeqValid: false,
		Interface:           d.iface,
		Lifetime:            time.Time{},
	})
}

func (d *Daemon) handleRREQ(src netip.Addr, rreq *wire.RREQ) {
	d.minimalReverseRoute(src)

	if d.seen.SeenBefore(rreq.OrigIP, rreq.RreqID) {
		if d.metrics != nil {
			d.metrics.RreqSuppressed.Inc()
		}
		return
	}

	rreq.HopCount++

	minimalLifetime := 2*d.cfg.NetTraversalTime - 2*time.Duration(rreq.HopCount)*d.cfg.NodeTraversalTime

	existing, ok := d.table.Lookup(rreq.OrigIP)
	if !ok {
		d.table.PutRoute(route.Entry{
			Destination:         rreq.OrigIP,
			DestinationSeqNum:   rreq.OrigSeqNum,
			DestinationSeqValid: true,
			Valid:               true,
			Interface:           d.iface,
			NextHop:             src,
			HopCount:            rreq.HopCount,
			Lifetime:            time.Now().Add(minimalLifetime),
		})
	} else {
		if !existing.DestinationSeqValid || rreq.OrigSeqNum > existing.DestinationSeqNum {
			existing.DestinationSeqNum = rreq.OrigSeqNum
		}
		existing.DestinationSeqValid = true
		existing.Valid = true
		existing.Interface = d.iface
		existing.NextHop = src
		existing.HopCount = rreq.HopCount
		candidate := time.Now().Add(minimalLifetime)
		if candidate.After(existing.Lifetime) {
			existing.Lifetime = candidate
		}
		d.table.PutRoute(existing)
	}

	if rrep, ok := d.generateRREP(rreq, src); ok {
		d.send(src, rrep)
		return
	}

	if !d.rreqLimit.Allow() {
		if d.metrics != nil {
			d.metrics.RatelimitDropped.WithLabelValues("rreq").Inc()
		}
		return
	}
	d.send(d.cfg.BroadcastAddress, rreq)
}

// generateRREP implements spec §4.5.2.
func (d *Daemon) generateRREP(rreq *wire.RREQ, prevHop netip.Addr) (*wire.RREP, bool) {
	if rreq.DestIP == d.self {
		var seq uint32
		if rreq.DestSeqNum == d.seqNum.Get()+1 {
			seq = d.seqNum.IncrementThenGet()
		} else {
			seq = d.seqNum.Get()
		}
		return &wire.RREP{
			DestIP:     rreq.DestIP,
			DestSeqNum: seq,
			OrigIP:     rreq.OrigIP,
			HopCount:   0,
			PrefixSize: 0,
			Lifetime:   d.cfg.MyRouteTimeout,
		}, true
	}

	if !rreq.D {
		if fwd, ok := d.table.Lookup(rreq.DestIP); ok && fwd.Valid && fwd.DestinationSeqValid && fwd.DestinationSeqNum >= rreq.DestSeqNum {
			remaining := time.Until(fwd.Lifetime)
			if remaining < 0 {
				remaining = 0
			}
			d.table.AddPrecursor(rreq.DestIP, rreq.OrigIP)
			return &wire.RREP{
				DestIP:     rreq.DestIP,
				DestSeqNum: fwd.DestinationSeqNum,
				OrigIP:     rreq.OrigIP,
				HopCount:   fwd.HopCount,
				Lifetime:   remaining,
			}, true
		}
	}

	return nil, false
}

func (d *Daemon) handleRREP(src netip.Addr, rrep *wire.RREP) {
	// A datagram's source address is always the sender's own unicast
	// address, never the broadcast address it was sent to, so a HELLO
	// cannot be distinguished by src — only by its dest_ip == orig_ip
	// shape (wire.RREP.IsHello), which no ordinary RREP can have since
	// a node never replies to itself.
	isHello := rrep.IsHello()

	d.minimalReverseRoute(src)

	rrep.HopCount++

	existing, _ := d.table.Lookup(rrep.DestIP)
	updated := !existing.DestinationSeqValid ||
		rrep.DestSeqNum > existing.DestinationSeqNum ||
		(rrep.DestSeqNum == existing.DestinationSeqNum && !existing.Valid) ||
		(rrep.DestSeqNum == existing.DestinationSeqNum && rrep.HopCount < existing.HopCount)

	if updated {
		existing.Destination = rrep.DestIP
		existing.Valid = true
		existing.DestinationSeqValid = true
		existing.NextHop = src
		existing.HopCount = rrep.HopCount
		existing.DestinationSeqNum = rrep.DestSeqNum
		existing.Interface = d.iface
		existing.Lifetime = time.Now().Add(rrep.Lifetime)
		d.table.PutRoute(existing)
	}

	if isHello {
		d.table.Used(src)
		return
	}

	if d.self != rrep.OrigIP && updated {
		origRoute, ok := d.table.Lookup(rrep.OrigIP)
		if !ok {
			// unknown destination on forwarding: silent drop (spec §7).
			return
		}
		d.table.AddPrecursor(rrep.DestIP, origRoute.NextHop)
		d.send(origRoute.NextHop, rrep)
	}
}

func (d *Daemon) handleRERR(src netip.Addr, rerr *wire.RERR) {
	affectedByIP := map[netip.Addr]wire.Unreachable{}
	precursors := map[netip.Addr]struct{}{}

	for _, u := range rerr.Unreachable {
		r, ok := d.table.Lookup(u.IP)
		if !ok || r.NextHop != src {
			continue
		}

		if _, already := affectedByIP[u.IP]; !already {
			d.table.Invalidate(u.IP)
		}
		d.table.AdoptSeqNumIfGreater(u.IP, u.SeqNum)

		for p := range d.table.Precursors(u.IP) {
			precursors[p] = struct{}{}
		}

		after, _ := d.table.Lookup(u.IP)
		affectedByIP[u.IP] = wire.Unreachable{IP: u.IP, SeqNum: after.DestinationSeqNum}
	}

	if len(affectedByIP) == 0 {
		return
	}

	if d.metrics != nil {
		d.metrics.RerrPrecursorFanout.Observe(float64(len(precursors)))
	}

	affected := make([]wire.Unreachable, 0, len(affectedByIP))
	for _, u := range affectedByIP {
		affected = append(affected, u)
	}
	sort.Slice(affected, func(i, j int) bool { return affected[i].IP.Compare(affected[j].IP) < 0 })

	out := &wire.RERR{N: false, Unreachable: affected}

	if !d.rerrLimit.Allow() {
		if d.metrics != nil {
			d.metrics.RatelimitDropped.WithLabelValues("rerr").Inc()
		}
		return
	}

	switch len(precursors) {
	case 0:
		return
	case 1:
		for p := range precursors {
			d.send(p, out)
		}
	default:
		d.send(d.cfg.BroadcastAddress, out)
	}
}

func (d *Daemon) send(dst netip.Addr, msg wire.Message) {
	kind := messageKind(msg)
	if err := d.sender.Send(dst, msg); err != nil {
		d.l.WARNING("send %s to %s failed: %v", kind, dst, err)
		return
	}
	d.countTx(kind)
}

func messageKind(msg wire.Message) string {
	switch msg.(type) {
	case *wire.RREQ:
		return "rreq"
	case *wire.RREP:
		return "rrep"
	case *wire.RERR:
		return "rerr"
	case wire.ACK:
		return "ack"
	default:
		return "unknown"
	}
}
