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

// Package metrics exposes the daemon's runtime counters via the
// Prometheus client library.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "aodvd"

// Metrics bundles every collector the daemon updates. Register it
// against a prometheus.Registerer once at startup.
type Metrics struct {
	RoutesTotal         prometheus.Gauge
	RoutesValid         prometheus.Gauge
	MessagesRx          *prometheus.CounterVec
	MessagesTx          *prometheus.CounterVec
	RreqSuppressed      prometheus.Counter
	RatelimitDropped    *prometheus.CounterVec
	RerrPrecursorFanout prometheus.Histogram
}

// New constructs the collector set without registering it.
func New() *Metrics {
	return &Metrics{
		RoutesTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "routes_total",
			Help:      "Number of routing table entries currently held, valid or invalid.",
		}),
		RoutesValid: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "routes_valid",
			Help:      "Number of routing table entries currently marked valid.",
		}),
		MessagesRx: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "AODV control messages received, by type.",
		}, []string{"type"}),
		MessagesTx: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "AODV control messages sent, by type.",
		}, []string{"type"}),
		RreqSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rreq_suppressed_total",
			Help:      "RREQs dropped as duplicates of one already seen within PATH_DISCOVERY_TIME.",
		}),
		RatelimitDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_dropped_total",
			Help:      "Messages dropped by the originating rate limiter, by type.",
		}, []string{"type"}),
		RerrPrecursorFanout: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rerr_precursor_fanout",
			Help:      "Number of precursors an originated RERR was fanned out to.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32},
		}),
	}
}

// Register adds every collector to reg. Safe to call once per
// registerer; a second call against the same registerer will return
// an AlreadyRegisteredError from the underlying client.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.RoutesTotal, m.RoutesValid, m.MessagesRx, m.MessagesTx,
		m.RreqSuppressed, m.RatelimitDropped, m.RerrPrecursorFanout,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
