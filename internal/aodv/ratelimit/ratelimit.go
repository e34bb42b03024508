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

// Package ratelimit enforces RREQ_RATELIMIT and RERR_RATELIMIT
// (RFC 3561 §10): a node must not originate more than the configured
// number of RREQ, or RERR, messages per second.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a simple per-second token bucket: it holds at most
// burst tokens, refilled to the full bucket once a second, and grants
// one token per Allow call.
type Limiter struct {
	burst int

	mu          sync.Mutex
	tokens      int
	windowStart time.Time
	now         func() time.Time
}

// New creates a limiter permitting up to perSecond messages in any
// one-second window.
func New(perSecond int) *Limiter {
	return &Limiter{
		burst:       perSecond,
		tokens:      perSecond,
		windowStart: time.Now(),
		now:         time.Now,
	}
}

// Allow reports whether a message may be sent now, consuming a token
// if so.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.windowStart) >= time.Second {
		l.windowStart = now
		l.tokens = l.burst
	}

	if l.tokens <= 0 {
		return false
	}
	l.tokens--
	return true
}
