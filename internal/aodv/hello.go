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

package aodv

import (
	"time"

	"github.com/aodvd/aodvd/internal/aodv/wire"
)

// RunHello broadcasts a HELLO (RFC 3561 §6.9, spec §6 wire note) every
// HELLO_INTERVAL until stop is closed. A HELLO is an RREP shaped with
// dest_ip == orig_ip == self and a lifetime covering ALLOWED_HELLO_LOSS
// missed beats.
func (d *Daemon) RunHello(stop <-chan struct{}) {
	ticker := time.NewTicker(d.cfg.HelloInterval)
	defer ticker.Stop()

	lifetime := time.Duration(1+d.cfg.AllowedHelloLoss) * d.cfg.HelloInterval

	for {
		select {
		case <-ticker.C:
			hello := &wire.RREP{
				DestIP:     d.self,
				OrigIP:     d.self,
				DestSeqNum: d.seqNum.Get(),
				HopCount:   0,
				Lifetime:   lifetime,
			}
			d.send(d.cfg.BroadcastAddress, hello)
		case <-stop:
			return
		}
	}
}
