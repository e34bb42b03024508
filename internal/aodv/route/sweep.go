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

package route

import "time"

// sweeper runs fn on a fixed tick for the lifetime of the enclosing
// struct, mirroring the teacher's per-IP client cache reaper
// (davidcoles-cue's mon package): a periodic wake-up that re-checks
// each entry's own deadline rather than scheduling one timer per
// entry. Spurious wakeups are harmless since fn re-derives state from
// the current time on every tick.
func sweeper(interval time.Duration, stop <-chan struct{}, fn func(now time.Time)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			fn(now)
		case <-stop:
			return
		}
	}
}
