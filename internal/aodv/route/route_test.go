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

import (
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addr(s string) netip.Addr { return netip.MustParseAddr(s) }

func TestSetRoutePrefersFresherSeqNum(t *testing.T) {
	tbl := NewTable(addr("10.0.0.1"), time.Minute, time.Minute)

	dest := addr("10.0.0.9")
	tbl.SetRoute(Entry{
		Destination: dest, DestinationSeqNum: 5, DestinationSeqValid: true,
		Valid: true, HopCount: 3, NextHop: addr("10.0.0.2"), Lifetime: time.Now().Add(time.Minute),
	})

	// stale seq num, fewer hops: must not replace
	tbl.SetRoute(Entry{
		Destination: dest, DestinationSeqNum: 4, DestinationSeqValid: true,
		Valid: true, HopCount: 1, NextHop: addr("10.0.0.3"), Lifetime: time.Now().Add(time.Minute),
	})
	got, ok := tbl.Lookup(dest)
	require.True(t, ok)
	assert.Equal(t, uint32(5), got.DestinationSeqNum)
	assert.Equal(t, addr("10.0.0.2"), got.NextHop)

	// same seq num, fewer hops: must replace
	tbl.SetRoute(Entry{
		Destination: dest, DestinationSeqNum: 5, DestinationSeqValid: true,
		Valid: true, HopCount: 1, NextHop: addr("10.0.0.4"), Lifetime: time.Now().Add(time.Minute),
	})
	got, ok = tbl.Lookup(dest)
	require.True(t, ok)
	assert.Equal(t, addr("10.0.0.4"), got.NextHop)

	// newer seq num: must replace regardless of hop count
	tbl.SetRoute(Entry{
		Destination: dest, DestinationSeqNum: 9, DestinationSeqValid: true,
		Valid: true, HopCount: 9, NextHop: addr("10.0.0.5"), Lifetime: time.Now().Add(time.Minute),
	})
	got, ok = tbl.Lookup(dest)
	require.True(t, ok)
	assert.Equal(t, addr("10.0.0.5"), got.NextHop)
}

func TestSetRouteRejectsRouteToSelf(t *testing.T) {
	self := addr("10.0.0.1")
	tbl := NewTable(self, time.Minute, time.Minute)

	tbl.SetRoute(Entry{Destination: self, Valid: true, Lifetime: time.Now().Add(time.Minute)})

	_, ok := tbl.Lookup(self)
	assert.False(t, ok)
}

func TestUsedRefreshesLifetimeOfValidEntryOnly(t *testing.T) {
	tbl := NewTable(addr("10.0.0.1"), 50*time.Millisecond, time.Minute)
	dest := addr("10.0.0.9")

	tbl.PutRoute(Entry{Destination: dest, Valid: true, Lifetime: time.Now().Add(10 * time.Millisecond)})
	before, _ := tbl.Lookup(dest)

	tbl.Used(dest)
	after, _ := tbl.Lookup(dest)
	assert.True(t, after.Lifetime.After(before.Lifetime))

	tbl.PutRoute(Entry{Destination: dest, Valid: false})
	tbl.Used(dest) // no-op: invalid entries are not refreshed
	stillInvalid, _ := tbl.Lookup(dest)
	assert.False(t, stillInvalid.Valid)
}

func TestInvalidateBumpsSeqNumAndSchedulesDeletion(t *testing.T) {
	tbl := NewTable(addr("10.0.0.1"), time.Minute, 20*time.Millisecond)
	dest := addr("10.0.0.9")

	tbl.PutRoute(Entry{
		Destination: dest, Valid: true, DestinationSeqNum: 4, DestinationSeqValid: true,
		Lifetime: time.Now().Add(time.Minute),
	})

	tbl.Invalidate(dest)
	got, ok := tbl.Lookup(dest)
	require.True(t, ok)
	assert.False(t, got.Valid)
	assert.Equal(t, uint32(5), got.DestinationSeqNum)

	tbl.Start()
	defer tbl.Stop()

	require.Eventually(t, func() bool {
		_, ok := tbl.Lookup(dest)
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestSweepTransitionsExpiredValidEntryToInvalid(t *testing.T) {
	tbl := NewTable(addr("10.0.0.1"), time.Minute, time.Minute)
	dest := addr("10.0.0.9")

	tbl.PutRoute(Entry{Destination: dest, Valid: true, Lifetime: time.Now().Add(-time.Millisecond)})
	tbl.Start()
	defer tbl.Stop()

	require.Eventually(t, func() bool {
		got, ok := tbl.Lookup(dest)
		return ok && !got.Valid
	}, time.Second, 5*time.Millisecond)
}

func TestPrecursorsAccumulateAndAreIsolatedCopies(t *testing.T) {
	tbl := NewTable(addr("10.0.0.1"), time.Minute, time.Minute)
	dest := addr("10.0.0.9")
	tbl.PutRoute(Entry{Destination: dest, Valid: true, Lifetime: time.Now().Add(time.Minute)})

	tbl.AddPrecursor(dest, addr("10.0.0.20"))
	tbl.AddPrecursor(dest, addr("10.0.0.21"))

	p := tbl.Precursors(dest)
	assert.Len(t, p, 2)

	// mutating the returned copy must not affect the table
	delete(p, addr("10.0.0.20"))
	p2 := tbl.Precursors(dest)
	assert.Len(t, p2, 2)
}

func TestSequenceNumberIncrementIsMonotoneUnderConcurrency(t *testing.T) {
	sn := NewSequenceNumber(0)

	var wg sync.WaitGroup
	const n = 200
	results := make([]uint32, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = sn.IncrementThenGet()
		}(i)
	}
	wg.Wait()

	seen := map[uint32]bool{}
	for _, r := range results {
		require.False(t, seen[r], "duplicate sequence number %d", r)
		seen[r] = true
	}
	assert.Equal(t, uint32(n), sn.Get())
}

func TestSequenceNumberAdoptIfGreater(t *testing.T) {
	sn := NewSequenceNumber(5)
	sn.AdoptIfGreater(3)
	assert.Equal(t, uint32(5), sn.Get())

	sn.AdoptIfGreater(9)
	assert.Equal(t, uint32(9), sn.Get())
}

func TestSeenIndexSuppressesDuplicateWithinWindow(t *testing.T) {
	idx := NewSeenIndex(time.Hour)
	origin := addr("10.0.0.5")

	assert.False(t, idx.SeenBefore(origin, 42))
	assert.True(t, idx.SeenBefore(origin, 42))
	assert.False(t, idx.SeenBefore(origin, 43))
	assert.False(t, idx.SeenBefore(addr("10.0.0.6"), 42))
}

func TestSeenIndexExpiresAfterTTL(t *testing.T) {
	idx := NewSeenIndex(10 * time.Millisecond)
	origin := addr("10.0.0.5")

	assert.False(t, idx.SeenBefore(origin, 7))
	idx.Start()
	defer idx.Stop()

	require.Eventually(t, func() bool {
		return !idx.SeenBefore(origin, 7)
	}, time.Second, 5*time.Millisecond)
}
