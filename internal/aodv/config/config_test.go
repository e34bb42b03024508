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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesRFCSection10(t *testing.T) {
	c := Default()

	assert.Equal(t, 3000*time.Millisecond, c.ActiveRouteTimeout)
	assert.Equal(t, uint32(2), c.AllowedHelloLoss)
	assert.Equal(t, 5600*time.Millisecond, c.BlacklistTimeout)
	assert.Equal(t, 15000*time.Millisecond, c.DeletePeriod)
	assert.Equal(t, 1000*time.Millisecond, c.HelloInterval)
	assert.Equal(t, 6000*time.Millisecond, c.MyRouteTimeout)
	assert.Equal(t, 2800*time.Millisecond, c.NetTraversalTime)
	assert.Equal(t, 50*time.Millisecond, c.NextHopWait)
	assert.Equal(t, 40*time.Millisecond, c.NodeTraversalTime)
	assert.Equal(t, 5600*time.Millisecond, c.PathDiscoveryTime)
	assert.Equal(t, 160*time.Millisecond, c.RingTraversalTime)
}

func TestLoadOverridesAndRederivesDependents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	doc := `Interface: "wlan1"
BroadcastAddress: "192.168.10.251"
Port: 1201
ACTIVE_ROUTE_TIMEOUT: 3001
ALLOWED_HELLO_LOSS: 3
HELLO_INTERVAL: 1001
LOCAL_ADD_TTL: 3
NET_DIAMETER: 36
NODE_TRAVERSAL_TIME: 41
RERR_RATELIMIT: 11
RREQ_RETRIES: 3
RREQ_RATELIMIT: 11
TIMEOUT_BUFFER: 3
TTL_START: 2
TTL_INCREMENT: 3
TTL_THRESHOLD: 8
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "wlan1", c.Interface)
	assert.Equal(t, "192.168.10.251", c.BroadcastAddress.String())
	assert.Equal(t, uint16(1201), c.Port)
	assert.Equal(t, 3001*time.Millisecond, c.ActiveRouteTimeout)
	assert.Equal(t, uint32(3), c.AllowedHelloLoss)
	assert.Equal(t, 8856*time.Millisecond, c.BlacklistTimeout)
	assert.Equal(t, 15005*time.Millisecond, c.DeletePeriod)
	assert.Equal(t, 1001*time.Millisecond, c.HelloInterval)
	assert.Equal(t, 3, c.LocalAddTTL)
	assert.Equal(t, 6002*time.Millisecond, c.MyRouteTimeout)
	assert.Equal(t, 36, c.NetDiameter)
	assert.Equal(t, 2952*time.Millisecond, c.NetTraversalTime)
	assert.Equal(t, 51*time.Millisecond, c.NextHopWait)
	assert.Equal(t, 41*time.Millisecond, c.NodeTraversalTime)
	assert.Equal(t, 5904*time.Millisecond, c.PathDiscoveryTime)
	assert.Equal(t, 11, c.RerrRatelimit)
	assert.Equal(t, 246*time.Millisecond, c.RingTraversalTime)
	assert.Equal(t, 3, c.RreqRetries)
	assert.Equal(t, 11, c.RreqRatelimit)
	assert.Equal(t, 3, c.TimeoutBuffer)
	assert.Equal(t, 2, c.TTLStart)
	assert.Equal(t, 3, c.TTLIncrement)
	assert.Equal(t, 8, c.TTLThreshold)
}

func TestLoadRejectsUnreadableFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyFlagsOverridesIPAndPort(t *testing.T) {
	c := Default()
	require.NoError(t, c.ApplyFlags("10.0.0.5", 7000))
	assert.Equal(t, "10.0.0.5", c.CurrentIP.String())
	assert.Equal(t, uint16(7000), c.Port)
}

func TestApplyFlagsRejectsInvalidIP(t *testing.T) {
	c := Default()
	assert.Error(t, c.ApplyFlags("not-an-ip", 0))
}
