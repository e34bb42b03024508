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

// Package config holds the tunable AODV protocol constants (RFC 3561
// §10) plus the handful of deployment-specific settings (interface,
// broadcast address, port). Defaults come from the RFC; a YAML file
// and command-line flags may each override a subset, in that order of
// precedence (§6).
package config

import (
	"fmt"
	"net/netip"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full set of values a running daemon needs, after
// derived fields have been computed.
type Config struct {
	CurrentIP        netip.Addr `yaml:"-"`
	Interface        string     `yaml:"interface"`
	BroadcastAddress netip.Addr `yaml:"-"`
	Port             uint16     `yaml:"port"`

	ActiveRouteTimeout time.Duration `yaml:"-"`
	AllowedHelloLoss   uint32        `yaml:"allowedHelloLoss"`
	BlacklistTimeout   time.Duration `yaml:"-"`
	DeletePeriod       time.Duration `yaml:"-"`
	HelloInterval      time.Duration `yaml:"-"`
	LocalAddTTL        int           `yaml:"localAddTTL"`
	MaxRepairTTL       float64       `yaml:"-"`
	MinRepairTTL       int           `yaml:"-"`
	MyRouteTimeout     time.Duration `yaml:"-"`
	NetDiameter        int           `yaml:"netDiameter"`
	NetTraversalTime   time.Duration `yaml:"-"`
	NextHopWait        time.Duration `yaml:"-"`
	NodeTraversalTime  time.Duration `yaml:"-"`
	PathDiscoveryTime  time.Duration `yaml:"-"`
	RerrRatelimit      int           `yaml:"rerrRatelimit"`
	RingTraversalTime  time.Duration `yaml:"-"`
	RreqRetries        int           `yaml:"rreqRetries"`
	RreqRatelimit      int           `yaml:"rreqRatelimit"`
	TimeoutBuffer      int           `yaml:"timeoutBuffer"`
	TTLStart           int           `yaml:"ttlStart"`
	TTLIncrement       int           `yaml:"ttlIncrement"`
	TTLThreshold       int           `yaml:"ttlThreshold"`
	TTLValue           int           `yaml:"-"`
}

type yamlDoc struct {
	Interface            string `yaml:"Interface"`
	BroadcastAddress     string `yaml:"BroadcastAddress"`
	Port                 *int   `yaml:"Port"`
	ActiveRouteTimeoutMs *int64 `yaml:"ACTIVE_ROUTE_TIMEOUT"`
	AllowedHelloLoss     *int   `yaml:"ALLOWED_HELLO_LOSS"`
	HelloIntervalMs      *int64 `yaml:"HELLO_INTERVAL"`
	LocalAddTTL          *int   `yaml:"LOCAL_ADD_TTL"`
	NetDiameter          *int   `yaml:"NET_DIAMETER"`
	NodeTraversalTimeMs  *int64 `yaml:"NODE_TRAVERSAL_TIME"`
	RerrRatelimit        *int   `yaml:"RERR_RATELIMIT"`
	RreqRetries          *int   `yaml:"RREQ_RETRIES"`
	RreqRatelimit        *int   `yaml:"RREQ_RATELIMIT"`
	TimeoutBuffer        *int   `yaml:"TIMEOUT_BUFFER"`
	TTLStart             *int   `yaml:"TTL_START"`
	TTLIncrement         *int   `yaml:"TTL_INCREMENT"`
	TTLThreshold         *int   `yaml:"TTL_THRESHOLD"`
}

// Default returns the RFC 3561 §10 default configuration.
func Default() *Config {
	c := &Config{
		CurrentIP:        netip.IPv4Unspecified(),
		Interface:        "wlan0",
		BroadcastAddress: netip.MustParseAddr("255.255.255.255"),
		Port:             654,

		ActiveRouteTimeout: 3000 * time.Millisecond,
		AllowedHelloLoss:   2,
		HelloInterval:      1000 * time.Millisecond,
		LocalAddTTL:        2,
		MinRepairTTL:       0,
		NetDiameter:        35,
		NodeTraversalTime:  40 * time.Millisecond,
		RerrRatelimit:      10,
		RreqRetries:        2,
		RreqRatelimit:      10,
		TimeoutBuffer:      2,
		TTLStart:           1,
		TTLIncrement:       2,
		TTLThreshold:       7,
		TTLValue:           0,
	}
	c.derive()
	return c
}

// derive recomputes every field that §10 defines in terms of others.
// Must be called after any field it depends on changes.
func (c *Config) derive() {
	const k = 5

	if c.ActiveRouteTimeout > c.HelloInterval {
		c.DeletePeriod = c.ActiveRouteTimeout * k
	} else {
		c.DeletePeriod = c.HelloInterval * k
	}

	c.MaxRepairTTL = 0.3 * float64(c.NetDiameter)
	c.MyRouteTimeout = c.ActiveRouteTimeout * 2
	c.NetTraversalTime = c.NodeTraversalTime * 2 * time.Duration(c.NetDiameter)
	c.BlacklistTimeout = c.NetTraversalTime * time.Duration(c.RreqRetries)
	c.NextHopWait = c.NodeTraversalTime + 10*time.Millisecond
	c.PathDiscoveryTime = c.NetTraversalTime * 2
	c.RingTraversalTime = c.NodeTraversalTime * time.Duration(2*(c.TTLValue+c.TimeoutBuffer))
}

// Load applies overrides from a YAML file on top of Default(), then
// re-derives dependent fields. Unknown/absent fields in the document
// leave the underlying default untouched.
func Load(path string) (*Config, error) {
	c := Default()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	var doc yamlDoc
	if err := yaml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if doc.Interface != "" {
		c.Interface = doc.Interface
	}
	if doc.BroadcastAddress != "" {
		if addr, err := netip.ParseAddr(doc.BroadcastAddress); err == nil {
			c.BroadcastAddress = addr
		}
	}
	if doc.Port != nil {
		c.Port = uint16(*doc.Port)
	}
	if doc.ActiveRouteTimeoutMs != nil {
		c.ActiveRouteTimeout = time.Duration(*doc.ActiveRouteTimeoutMs) * time.Millisecond
	}
	if doc.AllowedHelloLoss != nil {
		c.AllowedHelloLoss = uint32(*doc.AllowedHelloLoss)
	}
	if doc.HelloIntervalMs != nil {
		c.HelloInterval = time.Duration(*doc.HelloIntervalMs) * time.Millisecond
	}
	if doc.LocalAddTTL != nil {
		c.LocalAddTTL = *doc.LocalAddTTL
	}
	if doc.NetDiameter != nil {
		c.NetDiameter = *doc.NetDiameter
	}
	if doc.NodeTraversalTimeMs != nil {
		c.NodeTraversalTime = time.Duration(*doc.NodeTraversalTimeMs) * time.Millisecond
	}
	if doc.RerrRatelimit != nil {
		c.RerrRatelimit = *doc.RerrRatelimit
	}
	if doc.RreqRetries != nil {
		c.RreqRetries = *doc.RreqRetries
	}
	if doc.RreqRatelimit != nil {
		c.RreqRatelimit = *doc.RreqRatelimit
	}
	if doc.TimeoutBuffer != nil {
		c.TimeoutBuffer = *doc.TimeoutBuffer
	}
	if doc.TTLStart != nil {
		c.TTLStart = *doc.TTLStart
	}
	if doc.TTLIncrement != nil {
		c.TTLIncrement = *doc.TTLIncrement
	}
	if doc.TTLThreshold != nil {
		c.TTLThreshold = *doc.TTLThreshold
	}

	c.derive()
	return c, nil
}

// ApplyFlags overlays command-line overrides for the two values the
// original tool exposed as flags: the node's own address and the
// listening port.
func (c *Config) ApplyFlags(currentIP string, port uint16) error {
	if currentIP != "" {
		addr, err := netip.ParseAddr(currentIP)
		if err != nil {
			return fmt.Errorf("config: invalid --ip %q: %w", currentIP, err)
		}
		c.CurrentIP = addr
	}
	if port != 0 {
		c.Port = port
	}
	return nil
}
