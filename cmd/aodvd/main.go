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

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aodvd/aodvd/internal/aodv"
	"github.com/aodvd/aodvd/internal/aodv/config"
	"github.com/aodvd/aodvd/internal/aodv/metrics"
	"github.com/aodvd/aodvd/internal/aodv/transport"
	"github.com/aodvd/aodvd/internal/log"
)

var (
	flagConfig    string
	flagIP        string
	flagPort      uint16
	flagInterface string
	flagLogLevel  string
	flagMetrics   string
)

func main() {
	root := &cobra.Command{
		Use:   "aodvd",
		Short: "AODV ad-hoc routing daemon (RFC 3561)",
		RunE:  run,
	}

	flags := root.Flags()
	flags.StringVarP(&flagConfig, "config", "c", "", "path to a YAML config file")
	flags.StringVar(&flagIP, "ip", "", "this node's IPv4 address")
	flags.Uint16VarP(&flagPort, "port", "p", 0, "AODV control port (default 654)")
	flags.StringVar(&flagInterface, "interface", "", "network interface to bind")
	flags.StringVar(&flagLogLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&flagMetrics, "metrics-addr", "", "address to serve Prometheus metrics on, e.g. :9654 (disabled if empty)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	cfg := config.Default()
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := cfg.ApplyFlags(flagIP, flagPort); err != nil {
		return err
	}
	if flagInterface != "" {
		cfg.Interface = flagInterface
	}
	if !cfg.CurrentIP.IsValid() || cfg.CurrentIP.IsUnspecified() {
		return fmt.Errorf("aodvd: --ip is required")
	}

	logger, err := log.New(flagLogLevel)
	if err != nil {
		return fmt.Errorf("aodvd: building logger: %w", err)
	}

	m := metrics.New()
	if err := m.Register(prometheus.DefaultRegisterer); err != nil {
		return fmt.Errorf("aodvd: registering metrics: %w", err)
	}

	tr, err := transport.New(cfg.CurrentIP, cfg.Port, cfg.BroadcastAddress, runtime.GOMAXPROCS(0), logger)
	if err != nil {
		return fmt.Errorf("aodvd: starting transport: %w", err)
	}
	defer tr.Close()

	daemon := aodv.New(cfg.CurrentIP, cfg.Interface, cfg, tr, m, logger)
	daemon.Start()
	defer daemon.Stop()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	helloStop := make(chan struct{})
	go daemon.RunHello(helloStop)
	defer close(helloStop)

	if flagMetrics != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: flagMetrics, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.ERR("metrics server: %v", err)
			}
		}()
		go func() {
			<-ctx.Done()
			srv.Close()
		}()
	}

	logger.INFO("aodvd listening on %s:%d (interface %s)", cfg.CurrentIP, cfg.Port, cfg.Interface)

	return tr.Run(ctx, daemon.Handle)
}
