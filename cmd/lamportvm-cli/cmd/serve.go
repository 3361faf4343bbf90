// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/lamportvm/rpc"
	"github.com/ava-labs/lamportvm/server"
)

const (
	baseRoute       = "ext"
	metricsEndpoint = "/metrics"
	shutdownTimeout = 10 * time.Second
)

func newServeCmd(c *cli) *cobra.Command {
	var (
		addr           string
		allowedOrigins []string
		allowedHosts   []string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger over JSON-RPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = c.cfg.RPCAddr
			}
			v, err := c.newVM(c.cfg.Rent)
			if err != nil {
				return err
			}
			listener, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			srv := server.New("", c.log, listener, server.NewDefaultHTTPConfig(), allowedOrigins, allowedHosts, shutdownTimeout)

			handler, err := rpc.NewJSONRPCHandler(v)
			if err != nil {
				return err
			}
			if err := srv.AddRoute(handler, baseRoute, rpc.JSONRPCEndpoint); err != nil {
				return err
			}
			metrics := promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
			if err := srv.AddRoute(metrics, baseRoute, metricsEndpoint); err != nil {
				return err
			}

			c.log.Info("serving",
				zap.Stringer("addr", srv.Addr()),
				zap.String("endpoint", rpc.JSONRPCEndpoint),
			)
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(srv.Dispatch)
			g.Go(func() error {
				<-ctx.Done()
				return srv.Shutdown()
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to the configured rpcAddr)")
	cmd.Flags().StringSliceVar(&allowedOrigins, "allowed-origins", []string{"*"}, "CORS origins")
	cmd.Flags().StringSliceVar(&allowedHosts, "allowed-hosts", []string{"localhost"}, "accepted Host headers")
	return cmd
}
