package main

import (
	"crypto/tls"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spice-dashboard/internal/api"
	"github.com/Veraticus/spice-dashboard/internal/certs"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP API",
		Long: `Serve the dashboard API until interrupted.

Every /api/ route requires an HS256 bearer token signed with auth.jwt_secret
(or JWT_SECRET). The token's id claim selects the user.

Set server.tls_dir to serve HTTPS with a self-signed certificate kept in that
directory; it is generated on first start and renewed before it expires.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.cfg.RequireJWTSecret(); err != nil {
				return err
			}

			var tlsConfig *tls.Config
			if dir := a.cfg.Server.TLSDir; dir != "" {
				tlsConfig, err = certs.NewStore(dir).TLSConfig()
				if err != nil {
					return fmt.Errorf("failed to load TLS certificate: %w", err)
				}
			}

			server, err := api.NewServer(api.Services{
				Importer: a.importer,
				Reviewer: a.engine,
				Analyst:  a.analyst,
				Charts:   a.charts,
				Verifier: api.NewTokenVerifier(a.cfg.Auth.JWTSecret),
			}, api.Config{
				TLS:          tlsConfig,
				Addr:         a.cfg.Server.Addr,
				ReadTimeout:  a.cfg.Server.ReadTimeout,
				WriteTimeout: a.cfg.Server.WriteTimeout,
			}, a.logger)
			if err != nil {
				return err
			}

			return server.ListenAndServe(ctx)
		},
	}
}
