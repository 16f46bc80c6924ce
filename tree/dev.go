/*************************************************************************
 * Copyright 2026 the servicenow-agent authors. All rights reserved.
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package tree

import (
	"os/signal"
	"syscall"

	"github.com/Ciscokidok/servicenow-agent/clilog"
	"github.com/Ciscokidok/servicenow-agent/devserver"
	"github.com/spf13/cobra"
)

func newDevCmd() *cobra.Command {
	const (
		devUse   string = "dev"
		devShort string = "run the development asset server and API proxy"
		devLong  string = "Serve page assets with live stylesheet rewriting and forward" +
			" /api requests to the backend. Development use only; packaged builds" +
			" resolve asset paths at bundling time and need neither piece."
	)

	cmd := &cobra.Command{
		Use:   devUse,
		Short: devShort,
		Long:  devLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fs := cmd.Flags()
			cfgPath, err := fs.GetString("config")
			if err != nil {
				return err
			}
			cfg, err := devserver.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			// flags beat the config file
			if fs.Changed("listen") {
				cfg.Listen, _ = fs.GetString("listen")
			}
			if fs.Changed("backend") {
				cfg.Backend, _ = fs.GetString("backend")
			}
			if fs.Changed("assets") {
				cfg.AssetRoot, _ = fs.GetString("assets")
			}
			if fs.Changed("public-base") {
				cfg.PublicBase, _ = fs.GetString("public-base")
			}

			srv, err := devserver.New(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if err := srv.ListenAndServe(ctx); err != nil {
				clilog.Tee(clilog.CRITICAL, cmd.ErrOrStderr(), err.Error())
				return err
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.Flags().String("config", "", "path to a YAML dev server config file")
	cmd.Flags().String("listen", devserver.DefaultListen, "address to serve on")
	cmd.Flags().String("backend", devserver.DefaultBackend, "backend origin for /api forwarding")
	cmd.Flags().String("assets", devserver.DefaultAssetRoot, "directory of static assets")
	cmd.Flags().String("public-base", "", "origin substituted into rewritten stylesheets\n(defaults to the listen address)")
	return cmd
}
