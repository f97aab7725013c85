// Copyright (c) 2025, The OpenStack Inventory Exporter Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/cloudinv/openstack-inventory-exporter/pkg/cache"
	"github.com/cloudinv/openstack-inventory-exporter/pkg/collector"
	"github.com/cloudinv/openstack-inventory-exporter/pkg/config"
	"github.com/cloudinv/openstack-inventory-exporter/pkg/gatherer"
	"github.com/cloudinv/openstack-inventory-exporter/pkg/openstack"
	"github.com/cloudinv/openstack-inventory-exporter/pkg/server"
)

// serve runs the gather loop and the HTTP server until the context is
// canceled by a shutdown signal.
func serve(ctx context.Context, cmd *cli.Command) error {
	initLogger(cmd.String("log-level"))

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	if port := cmd.Int("listen-port"); port != 0 {
		cfg.ListenPort = int(port)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	creds, err := config.CredentialsFromEnv()
	if err != nil {
		return err
	}

	store := cache.NewStore(cfg.CacheFile)
	g := gatherer.New(cfg, store, func(ctx context.Context) (gatherer.Source, error) {
		return openstack.NewClient(ctx, creds)
	})
	srv := server.New(cfg, collector.NewFactory(cfg, store), g)

	slog.Info("configuration loaded",
		"cloud", cfg.Cloud,
		"cacheFile", cfg.CacheFile,
		"refreshInterval", cfg.RefreshInterval().String(),
		"collectors", cfg.EnabledCollectors,
		"listenPort", cfg.ListenPort,
		"identityVersion", creds.IdentityVersion,
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return g.Run(egCtx)
	})
	eg.Go(func() error {
		return srv.Start(egCtx)
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	slog.Info("stopped gracefully")
	return nil
}
