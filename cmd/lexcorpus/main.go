// Copyright 2025 Poiesic Systems
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


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/lexcorpus"
	"github.com/poiesic/lexcorpus/config"
	"github.com/poiesic/lexcorpus/metrics"
)

const settingsKey = "settings"

// settings is what every command shares once the app has started.
type settings struct {
	cfg      *config.Config
	observer *metrics.RunnerMetrics
	logger   *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "lexcorpus",
		Usage: "Build a classified and embedded retrieval corpus from legal documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
			},
			&cli.StringSliceFlag{
				Name:  "env-file",
				Usage: "Read configuration from these .env files instead of ./.env",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve Prometheus metrics on this address while the command runs",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			extractCommand(),
			filterCommand(),
			classifyCommand(),
			embedCommand(),
			batchCommand(),
			projectCommand(),
			importCommand(),
			indexCommand(),
			searchCommand(),
			showCommand(),
			curateCommand(),
		},
	}
}

// setup loads configuration, installs the logger and starts the metrics server.
func setup(c *cli.Context) error {
	cfg, err := config.Load(c.StringSlice("env-file")...)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("metrics-addr") {
		cfg.MetricsAddr = c.String("metrics-addr")
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("%w: must be one of debug, info, warn, error", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})).With("run", uuid.NewString())
	slog.SetDefault(logger)

	registry := prometheus.NewRegistry()
	s := &settings{
		cfg:      cfg,
		observer: metrics.NewRunnerMetrics(registry),
		logger:   logger,
	}
	if cfg.MetricsAddr != "" {
		server := metrics.NewServer(cfg.MetricsAddr, registry, logger)
		go func() {
			if err := server.Run(c.Context); err != nil {
				logger.Error("metrics server failed", "err", err)
			}
		}()
	}

	if c.App.Metadata == nil {
		c.App.Metadata = map[string]any{}
	}
	c.App.Metadata[settingsKey] = s
	return nil
}

func settingsFrom(c *cli.Context) *settings {
	return c.App.Metadata[settingsKey].(*settings)
}

func openCorpus(c *cli.Context) (*lexcorpus.Corpus, error) {
	s := settingsFrom(c)
	aiConfig := s.cfg.AIConfig()
	if c.IsSet("model") {
		aiConfig.ClassifierModel = c.String("model")
	}
	indexDir := s.cfg.Storage.IndexDir
	if c.IsSet("index-dir") {
		indexDir = c.String("index-dir")
	}

	corpus, err := lexcorpus.Open(indexDir,
		lexcorpus.WithAIConfig(aiConfig),
		lexcorpus.WithObserver(s.observer),
		lexcorpus.WithLogger(s.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	return corpus, nil
}

func indexDirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "index-dir",
		Usage: "Directory of the local chunk index and submission ledger",
	}
}
