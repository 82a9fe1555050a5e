package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/bridgeworks/bridge-relayer/pkg/audit"
	"github.com/bridgeworks/bridge-relayer/pkg/checkpoint"
	"github.com/bridgeworks/bridge-relayer/pkg/clickhouse"
	"github.com/bridgeworks/bridge-relayer/pkg/evm"
	"github.com/bridgeworks/bridge-relayer/pkg/kafka"
	"github.com/bridgeworks/bridge-relayer/pkg/metrics"
	"github.com/bridgeworks/bridge-relayer/pkg/relay"
	"github.com/bridgeworks/bridge-relayer/pkg/utils"
)

const flushTimeoutOnClose = 15 * time.Second

func run(c *cli.Context) error {
	// Build configuration from CLI flags
	cfg, err := buildConfig(c)
	if err != nil {
		return fmt.Errorf("failed to build config: %w", err)
	}

	sugar, err := utils.NewSugaredLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer sugar.Desugar().Sync() //nolint:errcheck // best-effort flush; ignore sync errors

	sugar.Infow("config",
		"verbose", cfg.Verbose,
		"sourceRPCURL", cfg.SourceRPCURL,
		"destRPCURL", cfg.DestRPCURL,
		"sourceBridgeAddress", cfg.SourceBridgeAddress,
		"destBridgeAddress", cfg.DestBridgeAddress,
		"confirmations", cfg.Confirmations,
		"batchSize", cfg.BatchSize,
		"pollInterval", cfg.PollInterval,
		"rpcTimeout", cfg.RPCTimeout,
		"dryRun", cfg.DryRun,
		"checkpointBackend", cfg.CheckpointBackend,
		"checkpointPath", cfg.CheckpointPath,
		"checkpointTableName", cfg.CheckpointTableName,
		"relayerID", cfg.RelayerID,
		"auditEnabled", cfg.AuditEnabled(),
		"kafkaTopic", cfg.KafkaTopic,
		"metricsHost", cfg.MetricsHost,
		"metricsPort", cfg.MetricsPort,
	)

	// Initialize Prometheus metrics
	registry := prometheus.NewRegistry()
	m, err := metrics.New(registry)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	// Start metrics server
	metricsServer := metrics.NewServer(cfg.MetricsAddr(), registry)
	metricsErrCh := metricsServer.Start()
	if cfg.MetricsHost == "" {
		sugar.Infof("metrics server listening on http://0.0.0.0:%d/metrics", cfg.MetricsPort)
	} else {
		sugar.Infof("metrics server listening on http://%s/metrics", cfg.MetricsAddr())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sourceClient, err := evm.NewClient(
		ctx, sugar,
		cfg.SourceRPCURL,
		common.HexToAddress(cfg.SourceBridgeAddress),
		cfg.RPCTimeout,
	)
	if err != nil {
		return fmt.Errorf("failed to create source chain client: %w", err)
	}

	privateKey := cfg.PrivateKey
	if privateKey == "" {
		// Dry run without a signing key still needs one to build transactions.
		key, err := crypto.GenerateKey()
		if err != nil {
			return fmt.Errorf("failed to generate ephemeral key: %w", err)
		}
		privateKey = common.Bytes2Hex(crypto.FromECDSA(key))
		sugar.Warnw("no private key configured, using an ephemeral key for dry run")
	}

	minter, err := evm.NewMinter(
		ctx, sugar,
		cfg.DestRPCURL,
		common.HexToAddress(cfg.DestBridgeAddress),
		privateKey,
		cfg.DryRun,
	)
	if err != nil {
		return fmt.Errorf("failed to create minter: %w", err)
	}
	defer minter.Close()

	var store checkpoint.Store
	switch cfg.CheckpointBackend {
	case backendClickHouse:
		chCfg, err := clickhouse.Load()
		if err != nil {
			return fmt.Errorf("failed to load ClickHouse config: %w", err)
		}
		chClient, err := clickhouse.New(chCfg, sugar)
		if err != nil {
			return fmt.Errorf("failed to create ClickHouse client: %w", err)
		}
		defer chClient.Close()

		store, err = checkpoint.NewClickHouseStore(chClient, chCfg.Database, cfg.CheckpointTableName, cfg.RelayerID)
		if err != nil {
			return fmt.Errorf("failed to create checkpoint store: %w", err)
		}
	default:
		store = checkpoint.NewFileStore(sugar, cfg.CheckpointPath)
	}

	var (
		producer *kafka.Producer
		sink     relay.AuditSink
	)
	if cfg.AuditEnabled() {
		producer, err = kafka.NewProducer(ctx, cfg.KafkaProducerConfig(), sugar)
		if err != nil {
			return fmt.Errorf("failed to create kafka producer: %w", err)
		}
		defer producer.Close(flushTimeoutOnClose)

		sink = audit.NewPublisher(sugar, producer, cfg.KafkaTopic)
		sugar.Infow("audit trail enabled", "topic", cfg.KafkaTopic)
	}

	scanner := relay.NewScanner(sugar, sourceClient, m)
	relayer, err := relay.New(
		sugar,
		relay.Config{
			Confirmations: cfg.Confirmations,
			BatchSize:     cfg.BatchSize,
			PollInterval:  cfg.PollInterval,
		},
		sourceClient,
		scanner,
		minter,
		store,
		sink,
		m,
	)
	if err != nil {
		return fmt.Errorf("failed to create relayer: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return relayer.Run(gctx)
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
			return nil
		case err := <-metricsErrCh:
			if err != nil {
				return fmt.Errorf("metrics server failed: %w", err)
			}
			return nil
		}
	})
	if producer != nil {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case err := <-producer.Errors():
				return err
			}
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		sugar.Infow("exiting due to context cancellation")
		err = nil
	} else if err != nil {
		sugar.Errorw("run failed", "error", err)
	}

	// Gracefully shutdown metrics server
	sugar.Info("shutting down metrics server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := metricsServer.Shutdown(shutdownCtx); shutdownErr != nil {
		sugar.Warnw("metrics server shutdown error", "error", shutdownErr)
	}

	sugar.Info("shutdown complete")
	return err
}
