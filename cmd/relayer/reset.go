package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/bridgeworks/bridge-relayer/pkg/checkpoint"
	"github.com/bridgeworks/bridge-relayer/pkg/clickhouse"
	"github.com/bridgeworks/bridge-relayer/pkg/utils"
)

func reset(c *cli.Context) error {
	ctx := context.Background()
	sugar, err := utils.NewSugaredLogger(true)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer sugar.Desugar().Sync() //nolint:errcheck // best-effort flush; ignore sync errors

	backend := strings.ToLower(c.String("checkpoint-backend"))

	var store checkpoint.Store
	switch backend {
	case backendClickHouse:
		relayerID := c.String("relayer-id")
		if relayerID == "" {
			relayerID = c.String("source-bridge-address")
		}
		if relayerID == "" {
			return fmt.Errorf("relayer-id or source-bridge-address is required for the %s backend", backendClickHouse)
		}

		chCfg, err := clickhouse.Load()
		if err != nil {
			return fmt.Errorf("failed to load ClickHouse config: %w", err)
		}
		chClient, err := clickhouse.New(chCfg, sugar)
		if err != nil {
			return fmt.Errorf("failed to create ClickHouse client: %w", err)
		}
		defer chClient.Close()

		store, err = checkpoint.NewClickHouseStore(chClient, chCfg.Database, c.String("checkpoint-table-name"), relayerID)
		if err != nil {
			return fmt.Errorf("failed to create checkpoint store: %w", err)
		}
	case backendFile:
		fileStore := checkpoint.NewFileStore(sugar, c.String("checkpoint-path"))
		sugar.Infow("resetting file checkpoint", "path", fileStore.Path())
		store = fileStore
	default:
		return fmt.Errorf("checkpoint-backend must be %q or %q, got %q", backendFile, backendClickHouse, backend)
	}

	if err := store.Reset(ctx); err != nil {
		return fmt.Errorf("failed to reset checkpoint: %w", err)
	}

	sugar.Info("checkpoint successfully removed, next run starts at the confirmed head")
	return nil
}
