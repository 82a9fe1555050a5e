package main

import (
	"time"

	"github.com/urfave/cli/v2"
)

// runFlags returns all CLI flags for the relayer run command
func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable verbose logging",
			EnvVars: []string{"VERBOSE"},
			Value:   false,
		},
		&cli.StringFlag{
			Name:     "source-rpc-url",
			Aliases:  []string{"r"},
			Usage:    "The RPC URL of the source chain to scan for lock events",
			EnvVars:  []string{"SOURCE_RPC_URL"},
			Required: true,
		},
		&cli.StringFlag{
			Name:     "dest-rpc-url",
			Aliases:  []string{"d"},
			Usage:    "The RPC URL of the destination chain to submit mint transactions to",
			EnvVars:  []string{"DEST_RPC_URL"},
			Required: true,
		},
		&cli.StringFlag{
			Name:     "source-bridge-address",
			Usage:    "The bridge contract address on the source chain emitting TokensLocked events",
			EnvVars:  []string{"SOURCE_BRIDGE_ADDRESS"},
			Required: true,
		},
		&cli.StringFlag{
			Name:     "dest-bridge-address",
			Usage:    "The bridge contract address on the destination chain exposing mintTokens",
			EnvVars:  []string{"DEST_BRIDGE_ADDRESS"},
			Required: true,
		},
		&cli.StringFlag{
			Name:    "private-key",
			Usage:   "Hex-encoded private key of the minting account on the destination chain",
			EnvVars: []string{"RELAYER_PRIVATE_KEY"},
		},
		&cli.Uint64Flag{
			Name:    "confirmations",
			Aliases: []string{"c"},
			Usage:   "The number of blocks that must build on top of an event before it is relayed",
			EnvVars: []string{"CONFIRMATIONS"},
			Value:   12,
		},
		&cli.Uint64Flag{
			Name:    "batch-size",
			Aliases: []string{"b"},
			Usage:   "The maximum number of blocks scanned per iteration",
			EnvVars: []string{"BATCH_SIZE"},
			Value:   100,
		},
		&cli.DurationFlag{
			Name:    "poll-interval",
			Aliases: []string{"i"},
			Usage:   "The sleep between iterations when there is no backlog",
			EnvVars: []string{"POLL_INTERVAL"},
			Value:   10 * time.Second,
		},
		&cli.DurationFlag{
			Name:    "rpc-timeout",
			Usage:   "The timeout for individual source chain RPC calls",
			EnvVars: []string{"RPC_TIMEOUT"},
			Value:   60 * time.Second,
		},
		&cli.BoolFlag{
			Name:    "dry-run",
			Usage:   "Build and sign mint transactions but never broadcast them",
			EnvVars: []string{"DRY_RUN"},
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "checkpoint-backend",
			Usage:   "Checkpoint persistence backend (file or clickhouse)",
			EnvVars: []string{"CHECKPOINT_BACKEND"},
			Value:   "file",
		},
		&cli.StringFlag{
			Name:    "checkpoint-path",
			Aliases: []string{"p"},
			Usage:   "Path of the checkpoint file (file backend)",
			EnvVars: []string{"CHECKPOINT_PATH"},
			Value:   "relayer_state.json",
		},
		&cli.StringFlag{
			Name:    "checkpoint-table-name",
			Aliases: []string{"T"},
			Usage:   "The name of the table to write the checkpoint to (clickhouse backend)",
			EnvVars: []string{"CHECKPOINT_TABLE_NAME"},
			Value:   "relay_checkpoints",
		},
		&cli.StringFlag{
			Name:    "relayer-id",
			Usage:   "Identifier keying the checkpoint row (clickhouse backend, defaults to the source bridge address)",
			EnvVars: []string{"RELAYER_ID"},
		},
		&cli.StringFlag{
			Name:    "kafka-brokers",
			Usage:   "The Kafka brokers for the audit trail (comma-separated list, empty disables the trail)",
			EnvVars: []string{"KAFKA_BROKERS"},
		},
		&cli.StringFlag{
			Name:    "kafka-topic",
			Aliases: []string{"t"},
			Usage:   "The Kafka topic for relay audit records",
			EnvVars: []string{"KAFKA_TOPIC"},
			Value:   "relay-audit",
		},
		&cli.BoolFlag{
			Name:    "kafka-enable-logs",
			Aliases: []string{"l"},
			Usage:   "Enable Kafka logs",
			EnvVars: []string{"KAFKA_ENABLE_LOGS"},
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "kafka-client-id",
			Usage:   "The Kafka client ID to use",
			EnvVars: []string{"KAFKA_CLIENT_ID"},
			Value:   "bridge-relayer",
		},
		&cli.StringFlag{
			Name:    "kafka-sasl-username",
			Usage:   "SASL username for Kafka authentication",
			EnvVars: []string{"KAFKA_SASL_USERNAME"},
		},
		&cli.StringFlag{
			Name:    "kafka-sasl-password",
			Usage:   "SASL password for Kafka authentication",
			EnvVars: []string{"KAFKA_SASL_PASSWORD"},
		},
		&cli.StringFlag{
			Name:    "kafka-sasl-mechanism",
			Usage:   "SASL mechanism (SCRAM-SHA-256, SCRAM-SHA-512, or PLAIN)",
			EnvVars: []string{"KAFKA_SASL_MECHANISM"},
			Value:   "SCRAM-SHA-512",
		},
		&cli.StringFlag{
			Name:    "kafka-security-protocol",
			Usage:   "Security protocol (SASL_SSL or SASL_PLAINTEXT)",
			EnvVars: []string{"KAFKA_SECURITY_PROTOCOL"},
			Value:   "SASL_SSL",
		},
		&cli.StringFlag{
			Name:    "metrics-host",
			Usage:   "Host for Prometheus metrics server (empty for all interfaces)",
			EnvVars: []string{"METRICS_HOST"},
			Value:   "",
		},
		&cli.IntFlag{
			Name:    "metrics-port",
			Aliases: []string{"m"},
			Usage:   "Port for Prometheus metrics server",
			EnvVars: []string{"METRICS_PORT"},
			Value:   9090,
		},
	}
}

func resetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "checkpoint-backend",
			Usage:   "Checkpoint persistence backend (file or clickhouse)",
			EnvVars: []string{"CHECKPOINT_BACKEND"},
			Value:   "file",
		},
		&cli.StringFlag{
			Name:    "checkpoint-path",
			Aliases: []string{"p"},
			Usage:   "Path of the checkpoint file (file backend)",
			EnvVars: []string{"CHECKPOINT_PATH"},
			Value:   "relayer_state.json",
		},
		&cli.StringFlag{
			Name:    "checkpoint-table-name",
			Aliases: []string{"T"},
			Usage:   "The name of the table the checkpoint is written to (clickhouse backend)",
			EnvVars: []string{"CHECKPOINT_TABLE_NAME"},
			Value:   "relay_checkpoints",
		},
		&cli.StringFlag{
			Name:     "relayer-id",
			Usage:    "Identifier keying the checkpoint row (clickhouse backend)",
			EnvVars:  []string{"RELAYER_ID"},
			Required: false,
		},
		&cli.StringFlag{
			Name:    "source-bridge-address",
			Usage:   "The bridge contract address on the source chain (default relayer ID)",
			EnvVars: []string{"SOURCE_BRIDGE_ADDRESS"},
		},
	}
}
