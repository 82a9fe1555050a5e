package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	"github.com/bridgeworks/bridge-relayer/pkg/kafka"

	confluentKafka "github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

const (
	backendFile       = "file"
	backendClickHouse = "clickhouse"
)

// Config holds all configuration for the relayer application
type Config struct {
	// Application settings
	Verbose bool

	// Chain settings
	SourceRPCURL        string
	DestRPCURL          string
	SourceBridgeAddress string
	DestBridgeAddress   string
	PrivateKey          string
	DryRun              bool

	// Relay loop settings
	Confirmations uint64
	BatchSize     uint64
	PollInterval  time.Duration
	RPCTimeout    time.Duration

	// Checkpoint settings
	CheckpointBackend   string
	CheckpointPath      string
	CheckpointTableName string
	RelayerID           string

	// Kafka audit trail settings (empty KafkaBrokers disables the trail)
	KafkaBrokers    string
	KafkaTopic      string
	KafkaEnableLogs bool
	KafkaClientID   string
	KafkaSASL       kafka.SASLConfig

	// Metrics settings
	MetricsHost string
	MetricsPort int
}

// MetricsAddr returns the formatted metrics address
func (c *Config) MetricsAddr() string {
	return fmt.Sprintf("%s:%d", c.MetricsHost, c.MetricsPort)
}

// AuditEnabled reports whether the Kafka audit trail is configured.
func (c *Config) AuditEnabled() bool {
	return c.KafkaBrokers != ""
}

// KafkaProducerConfig builds a Kafka producer ConfigMap from the config
func (c *Config) KafkaProducerConfig() *confluentKafka.ConfigMap {
	cfg := &confluentKafka.ConfigMap{
		// Required
		"bootstrap.servers": c.KafkaBrokers,
		"client.id":         c.KafkaClientID,

		// Reliability: wait for all replicas to acknowledge
		"acks": "all",

		// Performance tuning
		"linger.ms":        5,     // Batch messages for 5ms
		"batch.size":       16384, // 16KB batch size
		"compression.type": "lz4", // Fast compression

		// Idempotence for exactly-once semantics
		"enable.idempotence": true,

		// Go channel for logs (optional, enable for debugging)
		"go.logs.channel.enable": c.KafkaEnableLogs,
	}
	// Apply SASL configuration if enabled
	c.KafkaSASL.ApplyToConfigMap(cfg)
	return cfg
}

// buildConfig builds a Config from CLI context flags
func buildConfig(c *cli.Context) (*Config, error) {
	cfg := &Config{
		Verbose:             c.Bool("verbose"),
		SourceRPCURL:        c.String("source-rpc-url"),
		DestRPCURL:          c.String("dest-rpc-url"),
		SourceBridgeAddress: c.String("source-bridge-address"),
		DestBridgeAddress:   c.String("dest-bridge-address"),
		PrivateKey:          c.String("private-key"),
		DryRun:              c.Bool("dry-run"),
		Confirmations:       c.Uint64("confirmations"),
		BatchSize:           c.Uint64("batch-size"),
		PollInterval:        c.Duration("poll-interval"),
		RPCTimeout:          c.Duration("rpc-timeout"),
		CheckpointBackend:   strings.ToLower(c.String("checkpoint-backend")),
		CheckpointPath:      c.String("checkpoint-path"),
		CheckpointTableName: c.String("checkpoint-table-name"),
		RelayerID:           c.String("relayer-id"),
		KafkaBrokers:        c.String("kafka-brokers"),
		KafkaTopic:          c.String("kafka-topic"),
		KafkaEnableLogs:     c.Bool("kafka-enable-logs"),
		KafkaClientID:       c.String("kafka-client-id"),
		KafkaSASL: kafka.SASLConfig{
			Username:         c.String("kafka-sasl-username"),
			Password:         c.String("kafka-sasl-password"),
			Mechanism:        c.String("kafka-sasl-mechanism"),
			SecurityProtocol: c.String("kafka-security-protocol"),
		},
		MetricsHost: c.String("metrics-host"),
		MetricsPort: c.Int("metrics-port"),
	}

	if cfg.RelayerID == "" {
		cfg.RelayerID = cfg.SourceBridgeAddress
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate collects every configuration problem into a single error so the
// operator can fix them all in one pass.
func (c *Config) Validate() error {
	var problems []string

	if !common.IsHexAddress(c.SourceBridgeAddress) {
		problems = append(problems, fmt.Sprintf("source-bridge-address %q is not a valid address", c.SourceBridgeAddress))
	}
	if !common.IsHexAddress(c.DestBridgeAddress) {
		problems = append(problems, fmt.Sprintf("dest-bridge-address %q is not a valid address", c.DestBridgeAddress))
	}
	if c.PrivateKey == "" && !c.DryRun {
		problems = append(problems, "private-key is required unless dry-run is set")
	}
	if c.BatchSize == 0 {
		problems = append(problems, "batch-size must be greater than 0")
	}
	if c.PollInterval <= 0 {
		problems = append(problems, "poll-interval must be greater than 0")
	}
	if c.RPCTimeout <= 0 {
		problems = append(problems, "rpc-timeout must be greater than 0")
	}
	if c.CheckpointBackend != backendFile && c.CheckpointBackend != backendClickHouse {
		problems = append(problems, fmt.Sprintf("checkpoint-backend must be %q or %q, got %q",
			backendFile, backendClickHouse, c.CheckpointBackend))
	}
	if c.CheckpointBackend == backendFile && c.CheckpointPath == "" {
		problems = append(problems, "checkpoint-path is required for the file backend")
	}
	if c.AuditEnabled() && c.KafkaTopic == "" {
		problems = append(problems, "kafka-topic is required when kafka-brokers is set")
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
