package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		SourceRPCURL:        "ws://localhost:8546",
		DestRPCURL:          "http://localhost:8545",
		SourceBridgeAddress: "0x1111111111111111111111111111111111111111",
		DestBridgeAddress:   "0x2222222222222222222222222222222222222222",
		PrivateKey:          "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318",
		Confirmations:       12,
		BatchSize:           100,
		PollInterval:        10 * time.Second,
		RPCTimeout:          60 * time.Second,
		CheckpointBackend:   backendFile,
		CheckpointPath:      "relayer_state.json",
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()
	require.NoError(t, validConfig().Validate())
}

func TestConfig_ValidateCollectsAllProblems(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.SourceBridgeAddress = "not-an-address"
	cfg.DestBridgeAddress = ""
	cfg.PrivateKey = ""
	cfg.BatchSize = 0
	cfg.PollInterval = 0
	cfg.CheckpointBackend = "redis"

	err := cfg.Validate()
	require.Error(t, err)

	msg := err.Error()
	require.Contains(t, msg, "source-bridge-address")
	require.Contains(t, msg, "dest-bridge-address")
	require.Contains(t, msg, "private-key")
	require.Contains(t, msg, "batch-size")
	require.Contains(t, msg, "poll-interval")
	require.Contains(t, msg, "checkpoint-backend")
	// All problems are reported in a single error.
	require.Equal(t, 5, strings.Count(msg, ";"))
}

func TestConfig_DryRunDoesNotRequireKey(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.PrivateKey = ""
	cfg.DryRun = true
	require.NoError(t, cfg.Validate())
}

func TestConfig_AuditRequiresTopic(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	require.False(t, cfg.AuditEnabled())

	cfg.KafkaBrokers = "localhost:9092"
	cfg.KafkaTopic = ""
	require.True(t, cfg.AuditEnabled())
	require.ErrorContains(t, cfg.Validate(), "kafka-topic")
}

func TestConfig_KafkaProducerConfig(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.KafkaBrokers = "broker1:9092,broker2:9092"
	cfg.KafkaClientID = "bridge-relayer"
	cfg.KafkaSASL.Username = "relayer"
	cfg.KafkaSASL.Password = "secret"
	cfg.KafkaSASL.Mechanism = "PLAIN"
	cfg.KafkaSASL.SecurityProtocol = "SASL_PLAINTEXT"

	conf := cfg.KafkaProducerConfig()
	v, err := conf.Get("bootstrap.servers", "")
	require.NoError(t, err)
	require.Equal(t, "broker1:9092,broker2:9092", v)

	v, err = conf.Get("enable.idempotence", false)
	require.NoError(t, err)
	require.Equal(t, true, v)

	v, err = conf.Get("sasl.mechanism", "")
	require.NoError(t, err)
	require.Equal(t, "PLAIN", v)
}

func TestConfig_MetricsAddr(t *testing.T) {
	t.Parallel()
	cfg := validConfig()
	cfg.MetricsHost = ""
	cfg.MetricsPort = 9090
	require.Equal(t, ":9090", cfg.MetricsAddr())

	cfg.MetricsHost = "127.0.0.1"
	require.Equal(t, "127.0.0.1:9090", cfg.MetricsAddr())
}
