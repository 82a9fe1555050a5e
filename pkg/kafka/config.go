package kafka

import "github.com/confluentinc/confluent-kafka-go/v2/kafka"

// SASLConfig holds optional SASL authentication settings. An empty Username
// leaves the config map untouched (plaintext brokers).
type SASLConfig struct {
	Username         string
	Password         string
	Mechanism        string // SCRAM-SHA-256, SCRAM-SHA-512, or PLAIN
	SecurityProtocol string // SASL_SSL or SASL_PLAINTEXT
}

// ApplyToConfigMap sets the SASL keys on the config map when enabled.
func (c SASLConfig) ApplyToConfigMap(conf *kafka.ConfigMap) {
	if c.Username == "" {
		return
	}
	(*conf)["security.protocol"] = c.SecurityProtocol
	(*conf)["sasl.mechanism"] = c.Mechanism
	(*conf)["sasl.username"] = c.Username
	(*conf)["sasl.password"] = c.Password
}
