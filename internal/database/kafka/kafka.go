package kafka

import (
	"context"
	"fmt"
	"sync"

	kafkago "github.com/segmentio/kafka-go"

	"taxcopilot/internal/config"
)

var (
	instance *KafkaClient
	once     sync.Once
	initErr  error
)

// KafkaClient holds the broker configuration shared by publishers.
type KafkaClient struct {
	Config *config.KafkaConfig
}

// GetClient verifies broker connectivity once and returns a singleton client.
func GetClient(ctx context.Context, cfg *config.KafkaConfig) (*KafkaClient, error) {
	once.Do(func() {
		if len(cfg.Brokers) == 0 {
			initErr = fmt.Errorf("no kafka brokers configured")
			return
		}
		conn, err := kafkago.DialContext(ctx, "tcp", cfg.Brokers[0])
		if err != nil {
			initErr = fmt.Errorf("unable to connect to Kafka broker %s: %w", cfg.Brokers[0], err)
			return
		}
		conn.Close()
		instance = &KafkaClient{Config: cfg}
	})
	return instance, initErr
}
