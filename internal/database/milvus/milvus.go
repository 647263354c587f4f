package milvus

import (
	"context"
	"fmt"
	"sync"

	"github.com/milvus-io/milvus-sdk-go/v2/client"

	"taxcopilot/internal/config"
)

var (
	instance *MilvusClient
	once     sync.Once
	initErr  error
)

// MilvusClient bundles the raw Milvus client with its configuration.
type MilvusClient struct {
	Client client.Client
	Config *config.MilvusConfig
}

// GetClient initializes and returns a singleton Milvus client.
func GetClient(ctx context.Context, cfg *config.MilvusConfig) (*MilvusClient, error) {
	once.Do(func() {
		c, err := client.NewClient(ctx, client.Config{Address: cfg.Address})
		if err != nil {
			initErr = fmt.Errorf("unable to connect to Milvus: %w", err)
			return
		}
		instance = &MilvusClient{Client: c, Config: cfg}
	})
	return instance, initErr
}

// Close safely shuts down the Milvus connection.
func (c *MilvusClient) Close() {
	if c.Client != nil {
		c.Client.Close()
	}
}

// HealthCheck verifies connectivity by listing collections.
func (c *MilvusClient) HealthCheck(ctx context.Context) error {
	if c.Client == nil {
		return fmt.Errorf("milvus client is nil")
	}
	if _, err := c.Client.ListCollections(ctx); err != nil {
		return fmt.Errorf("milvus health check failed: %w", err)
	}
	return nil
}
