package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AppInfo holds basic information about the running application.
type AppInfo struct {
	Name        string `yaml:"name"`        // Application name
	Version     string `yaml:"version"`     // Application version
	Environment string `yaml:"environment"` // Runtime environment (e.g. "development", "production")
}

// LoggerConfig configures the structured logger.
type LoggerConfig struct {
	Level string `yaml:"level"` // Log level ("debug", "info", "warn", "error")
}

// RagConfig tunes the chunking and retrieval behaviour.
type RagConfig struct {
	ChunkSizeChars    int `yaml:"chunkSizeChars"`    // Target maximum characters per chunk
	ChunkOverlapChars int `yaml:"chunkOverlapChars"` // Characters carried into the next chunk
	TopK              int `yaml:"topK"`              // Candidates retrieved from the search index
	ContextChunks     int `yaml:"contextChunks"`     // Retrieved chunks handed to the generator
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`   // "openai", "ollama" or "gemini"
	Model      string `yaml:"model"`      // Model name (e.g. "text-embedding-3-small")
	APIKey     string `yaml:"apiKey"`     // Provider API key
	BaseURL    string `yaml:"baseURL"`    // Service base URL (used by ollama)
	Dimensions int    `yaml:"dimensions"` // Fixed vector length produced by the model
}

// LLMConfig selects and configures the chat-completion provider.
type LLMConfig struct {
	Provider string `yaml:"provider"` // "openai" or "ollama"
	Model    string `yaml:"model"`    // Model name (e.g. "gpt-4o")
	APIKey   string `yaml:"apiKey"`   // Provider API key
	BaseURL  string `yaml:"baseURL"`  // Service base URL (used by ollama)
}

// MySQLConfig holds the MySQL connection settings.
type MySQLConfig struct {
	Address         string `yaml:"address"`         // Server address (host:port)
	Username        string `yaml:"username"`        // User name
	Password        string `yaml:"password"`        // Password
	Database        string `yaml:"database"`        // Database name
	MaxOpenConns    int    `yaml:"maxOpenConns"`    // Maximum open connections
	MaxIdleConns    int    `yaml:"maxIdleConns"`    // Maximum idle connections
	ConnMaxLifetime int    `yaml:"connMaxLifetime"` // Connection lifetime in seconds
}

// MinIOConfig holds the MinIO object storage settings.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`  // Service endpoint
	AccessKey string `yaml:"accessKey"` // Access key
	SecretKey string `yaml:"secretKey"` // Secret key
	Bucket    string `yaml:"bucket"`    // Bucket holding uploaded documents
	Secure    bool   `yaml:"secure"`    // Use HTTPS
}

// MilvusConfig holds the Milvus vector index settings.
type MilvusConfig struct {
	Address    string `yaml:"address"`    // Milvus service address
	Collection string `yaml:"collection"` // Collection holding indexed chunks
}

// KafkaConfig holds the Kafka settings for status-change events.
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"` // Publishing is optional
	Brokers []string `yaml:"brokers"` // Broker address list
	Topic   string   `yaml:"topic"`   // Topic for document status events
}

// DatabaseConfigs groups all backing-store configurations.
type DatabaseConfigs struct {
	MySQL  MySQLConfig  `yaml:"mysql"`
	MinIO  MinIOConfig  `yaml:"minio"`
	Milvus MilvusConfig `yaml:"milvus"`
	Kafka  KafkaConfig  `yaml:"kafka"`
}

// AppConfig is the root of the YAML configuration file.
type AppConfig struct {
	App       AppInfo         `yaml:"app"`
	Logger    LoggerConfig    `yaml:"logger"`
	Rag       RagConfig       `yaml:"rag"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Databases DatabaseConfigs `yaml:"databases"`
}

// LoadConfig reads and parses the YAML configuration file at the given path,
// applying defaults for the RAG tuning values that are not set.
func LoadConfig(path string) (*AppConfig, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file '%s': %w", path, err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Rag.ChunkSizeChars <= 0 {
		cfg.Rag.ChunkSizeChars = 3500
	}
	if cfg.Rag.ChunkOverlapChars <= 0 {
		cfg.Rag.ChunkOverlapChars = 400
	}
	if cfg.Rag.TopK <= 0 {
		cfg.Rag.TopK = 12
	}
	if cfg.Rag.ContextChunks <= 0 {
		cfg.Rag.ContextChunks = 8
	}
	if cfg.Rag.ContextChunks > cfg.Rag.TopK {
		cfg.Rag.ContextChunks = cfg.Rag.TopK
	}
	if cfg.Embedding.Dimensions <= 0 {
		cfg.Embedding.Dimensions = 1536
	}

	return &cfg, nil
}
