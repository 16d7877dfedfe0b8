package config

import "time"

// Config is the root configuration for an ingestor instance.
type Config struct {
	Instance  InstanceConfig  `yaml:"instance"`
	Topics    TopicsConfig    `yaml:"topics"`
	Feed      FeedConfig      `yaml:"feed"`
	Stream    StreamConfig    `yaml:"stream"`
	Consumer  ConsumerConfig  `yaml:"consumer"`
	Sink      SinkConfig      `yaml:"sink"`
	Warehouse WarehouseConfig `yaml:"warehouse"`
	Health    HealthConfig    `yaml:"health"`
}

// InstanceConfig identifies this ingestor.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// TopicsConfig holds the symbol-selection REST settings.
type TopicsConfig struct {
	URL          string        `yaml:"url"`         // 24h ticker endpoint
	Limit        int           `yaml:"limit"`       // number of top symbols to select; 0 selects none
	QuoteAsset   string        `yaml:"quote_asset"` // only symbols quoted in this asset (e.g. USDT)
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// FeedConfig holds the websocket market-feed settings.
type FeedConfig struct {
	Endpoint   string `yaml:"endpoint"`    // base websocket URL
	StreamType string `yaml:"stream_type"` // stream suffix (e.g. "ticker" for the 24h ticker)
}

// StreamConfig holds the Kinesis publishing settings for the producer.
type StreamConfig struct {
	Region           string        `yaml:"region"`
	Name             string        `yaml:"name"`
	PartitionKey     string        `yaml:"partition_key"` // empty = partition by symbol
	PublishInterval  time.Duration `yaml:"publish_interval"`
	ReconnectBackoff time.Duration `yaml:"reconnect_backoff"`
}

// ConsumerConfig holds the shard-drain settings for the consumer.
type ConsumerConfig struct {
	IteratorType string        `yaml:"iterator_type"` // LATEST or TRIM_HORIZON
	PollLimit    int           `yaml:"poll_limit"`
	PollInterval time.Duration `yaml:"poll_interval"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	MaxFailures  int           `yaml:"max_failures"` // consecutive transport failures before giving up
}

// SinkConfig holds the S3 object-store settings.
type SinkConfig struct {
	Region  string `yaml:"region"`
	Bucket  string `yaml:"bucket"`
	Project string `yaml:"project"` // object key prefix
}

// WarehouseConfig holds the optional analytics-warehouse connection.
// An empty host disables provisioning entirely.
type WarehouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
	Table    string `yaml:"table"`
}

// HealthConfig holds the HTTP health endpoint settings.
type HealthConfig struct {
	Port int `yaml:"port"`
}
