package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultTopicsURL        = "https://api.binance.com/api/v3/ticker/24hr"
	DefaultTopicsLimit      = 10
	DefaultQuoteAsset       = "USDT"
	DefaultTopicsTimeout    = 30 * time.Second
	DefaultTopicsRetries    = 3
	DefaultTopicsBackoff    = 1 * time.Second
	DefaultFeedEndpoint     = "wss://stream.binance.com:9443/ws"
	DefaultStreamType       = "ticker"
	DefaultPublishInterval  = 1 * time.Second
	DefaultReconnectBackoff = 3 * time.Second
	DefaultIteratorType     = "LATEST"
	DefaultPollLimit        = 100
	DefaultPollInterval     = 1 * time.Second
	DefaultRetryBackoff     = 3 * time.Second
	DefaultMaxFailures      = 5
	DefaultWarehousePort    = 5432
	DefaultWarehouseSSLMode = "prefer"
	DefaultWarehouseConns   = 2
	DefaultWarehouseTable   = "ticker_24h"
	DefaultHealthPort       = 8080
)

func (c *Config) applyDefaults() {
	// Topics defaults
	if c.Topics.URL == "" {
		c.Topics.URL = DefaultTopicsURL
	}
	if c.Topics.Limit < 0 {
		c.Topics.Limit = DefaultTopicsLimit
	}
	if c.Topics.QuoteAsset == "" {
		c.Topics.QuoteAsset = DefaultQuoteAsset
	}
	if c.Topics.Timeout == 0 {
		c.Topics.Timeout = DefaultTopicsTimeout
	}
	if c.Topics.MaxRetries == 0 {
		c.Topics.MaxRetries = DefaultTopicsRetries
	}
	if c.Topics.RetryBackoff == 0 {
		c.Topics.RetryBackoff = DefaultTopicsBackoff
	}

	// Feed defaults
	if c.Feed.Endpoint == "" {
		c.Feed.Endpoint = DefaultFeedEndpoint
	}
	if c.Feed.StreamType == "" {
		c.Feed.StreamType = DefaultStreamType
	}

	// Stream defaults
	if c.Stream.PublishInterval == 0 {
		c.Stream.PublishInterval = DefaultPublishInterval
	}
	if c.Stream.ReconnectBackoff == 0 {
		c.Stream.ReconnectBackoff = DefaultReconnectBackoff
	}

	// Consumer defaults
	if c.Consumer.IteratorType == "" {
		c.Consumer.IteratorType = DefaultIteratorType
	}
	if c.Consumer.PollLimit == 0 {
		c.Consumer.PollLimit = DefaultPollLimit
	}
	if c.Consumer.PollInterval == 0 {
		c.Consumer.PollInterval = DefaultPollInterval
	}
	if c.Consumer.RetryBackoff == 0 {
		c.Consumer.RetryBackoff = DefaultRetryBackoff
	}
	if c.Consumer.MaxFailures == 0 {
		c.Consumer.MaxFailures = DefaultMaxFailures
	}

	// Sink defaults
	if c.Sink.Region == "" {
		c.Sink.Region = c.Stream.Region
	}

	// Warehouse defaults (only meaningful when a host is set)
	if c.Warehouse.Port == 0 {
		c.Warehouse.Port = DefaultWarehousePort
	}
	if c.Warehouse.SSLMode == "" {
		c.Warehouse.SSLMode = DefaultWarehouseSSLMode
	}
	if c.Warehouse.MaxConns == 0 {
		c.Warehouse.MaxConns = DefaultWarehouseConns
	}
	if c.Warehouse.MinConns == 0 {
		c.Warehouse.MinConns = 1
	}
	if c.Warehouse.Table == "" {
		c.Warehouse.Table = DefaultWarehouseTable
	}

	// Health defaults
	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}
}
