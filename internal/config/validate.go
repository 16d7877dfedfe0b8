package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.Topics.Limit < 0 {
		return errors.New("topics.limit must be >= 0")
	}

	if c.Stream.Region == "" {
		return errors.New("stream.region is required")
	}
	if c.Stream.Name == "" {
		return errors.New("stream.name is required")
	}
	if c.Stream.PublishInterval <= 0 {
		return errors.New("stream.publish_interval must be > 0")
	}

	switch c.Consumer.IteratorType {
	case "LATEST", "TRIM_HORIZON":
	default:
		return fmt.Errorf("consumer.iterator_type must be LATEST or TRIM_HORIZON, got %q", c.Consumer.IteratorType)
	}
	if c.Consumer.PollLimit < 1 || c.Consumer.PollLimit > 10000 {
		return errors.New("consumer.poll_limit must be between 1 and 10000")
	}
	if c.Consumer.MaxFailures < 1 {
		return errors.New("consumer.max_failures must be >= 1")
	}

	if c.Sink.Bucket == "" {
		return errors.New("sink.bucket is required")
	}
	if c.Sink.Project == "" {
		return errors.New("sink.project is required")
	}

	if c.Warehouse.Host != "" {
		if c.Warehouse.Name == "" {
			return errors.New("warehouse.name is required when warehouse.host is set")
		}
		if c.Warehouse.User == "" {
			return errors.New("warehouse.user is required when warehouse.host is set")
		}
	}

	if c.Health.Port < 1 || c.Health.Port > 65535 {
		return errors.New("health.port must be between 1 and 65535")
	}

	return nil
}
