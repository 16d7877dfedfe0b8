package producer

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/OLD-SILVER-org/Mini-Project-Binance-Stream-AWS/internal/feed"
)

// Publisher publishes one payload onto the stream.
type Publisher interface {
	Put(ctx context.Context, partitionKey string, payload []byte) error
}

// Feed is the subset of the feed client the producer drives.
type Feed interface {
	Connect(ctx context.Context) error
	Close() error
	Messages() <-chan feed.Message
	Errors() <-chan error
}

// DialFunc builds a fresh feed client for one symbol. A new client is
// created on every reconnect attempt.
type DialFunc func(symbol string) Feed

// Config holds producer settings.
type Config struct {
	PartitionKey     string        // empty = partition by symbol
	PublishInterval  time.Duration // at most one publish per symbol per interval
	ReconnectBackoff time.Duration // fixed delay between reconnect attempts
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PublishInterval:  1 * time.Second,
		ReconnectBackoff: 3 * time.Second,
	}
}

// Stats summarizes producer activity across all symbols.
type Stats struct {
	Symbols    int
	Forwarded  int64
	Reconnects int64
}

// symbolState is the per-symbol loop state. Each loop is a two-state
// machine: Connecting -> Streaming on a successful handshake, Streaming ->
// Connecting on any read or publish error. There is no terminal state short
// of cancellation.
type symbolState int

const (
	stateConnecting symbolState = iota
	stateStreaming
)

// Producer runs one independent connect-and-forward loop per symbol.
type Producer struct {
	cfg       Config
	symbols   []string
	dial      DialFunc
	publisher Publisher
	logger    *slog.Logger

	mu         sync.Mutex
	forwarded  int64
	reconnects int64
}

// New creates a Producer over an immutable symbol selection. The slice is
// copied; the selection never changes after construction.
func New(cfg Config, symbols []string, dial DialFunc, publisher Publisher, logger *slog.Logger) *Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Producer{
		cfg:       cfg,
		symbols:   append([]string(nil), symbols...),
		dial:      dial,
		publisher: publisher,
		logger:    logger,
	}
}

// Run starts one goroutine per symbol and blocks until ctx is cancelled.
// An empty selection is an explicit no-op, not an error. Run never returns
// a non-nil error: every per-symbol failure is contained inside its loop.
func (p *Producer) Run(ctx context.Context) error {
	if len(p.symbols) == 0 {
		p.logger.Warn("no symbols selected, producer idle")
		return nil
	}

	p.logger.Info("producer starting",
		"symbols", len(p.symbols),
		"publish_interval", p.cfg.PublishInterval,
		"reconnect_backoff", p.cfg.ReconnectBackoff,
	)

	var wg sync.WaitGroup
	for _, symbol := range p.symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			p.runSymbol(ctx, symbol)
		}(symbol)
	}
	wg.Wait()

	p.logger.Info("producer stopped")
	return nil
}

// Stats returns cumulative counters across all symbol loops.
func (p *Producer) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Symbols:    len(p.symbols),
		Forwarded:  p.forwarded,
		Reconnects: p.reconnects,
	}
}

// runSymbol drives one symbol's state machine until cancellation. Failures
// never escape this loop; one symbol's outage cannot affect its siblings.
func (p *Producer) runSymbol(ctx context.Context, symbol string) {
	logger := p.logger.With("symbol", symbol)
	state := stateConnecting
	var client Feed

	defer func() {
		if client != nil {
			client.Close()
		}
	}()

	for {
		if ctx.Err() != nil {
			return
		}

		switch state {
		case stateConnecting:
			client = p.dial(symbol)
			if err := client.Connect(ctx); err != nil {
				logger.Warn("feed connect failed, backing off",
					"error", err,
					"backoff", p.cfg.ReconnectBackoff,
				)
				client.Close()
				client = nil
				p.countReconnect()
				if !sleep(ctx, p.cfg.ReconnectBackoff) {
					return
				}
				continue
			}
			logger.Info("feed connected")
			state = stateStreaming

		case stateStreaming:
			select {
			case <-ctx.Done():
				return

			case err := <-client.Errors():
				logger.Warn("feed error, reconnecting",
					"error", err,
					"backoff", p.cfg.ReconnectBackoff,
				)
				client.Close()
				client = nil
				p.countReconnect()
				state = stateConnecting
				if !sleep(ctx, p.cfg.ReconnectBackoff) {
					return
				}

			case msg, ok := <-client.Messages():
				if !ok {
					client.Close()
					client = nil
					p.countReconnect()
					state = stateConnecting
					if !sleep(ctx, p.cfg.ReconnectBackoff) {
						return
					}
					continue
				}

				if err := p.publish(ctx, symbol, msg.Data); err != nil {
					// Publish failures take the same funnel as
					// connection failures.
					logger.Warn("publish failed, reconnecting",
						"error", err,
						"backoff", p.cfg.ReconnectBackoff,
					)
					client.Close()
					client = nil
					p.countReconnect()
					state = stateConnecting
					if !sleep(ctx, p.cfg.ReconnectBackoff) {
						return
					}
					continue
				}

				p.countForwarded()

				// Rate limit: at most one publish per interval.
				if !sleep(ctx, p.cfg.PublishInterval) {
					return
				}
			}
		}
	}
}

// publish JSON-encodes the raw feed text and puts it on the stream. The
// wire payload is therefore a JSON string containing JSON; the normalizer
// unwraps it exactly once.
func (p *Producer) publish(ctx context.Context, symbol string, data []byte) error {
	payload, err := json.Marshal(string(data))
	if err != nil {
		return err
	}

	key := p.cfg.PartitionKey
	if key == "" {
		key = symbol
	}

	return p.publisher.Put(ctx, key, payload)
}

func (p *Producer) countForwarded() {
	p.mu.Lock()
	p.forwarded++
	p.mu.Unlock()
}

func (p *Producer) countReconnect() {
	p.mu.Lock()
	p.reconnects++
	p.mu.Unlock()
}

// sleep waits for d or until ctx is cancelled. Returns false on cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
