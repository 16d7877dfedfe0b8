package feed

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Errors
var (
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// Message wraps raw feed bytes with a receive timestamp.
type Message struct {
	Data       []byte    // Raw message bytes from the websocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// ClientConfig configures a feed client.
type ClientConfig struct {
	URL              string        // Full stream URL (endpoint/symbol@streamType)
	HandshakeTimeout time.Duration // Dial timeout
	PingTimeout      time.Duration // Max time without ping/pong before considering connection stale
	WriteTimeout     time.Duration // Write deadline for control frames
	BufferSize       int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		HandshakeTimeout: 10 * time.Second,
		PingTimeout:      60 * time.Second,
		WriteTimeout:     5 * time.Second,
		BufferSize:       1000,
	}
}

// StreamURL builds the per-symbol stream URL, e.g.
// wss://stream.binance.com:9443/ws/btcusdt@ticker.
func StreamURL(endpoint, symbol, streamType string) string {
	return fmt.Sprintf("%s/%s@%s", strings.TrimRight(endpoint, "/"), symbol, streamType)
}
