package feed

import "testing"

func TestStreamURL(t *testing.T) {
	tests := []struct {
		endpoint   string
		symbol     string
		streamType string
		want       string
	}{
		{"wss://stream.binance.com:9443/ws", "btcusdt", "ticker", "wss://stream.binance.com:9443/ws/btcusdt@ticker"},
		{"wss://stream.binance.com:9443/ws/", "ethusdt", "ticker", "wss://stream.binance.com:9443/ws/ethusdt@ticker"},
		{"ws://localhost:9999", "dogeusdt", "trade", "ws://localhost:9999/dogeusdt@trade"},
	}

	for _, tt := range tests {
		got := StreamURL(tt.endpoint, tt.symbol, tt.streamType)
		if got != tt.want {
			t.Errorf("StreamURL(%q, %q, %q) = %q, want %q", tt.endpoint, tt.symbol, tt.streamType, got, tt.want)
		}
	}
}
