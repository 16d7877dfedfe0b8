package sink

import (
	"strings"
	"testing"
	"time"
)

func TestKeyBuilderFormat(t *testing.T) {
	b := NewKeyBuilder("binance-stream")
	now := time.Unix(1690000000, 0)

	key := b.Next(now)
	if key != "binance-stream/1690000000-0.parquet" {
		t.Errorf("Next = %q, want binance-stream/1690000000-0.parquet", key)
	}
}

func TestKeyBuilderUniqueWithinSameSecond(t *testing.T) {
	b := NewKeyBuilder("binance-stream")
	now := time.Unix(1690000000, 0)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key := b.Next(now)
		if seen[key] {
			t.Fatalf("duplicate key %q at flush %d", key, i)
		}
		seen[key] = true
		if !strings.HasPrefix(key, "binance-stream/1690000000-") {
			t.Fatalf("key %q missing timestamp prefix", key)
		}
	}
}
