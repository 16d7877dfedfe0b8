package consumer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/OLD-SILVER-org/Mini-Project-Binance-Stream-AWS/internal/broker"
	"github.com/OLD-SILVER-org/Mini-Project-Binance-Stream-AWS/internal/sink"
)

const fullTicker = `{"e":"24hrTicker","E":1690000000000,"s":"BTCUSDT","p":"10.5","P":"1.2","w":"30000","x":"29990","c":"30010","Q":"0.01","b":"30005","B":"0.5","a":"30015","A":"0.5","o":"29995","h":"30200","l":"29800","v":"1500","q":"45000000","O":1689913600000,"C":1690000000000,"F":1000,"L":2000,"n":1001}`

// pollStep scripts one Poll response.
type pollStep struct {
	records []broker.Record
	err     error
}

// fakeReader replays a script of poll responses and records the cursor
// token presented on each call. When the script is exhausted it closes
// done and keeps returning empty polls.
type fakeReader struct {
	shardErr error
	script   []pollStep
	done     chan struct{}

	mu     sync.Mutex
	step   int
	tokens []string
}

func newFakeReader(script ...pollStep) *fakeReader {
	return &fakeReader{script: script, done: make(chan struct{})}
}

func (f *fakeReader) ActiveShard(ctx context.Context) (string, error) {
	if f.shardErr != nil {
		return "", f.shardErr
	}
	return "shardId-000000000001", nil
}

func (f *fakeReader) Iterator(ctx context.Context, shardID, iteratorType string) (string, error) {
	return "token-0", nil
}

func (f *fakeReader) Poll(ctx context.Context, token string, limit int) ([]broker.Record, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.tokens = append(f.tokens, token)
	next := fmt.Sprintf("token-%d", len(f.tokens))

	if f.step < len(f.script) {
		step := f.script[f.step]
		f.step++
		if f.step == len(f.script) {
			close(f.done)
		}
		if step.err != nil {
			return nil, "", step.err
		}
		return step.records, next, nil
	}
	return nil, next, nil
}

func (f *fakeReader) seenTokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.tokens...)
}

// fakeStore records Put calls. err makes every put fail; failFirst makes
// only the first N puts fail.
type fakeStore struct {
	mu        sync.Mutex
	objects   map[string][]byte
	err       error
	failFirst int
	puts      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) Put(ctx context.Context, key string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.err != nil {
		return s.err
	}
	if s.failFirst > 0 {
		s.failFirst--
		return errors.New("service unavailable")
	}
	s.objects[key] = append([]byte(nil), body...)
	return nil
}

func (s *fakeStore) putCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

func (s *fakeStore) stored() map[string][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]byte, len(s.objects))
	for k, v := range s.objects {
		out[k] = v
	}
	return out
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.PollInterval = 5 * time.Millisecond
	cfg.RetryBackoff = 5 * time.Millisecond
	cfg.MaxFailures = 3
	return cfg
}

// runUntilScriptDone runs the consumer until the reader script is exhausted.
func runUntilScriptDone(t *testing.T, c *Consumer, reader *fakeReader) error {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- c.Run(ctx) }()

	select {
	case <-reader.done:
	case err := <-errCh:
		cancel()
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not consume the script in time")
	}

	// Allow the final step to settle, then stop.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop after cancellation")
		return nil
	}
}

func TestCursorAdvancesOnEmptyPolls(t *testing.T) {
	reader := newFakeReader(
		pollStep{}, // empty
		pollStep{}, // empty
	)
	store := newFakeStore()
	c := New(testConfig(), reader, store, sink.NewKeyBuilder("test"), nil)

	if err := runUntilScriptDone(t, c, reader); err != nil {
		t.Fatalf("Run = %v, want nil", err)
	}

	tokens := reader.seenTokens()
	if len(tokens) < 2 {
		t.Fatalf("polls = %d, want >= 2", len(tokens))
	}
	// Every poll consumes the token returned by the previous one, even when
	// zero records came back.
	if tokens[0] != "token-0" {
		t.Errorf("first poll token = %q, want token-0", tokens[0])
	}
	for i := 1; i < len(tokens); i++ {
		want := fmt.Sprintf("token-%d", i)
		if tokens[i] != want {
			t.Errorf("poll %d token = %q, want %q", i, tokens[i], want)
		}
	}

	// Two empty polls write nothing.
	if len(store.stored()) != 0 {
		t.Errorf("objects stored = %d, want 0", len(store.stored()))
	}
}

func TestFlushPersistsNormalizedBatch(t *testing.T) {
	missingSymbol := strings.Replace(fullTicker, `"s":"BTCUSDT",`, "", 1)
	reader := newFakeReader(
		pollStep{records: []broker.Record{
			{SequenceNumber: "1", Data: []byte(fullTicker)},
			{SequenceNumber: "2", Data: []byte(missingSymbol)},
			{SequenceNumber: "3", Data: []byte(fullTicker)},
			{SequenceNumber: "4", Data: []byte(missingSymbol)},
			{SequenceNumber: "5", Data: []byte(fullTicker)},
		}},
	)
	store := newFakeStore()
	c := New(testConfig(), reader, store, sink.NewKeyBuilder("test"), nil)

	if err := runUntilScriptDone(t, c, reader); err != nil {
		t.Fatalf("Run = %v, want nil", err)
	}

	objects := store.stored()
	if len(objects) != 1 {
		t.Fatalf("objects stored = %d, want 1", len(objects))
	}

	for key, body := range objects {
		if !strings.HasPrefix(key, "test/") || !strings.HasSuffix(key, ".parquet") {
			t.Errorf("object key = %q, want test/<ts>-<seq>.parquet", key)
		}
		rows, err := sink.DecodeParquet(body)
		if err != nil {
			t.Fatalf("stored object is not valid parquet: %v", err)
		}
		if len(rows) != 3 {
			t.Errorf("stored rows = %d, want 3", len(rows))
		}
		for _, row := range rows {
			if row.Symbol != "BTCUSDT" {
				t.Errorf("row symbol = %q, want BTCUSDT", row.Symbol)
			}
			if row.LastPrice != 30010.0 {
				t.Errorf("row last_price = %v, want 30010.0", row.LastPrice)
			}
		}
	}

	stats := c.Stats()
	if stats.Dropped != 2 {
		t.Errorf("Stats().Dropped = %d, want 2", stats.Dropped)
	}
	if stats.Flushes != 1 {
		t.Errorf("Stats().Flushes = %d, want 1", stats.Flushes)
	}
}

func TestBatchOfOnlyInvalidRowsWritesNothing(t *testing.T) {
	reader := newFakeReader(
		pollStep{records: []broker.Record{
			{SequenceNumber: "1", Data: []byte(`not json at all`)},
		}},
	)
	store := newFakeStore()
	c := New(testConfig(), reader, store, sink.NewKeyBuilder("test"), nil)

	if err := runUntilScriptDone(t, c, reader); err != nil {
		t.Fatalf("Run = %v, want nil", err)
	}

	if len(store.stored()) != 0 {
		t.Errorf("objects stored = %d, want 0", len(store.stored()))
	}
	if got := c.Stats().Dropped; got != 1 {
		t.Errorf("Stats().Dropped = %d, want 1", got)
	}
}

func TestTransientPollFailureRecovers(t *testing.T) {
	reader := newFakeReader(
		pollStep{err: errors.New("throughput exceeded")},
		pollStep{records: []broker.Record{{SequenceNumber: "1", Data: []byte(fullTicker)}}},
	)
	store := newFakeStore()
	c := New(testConfig(), reader, store, sink.NewKeyBuilder("test"), nil)

	if err := runUntilScriptDone(t, c, reader); err != nil {
		t.Fatalf("Run = %v, want nil (single failure is transient)", err)
	}

	if len(store.stored()) != 1 {
		t.Errorf("objects stored = %d, want 1", len(store.stored()))
	}
}

func TestConsecutivePollFailuresPropagate(t *testing.T) {
	reader := newFakeReader(
		pollStep{err: errors.New("connection reset")},
		pollStep{err: errors.New("connection reset")},
		pollStep{err: errors.New("connection reset")},
	)
	store := newFakeStore()
	c := New(testConfig(), reader, store, sink.NewKeyBuilder("test"), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := c.Run(ctx)
	if err == nil {
		t.Fatal("Run = nil, want error after repeated poll failures")
	}
	if !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("Run error = %v, want wrapped poll failure", err)
	}
}

func TestTransientStoreFailureKeepsBatch(t *testing.T) {
	reader := newFakeReader(
		pollStep{records: []broker.Record{{SequenceNumber: "1", Data: []byte(fullTicker)}}},
	)
	store := newFakeStore()
	store.failFirst = 2
	c := New(testConfig(), reader, store, sink.NewKeyBuilder("test"), nil)

	if err := runUntilScriptDone(t, c, reader); err != nil {
		t.Fatalf("Run = %v, want nil", err)
	}

	// The assembled batch is re-put until the store recovers, not dropped.
	if len(store.stored()) != 1 {
		t.Fatalf("objects stored = %d, want 1", len(store.stored()))
	}
	if got := store.putCalls(); got != 3 {
		t.Errorf("put calls = %d, want 3 (two failures then success)", got)
	}
	if got := c.Stats().Flushes; got != 1 {
		t.Errorf("Stats().Flushes = %d, want 1", got)
	}
}

func TestPersistentStoreFailurePropagates(t *testing.T) {
	reader := newFakeReader(
		pollStep{records: []broker.Record{{SequenceNumber: "1", Data: []byte(fullTicker)}}},
		pollStep{records: []broker.Record{{SequenceNumber: "2", Data: []byte(fullTicker)}}},
	)
	store := newFakeStore()
	store.err = errors.New("access denied")
	c := New(testConfig(), reader, store, sink.NewKeyBuilder("test"), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := c.Run(ctx)
	if err == nil {
		t.Fatal("Run = nil, want error when the store never accepts a batch")
	}
	if !strings.Contains(err.Error(), "access denied") {
		t.Errorf("Run error = %v, want wrapped store failure", err)
	}
	// A healthy poll must not mask store failures: MaxFailures attempts on
	// the first batch, then give up.
	if got := store.putCalls(); got != testConfig().MaxFailures {
		t.Errorf("put calls = %d, want %d", got, testConfig().MaxFailures)
	}
	if got := c.Stats().Flushes; got != 0 {
		t.Errorf("Stats().Flushes = %d, want 0", got)
	}
}

func TestShardSelectionFailurePropagates(t *testing.T) {
	reader := newFakeReader()
	reader.shardErr = errors.New("stream not found")
	store := newFakeStore()
	c := New(testConfig(), reader, store, sink.NewKeyBuilder("test"), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := c.Run(ctx)
	if err == nil {
		t.Fatal("Run = nil, want error when no shard can be selected")
	}
	if !strings.Contains(err.Error(), "stream not found") {
		t.Errorf("Run error = %v, want wrapped shard selection failure", err)
	}
}
