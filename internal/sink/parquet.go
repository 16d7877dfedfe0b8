package sink

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/parquet-go/parquet-go"

	"github.com/OLD-SILVER-org/Mini-Project-Binance-Stream-AWS/internal/normalize"
)

// ErrEmptyBatch is returned when encoding is attempted on zero records.
// Empty batches are never persisted.
var ErrEmptyBatch = errors.New("empty batch")

// EncodeParquet serializes a batch of normalized records into a snappy
// compressed parquet object. Row order is preserved.
func EncodeParquet(records []normalize.Record) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrEmptyBatch
	}

	var buf bytes.Buffer
	w := parquet.NewGenericWriter[normalize.Record](&buf, parquet.Compression(&parquet.Snappy))

	if _, err := w.Write(records); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}

	return buf.Bytes(), nil
}

// DecodeParquet reads a parquet object back into records. Used by tests and
// ad-hoc inspection tooling; the pipeline itself only writes.
func DecodeParquet(data []byte) ([]normalize.Record, error) {
	records, err := parquet.Read[normalize.Record](bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read parquet rows: %w", err)
	}
	return records, nil
}
