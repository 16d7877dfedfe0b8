package normalize

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
)

// Normalize decodes, renames, filters and type-casts a batch of envelope
// events into Records. Rows that fail decoding or are missing any required
// field are dropped whole, never partially emitted; the second return value
// is the number of dropped rows. Input order is preserved.
func Normalize(events []Event) ([]Record, int) {
	records := make([]Record, 0, len(events))
	dropped := 0

	for _, ev := range events {
		fields, ok := decode(ev.Data)
		if !ok {
			dropped++
			continue
		}

		r := row{fields: fields, complete: true}
		rec := Record{
			Event:              r.str("e"),
			EventTime:          r.millis("E"),
			Symbol:             r.str("s"),
			PriceChange:        r.float("p"),
			PriceChangePercent: r.float("P"),
			WeightedAvgPrice:   r.float("w"),
			PrevClosePrice:     r.float("x"),
			LastPrice:          r.float("c"),
			LastQty:            r.float("Q"),
			BestBidPrice:       r.float("b"),
			BestBidQty:         r.float("B"),
			BestAskPrice:       r.float("a"),
			BestAskQty:         r.float("A"),
			OpenPrice:          r.float("o"),
			HighPrice:          r.float("h"),
			LowPrice:           r.float("l"),
			BaseVolume:         r.float("v"),
			QuoteVolume:        r.float("q"),
			OpenTime:           r.millis("O"),
			CloseTime:          r.millis("C"),
			FirstTradeID:       r.integer("F"),
			LastTradeID:        r.integer("L"),
			TradeCount:         r.integer("n"),
		}

		if !r.complete {
			dropped++
			continue
		}

		records = append(records, rec)
	}

	return records, dropped
}

// decode base64-decodes and JSON-decodes one envelope payload. A payload
// whose JSON value is itself a JSON-encoded string is unwrapped exactly
// once (the producer publishes the feed text JSON-encoded).
func decode(data string) (map[string]any, bool) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, false
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, false
	}

	if inner, ok := value.(string); ok {
		if err := json.Unmarshal([]byte(inner), &value); err != nil {
			return nil, false
		}
	}

	fields, ok := value.(map[string]any)
	return fields, ok
}

// row tracks required-field completeness while a Record is assembled.
// Any missing or uncoercible required field marks the whole row incomplete.
type row struct {
	fields   map[string]any
	complete bool
}

func (r *row) str(code string) string {
	v, ok := r.fields[code].(string)
	if !ok {
		r.complete = false
		return ""
	}
	return v
}

func (r *row) float(code string) float64 {
	v, ok := r.fields[code]
	if !ok {
		r.complete = false
		return 0
	}
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			r.complete = false
			return 0
		}
		return f
	default:
		r.complete = false
		return 0
	}
}

// integer coerces count-like fields. Unparseable values become 0 rather
// than dropping the row.
func (r *row) integer(code string) int64 {
	v, ok := r.fields[code]
	if !ok {
		r.complete = false
		return 0
	}
	switch t := v.(type) {
	case float64:
		return int64(t)
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// millis coerces timestamp fields, interpreted as milliseconds since epoch.
func (r *row) millis(code string) int64 {
	v, ok := r.fields[code]
	if !ok {
		r.complete = false
		return 0
	}
	switch t := v.(type) {
	case float64:
		return int64(t)
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			r.complete = false
			return 0
		}
		return n
	default:
		r.complete = false
		return 0
	}
}
