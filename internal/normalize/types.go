package normalize

// Event is one envelope-wrapped raw payload handed to the normalizer, the
// shape records travel in between the consumer and the transform: the raw
// stream bytes re-encoded as base64.
type Event struct {
	Data string // base64-encoded raw payload
}

// Record is the semantic projection of one compact 24h-ticker event.
//
// Conventions:
//   - prices, quantities and volumes: float64
//   - trade IDs and counts: int64 (unparseable values coerce to 0)
//   - timestamps: int64 milliseconds since Unix epoch
type Record struct {
	Event              string  `json:"event" parquet:"event"`
	EventTime          int64   `json:"event_time" parquet:"event_time"`
	Symbol             string  `json:"symbol" parquet:"symbol"`
	PriceChange        float64 `json:"price_change" parquet:"price_change"`
	PriceChangePercent float64 `json:"price_change_percent" parquet:"price_change_percent"`
	WeightedAvgPrice   float64 `json:"weighted_avg_price" parquet:"weighted_avg_price"`
	PrevClosePrice     float64 `json:"prev_close_price" parquet:"prev_close_price"`
	LastPrice          float64 `json:"last_price" parquet:"last_price"`
	LastQty            float64 `json:"last_qty" parquet:"last_qty"`
	BestBidPrice       float64 `json:"best_bid_price" parquet:"best_bid_price"`
	BestBidQty         float64 `json:"best_bid_qty" parquet:"best_bid_qty"`
	BestAskPrice       float64 `json:"best_ask_price" parquet:"best_ask_price"`
	BestAskQty         float64 `json:"best_ask_qty" parquet:"best_ask_qty"`
	OpenPrice          float64 `json:"open_price" parquet:"open_price"`
	HighPrice          float64 `json:"high_price" parquet:"high_price"`
	LowPrice           float64 `json:"low_price" parquet:"low_price"`
	BaseVolume         float64 `json:"base_volume" parquet:"base_volume"`
	QuoteVolume        float64 `json:"quote_volume" parquet:"quote_volume"`
	OpenTime           int64   `json:"open_time" parquet:"open_time"`
	CloseTime          int64   `json:"close_time" parquet:"close_time"`
	FirstTradeID       int64   `json:"first_trade_id" parquet:"first_trade_id"`
	LastTradeID        int64   `json:"last_trade_id" parquet:"last_trade_id"`
	TradeCount         int64   `json:"trade_count" parquet:"trade_count"`
}
