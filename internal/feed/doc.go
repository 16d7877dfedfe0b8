// Package feed implements the websocket client for one symbol's market feed.
//
// Each client owns exactly one connection and exposes received messages and
// connection errors over channels. Reconnection is not handled here; the
// producer owns the reconnect loop.
package feed
