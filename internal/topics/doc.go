// Package topics selects which symbols the producer subscribes to.
//
// The selection is a one-shot REST call: fetch 24h ticker statistics, keep
// symbols quoted in the configured asset, rank by quote volume, take the
// top N. The result is immutable for the lifetime of the process; there is
// no dynamic rebalancing.
package topics
