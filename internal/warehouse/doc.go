// Package warehouse provisions the analytics table the persisted batches
// feed into.
//
// Provisioning is optional (no warehouse host configured = skipped) and
// runs exactly once at startup, before the producer and consumer start.
package warehouse
