// Package sink persists normalized batches as columnar objects.
//
// Batches serialize to snappy-compressed parquet and land in S3 under
// {project}/{unixSeconds}-{sequence}.parquet. Empty batches are rejected
// before serialization; no partial objects are ever written.
package sink
