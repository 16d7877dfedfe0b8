package broker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/kinesis/types"
)

// Kinesis wraps the AWS Kinesis client behind the narrow surface the
// producer and consumer need.
type Kinesis struct {
	client *kinesis.Client
	stream string
	logger *slog.Logger
}

// NewKinesis creates a Kinesis broker for one stream using the default AWS
// credential chain.
func NewKinesis(ctx context.Context, region, stream string, logger *slog.Logger) (*Kinesis, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Kinesis{
		client: kinesis.NewFromConfig(cfg),
		stream: stream,
		logger: logger,
	}, nil
}

// Put publishes one payload under the given partition key.
func (k *Kinesis) Put(ctx context.Context, partitionKey string, payload []byte) error {
	_, err := k.client.PutRecord(ctx, &kinesis.PutRecordInput{
		StreamName:   aws.String(k.stream),
		PartitionKey: aws.String(partitionKey),
		Data:         payload,
	})
	if err != nil {
		return fmt.Errorf("put record: %w", err)
	}
	return nil
}

// ActiveShard returns the ID of the currently open shard: the first shard
// in broker-reported order with no ending sequence number. Draining is
// single-shard; when the stream has more than one open shard the extras are
// ignored and a warning is logged.
func (k *Kinesis) ActiveShard(ctx context.Context) (string, error) {
	out, err := k.client.DescribeStream(ctx, &kinesis.DescribeStreamInput{
		StreamName: aws.String(k.stream),
	})
	if err != nil {
		return "", fmt.Errorf("describe stream: %w", err)
	}

	var open []string
	for _, shard := range out.StreamDescription.Shards {
		if shard.SequenceNumberRange == nil || shard.SequenceNumberRange.EndingSequenceNumber == nil {
			open = append(open, aws.ToString(shard.ShardId))
		}
	}

	if len(open) == 0 {
		return "", ErrNoOpenShard
	}
	if len(open) > 1 {
		k.logger.Warn("stream has multiple open shards, draining only the first",
			"stream", k.stream,
			"open_shards", len(open),
			"selected", open[0],
		)
	}

	return open[0], nil
}

// Iterator obtains an initial cursor token for the shard using the given
// iterator type (LATEST or TRIM_HORIZON).
func (k *Kinesis) Iterator(ctx context.Context, shardID, iteratorType string) (string, error) {
	out, err := k.client.GetShardIterator(ctx, &kinesis.GetShardIteratorInput{
		StreamName:        aws.String(k.stream),
		ShardId:           aws.String(shardID),
		ShardIteratorType: types.ShardIteratorType(iteratorType),
	})
	if err != nil {
		return "", fmt.Errorf("get shard iterator: %w", err)
	}
	return aws.ToString(out.ShardIterator), nil
}

// Poll exchanges the cursor token for up to limit records and the next token.
// The next token is valid even when zero records are returned.
func (k *Kinesis) Poll(ctx context.Context, token string, limit int) ([]Record, string, error) {
	out, err := k.client.GetRecords(ctx, &kinesis.GetRecordsInput{
		ShardIterator: aws.String(token),
		Limit:         aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, "", fmt.Errorf("get records: %w", err)
	}

	records := make([]Record, len(out.Records))
	for i, r := range out.Records {
		records[i] = Record{
			SequenceNumber: aws.ToString(r.SequenceNumber),
			Data:           r.Data,
		}
	}

	return records, aws.ToString(out.NextShardIterator), nil
}
