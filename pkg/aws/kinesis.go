// pkg/aws/kinesis.go
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/kinesis"
	"github.com/aws/aws-sdk-go/service/kinesis/kinesisiface"
)

type KinesisClient struct {
	client     kinesisiface.KinesisAPI
	streamName string
}

func NewKinesisClient(region, streamName string) (*KinesisClient, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return NewKinesisClientWithAPI(kinesis.New(sess), streamName), nil
}

// NewKinesisClientWithAPI wraps an existing Kinesis API implementation.
func NewKinesisClientWithAPI(api kinesisiface.KinesisAPI, streamName string) *KinesisClient {
	return &KinesisClient{
		client:     api,
		streamName: streamName,
	}
}

func (k *KinesisClient) StreamName() string {
	return k.streamName
}

// PutRecord writes one record and returns its sequence number. Records with
// the same partition key land on the same shard, in order.
func (k *KinesisClient) PutRecord(ctx context.Context, partitionKey string, data []byte) (string, error) {
	if partitionKey == "" {
		partitionKey = "default"
	}

	input := &kinesis.PutRecordInput{
		Data:         data,
		PartitionKey: aws.String(partitionKey),
		StreamName:   aws.String(k.streamName),
	}

	result, err := k.client.PutRecordWithContext(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to put record to Kinesis: %w", err)
	}

	return aws.StringValue(result.SequenceNumber), nil
}
