// Package sqsgath streams run progress to an SQS queue.
package sqsgath

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/programme-lv/kernval/internal/gatherer"
)

const defaultRegion = "eu-central-1"

// SendMessageAPI is the part of the SQS client the gatherer needs.
type SendMessageAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// New creates a gatherer that sends every run event to queueURL, using the
// default AWS credential chain. An empty region falls back to eu-central-1.
func New(ctx context.Context, runID string, queueURL string, region string, logger *slog.Logger) (*gatherer.Stream, error) {
	if region == "" {
		region = defaultRegion
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return NewWithClient(sqs.NewFromConfig(cfg), runID, queueURL, logger), nil
}

func NewWithClient(client SendMessageAPI, runID string, queueURL string, logger *slog.Logger) *gatherer.Stream {
	return gatherer.NewStream(runID, &publisher{client: client, queueURL: queueURL, runID: runID}, logger)
}
