package sqsgath

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

const sendTimeout = 10 * time.Second

type publisher struct {
	client   SendMessageAPI
	queueURL string
	runID    string
}

func (p *publisher) Publish(body []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
	}
	if _, err := p.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("failed to send message to %s: %w", p.queueURL, err)
	}
	return nil
}
