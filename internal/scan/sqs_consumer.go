// Package scan consumes asynchronous scan jobs from SQS. Mobile
// clients on flaky connections enqueue a sign image instead of waiting
// on the HTTP endpoint; the verdict reaches them through the stored
// history and the WebSocket feed.
package scan

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"parkingpal/internal/config"
	"parkingpal/internal/domain"
	"parkingpal/internal/service"
)

type SQSConsumer struct {
	sqsClient   *sqs.Client
	queueURL    string
	signService *service.SignService
}

func NewSQSConsumer(client *sqs.Client, cfg *config.Config, signService *service.SignService) *SQSConsumer {
	return &SQSConsumer{
		sqsClient:   client,
		queueURL:    cfg.SQSScanQueueURL,
		signService: signService,
	}
}

func (c *SQSConsumer) Start(ctx context.Context) {
	log.Printf("SQS Consumer: listening on queue %s", c.queueURL)
	for {
		select {
		case <-ctx.Done():
			log.Println("SQS Consumer: context cancelled, stopping.")
			return
		default:
			receiveInput := &sqs.ReceiveMessageInput{
				QueueUrl:            &c.queueURL,
				MaxNumberOfMessages: 10,
				WaitTimeSeconds:     20,
				VisibilityTimeout:   60,
			}

			result, err := c.sqsClient.ReceiveMessage(ctx, receiveInput)
			if err != nil {
				log.Printf("SQS Consumer: receive failed: %v", err)
				select {
				case <-time.After(5 * time.Second):
				case <-ctx.Done():
					log.Println("SQS Consumer: context cancelled while waiting to retry.")
					return
				}
				continue
			}

			if len(result.Messages) == 0 {
				continue
			}
			log.Printf("SQS Consumer: received %d message(s)", len(result.Messages))

			for _, message := range result.Messages {
				if message.Body == nil {
					log.Println("SQS Consumer: message with empty body, deleting.")
					c.deleteMessage(ctx, message.ReceiptHandle)
					continue
				}

				if err := c.processScanJob(ctx, *message.Body); err != nil {
					log.Printf("SQS Consumer: failed to process message %s: %v. It will be redelivered after the visibility timeout.", stringValue(message.MessageId), err)
					continue
				}
				c.deleteMessage(ctx, message.ReceiptHandle)
			}
		}
	}
}

// processScanJob runs the analyze pipeline for one queued job. A
// malformed body or an unreadable image is a permanent failure; the
// message is counted as processed so it is not redelivered forever.
func (c *SQSConsumer) processScanJob(ctx context.Context, body string) error {
	var job domain.ScanJob
	if err := json.Unmarshal([]byte(body), &job); err != nil {
		log.Printf("SQS Consumer: dropping malformed scan job: %v", err)
		return nil
	}

	result, err := c.signService.AnalyzeSign(ctx, job.UserID, domain.AnalyzeSignDTO{
		ImageData: job.ImageData,
		Location:  job.Location,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidImageData) || errors.Is(err, service.ErrImageUnreadable) {
			log.Printf("SQS Consumer: dropping unprocessable scan job for user %d: %v", job.UserID, err)
			return nil
		}
		return err
	}

	log.Printf("SQS Consumer: processed scan for user %d, allowed=%t", job.UserID, result.IsAllowed)
	return nil
}

func (c *SQSConsumer) deleteMessage(ctx context.Context, receiptHandle *string) {
	if receiptHandle == nil {
		log.Println("SQS Consumer: empty receipt handle, cannot delete message.")
		return
	}
	_, err := c.sqsClient.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      &c.queueURL,
		ReceiptHandle: receiptHandle,
	})
	if err != nil {
		log.Printf("SQS Consumer: failed to delete message: %v", err)
	}
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
