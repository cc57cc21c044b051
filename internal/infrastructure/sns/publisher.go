package sns

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/go-otp-signup/internal/config"
	"github.com/go-otp-signup/internal/domain"
)

const eventAccountCreated = "account.created"

// EventPublisher announces account lifecycle events on an SNS topic.
type EventPublisher interface {
	AccountCreated(ctx context.Context, a *domain.Account) error
}

type publishAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type publisher struct {
	client   publishAPI
	topicARN string
}

type accountEvent struct {
	Event      string    `json:"event"`
	AccountID  string    `json:"account_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewPublisher(cfg *config.Config) (EventPublisher, error) {
	if cfg.AccountTopicARN == "" {
		return nil, errors.New("SNS_ACCOUNT_TOPIC_ARN not set")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOptions(cfg)...)
	if err != nil {
		return nil, err
	}
	var clientOpts []func(*sns.Options)
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}
	return &publisher{client: sns.NewFromConfig(awsCfg, clientOpts...), topicARN: cfg.AccountTopicARN}, nil
}

// loadOptions uses the same static credentials as the DynamoDB client when
// they are configured, falling back to the default chain otherwise.
func loadOptions(cfg *config.Config) []func(*awsconfig.LoadOptions) error {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.SNSRegion)}
	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		))
	}
	return opts
}

func (p *publisher) AccountCreated(ctx context.Context, a *domain.Account) error {
	body, err := json.Marshal(accountEvent{
		Event:      eventAccountCreated,
		AccountID:  a.AccountID,
		Email:      a.Email,
		Name:       a.Name,
		Role:       a.Role,
		OccurredAt: a.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal account event: %w", err)
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event": {DataType: aws.String("String"), StringValue: aws.String(eventAccountCreated)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", eventAccountCreated, err)
	}
	return nil
}
