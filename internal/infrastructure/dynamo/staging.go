package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-otp-signup/internal/domain"
)

// StagingRepo holds unverified signups.
// PK: key ("otp:<email>"). expires_at is the table's TTL attribute.
type StagingRepo struct {
	client    API
	tableName string
	now       func() time.Time
}

func NewStagingRepo(client API, tableName string) *StagingRepo {
	return &StagingRepo{client: client, tableName: tableName, now: time.Now}
}

// Put writes s with an expiry of now+ttl, replacing any entry under the same key.
func (r *StagingRepo) Put(ctx context.Context, s *domain.StagedSignup, ttl time.Duration) error {
	s.ExpiresAt = r.now().Add(ttl).Unix()
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal staged signup: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// Get returns the staged signup under key. DynamoDB removes expired items
// lazily, so an item past its expires_at is reported as not found.
func (r *StagingRepo) Get(ctx context.Context, key string) (*domain.StagedSignup, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey("key", key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("staged signup not found: %w", domain.ErrNotFound)
	}
	var s domain.StagedSignup
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	if s.ExpiresAt <= r.now().Unix() {
		return nil, fmt.Errorf("staged signup expired: %w", domain.ErrNotFound)
	}
	return &s, nil
}

func (r *StagingRepo) Delete(ctx context.Context, key string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("key", key),
	})
	return err
}
