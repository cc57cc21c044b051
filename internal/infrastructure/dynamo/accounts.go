package dynamo

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-otp-signup/internal/domain"
)

// AccountRepo provides typed DynamoDB operations for accounts.
// accounts PK: account_id (GSI role-index on role).
// account_emails PK: email, holding the owning account_id; it is written in the
// same transaction as the account and enforces one account per email.
type AccountRepo struct {
	client      API
	tableName   string
	emailsTable string
}

func NewAccountRepo(client API, tableName, emailsTable string) *AccountRepo {
	return &AccountRepo{client: client, tableName: tableName, emailsTable: emailsTable}
}

// Create stores a new account. It fails with domain.ErrAlreadyRegistered when
// the email is already reserved by another account.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName: aws.String(r.emailsTable),
				Item: map[string]types.AttributeValue{
					"email":      &types.AttributeValueMemberS{Value: a.Email},
					"account_id": &types.AttributeValueMemberS{Value: a.AccountID},
				},
				ConditionExpression: aws.String("attribute_not_exists(email)"),
			}},
			{Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                item,
				ConditionExpression: aws.String("attribute_not_exists(account_id)"),
			}},
		},
	})
	if err != nil {
		if isConditionFailure(err) {
			return fmt.Errorf("create account: %w", domain.ErrAlreadyRegistered)
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *AccountRepo) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("account_id", accountID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	var a domain.Account
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByEmail resolves the email reservation and loads the owning account.
func (r *AccountRepo) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.emailsTable),
		Key:            strKey("email", email),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	accountID := strAttr(out.Item, "account_id")
	if accountID == "" {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	return r.Get(ctx, accountID)
}

// List returns every account, or only those with the given role, ordered by id
// (ULIDs, so oldest first).
func (r *AccountRepo) List(ctx context.Context, role string) ([]domain.Account, error) {
	var (
		accounts []domain.Account
		err      error
	)
	if role == "" {
		p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
			TableName: aws.String(r.tableName),
		})
		accounts, err = collectAccounts(ctx, p, func(out *dynamodb.ScanOutput) []map[string]types.AttributeValue { return out.Items })
	} else {
		p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String("role-index"),
			KeyConditionExpression:    aws.String("#r = :r"),
			ExpressionAttributeNames:  map[string]string{"#r": "role"},
			ExpressionAttributeValues: map[string]types.AttributeValue{":r": &types.AttributeValueMemberS{Value: role}},
		})
		accounts, err = collectAccounts(ctx, p, func(out *dynamodb.QueryOutput) []map[string]types.AttributeValue { return out.Items })
	}
	if err != nil {
		return nil, err
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].AccountID < accounts[j].AccountID })
	return accounts, nil
}

// pager is satisfied by both the scan and query paginators.
type pager[O any] interface {
	HasMorePages() bool
	NextPage(ctx context.Context, optFns ...func(*dynamodb.Options)) (O, error)
}

// collectAccounts drains p and unmarshals every page into accounts.
func collectAccounts[O any](ctx context.Context, p pager[O], items func(O) []map[string]types.AttributeValue) ([]domain.Account, error) {
	var accounts []domain.Account
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.Account
		if err := attributevalue.UnmarshalListOfMaps(items(out), &page); err != nil {
			return nil, fmt.Errorf("unmarshal accounts: %w", err)
		}
		accounts = append(accounts, page...)
	}
	return accounts, nil
}

// Delete removes the account and releases its email in one transaction.
func (r *AccountRepo) Delete(ctx context.Context, accountID string) error {
	a, err := r.Get(ctx, accountID)
	if err != nil {
		return err
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{
				TableName:           aws.String(r.tableName),
				Key:                 strKey("account_id", a.AccountID),
				ConditionExpression: aws.String("attribute_exists(account_id)"),
			}},
			{Delete: &types.Delete{
				TableName: aws.String(r.emailsTable),
				Key:       strKey("email", a.Email),
			}},
		},
	})
	if err != nil {
		if isConditionFailure(err) {
			return fmt.Errorf("account already deleted: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("delete account: %w", err)
	}
	return nil
}
