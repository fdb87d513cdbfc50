package repository

import (
	"context"
	"fmt"

	"submitrelay/internal/common/awsx"
	"submitrelay/internal/submission/model"
	appErr "submitrelay/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DynamoPutItemAPI is the subset of the DynamoDB client used for records.
type DynamoPutItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

var _ DynamoPutItemAPI = (*dynamodb.Client)(nil)

// DynamoRecordRepository implements RecordRepository on a DynamoDB table.
type DynamoRecordRepository struct {
	client DynamoPutItemAPI
	table  string
}

// NewDynamoRecordRepository builds a DynamoDB client from cfg.
func NewDynamoRecordRepository(ctx context.Context, cfg awsx.Config, table string) (*DynamoRecordRepository, error) {
	awsCfg, err := awsx.Load(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewDynamoRecordRepositoryWithClient(client, table)
}

// NewDynamoRecordRepositoryWithClient wraps an existing client.
func NewDynamoRecordRepositoryWithClient(client DynamoPutItemAPI, table string) (*DynamoRecordRepository, error) {
	if client == nil {
		return nil, fmt.Errorf("dynamodb client cannot be nil")
	}
	return &DynamoRecordRepository{client: client, table: table}, nil
}

// Insert puts one item.
func (r *DynamoRecordRepository) Insert(ctx context.Context, record model.AuditRecord) error {
	if r.table == "" {
		return appErr.Wrapf(ErrNilRecordTable, appErr.AuditRecordWriteFailed, "put record item failed")
	}
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return appErr.Wrapf(err, appErr.AuditRecordWriteFailed, "marshal record failed")
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		return appErr.Wrapf(err, appErr.AuditRecordWriteFailed, "put record item failed")
	}
	return nil
}
