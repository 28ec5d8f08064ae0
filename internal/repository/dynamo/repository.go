package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/klass-lk/postgateway/internal/document"
	"github.com/klass-lk/postgateway/internal/errorlib"
	"github.com/klass-lk/postgateway/internal/model"
	"github.com/klass-lk/postgateway/internal/repository"
)

// PartitionKey groups every related post under one partition so ListAll is a single Query.
const PartitionKey = "RelatedPost"

type DynamoDBAPI interface {
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

type relatedPostItem struct {
	PK         string         `dynamodbav:"pk"`
	SK         string         `dynamodbav:"sk"`
	Attributes map[string]any `dynamodbav:"attributes"`
	CreatedAt  int64          `dynamodbav:"createdAt"`
}

type RelatedPostRepository struct {
	client    DynamoDBAPI
	tableName string
	log       *slog.Logger
	now       func() time.Time
}

// NewRelatedPostRepository creates the table when it is missing unless config says otherwise.
func NewRelatedPostRepository(ctx context.Context, client DynamoDBAPI, config *Config, log *slog.Logger) (*RelatedPostRepository, error) {
	repo := &RelatedPostRepository{
		client:    client,
		tableName: config.TableName,
		log:       log,
		now:       time.Now,
	}
	if config.SkipTableCreation {
		return repo, nil
	}
	if err := repo.ensureTable(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *RelatedPostRepository) ensureTable(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.tableName),
	})
	if err == nil {
		return nil
	}

	var notFoundEx *types.ResourceNotFoundException
	if !errors.As(err, &notFoundEx) {
		return fmt.Errorf("failed to describe DynamoDB table %s: %w", r.tableName, err)
	}

	r.log.Info("DynamoDB table does not exist, creating it", slog.String("table", r.tableName))
	if err := r.CreateTable(ctx); err != nil {
		return fmt.Errorf("failed to create DynamoDB table %s: %w", r.tableName, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(r.client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.tableName)}, 25*time.Second); err != nil {
		return fmt.Errorf("DynamoDB table %s did not become active: %w", r.tableName, err)
	}
	r.log.Info("DynamoDB table created", slog.String("table", r.tableName))
	return nil
}

func (r *RelatedPostRepository) CreateTable(ctx context.Context) error {
	input := &dynamodb.CreateTableInput{
		TableName: aws.String(r.tableName),
		AttributeDefinitions: []types.AttributeDefinition{
			{
				AttributeName: aws.String("pk"),
				AttributeType: types.ScalarAttributeTypeS,
			},
			{
				AttributeName: aws.String("sk"),
				AttributeType: types.ScalarAttributeTypeS,
			},
		},
		KeySchema: []types.KeySchemaElement{
			{
				AttributeName: aws.String("pk"),
				KeyType:       types.KeyTypeHash,
			},
			{
				AttributeName: aws.String("sk"),
				KeyType:       types.KeyTypeRange,
			},
		},
		ProvisionedThroughput: &types.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(5),
			WriteCapacityUnits: aws.Int64(5),
		},
	}

	_, err := r.client.CreateTable(ctx, input)
	return err
}

func (r *RelatedPostRepository) Create(ctx context.Context, post model.Post) (model.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.SingleItemTimeout)
	defer cancel()

	now := r.now()
	post = repository.AssignID(post, now)
	attributes, err := document.FromValue(post.Attributes)
	if err != nil {
		return model.Post{}, errorlib.ErrUnknownStorage.New("create").Wrap(err)
	}

	item, err := attributevalue.MarshalMap(relatedPostItem{
		PK:         PartitionKey,
		SK:         repository.Key(post.ID),
		Attributes: attributes,
		CreatedAt:  now.UnixMilli(),
	})
	if err != nil {
		return model.Post{}, errorlib.ErrUnknownStorage.New("create").Wrap(err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		r.log.Error("Failed to write related post", slog.Int64("id", post.ID), slog.String("error", err.Error()))
		return model.Post{}, classify("create", err)
	}
	return post, nil
}

func (r *RelatedPostRepository) ListAll(ctx context.Context) ([]model.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.ScanTimeout)
	defer cancel()

	paginator := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("pk = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: PartitionKey},
		},
	})

	posts := []model.Post{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, classify("list", err)
		}
		for _, raw := range page.Items {
			post, err := decodeItem(raw)
			if err != nil {
				r.log.Warn("Skipping undecodable related post", slog.String("error", err.Error()))
				continue
			}
			posts = append(posts, post)
		}
	}

	repository.SortNewestFirst(posts)
	return posts, nil
}

func (r *RelatedPostRepository) GetByID(ctx context.Context, id int64) (model.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, repository.SingleItemTimeout)
	defer cancel()

	key, err := attributevalue.MarshalMap(map[string]string{
		"pk": PartitionKey,
		"sk": repository.Key(id),
	})
	if err != nil {
		return model.Post{}, errorlib.ErrUnknownStorage.New("get").Wrap(err)
	}

	output, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       key,
	})
	if err != nil {
		return model.Post{}, classify("get", err)
	}
	if output.Item == nil {
		r.log.Debug("Related post not found by id", slog.Int64("id", id))
		return model.Post{}, errorlib.ErrRelatedPostNotFound.New(id)
	}

	post, err := decodeItem(output.Item)
	if err != nil {
		return model.Post{}, errorlib.ErrUnknownStorage.New("decode").Wrap(err)
	}
	return post, nil
}

func decodeItem(raw map[string]types.AttributeValue) (model.Post, error) {
	var item relatedPostItem
	if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
		return model.Post{}, err
	}
	id, err := strconv.ParseInt(item.SK, 10, 64)
	if err != nil {
		return model.Post{}, fmt.Errorf("invalid sort key %q: %w", item.SK, err)
	}
	var attributes model.PostAttributes
	if err := document.Decode(item.Attributes, &attributes); err != nil {
		return model.Post{}, err
	}
	return model.Post{ID: id, Attributes: attributes}, nil
}

func classify(operation string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "AccessDeniedException" {
		return errorlib.ErrStoragePermissionDenied.New(operation).Wrap(err)
	}
	return errorlib.ErrUnknownStorage.New(operation).Wrap(err)
}
