package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

const DefaultTableName = "related_posts"

type Config struct {
	TableName         string
	SkipTableCreation bool
}

func NewDynamoDBConfig() *Config {
	return &Config{TableName: DefaultTableName}
}

func (c *Config) WithTableName(name string) *Config {
	c.TableName = name
	return c
}

func (c *Config) WithSkipTableCreation(skip bool) *Config {
	c.SkipTableCreation = skip
	return c
}

// NewDynamoDBClient loads the default AWS configuration for region.
// A non-empty endpoint points the client at DynamoDB Local or another compatible service.
func NewDynamoDBClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	cfg, err := awsConfig.LoadDefaultConfig(ctx, awsConfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}
