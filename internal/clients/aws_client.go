package clients

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/spacesedan/sentiboard/config"
)

// NewDynamoDBClient loads the default AWS credential chain for cfg.Region.
// A non-empty cfg.Endpoint overrides the service endpoint, e.g. for
// DynamoDB Local.
func NewDynamoDBClient(ctx context.Context, cfg config.AWSConfig) (*dynamodb.Client, error) {
	slog.Info("[AWSClient] Initializing AWS Config...",
		slog.String("region", cfg.Region),
		slog.String("endpoint", cfg.Endpoint))

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("[AWSClient] failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	slog.Info("[AWSClient] AWS Config Initialized")
	return client, nil
}
