package db

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/spacesedan/sentiboard/internal/models"
	"github.com/spacesedan/sentiboard/internal/utils"
)

const (
	SENTIMENT_RESULTS_TABLE_NAME = "SentimentResults"
	MAX_BATCH_WRITE_SIZE         = 25
)

type BatchWriter interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// PostStore writes labeled posts to a DynamoDB table keyed by post_id.
type PostStore struct {
	client BatchWriter
	table  string
	ttl    time.Duration
	now    func() time.Time
}

func NewPostStore(client BatchWriter, table string, ttl time.Duration) *PostStore {
	if table == "" {
		table = SENTIMENT_RESULTS_TABLE_NAME
	}
	return &PostStore{client: client, table: table, ttl: ttl, now: time.Now}
}

func (s *PostStore) Table() string { return s.table }

// StoreLabeledPosts writes posts in batches of 25. Unprocessed items are
// counted and logged but never resubmitted; the count is returned alongside
// any request error.
func (s *PostStore) StoreLabeledPosts(ctx context.Context, posts []models.LabeledPost) (int, error) {
	now := s.now()
	unprocessed := 0

	for _, batch := range utils.Batches(posts, MAX_BATCH_WRITE_SIZE) {
		if err := ctx.Err(); err != nil {
			slog.Warn("[DynamoDB] context canceled")
			return unprocessed, err
		}

		writeRequests := make([]types.WriteRequest, 0, len(batch))
		for _, p := range batch {
			item, err := LabeledPostToItem(p, now, s.ttl)
			if err != nil {
				return unprocessed, fmt.Errorf("[DynamoDB] Failed to marshal post %s: %w", p.ID, err)
			}
			writeRequests = append(writeRequests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				s.table: writeRequests,
			},
		})
		if err != nil {
			return unprocessed, fmt.Errorf("[DynamoDB] Failed to batch write labeled posts: %w", err)
		}
		if remaining := len(out.UnprocessedItems[s.table]); remaining > 0 {
			unprocessed += remaining
			slog.Error("[DynamoDB] Some labeled posts were not written",
				slog.String("table", s.table),
				slog.Int("remaining_items", remaining))
		}
	}

	slog.Info("[DynamoDB] Stored labeled posts",
		slog.String("table", s.table),
		slog.Int("count", len(posts)-unprocessed))
	return unprocessed, nil
}

// LabeledPostToItem marshals a post and adds archive bookkeeping attributes.
func LabeledPostToItem(p models.LabeledPost, archivedAt time.Time, ttl time.Duration) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return nil, err
	}
	item["archived_at"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(archivedAt.Unix(), 10)}
	if ttl > 0 {
		item["ttl"] = &types.AttributeValueMemberN{Value: strconv.FormatInt(archivedAt.Add(ttl).Unix(), 10)}
	}
	return item, nil
}
