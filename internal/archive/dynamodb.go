package archive

import (
	"context"
	"fmt"

	"github.com/spacesedan/sentiboard/internal/db"
	"github.com/spacesedan/sentiboard/internal/models"
)

// DynamoDBSink stores posts through a db.PostStore.
type DynamoDBSink struct {
	store *db.PostStore
}

func NewDynamoDBSink(store *db.PostStore) *DynamoDBSink {
	return &DynamoDBSink{store: store}
}

func (s *DynamoDBSink) Name() string { return "dynamodb" }

func (s *DynamoDBSink) Archive(ctx context.Context, posts []models.LabeledPost) error {
	unprocessed, err := s.store.StoreLabeledPosts(ctx, posts)
	if err != nil {
		return err
	}
	if unprocessed > 0 {
		return fmt.Errorf("[DynamoDBSink] %d of %d posts were not written to %s", unprocessed, len(posts), s.store.Table())
	}
	return nil
}
