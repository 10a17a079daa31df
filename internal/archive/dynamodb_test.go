package archive

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/sentiboard/internal/db"
)

type partialWriter struct {
	dropFirst bool
}

func (w partialWriter) BatchWriteItem(_ context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	out := &dynamodb.BatchWriteItemOutput{}
	if w.dropFirst {
		for table, reqs := range in.RequestItems {
			out.UnprocessedItems = map[string][]types.WriteRequest{table: reqs[:1]}
		}
	}
	return out, nil
}

func TestDynamoDBSink(t *testing.T) {
	ok := NewDynamoDBSink(db.NewPostStore(partialWriter{}, "", 0))
	assert.Equal(t, "dynamodb", ok.Name())
	require.NoError(t, ok.Archive(context.Background(), labeledPosts("a", "b")))

	partial := NewDynamoDBSink(db.NewPostStore(partialWriter{dropFirst: true}, "", 0))
	err := partial.Archive(context.Background(), labeledPosts("a", "b"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 posts")
}
