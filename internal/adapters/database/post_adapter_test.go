package database

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/repositories"
	apperrors "github.com/wrenchwise/backend/pkg/errors"
)

var postRowColumns = []string{"id", "author_id", "mechanic_id", "content", "photos", "post_type", "likes", "created_at"}

func TestPostAdapter_ListFiltersByType(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewPostAdapter(client)

	rows := sqlmock.NewRows(postRowColumns).
		AddRow("p-1", "u-1", "m-1", "Rotate your tires", "{}", "tip", 3, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE ("post_type" = $1) ORDER BY "created_at" DESC`)).
		WillReturnRows(rows)

	tip := entities.PostTypeTip
	posts, err := adapter.List(context.Background(), &tip, repositories.Page{Limit: 20})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.NotNil(t, posts[0].MechanicID)
	assert.Equal(t, "m-1", *posts[0].MechanicID)
	assert.Equal(t, entities.PostTypeTip, posts[0].PostType)
	assert.NotNil(t, posts[0].Comments)
}

func TestPostAdapter_IncrementLikes(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewPostAdapter(client)

	mock.ExpectQuery(`UPDATE "posts" SET .*likes \+ 1.*RETURNING "likes"`).
		WillReturnRows(sqlmock.NewRows([]string{"likes"}).AddRow(4))

	likes, err := adapter.IncrementLikes(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, 4, likes)
}

func TestPostAdapter_IncrementLikesMissing(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewPostAdapter(client)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE "posts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"likes"}))

	_, err := adapter.IncrementLikes(context.Background(), "nope")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestPostAdapter_AddCommentUnknownPost(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewPostAdapter(client)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "comments"`)).
		WillReturnError(&pq.Error{Code: "23503"})

	err := adapter.AddComment(context.Background(), &entities.Comment{ID: "c-1", PostID: "gone", UserID: "u-1", Content: "hi"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestPostAdapter_CommentsForGroupsByPost(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewPostAdapter(client)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "post_id", "user_id", "content", "likes", "created_at"}).
		AddRow("c-1", "p-1", "u-1", "first", 0, now).
		AddRow("c-2", "p-2", "u-2", "other", 1, now).
		AddRow("c-3", "p-1", "u-3", "second", 0, now.Add(time.Minute))
	mock.ExpectQuery(regexp.QuoteMeta(`"post_id" IN ($1, $2)`)).WillReturnRows(rows)

	got, err := adapter.CommentsFor(context.Background(), []string{"p-1", "p-2"})
	require.NoError(t, err)
	require.Len(t, got["p-1"], 2)
	assert.Equal(t, "c-3", got["p-1"][1].ID)
	assert.Len(t, got["p-2"], 1)
}

func TestPostAdapter_CommentsForNoPosts(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewPostAdapter(client)

	got, err := adapter.CommentsFor(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
