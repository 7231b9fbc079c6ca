package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/repositories"
	"github.com/wrenchwise/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/wrenchwise/backend/pkg/errors"
)

var postColumns = []interface{}{"id", "author_id", "mechanic_id", "content", "photos", "post_type", "likes", "created_at"}

// PostAdapter implements PostRepository
type PostAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPostAdapter creates a new post adapter
func NewPostAdapter(client *postgres.Client) repositories.PostRepository {
	return &PostAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a post
func (a *PostAdapter) Create(ctx context.Context, post *entities.Post) error {
	record := goqu.Record{
		"id":          post.ID,
		"author_id":   post.AuthorID,
		"mechanic_id": nullString(post.MechanicID),
		"content":     post.Content,
		"photos":      pq.Array(nonNil(post.Photos)),
		"post_type":   string(post.PostType),
		"likes":       post.Likes,
		"created_at":  post.CreatedAt,
	}

	query, args, err := a.db.Insert("posts").Prepared(true).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build post insert query", err)
	}
	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return translateError(err, "post not found", "failed to create post")
	}
	return nil
}

// GetByID retrieves a post without comments
func (a *PostAdapter) GetByID(ctx context.Context, id string) (*entities.Post, error) {
	query, args, err := a.db.From("posts").Prepared(true).
		Select(postColumns...).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build post query", err)
	}

	post, err := scanPost(a.client.DB().QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, translateError(err, "post not found", "failed to get post")
	}
	return post, nil
}

// List returns posts newest first
func (a *PostAdapter) List(ctx context.Context, postType *entities.PostType, page repositories.Page) ([]*entities.Post, error) {
	ds := a.db.From("posts").Prepared(true).Select(postColumns...)
	if postType != nil {
		ds = ds.Where(goqu.C("post_type").Eq(string(*postType)))
	}

	query, args, err := ds.
		Order(goqu.C("created_at").Desc(), goqu.C("id").Asc()).
		Limit(uint(page.Limit)).
		Offset(uint(page.Offset)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build post list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "posts not found", "failed to list posts")
	}
	defer rows.Close()

	posts := []*entities.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, translateError(err, "posts not found", "failed to scan post")
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "posts not found", "failed to iterate posts")
	}
	return posts, nil
}

// IncrementLikes adds one like and returns the new total
func (a *PostAdapter) IncrementLikes(ctx context.Context, id string) (int, error) {
	query, args, err := a.db.Update("posts").Prepared(true).
		Set(goqu.Record{"likes": goqu.L("likes + 1")}).
		Where(goqu.C("id").Eq(id)).
		Returning("likes").
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build like query", err)
	}

	var likes int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&likes); err != nil {
		return 0, translateError(err, "post not found", "failed to like post")
	}
	return likes, nil
}

// AddComment inserts a comment
func (a *PostAdapter) AddComment(ctx context.Context, comment *entities.Comment) error {
	record := goqu.Record{
		"id":         comment.ID,
		"post_id":    comment.PostID,
		"user_id":    comment.UserID,
		"content":    comment.Content,
		"likes":      comment.Likes,
		"created_at": comment.CreatedAt,
	}

	query, args, err := a.db.Insert("comments").Prepared(true).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build comment insert query", err)
	}
	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		err = translateError(err, "post not found", "failed to add comment")
		if apperrors.IsType(err, apperrors.ErrorTypeValidation) {
			return apperrors.NewNotFoundError("post not found")
		}
		return err
	}
	return nil
}

// CommentsFor returns comments grouped by post, oldest first
func (a *PostAdapter) CommentsFor(ctx context.Context, postIDs []string) (map[string][]entities.Comment, error) {
	out := make(map[string][]entities.Comment, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}

	query, args, err := a.db.From("comments").Prepared(true).
		Select("id", "post_id", "user_id", "content", "likes", "created_at").
		Where(goqu.Ex{"post_id": postIDs}).
		Order(goqu.C("created_at").Asc(), goqu.C("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build comments query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "comments not found", "failed to list comments")
	}
	defer rows.Close()

	for rows.Next() {
		var c entities.Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Content, &c.Likes, &c.CreatedAt); err != nil {
			return nil, translateError(err, "comments not found", "failed to scan comment")
		}
		out[c.PostID] = append(out[c.PostID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "comments not found", "failed to iterate comments")
	}
	return out, nil
}

func scanPost(row rowScanner) (*entities.Post, error) {
	var (
		p        entities.Post
		mechanic sql.NullString
		photos   pq.StringArray
		postType string
	)
	if err := row.Scan(&p.ID, &p.AuthorID, &mechanic, &p.Content, &photos, &postType, &p.Likes, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.MechanicID = stringPtr(mechanic)
	p.Photos = nonNil(photos)
	p.PostType = entities.PostType(postType)
	p.Comments = []entities.Comment{}
	return &p, nil
}
