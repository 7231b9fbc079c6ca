package services

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/repositories"
	"github.com/wrenchwise/backend/internal/infrastructure/observability"
	"github.com/wrenchwise/backend/pkg/config"
	apperrors "github.com/wrenchwise/backend/pkg/errors"
	"github.com/wrenchwise/backend/pkg/validation"
)

// PostService handles the community feed
type PostService struct {
	posts      repositories.PostRepository
	users      repositories.UserRepository
	mechanics  repositories.MechanicRepository
	pagination config.PaginationConfig
	validate   *validator.Validate
	now        func() time.Time
}

// NewPostService creates a new post service
func NewPostService(
	posts repositories.PostRepository,
	users repositories.UserRepository,
	mechanics repositories.MechanicRepository,
	pagination config.PaginationConfig,
) *PostService {
	return &PostService{
		posts:      posts,
		users:      users,
		mechanics:  mechanics,
		pagination: pagination,
		validate:   validation.New(),
		now:        time.Now,
	}
}

// FetchFeed returns posts newest first, optionally of one type, with comments,
// author names and the mechanic each post is about.
func (s *PostService) FetchFeed(ctx context.Context, postType *entities.PostType, page repositories.Page) ([]*entities.Post, error) {
	ctx, span := observability.StartSpan(ctx, "PostService.FetchFeed")
	defer span.End()

	if postType != nil && !postType.Valid() {
		return nil, apperrors.NewValidationError("unknown post type " + string(*postType))
	}

	page = page.Normalize(s.pagination.DefaultLimit, s.pagination.MaxLimit)
	posts, err := s.posts.List(ctx, postType, page)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}
	if len(posts) == 0 {
		return posts, nil
	}

	postIDs := make([]string, 0, len(posts))
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
	}
	comments, err := s.posts.CommentsFor(ctx, postIDs)
	if err != nil {
		return nil, err
	}

	var userIDs, mechanicIDs []string
	for _, p := range posts {
		userIDs = append(userIDs, p.AuthorID)
		if p.MechanicID != nil {
			mechanicIDs = append(mechanicIDs, *p.MechanicID)
		}
		for _, c := range comments[p.ID] {
			userIDs = append(userIDs, c.UserID)
		}
	}

	l := loadersFor(ctx, s.users, s.mechanics)
	users := l.Users(ctx, userIDs)
	mechanics := l.Mechanics(ctx, mechanicIDs)

	for _, p := range posts {
		if u, ok := users[p.AuthorID]; ok {
			p.AuthorName = u.Name
			p.AuthorProfileImage = u.ProfileImageURL
		}
		if p.MechanicID != nil {
			p.MechanicInfo = mechanics[*p.MechanicID]
		}
		if cs, ok := comments[p.ID]; ok {
			for i := range cs {
				if u, ok := users[cs[i].UserID]; ok {
					cs[i].UserName = u.Name
					cs[i].UserProfileImage = u.ProfileImageURL
				}
			}
			p.Comments = cs
		}
	}
	return posts, nil
}

// CreatePost publishes a post by authorID
func (s *PostService) CreatePost(ctx context.Context, authorID string, post *entities.Post) (*entities.Post, error) {
	post.AuthorID = authorID
	if post.PostType == "" {
		post.PostType = entities.PostTypeTip
	}
	if post.Photos == nil {
		post.Photos = []string{}
	}
	if err := validation.Struct(s.validate, post); err != nil {
		return nil, err
	}

	if post.MechanicID != nil {
		if _, err := s.mechanics.GetByID(ctx, *post.MechanicID); err != nil {
			return nil, err
		}
	}

	post.ID = uuid.New().String()
	post.Likes = 0
	post.Comments = []entities.Comment{}
	post.CreatedAt = s.now().UTC()

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// AddComment replies to a post
func (s *PostService) AddComment(ctx context.Context, userID, postID, content string) (*entities.Comment, error) {
	comment := &entities.Comment{
		ID:        uuid.New().String(),
		PostID:    postID,
		UserID:    userID,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
	if err := validation.Struct(s.validate, comment); err != nil {
		return nil, err
	}
	if err := s.posts.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// LikePost adds a like and returns the new total
func (s *PostService) LikePost(ctx context.Context, postID string) (int, error) {
	if postID == "" {
		return 0, apperrors.NewValidationError("post id is required")
	}
	return s.posts.IncrementLikes(ctx, postID)
}
