package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/wrenchwise/backend/internal/api/middleware"
	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/repositories"
)

// PostManager is the community feed API used by FeedHandler
type PostManager interface {
	FetchFeed(ctx context.Context, postType *entities.PostType, page repositories.Page) ([]*entities.Post, error)
	CreatePost(ctx context.Context, authorID string, post *entities.Post) (*entities.Post, error)
	AddComment(ctx context.Context, userID, postID, content string) (*entities.Comment, error)
	LikePost(ctx context.Context, postID string) (int, error)
}

// FeedHandler handles community feed requests
type FeedHandler struct {
	posts PostManager
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(posts PostManager) *FeedHandler {
	return &FeedHandler{posts: posts}
}

type commentRequest struct {
	Content string `json:"content"`
}

// GetFeed handles GET /api/feed?post_type&limit&offset
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	var postType *entities.PostType
	if raw := strings.TrimSpace(r.URL.Query().Get("post_type")); raw != "" {
		pt := entities.PostType(strings.ToLower(raw))
		postType = &pt
	}

	posts, err := h.posts.FetchFeed(r.Context(), postType, pageFromQuery(r))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"posts": posts,
		"count": len(posts),
	})
}

// CreatePost handles POST /api/posts
func (h *FeedHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var post entities.Post
	if err := decodeJSON(r, &post); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	created, err := h.posts.CreatePost(r.Context(), middleware.UserID(r.Context()), &post)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

// AddComment handles POST /api/posts/{id}/comments
func (h *FeedHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithAppError(w, r, err)
		return
	}

	comment, err := h.posts.AddComment(r.Context(), middleware.UserID(r.Context()), r.PathValue("id"), req.Content)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, comment)
}

// LikePost handles POST /api/posts/{id}/like
func (h *FeedHandler) LikePost(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("id")
	likes, err := h.posts.LikePost(r.Context(), postID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"post_id": postID,
		"likes":   likes,
	})
}
