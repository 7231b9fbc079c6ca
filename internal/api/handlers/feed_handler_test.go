package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/wrenchwise/backend/internal/api/handlers"
	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/repositories"
	apperrors "github.com/wrenchwise/backend/pkg/errors"
)

func TestFeedHandler_GetFeed(t *testing.T) {
	svc := new(MockPostManager)
	handler := handlers.NewFeedHandler(svc)

	svc.On("FetchFeed", mock.Anything, mock.MatchedBy(func(pt *entities.PostType) bool {
		return pt != nil && *pt == entities.PostTypeQuestion
	}), repositories.Page{Limit: 10}).Return([]*entities.Post{
		{ID: "p1", Content: "Why does my car pull left?", PostType: entities.PostTypeQuestion, Comments: []entities.Comment{}},
	}, nil)

	w := httptest.NewRecorder()
	handler.GetFeed(w, newRequest(http.MethodGet, "/api/feed?post_type=Question&limit=10", ""))

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Posts []entities.Post `json:"posts"`
		Count int             `json:"count"`
	}
	decodeBody(t, w, &body)
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "p1", body.Posts[0].ID)
	svc.AssertExpectations(t)
}

func TestFeedHandler_GetFeed_AllTypes(t *testing.T) {
	svc := new(MockPostManager)
	handler := handlers.NewFeedHandler(svc)

	svc.On("FetchFeed", mock.Anything, (*entities.PostType)(nil), repositories.Page{}).Return([]*entities.Post{}, nil)

	w := httptest.NewRecorder()
	handler.GetFeed(w, newRequest(http.MethodGet, "/api/feed", ""))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"posts":[],"count":0}`, w.Body.String())
}

func TestFeedHandler_CreatePost(t *testing.T) {
	svc := new(MockPostManager)
	handler := handlers.NewFeedHandler(svc)

	svc.On("CreatePost", mock.Anything, "u1", mock.MatchedBy(func(p *entities.Post) bool {
		return p.Content == "Rotate your tires" && p.PostType == entities.PostTypeTip
	})).Return(&entities.Post{ID: "p9", AuthorID: "u1", Content: "Rotate your tires", PostType: entities.PostTypeTip}, nil)

	w := httptest.NewRecorder()
	handler.CreatePost(w, asUser(newRequest(http.MethodPost, "/api/posts", `{"content":"Rotate your tires","post_type":"tip"}`), "u1"))

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestFeedHandler_AddComment(t *testing.T) {
	svc := new(MockPostManager)
	handler := handlers.NewFeedHandler(svc)

	svc.On("AddComment", mock.Anything, "u2", "p1", "Check the alignment").
		Return(&entities.Comment{ID: "c1", PostID: "p1", UserID: "u2", Content: "Check the alignment"}, nil)

	req := asUser(newRequest(http.MethodPost, "/api/posts/p1/comments", `{"content":"Check the alignment"}`), "u2")
	req.SetPathValue("id", "p1")
	w := httptest.NewRecorder()
	handler.AddComment(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestFeedHandler_LikePost(t *testing.T) {
	t.Run("counts", func(t *testing.T) {
		svc := new(MockPostManager)
		handler := handlers.NewFeedHandler(svc)
		svc.On("LikePost", mock.Anything, "p1").Return(4, nil)

		req := asUser(newRequest(http.MethodPost, "/api/posts/p1/like", ""), "u1")
		req.SetPathValue("id", "p1")
		w := httptest.NewRecorder()
		handler.LikePost(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"post_id":"p1","likes":4}`, w.Body.String())
	})

	t.Run("missing post", func(t *testing.T) {
		svc := new(MockPostManager)
		handler := handlers.NewFeedHandler(svc)
		svc.On("LikePost", mock.Anything, "gone").Return(0, apperrors.NewNotFoundError("post not found"))

		req := asUser(newRequest(http.MethodPost, "/api/posts/gone/like", ""), "u1")
		req.SetPathValue("id", "gone")
		w := httptest.NewRecorder()
		handler.LikePost(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
