package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wrenchwise/backend/internal/application/services"
	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/providers"
	"github.com/wrenchwise/backend/internal/domain/repositories"
	apperrors "github.com/wrenchwise/backend/pkg/errors"
)

type reviewFixture struct {
	reviews   *mockReviewRepo
	mechanics *mockMechanicRepo
	users     *mockUserRepo
	bus       *fakeEventBus
	indexer   *mockIndexer
	svc       *services.ReviewService
}

func newReviewFixture() *reviewFixture {
	f := &reviewFixture{
		reviews:   new(mockReviewRepo),
		mechanics: new(mockMechanicRepo),
		users:     new(mockUserRepo),
		bus:       newFakeEventBus(),
		indexer:   new(mockIndexer),
	}
	f.svc = services.NewReviewService(f.reviews, f.mechanics, f.users, f.bus, f.indexer, testPagination)
	return f
}

func validReview() *entities.Review {
	return &entities.Review{
		MechanicID:  "m1",
		Rating:      4,
		Title:       "Fast and fair",
		Content:     "Replaced my pads same day.",
		ServiceType: entities.ServiceCategoryBrakes,
	}
}

func TestReviewService_CreateReviewRecomputesTrust(t *testing.T) {
	f := newReviewFixture()
	shop := mech("m1", "Shop", 5, 0)

	f.mechanics.On("GetByID", mock.Anything, "m1").Return(shop, nil)
	f.reviews.On("Create", mock.Anything, mock.AnythingOfType("*entities.Review")).Return(nil)
	f.mechanics.On("RecomputeTrustScore", mock.Anything, "m1", mock.MatchedBy(func(score repositories.TrustScorer) bool {
		return score(9, 2) == 8.9 && score(0, 0) == 5.0
	})).Return(nil)
	f.indexer.On("Index", mock.Anything, shop).Return(nil)

	review, err := f.svc.CreateReview(context.Background(), "u1", validReview())
	require.NoError(t, err)

	assert.NotEmpty(t, review.ID)
	assert.Equal(t, "u1", review.UserID)
	assert.False(t, review.CreatedAt.IsZero())
	assert.NotNil(t, review.Photos)

	f.mechanics.AssertExpectations(t)
	f.indexer.AssertExpectations(t)

	events := f.bus.events(providers.EventChannelMechanicUpdates)
	require.Len(t, events, 1)
	assert.Equal(t, entities.LiveEventMechanicUpdated, events[0].Type)
	assert.Equal(t, "m1", events[0].SubjectID)
}

func TestReviewService_CreateReviewKeepsReviewWhenTrustUpdateFails(t *testing.T) {
	f := newReviewFixture()

	f.mechanics.On("GetByID", mock.Anything, "m1").Return(mech("m1", "Shop", 5, 0), nil)
	f.reviews.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.mechanics.On("RecomputeTrustScore", mock.Anything, "m1", mock.Anything).Return(errors.New("db gone"))

	review, err := f.svc.CreateReview(context.Background(), "u1", validReview())
	require.NoError(t, err)
	assert.NotNil(t, review)
	assert.Empty(t, f.bus.events(providers.EventChannelMechanicUpdates))
	f.indexer.AssertNotCalled(t, "Index", mock.Anything, mock.Anything)
}

func TestReviewService_CreateReviewValidation(t *testing.T) {
	f := newReviewFixture()

	bad := validReview()
	bad.Rating = 6
	_, err := f.svc.CreateReview(context.Background(), "u1", bad)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Contains(t, err.Error(), "rating")

	f.reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReviewService_CreateReviewUnknownMechanic(t *testing.T) {
	f := newReviewFixture()
	f.mechanics.On("GetByID", mock.Anything, "m1").Return(nil, apperrors.NewNotFoundError("mechanic not found"))

	_, err := f.svc.CreateReview(context.Background(), "u1", validReview())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestReviewService_CreateReviewDuplicate(t *testing.T) {
	f := newReviewFixture()
	f.mechanics.On("GetByID", mock.Anything, "m1").Return(mech("m1", "Shop", 5, 0), nil)
	f.reviews.On("Create", mock.Anything, mock.Anything).Return(apperrors.NewConflictError("you have already reviewed this mechanic"))

	_, err := f.svc.CreateReview(context.Background(), "u1", validReview())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	f.mechanics.AssertNotCalled(t, "RecomputeTrustScore", mock.Anything, mock.Anything, mock.Anything)
}

func TestReviewService_FetchReviewsFillsAuthors(t *testing.T) {
	f := newReviewFixture()
	img := "https://img.example.com/a.png"

	f.mechanics.On("GetByID", mock.Anything, "m1").Return(mech("m1", "Shop", 5, 0), nil)
	f.reviews.On("ListByMechanic", mock.Anything, "m1", repositories.Page{Limit: 20}).Return([]*entities.Review{
		{ID: "r1", UserID: "u1", MechanicID: "m1"},
		{ID: "r2", UserID: "u2", MechanicID: "m1"},
	}, nil)
	f.users.On("GetByIDs", mock.Anything, mock.Anything).Return([]*entities.User{
		{ID: "u1", Name: "Ana", ProfileImageURL: &img},
	}, nil)

	reviews, err := f.svc.FetchReviews(context.Background(), "m1", repositories.Page{})
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "Ana", reviews[0].UserName)
	assert.Equal(t, &img, reviews[0].UserProfileImage)
	assert.Empty(t, reviews[1].UserName)
}
