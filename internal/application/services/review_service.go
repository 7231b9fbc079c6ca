package services

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/providers"
	"github.com/wrenchwise/backend/internal/domain/repositories"
	"github.com/wrenchwise/backend/internal/domain/trust"
	"github.com/wrenchwise/backend/internal/infrastructure/observability"
	"github.com/wrenchwise/backend/pkg/config"
	"github.com/wrenchwise/backend/pkg/validation"
)

// ReviewService handles mechanic reviews and keeps trust scores current
type ReviewService struct {
	reviews    repositories.ReviewRepository
	mechanics  repositories.MechanicRepository
	users      repositories.UserRepository
	bus        providers.EventBus
	indexer    providers.MechanicIndexer
	pagination config.PaginationConfig
	validate   *validator.Validate
	now        func() time.Time
}

// NewReviewService creates a new review service. bus and indexer may be nil.
func NewReviewService(
	reviews repositories.ReviewRepository,
	mechanics repositories.MechanicRepository,
	users repositories.UserRepository,
	bus providers.EventBus,
	indexer providers.MechanicIndexer,
	pagination config.PaginationConfig,
) *ReviewService {
	return &ReviewService{
		reviews:    reviews,
		mechanics:  mechanics,
		users:      users,
		bus:        bus,
		indexer:    indexer,
		pagination: pagination,
		validate:   validation.New(),
		now:        time.Now,
	}
}

// FetchReviews returns a mechanic's reviews newest first with author names filled in
func (s *ReviewService) FetchReviews(ctx context.Context, mechanicID string, page repositories.Page) ([]*entities.Review, error) {
	ctx, span := observability.StartSpan(ctx, "ReviewService.FetchReviews")
	defer span.End()

	if _, err := s.mechanics.GetByID(ctx, mechanicID); err != nil {
		return nil, err
	}

	page = page.Normalize(s.pagination.DefaultLimit, s.pagination.MaxLimit)
	reviews, err := s.reviews.ListByMechanic(ctx, mechanicID, page)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	ids := make([]string, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.UserID)
	}
	authors := loadersFor(ctx, s.users, s.mechanics).Users(ctx, ids)
	for _, r := range reviews {
		if u, ok := authors[r.UserID]; ok {
			r.UserName = u.Name
			r.UserProfileImage = u.ProfileImageURL
		}
	}
	return reviews, nil
}

// CreateReview stores a review by userID and recomputes the mechanic's trust score.
// A failed recompute is logged; the review is already stored.
func (s *ReviewService) CreateReview(ctx context.Context, userID string, review *entities.Review) (*entities.Review, error) {
	ctx, span := observability.StartSpan(ctx, "ReviewService.CreateReview")
	defer span.End()

	review.UserID = userID
	if review.Photos == nil {
		review.Photos = []string{}
	}
	if err := validation.Struct(s.validate, review); err != nil {
		return nil, err
	}

	if _, err := s.mechanics.GetByID(ctx, review.MechanicID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	review.ID = uuid.New().String()
	review.CreatedAt = now
	review.UpdatedAt = now

	if err := s.reviews.Create(ctx, review); err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	observability.SetSpanAttributes(span,
		attribute.String("mechanic.id", review.MechanicID),
		attribute.Int("review.rating", review.Rating),
	)

	s.refreshTrustScore(ctx, review.MechanicID)
	return review, nil
}

func (s *ReviewService) refreshTrustScore(ctx context.Context, mechanicID string) {
	logger := observability.LoggerFromContext(ctx)

	if err := s.mechanics.RecomputeTrustScore(ctx, mechanicID, trust.FromRatings); err != nil {
		logger.Error().Err(err).Str("mechanic_id", mechanicID).Msg("failed to store trust score")
		return
	}

	mechanic, err := s.mechanics.GetByID(ctx, mechanicID)
	if err != nil {
		logger.Warn().Err(err).Str("mechanic_id", mechanicID).Msg("failed to reload mechanic after rating")
		return
	}

	publish(ctx, s.bus, entities.LiveEventMechanicUpdated, mechanicID, mechanic, providers.EventChannelMechanicUpdates)

	if s.indexer != nil {
		if err := s.indexer.Index(ctx, mechanic); err != nil {
			logger.Warn().Err(err).Str("mechanic_id", mechanicID).Msg("failed to reindex mechanic")
		}
	}
}

