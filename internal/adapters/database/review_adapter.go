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

var reviewColumns = []interface{}{
	"id", "user_id", "mechanic_id", "rating", "title", "content", "photos",
	"service_type", "is_recommended", "ai_summary", "created_at", "updated_at",
}

// ReviewAdapter implements ReviewRepository
type ReviewAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewReviewAdapter creates a new review adapter
func NewReviewAdapter(client *postgres.Client) repositories.ReviewRepository {
	return &ReviewAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a review
func (a *ReviewAdapter) Create(ctx context.Context, review *entities.Review) error {
	record := goqu.Record{
		"id":             review.ID,
		"user_id":        review.UserID,
		"mechanic_id":    review.MechanicID,
		"rating":         review.Rating,
		"title":          review.Title,
		"content":        review.Content,
		"photos":         pq.Array(nonNil(review.Photos)),
		"service_type":   string(review.ServiceType),
		"is_recommended": review.IsRecommended,
		"ai_summary":     nullString(review.AISummary),
		"created_at":     review.CreatedAt,
		"updated_at":     review.UpdatedAt,
	}

	query, args, err := a.db.Insert("reviews").Prepared(true).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build review insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		err = translateError(err, "review not found", "failed to create review")
		if apperrors.IsType(err, apperrors.ErrorTypeConflict) {
			return apperrors.NewConflictError("you have already reviewed this mechanic")
		}
		return err
	}
	return nil
}

// ListByMechanic returns reviews for a mechanic, newest first
func (a *ReviewAdapter) ListByMechanic(ctx context.Context, mechanicID string, page repositories.Page) ([]*entities.Review, error) {
	query, args, err := a.db.From("reviews").Prepared(true).
		Select(reviewColumns...).
		Where(goqu.C("mechanic_id").Eq(mechanicID)).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Asc()).
		Limit(uint(page.Limit)).
		Offset(uint(page.Offset)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build review list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "reviews not found", "failed to list reviews")
	}
	defer rows.Close()

	reviews := []*entities.Review{}
	for rows.Next() {
		var (
			r       entities.Review
			photos  pq.StringArray
			summary sql.NullString
			service string
		)
		if err := rows.Scan(
			&r.ID, &r.UserID, &r.MechanicID, &r.Rating, &r.Title, &r.Content, &photos,
			&service, &r.IsRecommended, &summary, &r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			return nil, translateError(err, "reviews not found", "failed to scan review")
		}
		r.Photos = nonNil(photos)
		r.ServiceType = entities.ServiceCategory(service)
		r.AISummary = stringPtr(summary)
		reviews = append(reviews, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "reviews not found", "failed to iterate reviews")
	}
	return reviews, nil
}
