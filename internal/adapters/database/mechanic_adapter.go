package database

import (
	"context"
	"encoding/json"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/lib/pq"

	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/repositories"
	"github.com/wrenchwise/backend/internal/infrastructure/clients/postgres"
	"github.com/wrenchwise/backend/internal/infrastructure/observability"
	apperrors "github.com/wrenchwise/backend/pkg/errors"
)

var mechanicColumns = []interface{}{
	"id", "user_id", "business_name", "description", "services", "location",
	"trust_score", "total_reviews", "photos", "contact_info", "is_verified", "created_at",
}

// MechanicAdapter implements MechanicRepository
type MechanicAdapter struct {
	client  *postgres.Client
	db      *goqu.Database
	metrics *observability.Metrics
}

// NewMechanicAdapter creates a new mechanic adapter. metrics may be nil.
func NewMechanicAdapter(client *postgres.Client, metrics *observability.Metrics) repositories.MechanicRepository {
	return &MechanicAdapter{
		client:  client,
		db:      goqu.New("postgres", client.DB()),
		metrics: metrics,
	}
}

// Create inserts a mechanic listing
func (a *MechanicAdapter) Create(ctx context.Context, mechanic *entities.Mechanic) error {
	services, err := json.Marshal(mechanic.Services)
	if err != nil {
		return apperrors.NewInternalError("failed to encode services", err)
	}
	location, err := json.Marshal(mechanic.Location)
	if err != nil {
		return apperrors.NewInternalError("failed to encode location", err)
	}
	contact, err := json.Marshal(mechanic.ContactInfo)
	if err != nil {
		return apperrors.NewInternalError("failed to encode contact info", err)
	}

	categories := make([]string, 0, len(mechanic.Services))
	for _, c := range mechanic.Categories() {
		categories = append(categories, string(c))
	}

	record := goqu.Record{
		"id":            mechanic.ID,
		"user_id":       mechanic.UserID,
		"business_name": mechanic.BusinessName,
		"description":   mechanic.Description,
		"services":      string(services),
		"categories":    pq.Array(categories),
		"location":      string(location),
		"latitude":      mechanic.Location.Latitude,
		"longitude":     mechanic.Location.Longitude,
		"trust_score":   mechanic.TrustScore,
		"total_reviews": mechanic.TotalReviews,
		"photos":        pq.Array(nonNil(mechanic.Photos)),
		"contact_info":  string(contact),
		"is_verified":   mechanic.IsVerified,
		"created_at":    mechanic.CreatedAt,
	}

	query, args, err := a.db.Insert("mechanics").Prepared(true).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build mechanic insert query", err)
	}

	defer a.observe(ctx, "mechanics.create", time.Now())
	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return translateError(err, "mechanic not found", "failed to create mechanic")
	}
	return nil
}

// GetByID retrieves a mechanic by ID
func (a *MechanicAdapter) GetByID(ctx context.Context, id string) (*entities.Mechanic, error) {
	query, args, err := a.db.From("mechanics").Prepared(true).
		Select(mechanicColumns...).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build mechanic query", err)
	}

	defer a.observe(ctx, "mechanics.get", time.Now())
	mechanic, err := scanMechanic(a.client.DB().QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, translateError(err, "mechanic not found", "failed to get mechanic")
	}
	return mechanic, nil
}

// GetByIDs retrieves mechanics in the order of ids; unknown ids are skipped
func (a *MechanicAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Mechanic, error) {
	if len(ids) == 0 {
		return []*entities.Mechanic{}, nil
	}

	query, args, err := a.db.From("mechanics").Prepared(true).
		Select(mechanicColumns...).
		Where(goqu.Ex{"id": ids}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build mechanics query", err)
	}

	found, err := a.query(ctx, "mechanics.get_many", query, args)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*entities.Mechanic, len(found))
	for _, m := range found {
		byID[m.ID] = m
	}
	ordered := make([]*entities.Mechanic, 0, len(found))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			ordered = append(ordered, m)
		}
	}
	return ordered, nil
}

// List retrieves discovery candidates. Category and bounding box are pushed down to SQL.
func (a *MechanicAdapter) List(ctx context.Context, filter repositories.MechanicFilter) ([]*entities.Mechanic, error) {
	ds := a.db.From("mechanics").Prepared(true).Select(mechanicColumns...)

	if filter.Category != nil {
		ds = ds.Where(goqu.L("? = ANY(categories)", string(*filter.Category)))
	}
	if b := filter.Bounds; b != nil {
		ds = ds.Where(
			goqu.C("latitude").Between(goqu.Range(b.MinLat, b.MaxLat)),
			goqu.C("longitude").Between(goqu.Range(b.MinLon, b.MaxLon)),
		)
	}

	ds = ds.Order(goqu.C("trust_score").Desc(), goqu.C("total_reviews").Desc(), goqu.C("id").Asc())
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build mechanic list query", err)
	}
	return a.query(ctx, "mechanics.list", query, args)
}

// RecomputeTrustScore locks the mechanic row, aggregates its reviews and stores the
// score and review count in one transaction. Concurrent recomputes for the same
// mechanic serialize on the row lock.
func (a *MechanicAdapter) RecomputeTrustScore(ctx context.Context, id string, score repositories.TrustScorer) (err error) {
	defer a.observe(ctx, "mechanics.recompute_trust", time.Now())

	lockQuery, lockArgs, err := a.db.From("mechanics").Prepared(true).
		Select("id").
		Where(goqu.C("id").Eq(id)).
		ForUpdate(exp.Wait).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build mechanic lock query", err)
	}
	statsQuery, statsArgs, err := a.db.From("reviews").Prepared(true).
		Select(
			goqu.COALESCE(goqu.SUM("rating"), 0).As("rating_sum"),
			goqu.COUNT("*").As("rating_count"),
		).
		Where(goqu.C("mechanic_id").Eq(id)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build rating stats query", err)
	}

	tx, err := a.client.BeginTx(ctx)
	if err != nil {
		return translateError(err, "mechanic not found", "failed to begin trust score update")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var locked string
	if err = tx.QueryRowContext(ctx, lockQuery, lockArgs...).Scan(&locked); err != nil {
		return translateError(err, "mechanic not found", "failed to lock mechanic")
	}

	// read after the lock so every review committed before it is counted
	var stats entities.RatingStats
	if err = tx.QueryRowContext(ctx, statsQuery, statsArgs...).Scan(&stats.Sum, &stats.Count); err != nil {
		return translateError(err, "mechanic not found", "failed to aggregate ratings")
	}

	updateQuery, updateArgs, err := a.db.Update("mechanics").Prepared(true).
		Set(goqu.Record{"trust_score": score(stats.Sum, stats.Count), "total_reviews": stats.Count}).
		Where(goqu.C("id").Eq(id)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build trust score update", err)
	}
	if _, err = tx.ExecContext(ctx, updateQuery, updateArgs...); err != nil {
		return translateError(err, "mechanic not found", "failed to update trust score")
	}

	if err = tx.Commit(); err != nil {
		return translateError(err, "mechanic not found", "failed to commit trust score")
	}
	return nil
}

func (a *MechanicAdapter) query(ctx context.Context, op, query string, args []interface{}) ([]*entities.Mechanic, error) {
	defer a.observe(ctx, op, time.Now())

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err, "mechanics not found", "failed to query mechanics")
	}
	defer rows.Close()

	mechanics := []*entities.Mechanic{}
	for rows.Next() {
		m, err := scanMechanic(rows)
		if err != nil {
			return nil, translateError(err, "mechanics not found", "failed to scan mechanic")
		}
		mechanics = append(mechanics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err, "mechanics not found", "failed to iterate mechanics")
	}
	return mechanics, nil
}

func (a *MechanicAdapter) observe(ctx context.Context, op string, start time.Time) {
	observability.RecordDBMetric(ctx, a.metrics, op, time.Since(start))
}

func scanMechanic(row rowScanner) (*entities.Mechanic, error) {
	var (
		m                           entities.Mechanic
		services, location, contact []byte
		photos                      pq.StringArray
	)
	err := row.Scan(
		&m.ID, &m.UserID, &m.BusinessName, &m.Description, &services, &location,
		&m.TrustScore, &m.TotalReviews, &photos, &contact, &m.IsVerified, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(services) > 0 {
		if err := json.Unmarshal(services, &m.Services); err != nil {
			return nil, apperrors.NewInternalError("failed to decode services", err)
		}
	}
	if len(location) > 0 {
		if err := json.Unmarshal(location, &m.Location); err != nil {
			return nil, apperrors.NewInternalError("failed to decode location", err)
		}
	}
	if len(contact) > 0 {
		if err := json.Unmarshal(contact, &m.ContactInfo); err != nil {
			return nil, apperrors.NewInternalError("failed to decode contact info", err)
		}
	}
	if m.Services == nil {
		m.Services = []entities.Service{}
	}
	m.Photos = nonNil(photos)
	return &m, nil
}
