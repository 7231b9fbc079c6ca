package services

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/geo"
	"github.com/wrenchwise/backend/internal/domain/repositories"
	"github.com/wrenchwise/backend/internal/domain/trust"
	"github.com/wrenchwise/backend/internal/infrastructure/observability"
	"github.com/wrenchwise/backend/pkg/config"
	apperrors "github.com/wrenchwise/backend/pkg/errors"
)

// MechanicQuery selects mechanics for discovery
type MechanicQuery struct {
	Location *geo.Point
	RadiusKm float64
	Category *entities.ServiceCategory
	Text     string
	Page     repositories.Page
}

// MechanicResult is a mechanic with its presentation trust block
type MechanicResult struct {
	*entities.Mechanic
	Trust          trust.Score    `json:"trust"`
	TrustBreakdown []trust.Metric `json:"trust_breakdown,omitempty"`
	DistanceKm     *float64       `json:"distance_km,omitempty"`
}

// MechanicPage is one page of discovery results
type MechanicPage struct {
	Mechanics []MechanicResult `json:"mechanics"`
	Total     int              `json:"total"`
	Limit     int              `json:"limit"`
	Offset    int              `json:"offset"`
}

// MechanicService handles mechanic discovery
type MechanicService struct {
	repo       repositories.MechanicRepository
	searchRepo repositories.MechanicSearchRepository
	pagination config.PaginationConfig
	discovery  config.DiscoveryConfig
}

// NewMechanicService creates a new mechanic service. searchRepo may be nil, in which
// case search runs the in-memory pipeline.
func NewMechanicService(
	repo repositories.MechanicRepository,
	searchRepo repositories.MechanicSearchRepository,
	pagination config.PaginationConfig,
	discovery config.DiscoveryConfig,
) *MechanicService {
	return &MechanicService{
		repo:       repo,
		searchRepo: searchRepo,
		pagination: pagination,
		discovery:  discovery,
	}
}

// FetchMechanics loads candidates from storage, keeps those within the radius of the
// query location when one is given, then filters, orders and paginates them.
func (s *MechanicService) FetchMechanics(ctx context.Context, q MechanicQuery) (*MechanicPage, error) {
	ctx, span := observability.StartSpan(ctx, "MechanicService.FetchMechanics")
	defer span.End()

	page := q.Page.Normalize(s.pagination.DefaultLimit, s.pagination.MaxLimit)
	filter := repositories.MechanicFilter{Category: q.Category}

	radius := q.RadiusKm
	if q.Location != nil {
		if !q.Location.Valid() {
			return nil, apperrors.NewValidationError("location is out of range")
		}
		if radius <= 0 {
			radius = s.discovery.DefaultRadiusKm
		}
		box := geo.BoundingBox(*q.Location, radius)
		filter.Bounds = &repositories.BoundingBox{
			MinLat: box.MinLat, MaxLat: box.MaxLat,
			MinLon: box.MinLon, MaxLon: box.MaxLon,
		}
	}

	candidates, err := s.loadCandidates(ctx, filter)
	if err != nil {
		observability.RecordError(span, err)
		return nil, err
	}

	var distances map[string]float64
	if q.Location != nil {
		distances = make(map[string]float64, len(candidates))
		within := candidates[:0:0]
		for _, m := range candidates {
			d := geo.DistanceKm(*q.Location, geo.Point{Latitude: m.Location.Latitude, Longitude: m.Location.Longitude})
			if d <= radius {
				distances[m.ID] = d
				within = append(within, m)
			}
		}
		candidates = within
	}

	ranked := FilterMechanics(candidates, q.Text, q.Category)
	observability.SetSpanAttributes(span,
		attribute.Int("mechanics.candidates", len(candidates)),
		attribute.Int("mechanics.matched", len(ranked)),
	)

	out := &MechanicPage{
		Mechanics: []MechanicResult{},
		Total:     len(ranked),
		Limit:     page.Limit,
		Offset:    page.Offset,
	}
	for _, m := range paginate(ranked, page) {
		res := describeMechanic(m)
		if d, ok := distances[m.ID]; ok {
			res.DistanceKm = &d
		}
		out.Mechanics = append(out.Mechanics, res)
	}
	return out, nil
}

// loadCandidates pages through every mechanic matching filter in batches of
// CandidateLimit, so text matches ranked below the first batch are still seen.
func (s *MechanicService) loadCandidates(ctx context.Context, filter repositories.MechanicFilter) ([]*entities.Mechanic, error) {
	batch := s.discovery.CandidateLimit
	if batch <= 0 {
		return s.repo.List(ctx, filter)
	}

	var all []*entities.Mechanic
	filter.Limit = batch
	for {
		got, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, got...)
		if len(got) < batch {
			return all, nil
		}
		filter.Offset += batch
	}
}

// GetMechanic returns one mechanic with its trust breakdown
func (s *MechanicService) GetMechanic(ctx context.Context, id string) (*MechanicResult, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("mechanic id is required")
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	res := describeMechanic(m)
	res.TrustBreakdown = trust.Breakdown(m.TrustScore)
	return &res, nil
}

// SearchMechanics runs a full-text search through the index, falling back to the
// in-memory pipeline when no index is configured or the index fails.
func (s *MechanicService) SearchMechanics(ctx context.Context, text string, category *entities.ServiceCategory, page repositories.Page) (*MechanicPage, error) {
	ctx, span := observability.StartSpan(ctx, "MechanicService.SearchMechanics")
	defer span.End()

	page = page.Normalize(s.pagination.DefaultLimit, s.pagination.MaxLimit)
	fallback := func() (*MechanicPage, error) {
		return s.FetchMechanics(ctx, MechanicQuery{Text: text, Category: category, Page: page})
	}

	if s.searchRepo == nil {
		return fallback()
	}

	res, err := s.searchRepo.Search(ctx, repositories.MechanicSearchParams{
		Query:    text,
		Category: category,
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("query", text).Msg("mechanic search index failed, using storage")
		return fallback()
	}

	mechanics, err := s.repo.GetByIDs(ctx, res.IDs)
	if err != nil {
		return nil, err
	}

	out := &MechanicPage{
		Mechanics: []MechanicResult{},
		Total:     res.Found,
		Limit:     page.Limit,
		Offset:    page.Offset,
	}
	for _, m := range FilterMechanics(mechanics, "", category) {
		out.Mechanics = append(out.Mechanics, describeMechanic(m))
	}
	return out, nil
}

func describeMechanic(m *entities.Mechanic) MechanicResult {
	return MechanicResult{Mechanic: m, Trust: trust.Describe(m.TrustScore)}
}

func paginate[T any](items []T, page repositories.Page) []T {
	if page.Offset >= len(items) {
		return []T{}
	}
	end := page.Offset + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[page.Offset:end]
}
