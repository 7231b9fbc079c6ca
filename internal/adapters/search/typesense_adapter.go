package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/repositories"
	tsclient "github.com/wrenchwise/backend/internal/infrastructure/clients/typesense"
	apperrors "github.com/wrenchwise/backend/pkg/errors"
)

const (
	queryBy = "business_name,service_names,tags,description"

	// same order as the discovery ranking
	sortBy = "trust_score:desc,total_reviews:desc,_text_match:desc"
)

// TypesenseAdapter implements mechanic full-text search using Typesense
type TypesenseAdapter struct {
	client *tsclient.Client
}

var _ repositories.MechanicSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	name := a.client.Collection()
	if _, err := a.client.Client().Collection(name).Retrieve(ctx); err == nil {
		return nil
	}

	schema := &api.CollectionSchema{
		Name: name,
		Fields: []api.Field{
			{Name: "business_name", Type: "string"},
			{Name: "description", Type: "string", Optional: pointer.True()},
			{Name: "service_names", Type: "string[]", Optional: pointer.True()},
			{Name: "tags", Type: "string[]", Optional: pointer.True()},
			{Name: "categories", Type: "string[]", Facet: pointer.True()},
			{Name: "city", Type: "string", Facet: pointer.True(), Optional: pointer.True()},
			{Name: "location", Type: "geopoint"},
			{Name: "trust_score", Type: "float"},
			{Name: "total_reviews", Type: "int32"},
			{Name: "is_verified", Type: "bool"},
			{Name: "created_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("trust_score"),
	}

	if _, err := a.client.Client().Collections().Create(ctx, schema); err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}
	return nil
}

// Index upserts a mechanic document
func (a *TypesenseAdapter) Index(ctx context.Context, mechanic *entities.Mechanic) error {
	_, err := a.client.Client().Collection(a.client.Collection()).Documents().Upsert(ctx, mechanicDocument(mechanic))
	if err != nil {
		return apperrors.NewExternalError("failed to index mechanic", err)
	}
	return nil
}

// Delete removes a mechanic from the index
func (a *TypesenseAdapter) Delete(ctx context.Context, id string) error {
	if _, err := a.client.Client().Collection(a.client.Collection()).Document(id).Delete(ctx); err != nil {
		return apperrors.NewExternalError("failed to delete mechanic from index", err)
	}
	return nil
}

// Search returns matching mechanic ids in relevance order
func (a *TypesenseAdapter) Search(ctx context.Context, params repositories.MechanicSearchParams) (*repositories.MechanicSearchResult, error) {
	result, err := a.client.Client().Collection(a.client.Collection()).Documents().Search(ctx, buildSearchParams(params))
	if err != nil {
		return nil, apperrors.NewExternalError("mechanic search failed", err)
	}

	out := &repositories.MechanicSearchResult{IDs: []string{}}
	if result.Found != nil {
		out.Found = *result.Found
	}
	if result.Hits == nil {
		return out, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		if id, ok := (*hit.Document)["id"].(string); ok {
			out.IDs = append(out.IDs, id)
		}
	}
	return out, nil
}

func buildSearchParams(params repositories.MechanicSearchParams) *api.SearchCollectionParams {
	q := strings.TrimSpace(params.Query)
	if q == "" {
		q = "*"
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	sp := &api.SearchCollectionParams{
		Q:       pointer.String(q),
		QueryBy: pointer.String(queryBy),
		SortBy:  pointer.String(sortBy),
		Offset:  pointer.Int(max(params.Offset, 0)),
		Limit:   pointer.Int(limit),
	}
	if params.Category != nil {
		sp.FilterBy = pointer.String(fmt.Sprintf("categories:=`%s`", *params.Category))
	}
	return sp
}

func mechanicDocument(m *entities.Mechanic) map[string]interface{} {
	names := make([]string, 0, len(m.Services))
	for _, s := range m.Services {
		names = append(names, s.Name)
	}
	categories := make([]string, 0, len(m.Services))
	for _, c := range m.Categories() {
		categories = append(categories, string(c))
	}

	return map[string]interface{}{
		"id":            m.ID,
		"business_name": m.BusinessName,
		"description":   m.Description,
		"service_names": names,
		"tags":          BuildMechanicTags(m),
		"categories":    categories,
		"city":          m.Location.City,
		"location":      []float64{m.Location.Latitude, m.Location.Longitude},
		"trust_score":   m.TrustScore,
		"total_reviews": m.TotalReviews,
		"is_verified":   m.IsVerified,
		"created_at":    m.CreatedAt.Unix(),
	}
}
