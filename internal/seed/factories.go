// Package seed builds realistic fixture data for local development and tests.
package seed

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/geo"
	"github.com/wrenchwise/backend/internal/domain/trust"
)

var serviceNames = map[entities.ServiceCategory][]string{
	entities.ServiceCategoryOilChange:    {"Synthetic Oil Change", "Conventional Oil Change", "High Mileage Oil Service"},
	entities.ServiceCategoryBrakes:       {"Brake Pad Replacement", "Rotor Resurfacing", "Brake Fluid Flush"},
	entities.ServiceCategoryTires:        {"Tire Rotation", "Wheel Alignment", "Flat Repair"},
	entities.ServiceCategoryEngine:       {"Engine Diagnostics", "Timing Belt Replacement", "Tune Up"},
	entities.ServiceCategoryTransmission: {"Transmission Fluid Service", "Clutch Replacement"},
	entities.ServiceCategoryElectrical:   {"Battery Replacement", "Alternator Repair", "Starter Replacement"},
	entities.ServiceCategoryBodyWork:     {"Dent Repair", "Bumper Replacement", "Paint Touch Up"},
	entities.ServiceCategoryInspection:   {"State Inspection", "Pre-Purchase Inspection"},
	entities.ServiceCategoryOther:        {"Detailing", "Windshield Wiper Replacement"},
}

var shopSuffixes = []string{"Auto Repair", "Garage", "Motors", "Auto Care", "Service Center", "Automotive"}

// Factory generates entities from a seeded faker so runs are reproducible
type Factory struct {
	f   *gofakeit.Faker
	now func() time.Time
}

// NewFactory creates a factory. The same seed yields the same entities.
func NewFactory(seed int64) *Factory {
	return &Factory{f: gofakeit.New(seed), now: time.Now}
}

// User returns a vehicle owner account
func (fa *Factory) User() *entities.User {
	first, last := fa.f.FirstName(), fa.f.LastName()
	email := strings.ToLower(fmt.Sprintf("%s.%s%d@%s", first, last, fa.f.Number(1, 999), fa.f.DomainName()))
	image := fmt.Sprintf("https://i.pravatar.cc/150?u=%s", fa.f.UUID())
	return &entities.User{
		ID:              uuid.NewString(),
		Email:           email,
		Name:            first + " " + last,
		ProfileImageURL: &image,
		CreatedAt:       fa.pastTime(365),
	}
}

// Mechanic returns a shop owned by owner, placed uniformly within radiusKm of center
func (fa *Factory) Mechanic(owner *entities.User, center geo.Point, radiusKm float64) *entities.Mechanic {
	name := fmt.Sprintf("%s %s", fa.f.LastName(), fa.f.RandomString(shopSuffixes))
	phone := fa.f.Phone()
	website := fmt.Sprintf("https://www.%s.example", strings.ToLower(strings.ReplaceAll(name, " ", "")))

	point := fa.pointNear(center, radiusKm)
	return &entities.Mechanic{
		ID:           uuid.NewString(),
		UserID:       owner.ID,
		BusinessName: name,
		Description:  fa.f.Paragraph(1, 2, 12, " "),
		Services:     fa.services(),
		Location: entities.Location{
			Latitude:  point.Latitude,
			Longitude: point.Longitude,
			Address:   fa.f.Street(),
			City:      fa.f.City(),
			State:     fa.f.StateAbr(),
			ZipCode:   fa.f.Zip(),
		},
		TrustScore: trust.DefaultScore,
		Photos:     []string{fmt.Sprintf("https://picsum.photos/seed/%s/800/600", fa.f.UUID())},
		ContactInfo: entities.ContactInfo{
			Phone:        &phone,
			Email:        &owner.Email,
			Website:      &website,
			WorkingHours: []entities.WorkingHours{},
		},
		IsVerified: fa.f.Number(0, 3) > 0,
		CreatedAt:  fa.pastTime(720),
	}
}

// Review returns a review of m by user. Ratings skew positive the way real
// marketplaces do.
func (fa *Factory) Review(user *entities.User, m *entities.Mechanic) *entities.Review {
	rating := fa.f.Number(2, 5)
	if fa.f.Number(0, 9) == 0 {
		rating = 1
	}
	category := entities.ServiceCategoryOther
	if len(m.Services) > 0 {
		category = m.Services[fa.f.Number(0, len(m.Services)-1)].Category
	}
	created := fa.pastTime(180)
	return &entities.Review{
		ID:            uuid.NewString(),
		UserID:        user.ID,
		MechanicID:    m.ID,
		Rating:        rating,
		Title:         strings.TrimSuffix(fa.f.Sentence(4), "."),
		Content:       fa.f.Paragraph(1, 3, 10, " "),
		Photos:        []string{},
		ServiceType:   category,
		IsRecommended: rating >= 4,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
}

// Post returns a feed post by author, about m when m is not nil
func (fa *Factory) Post(author *entities.User, m *entities.Mechanic) *entities.Post {
	post := &entities.Post{
		ID:        uuid.NewString(),
		AuthorID:  author.ID,
		Content:   fa.f.Paragraph(1, 2, 14, " "),
		Photos:    []string{},
		PostType:  entities.PostTypes()[fa.f.Number(0, len(entities.PostTypes())-1)],
		Likes:     fa.f.Number(0, 40),
		Comments:  []entities.Comment{},
		CreatedAt: fa.pastTime(60),
	}
	if m != nil {
		id := m.ID
		post.MechanicID = &id
	}
	return post
}

func (fa *Factory) services() []entities.Service {
	categories := entities.ServiceCategories()
	fa.f.ShuffleAnySlice(categories)
	n := fa.f.Number(1, 4)

	out := make([]entities.Service, 0, n)
	for _, c := range categories[:n] {
		names := serviceNames[c]
		low := float64(fa.f.Number(3, 30) * 5)
		out = append(out, entities.Service{
			ID:             uuid.NewString(),
			Name:           names[fa.f.Number(0, len(names)-1)],
			Description:    fa.f.Sentence(8),
			EstimatedPrice: &entities.PriceRange{Min: low, Max: low + float64(fa.f.Number(2, 20)*5)},
			Category:       c,
		})
	}
	return out
}

// pointNear returns a point at most radiusKm from center
func (fa *Factory) pointNear(center geo.Point, radiusKm float64) geo.Point {
	d := radiusKm * math.Sqrt(fa.f.Float64Range(0, 1))
	theta := fa.f.Float64Range(0, 2*math.Pi)

	dLat := (d * math.Cos(theta)) / 111.0
	dLon := (d * math.Sin(theta)) / (111.0 * math.Cos(center.Latitude*math.Pi/180))
	return geo.Point{Latitude: center.Latitude + dLat, Longitude: center.Longitude + dLon}
}

func (fa *Factory) pastTime(maxDays int) time.Time {
	offset := time.Duration(fa.f.Number(0, maxDays*24)) * time.Hour
	return fa.now().UTC().Add(-offset).Truncate(time.Second)
}
