package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	authadapter "github.com/wrenchwise/backend/internal/adapters/auth"
	"github.com/wrenchwise/backend/internal/adapters/database"
	"github.com/wrenchwise/backend/internal/adapters/search"
	"github.com/wrenchwise/backend/internal/domain/entities"
	"github.com/wrenchwise/backend/internal/domain/geo"
	"github.com/wrenchwise/backend/internal/domain/trust"
	"github.com/wrenchwise/backend/internal/infrastructure/clients/postgres"
	"github.com/wrenchwise/backend/internal/infrastructure/clients/typesense"
	"github.com/wrenchwise/backend/internal/infrastructure/observability"
	"github.com/wrenchwise/backend/internal/seed"
	"github.com/wrenchwise/backend/pkg/config"
)

// demoPassword is the password of every seeded account
const demoPassword = "wrenchwise-demo"

func main() {
	var (
		users     = flag.Int("users", 40, "number of vehicle owner accounts")
		mechanics = flag.Int("mechanics", 25, "number of mechanic shops")
		reviews   = flag.Int("reviews", 6, "maximum reviews per mechanic")
		posts     = flag.Int("posts", 30, "number of feed posts")
		seedValue = flag.Int64("seed", 1, "random seed; the same seed produces the same data")
		centerLat = flag.Float64("lat", 40.7128, "latitude the shops are placed around")
		centerLon = flag.Float64("lon", -74.0060, "longitude the shops are placed around")
		radiusKm  = flag.Float64("radius", 25, "radius in km the shops are spread over")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	observability.InitLogger(observability.LoggerOptions{
		Service:     "wrenchwise-seed",
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgClient.Close()

	if err := pgClient.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				booking_requests,
				messages,
				conversations,
				comments,
				posts,
				reviews,
				mechanics,
				users
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to reset tables")
		}
	}

	userRepo := database.NewUserAdapter(pgClient)
	mechanicRepo := database.NewMechanicAdapter(pgClient, nil)
	reviewRepo := database.NewReviewAdapter(pgClient)
	postRepo := database.NewPostAdapter(pgClient)

	var index *search.TypesenseAdapter
	if cfg.Typesense.Enabled {
		if tsClient, err := typesense.NewClient(ctx, &cfg.Typesense); err != nil {
			log.Warn().Err(err).Msg("Typesense unavailable; mechanics will not be indexed")
		} else {
			index = search.NewTypesenseAdapter(tsClient)
			if err := index.InitSchema(ctx); err != nil {
				log.Warn().Err(err).Msg("failed to init Typesense schema")
				index = nil
			}
		}
	}

	hash, err := authadapter.NewBcryptHasher(cfg.Auth.BcryptCost).Hash(demoPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to hash demo password")
	}

	factory := seed.NewFactory(*seedValue)
	center := geo.Point{Latitude: *centerLat, Longitude: *centerLon}

	// 1. Accounts
	people := make([]*entities.User, 0, *users)
	for i := 0; i < *users; i++ {
		u := factory.User()
		if err := userRepo.Create(ctx, u, hash); err != nil {
			log.Warn().Err(err).Str("email", u.Email).Msg("failed to create user")
			continue
		}
		people = append(people, u)
	}
	if len(people) == 0 {
		log.Fatal().Msg("no users were created")
	}

	// 2. Shops, each owned by its own account
	shops := make([]*entities.Mechanic, 0, *mechanics)
	for i := 0; i < *mechanics; i++ {
		owner := factory.User()
		if err := userRepo.Create(ctx, owner, hash); err != nil {
			log.Warn().Err(err).Str("email", owner.Email).Msg("failed to create mechanic owner")
			continue
		}
		m := factory.Mechanic(owner, center, *radiusKm)
		if err := mechanicRepo.Create(ctx, m); err != nil {
			log.Warn().Err(err).Str("mechanic", m.BusinessName).Msg("failed to create mechanic")
			continue
		}
		shops = append(shops, m)
	}

	// 3. Reviews, then the trust score they imply
	for i, m := range shops {
		n := (i * 7) % (*reviews + 1)
		for j := 0; j < n && j < len(people); j++ {
			author := people[(i+j)%len(people)]
			if err := reviewRepo.Create(ctx, factory.Review(author, m)); err != nil {
				log.Warn().Err(err).Str("mechanic_id", m.ID).Msg("failed to create review")
			}
		}

		if err := mechanicRepo.RecomputeTrustScore(ctx, m.ID, trust.FromRatings); err != nil {
			log.Warn().Err(err).Str("mechanic_id", m.ID).Msg("failed to update trust score")
			continue
		}
		if stored, err := mechanicRepo.GetByID(ctx, m.ID); err == nil {
			m = stored
		}

		if index != nil {
			if err := index.Index(ctx, m); err != nil {
				log.Warn().Err(err).Str("mechanic_id", m.ID).Msg("failed to index mechanic")
			}
		}
	}

	// 4. Community feed
	for i := 0; i < *posts; i++ {
		var about *entities.Mechanic
		if len(shops) > 0 && i%2 == 0 {
			about = shops[i%len(shops)]
		}
		p := factory.Post(people[i%len(people)], about)
		if err := postRepo.Create(ctx, p); err != nil {
			log.Warn().Err(err).Msg("failed to create post")
		}
	}

	log.Info().
		Int("users", len(people)).
		Int("mechanics", len(shops)).
		Str("password", demoPassword).
		Msg("seeding completed")
}
