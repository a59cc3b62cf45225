package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quad400/kaydee-boutique/config"
	"github.com/quad400/kaydee-boutique/internal/domain"
	"github.com/quad400/kaydee-boutique/internal/repository"
	"github.com/quad400/kaydee-boutique/internal/repository/memory"
	"github.com/quad400/kaydee-boutique/internal/repository/mongodb"
	"github.com/quad400/kaydee-boutique/pkg/db"
	"github.com/sirupsen/logrus"
)

const adminSessionTTL = 24 * 365 * time.Hour

// storage is one backend's set of repositories.
type storage struct {
	products   domain.ProductRepository
	categories domain.CategoryRepository
	carts      domain.CartRepository
	sessions   domain.SessionRepository
	migrate    func(context.Context) error
	close      func()
}

func openStorage(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*storage, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		logger.Info("Database connection established.")
		return &storage{
			products:   repository.NewPostgresProductRepository(database, logger),
			categories: repository.NewPostgresCategoryRepository(database, logger),
			carts:      repository.NewPostgresCartRepository(database, logger),
			sessions:   repository.NewPostgresSessionRepository(database, logger),
			migrate:    func(ctx context.Context) error { return db.Migrate(ctx, database) },
			close: func() {
				if err := database.Close(); err != nil {
					logger.Errorf("Error closing database: %v", err)
				}
			},
		}, nil

	case config.DriverMongo:
		database, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		logger.Infof("Mongo connection established (database %s).", cfg.MongoDatabase)
		return &storage{
			products:   mongodb.NewProductRepository(database, logger),
			categories: mongodb.NewCategoryRepository(database, logger),
			carts:      mongodb.NewCartRepository(database, logger),
			sessions:   mongodb.NewSessionRepository(database, logger),
			migrate:    func(ctx context.Context) error { return mongodb.EnsureIndexes(ctx, database) },
			close: func() {
				if err := database.Client().Disconnect(context.Background()); err != nil {
					logger.Errorf("Error disconnecting from mongo: %v", err)
				}
			},
		}, nil

	case config.DriverMemory:
		store := memory.NewStore()
		logger.Warn("Using in-memory storage; data is lost on exit")
		if cfg.AdminToken != "" {
			token, err := uuid.Parse(cfg.AdminToken)
			if err != nil {
				return nil, fmt.Errorf("invalid admin token: %w", err)
			}
			store.PutSession(token.String(), domain.Principal{ID: uuid.NewString(), Role: domain.RoleAdmin}, time.Now().Add(adminSessionTTL))
			logger.Info("Seeded admin session for in-memory storage")
		} else {
			logger.Warn("No ADMIN_TOKEN set; catalog writes and carts are unavailable with in-memory storage")
		}
		return &storage{
			products:   store,
			categories: store,
			carts:      store,
			sessions:   store,
			migrate:    func(context.Context) error { return nil },
			close:      func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
