package container

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"github.com/HuseyinOrkun/FMUT/adapters/excel"
	"github.com/HuseyinOrkun/FMUT/adapters/postgres"
	"github.com/HuseyinOrkun/FMUT/adapters/rng"
	"github.com/HuseyinOrkun/FMUT/app"
	"github.com/HuseyinOrkun/FMUT/internal/config"
	"github.com/HuseyinOrkun/FMUT/ports"
)

// Container holds all application dependencies and manages their lifecycle.
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Adapters
	RNG        ports.RNGPort
	Reader     ports.MeasurementReaderPort
	ResultRepo ports.ResultRepositoryPort

	// Services
	PermTest *app.PermTestService
}

// New creates the dependency container. Persistence stays disabled until
// InitWithDatabase is called; the engine itself needs no database.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	c := &Container{
		Config: cfg,
		RNG:    rng.NewSeededAdapter(),
		Reader: excel.NewMeasurementReader(),
	}
	c.PermTest = app.NewPermTestService(c.RNG, nil)
	return c, nil
}

// InitWithDatabase wires the result repository and rebuilds the service with
// persistence enabled.
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}
	c.DB = db

	repo := postgres.NewResultRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		return err
	}
	c.ResultRepo = repo
	c.PermTest = app.NewPermTestService(c.RNG, c.ResultRepo)

	log.Printf("[Container] initialized with result store")
	return nil
}

// Shutdown releases held resources.
func (c *Container) Shutdown() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
