package http

import (
	"context"
	"fmt"

	"cpfregistry/internal/adapter/database/memory"
	"cpfregistry/internal/adapter/database/postgres"
	pgrepository "cpfregistry/internal/adapter/database/postgres/repository"
	"cpfregistry/internal/adapter/database/sqlite"
	sqliterepository "cpfregistry/internal/adapter/database/sqlite/repository"
	"cpfregistry/internal/adapter/http/handler"
	"cpfregistry/internal/adapter/http/validation"
	"cpfregistry/internal/adapter/idgen"
	"cpfregistry/internal/core/port"
	"cpfregistry/internal/core/service"
	"cpfregistry/pkg/config"
)

type Container struct {
	UserStore   port.UserStore
	UserService port.UserService
	UserHandler *handler.UserHandler

	close func()
}

// NewContainer opens the backend named by cfg.Database.Driver and wires the user stack on top.
func NewContainer(ctx context.Context, cfg *config.AppConfig, logger *config.Logger, probe port.Telemetry) (*Container, error) {
	store, closeStore, err := openUserStore(ctx, cfg.Database, probe)

	if err != nil {
		return nil, err
	}

	userSvc := service.NewUserService(store, idgen.NewUUIDGenerator(), service.WithTelemetry(probe))
	userHandler := handler.NewUserHandler(userSvc, validation.NewRequestValidator(), logger)

	return &Container{
		UserStore:   store,
		UserService: userSvc,
		UserHandler: userHandler,
		close:       closeStore,
	}, nil
}

func (c *Container) Close() {
	if c.close != nil {
		c.close()
	}
}

func openUserStore(ctx context.Context, cfg config.DatabaseConfig, probe port.Telemetry) (port.UserStore, func(), error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.NewUserStore(), func() {}, nil

	case config.DriverPostgres:
		db, err := postgres.NewDB(ctx, postgres.Config{
			URL:            cfg.URL,
			MigrationsPath: cfg.MigrationsPath,
		})

		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres: %w", err)
		}

		return pgrepository.NewUserRepository(db, probe), db.Close, nil

	case config.DriverSQLite, "":
		db, err := sqlite.NewDB(sqlite.Config{
			Path:           cfg.Path,
			MigrationsPath: cfg.MigrationsPath,
			LogQueries:     cfg.LogQueries,
		})

		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite: %w", err)
		}

		return sqliterepository.NewUserRepository(db, probe), func() { db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
