package app

import (
	"fmt"
	"net/http"

	"github.com/MalavS298/basiscpk/internal/config"
	"github.com/MalavS298/basiscpk/internal/db"
	"github.com/MalavS298/basiscpk/internal/integration/supabase"
	"github.com/MalavS298/basiscpk/internal/integration/zoom"
	"github.com/MalavS298/basiscpk/internal/repository/inmemory"
	"github.com/MalavS298/basiscpk/internal/transport/httpserver"
	"github.com/MalavS298/basiscpk/internal/transport/httpserver/handler"
	"github.com/MalavS298/basiscpk/pkg/logger"
	"gorm.io/gorm"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
	services   handler.Services
}

func New(cfg config.Config, log logger.Logger) (*App, error) {
	var (
		repos  Repositories
		dbConn *gorm.DB
	)
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		log.Warn("app: using in-memory store, data is lost on exit")
		repos = MemoryRepositories(inmemory.NewStore())
	case config.StoreDriverPostgres, "":
		log.Info("app: initializing database")
		conn, err := db.NewPostgres(cfg.DB, log)
		if err != nil {
			return nil, err
		}
		dbConn = conn
		repos = PostgresRepositories(dbConn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}

	identities := supabase.NewClient(cfg.Supabase)
	services, err := NewServices(cfg, repos, identities, zoom.NewClient(cfg.Zoom), log)
	if err != nil {
		_ = closeDB(dbConn)
		return nil, err
	}

	log.Info("app: initializing router")
	router := httpserver.NewRouter(cfg, services, identities, log)

	return &App{
		cfg:        cfg,
		httpServer: httpserver.New(cfg, router),
		db:         dbConn,
		services:   services,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

// Services exposes the domain services to the operator commands.
func (a *App) Services() handler.Services {
	return a.services
}

func (a *App) Close() error {
	return closeDB(a.db)
}

func closeDB(conn *gorm.DB) error {
	if conn == nil {
		return nil
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
