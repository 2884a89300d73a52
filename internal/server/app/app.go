package app

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/Vmatcha9/RTP-RecipeFinder/internal/server/config"
	"github.com/Vmatcha9/RTP-RecipeFinder/internal/server/httpapi"
	"github.com/Vmatcha9/RTP-RecipeFinder/internal/server/metrics"
	"github.com/Vmatcha9/RTP-RecipeFinder/internal/server/provider"
	"github.com/Vmatcha9/RTP-RecipeFinder/internal/server/repository/mongodb"
	"github.com/Vmatcha9/RTP-RecipeFinder/internal/server/service"
)

type App struct {
	version   string
	buildDate string
	logger    *log.Logger
	server    *http.Server
	repo      *mongodb.Repository
}

func New(version, buildDate string, logger *log.Logger) (*App, error) {
	cfg, err := config.Load(logger)
	if err != nil {
		return nil, err
	}

	connectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	repo, err := mongodb.New(connectCtx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, err
	}

	collector := metrics.NewCollector()
	prov := provider.New(cfg.ProviderBaseURL, cfg.ProviderAppID, cfg.ProviderAppKey,
		provider.WithTimeout(cfg.ProviderTimeout),
		provider.WithRateLimit(rate.Limit(cfg.ProviderRateLimit), cfg.ProviderBurst),
		provider.WithMetrics(collector),
	)
	services := service.NewServices(repo, prov, cfg)
	router := httpapi.NewRouter(services, logger, collector)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return &App{version: version, buildDate: buildDate, logger: logger, server: server, repo: repo}, nil
}

func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Printf("http server error: %v", err)
		}
	}()

	a.logger.Printf("RecipeFinder server %s (%s) listening on %s", a.version, a.buildDate, a.server.Addr)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	defer func() { _ = a.repo.Close(shutdownCtx) }()
	return a.server.Shutdown(shutdownCtx)
}
