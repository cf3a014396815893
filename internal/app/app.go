package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/riskibarqy/playoff-pool/internal/config"
	"github.com/riskibarqy/playoff-pool/internal/infrastructure/archive"
	"github.com/riskibarqy/playoff-pool/internal/interfaces/httpapi"
	"github.com/riskibarqy/playoff-pool/internal/observability"
	"github.com/riskibarqy/playoff-pool/internal/platform/id"
	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
	"github.com/riskibarqy/playoff-pool/internal/usecase"
)

// App is the wired HTTP service. Run the hub alongside the server and call Close
// after the server has shut down.
type App struct {
	Server  *http.Server
	Hub     *httpapi.LeaderboardHub
	Metrics *observability.Metrics

	closers []func(context.Context) error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a := &App{closers: []func(context.Context) error{func(context.Context) error { return st.close() }}}

	metrics, metricsHandler, shutdownMetrics, err := observability.SetupMetrics(ctx, cfg.MetricsEnabled, cfg.ServiceName)
	if err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("setup metrics: %w", err)
	}
	a.Metrics = metrics
	a.closers = append(a.closers, shutdownMetrics)

	var sheetArchiver usecase.SheetArchiver
	if cfg.ArchiveEnabled {
		archiver, err := archive.NewObjectArchiver(ctx, archive.Config{
			Endpoint:        cfg.ArchiveEndpoint,
			AccessKeyID:     cfg.ArchiveAccessKeyID,
			SecretAccessKey: cfg.ArchiveSecretAccessKey,
			Bucket:          cfg.ArchiveBucket,
			Region:          cfg.ArchiveRegion,
			PublicBaseURL:   cfg.ArchivePublicBaseURL,
			CircuitBreaker:  cfg.ArchiveCircuit,
		}, logger)
		if err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("setup stat sheet archive: %w", err)
		}
		sheetArchiver = archiver
	}

	a.Hub = httpapi.NewLeaderboardHub(logger, cfg.CORSAllowedOrigins)
	scoringSvc := usecase.NewScoringService(st.participants, st.rosters, st.stats, st.teams, logger,
		usecase.WithRecalcWorkers(cfg.RecalcMaxWorkers),
		usecase.WithRecalculationRecorder(metrics),
		usecase.WithLeaderboardNotifier(a.Hub),
	)
	a.Hub.SetSource(scoringSvc)

	authSvc := usecase.NewAuthService(usecase.AuthConfig{
		Username:     cfg.AdminUsername,
		PasswordHash: cfg.AdminPasswordHash,
		TokenSecret:  cfg.AdminTokenSecret,
		TokenTTL:     cfg.AdminTokenTTL,
	})
	if !cfg.AdminEnabled() {
		logger.Warn("admin login disabled, ADMIN_USERNAME is not set")
	}

	handler := httpapi.NewHandler(
		usecase.NewCatalogService(st.teams, st.players, st.stats),
		usecase.NewSignupService(st.participants, st.rosters, st.stats, st.players, id.NewUUIDGenerator(), logger),
		scoringSvc,
		usecase.NewAdminService(st.teams, st.players, st.participants, st.stats, scoringSvc, logger),
		usecase.NewStatSheetService(st.players, st.teams, st.stats, scoringSvc, sheetArchiver, logger),
		authSvc,
		logger,
	)
	router := httpapi.NewRouter(handler, logger, httpapi.RouterOptions{
		Auth:               authSvc,
		Hub:                a.Hub,
		Recorder:           metrics,
		MetricsHandler:     metricsHandler,
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	a.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return a, nil
}

// Close releases the store and flushes metrics, in reverse order of setup.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
