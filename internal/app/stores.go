package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/playoff-pool/internal/config"
	"github.com/riskibarqy/playoff-pool/internal/domain/participant"
	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/playerstats"
	"github.com/riskibarqy/playoff-pool/internal/domain/roster"
	"github.com/riskibarqy/playoff-pool/internal/domain/team"
	cacherepo "github.com/riskibarqy/playoff-pool/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/playoff-pool/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/playoff-pool/internal/infrastructure/repository/postgres"
	basecache "github.com/riskibarqy/playoff-pool/internal/platform/cache"
	"github.com/riskibarqy/playoff-pool/internal/platform/id"
	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const dbPingTimeout = 5 * time.Second

type stores struct {
	teams        team.Repository
	players      player.Repository
	participants participant.Repository
	rosters      roster.Repository
	stats        playerstats.Repository
	close        func() error
}

func openStores(ctx context.Context, cfg config.Config, logger *logging.Logger) (stores, error) {
	var s stores
	var err error
	switch cfg.StoreDriver {
	case config.StorePostgres:
		s, err = openPostgresStores(ctx, cfg)
	default:
		s = openMemoryStores(cfg)
	}
	if err != nil {
		return stores{}, err
	}

	if cfg.CacheEnabled {
		shared := basecache.NewStore(cfg.CacheTTL)
		s.teams = cacherepo.NewTeamRepository(s.teams, shared)
		s.players = cacherepo.NewPlayerRepository(s.players, shared)
	}
	logger.Info("stores ready", "driver", cfg.StoreDriver, "cache_enabled", cfg.CacheEnabled, "formula", string(cfg.StatFormulaVersion))
	return s, nil
}

func openMemoryStores(cfg config.Config) stores {
	rosters := memory.NewRosterRepository()
	return stores{
		teams:        memory.NewTeamRepository(memory.SeedTeams()),
		players:      memory.NewPlayerRepository(memory.SeedPlayers()),
		participants: memory.NewParticipantRepository(rosters),
		rosters:      rosters,
		stats:        memory.NewPlayerStatsRepository(id.NewUUIDGenerator(), cfg.StatFormulaVersion),
		close:        func() error { return nil },
	}
}

func openPostgresStores(ctx context.Context, cfg config.Config) (stores, error) {
	db, err := openDB(ctx, cfg)
	if err != nil {
		return stores{}, err
	}

	return stores{
		teams:        postgres.NewTeamRepository(db),
		players:      postgres.NewPlayerRepository(db),
		participants: postgres.NewParticipantRepository(db),
		rosters:      postgres.NewRosterRepository(db),
		stats:        postgres.NewPlayerStatsRepository(db, id.NewUUIDGenerator(), cfg.StatFormulaVersion),
		close:        db.Close,
	}, nil
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.Open("postgres", normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
		db.SetMaxIdleConns(cfg.DBMaxOpenConns)
	}

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}
