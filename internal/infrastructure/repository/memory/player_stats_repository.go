package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/playoff-pool/internal/domain/playerstats"
	"github.com/riskibarqy/playoff-pool/internal/platform/id"
)

type PlayerStatsRepository struct {
	mu      sync.RWMutex
	idGen   id.Generator
	version playerstats.FormulaVersion
	byID    map[string]playerstats.Record
	byKey   map[playerstats.Key]string
	order   []string
}

// NewPlayerStatsRepository stores records in memory. Seeded rows are tagged with version.
func NewPlayerStatsRepository(idGen id.Generator, version playerstats.FormulaVersion) *PlayerStatsRepository {
	if idGen == nil {
		idGen = &id.Sequence{Prefix: "stat-"}
	}
	return &PlayerStatsRepository{
		idGen:   idGen,
		version: version.Normalize(),
		byID:    make(map[string]playerstats.Record),
		byKey:   make(map[playerstats.Key]string),
	}
}

func (r *PlayerStatsRepository) List(_ context.Context, filter playerstats.Filter) ([]playerstats.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]playerstats.Record, 0, len(r.order))
	for _, recordID := range r.order {
		rec := r.byID[recordID]
		if filter.Matches(rec) {
			out = append(out, cloneRecord(rec))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PlayerID != out[j].PlayerID {
			return out[i].PlayerID < out[j].PlayerID
		}
		return out[i].Round.Index() < out[j].Round.Index()
	})

	return out, nil
}

func (r *PlayerStatsRepository) GetByID(_ context.Context, recordID string) (playerstats.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[recordID]
	if !ok {
		return playerstats.Record{}, false, nil
	}
	return cloneRecord(rec), true, nil
}

func (r *PlayerStatsRepository) Upsert(_ context.Context, recordID string, line playerstats.Line) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.byID[recordID]
	if !ok {
		return false, nil
	}
	rec.Line = cloneLine(line)
	r.byID[recordID] = rec

	return true, nil
}

func (r *PlayerStatsRepository) SeedZero(_ context.Context, keys []playerstats.Key) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := 0
	for _, key := range keys {
		if _, exists := r.byKey[key]; exists {
			continue
		}
		recordID, err := r.idGen.NewID()
		if err != nil {
			return created, fmt.Errorf("generate stat record id: %w", err)
		}
		r.byID[recordID] = playerstats.Record{
			ID:             recordID,
			PlayerID:       key.PlayerID,
			Round:          key.Round,
			FormulaVersion: r.version,
		}
		r.byKey[key] = recordID
		r.order = append(r.order, recordID)
		created++
	}

	return created, nil
}

func cloneRecord(rec playerstats.Record) playerstats.Record {
	rec.Line = cloneLine(rec.Line)
	return rec
}

func cloneLine(line playerstats.Line) playerstats.Line {
	if line.PointsAllowed != nil {
		value := *line.PointsAllowed
		line.PointsAllowed = &value
	}
	return line
}
