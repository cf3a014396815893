package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/playerstats"
	"github.com/riskibarqy/playoff-pool/internal/domain/round"
	"github.com/riskibarqy/playoff-pool/internal/domain/scoring"
	"github.com/riskibarqy/playoff-pool/internal/domain/team"
	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
)

// SheetArchiver stores an exported sheet and returns where it was written.
type SheetArchiver interface {
	Archive(ctx context.Context, key string, body []byte) (string, error)
}

type StatSheetService struct {
	playerRepo player.Repository
	teamRepo   team.Repository
	statsRepo  playerstats.Repository
	scorer     *ScoringService
	archiver   SheetArchiver
	logger     *logging.Logger
	now        func() time.Time
}

func NewStatSheetService(
	playerRepo player.Repository,
	teamRepo team.Repository,
	statsRepo playerstats.Repository,
	scorer *ScoringService,
	archiver SheetArchiver,
	logger *logging.Logger,
) *StatSheetService {
	if logger == nil {
		logger = logging.Default()
	}

	return &StatSheetService{
		playerRepo: playerRepo,
		teamRepo:   teamRepo,
		statsRepo:  statsRepo,
		scorer:     scorer,
		archiver:   archiver,
		logger:     logger,
		now:        time.Now,
	}
}

type sheetColumn struct {
	name string
	get  func(*playerstats.Line) float64
	set  func(*playerstats.Line, float64)
}

// sheetColumns are the stat fields of the combined schema, in export order.
var sheetColumns = []sheetColumn{
	{"catches_sacks", func(l *playerstats.Line) float64 { return l.CatchesSacks }, func(l *playerstats.Line, v float64) { l.CatchesSacks = v }},
	{"pass_yards", func(l *playerstats.Line) float64 { return l.PassYards }, func(l *playerstats.Line, v float64) { l.PassYards = v }},
	{"rush_rec_fg_yards", func(l *playerstats.Line) float64 { return l.RushRecFGYards }, func(l *playerstats.Line, v float64) { l.RushRecFGYards = v }},
	{"tds", func(l *playerstats.Line) float64 { return l.TDs }, func(l *playerstats.Line, v float64) { l.TDs = v }},
	{"turnovers", func(l *playerstats.Line) float64 { return l.Turnovers }, func(l *playerstats.Line, v float64) { l.Turnovers = v }},
	{"two_pt", func(l *playerstats.Line) float64 { return l.TwoPt }, func(l *playerstats.Line, v float64) { l.TwoPt = v }},
	{"def_turnovers_misc", func(l *playerstats.Line) float64 { return l.DefTurnoversMisc }, func(l *playerstats.Line, v float64) { l.DefTurnoversMisc = v }},
	{"return_yards", func(l *playerstats.Line) float64 { return l.ReturnYards }, func(l *playerstats.Line, v float64) { l.ReturnYards = v }},
}

const (
	sheetColPlayer   = "Player"
	sheetColTeam     = "Team"
	sheetColPosition = "Position"
	sheetColScore    = "Score"
)

// SheetHeader is the export header row.
func SheetHeader() []string {
	header := []string{sheetColPlayer, sheetColTeam, sheetColPosition}
	for _, col := range sheetColumns {
		header = append(header, col.name)
	}
	return append(header, sheetColScore)
}

type ExportResult struct {
	Round      round.Round `json:"round"`
	Rows       int         `json:"rows"`
	ArchiveURL string      `json:"archive_url,omitempty"`
}

// Export writes the round's stat sheet as CSV, one row per player with a record.
// When an archiver is configured the sheet is also archived; an archive failure is
// logged and does not fail the export.
func (s *StatSheetService) Export(ctx context.Context, capability Capability, rd round.Round, w io.Writer) (ExportResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatSheetService.Export")
	defer span.End()

	if err := capability.require("export stat sheet"); err != nil {
		return ExportResult{}, err
	}
	if !rd.Valid() {
		return ExportResult{}, fmt.Errorf("%w: %w: %q", ErrInvalidInput, round.ErrUnknownRound, rd)
	}

	players, teamShort, err := s.loadSheetPlayers(ctx)
	if err != nil {
		return ExportResult{}, err
	}
	records, err := s.statsRepo.List(ctx, playerstats.Filter{Round: rd})
	if err != nil {
		return ExportResult{}, storeError("list stats", err)
	}
	byPlayer := make(map[string]playerstats.Record, len(records))
	for _, rec := range records {
		byPlayer[rec.PlayerID] = rec
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	cw := csv.NewWriter(buf)
	if err := cw.Write(SheetHeader()); err != nil {
		return ExportResult{}, fmt.Errorf("write sheet header: %w", err)
	}
	rows := 0
	for _, p := range players {
		rec, ok := byPlayer[p.ID]
		if !ok {
			continue
		}
		row := []string{p.Name, teamShort[p.TeamID], string(p.Position)}
		for _, col := range sheetColumns {
			row = append(row, formatStat(col.get(&rec.Line)))
		}
		row = append(row, strconv.FormatFloat(scoring.Score(rec), 'f', 2, 64))
		if err := cw.Write(row); err != nil {
			return ExportResult{}, fmt.Errorf("write sheet row: %w", err)
		}
		rows++
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return ExportResult{}, fmt.Errorf("flush sheet: %w", err)
	}

	if _, err := w.Write(buf.B); err != nil {
		return ExportResult{}, fmt.Errorf("write sheet: %w", err)
	}

	result := ExportResult{Round: rd, Rows: rows}
	if s.archiver != nil {
		key := fmt.Sprintf("stat-sheets/%s/%s.csv", rd, s.now().UTC().Format("20060102T150405Z"))
		body := append([]byte(nil), buf.B...)
		location, err := s.archiver.Archive(ctx, key, body)
		if err != nil {
			s.logger.WarnContext(ctx, "stat sheet archive failed", "round", string(rd), "error", err)
		} else {
			result.ArchiveURL = location
		}
	}
	return result, nil
}

type ImportResult struct {
	Round         round.Round         `json:"round"`
	Updated       int                 `json:"updated"`
	Skipped       []string            `json:"skipped"`
	Recalculation RecalculationResult `json:"recalculation"`
}

// Import overwrites stat fields from a CSV sheet. Rows match players by display
// name; only the stat columns present in the header are written. A name shared by
// two players or listed twice rejects the whole sheet before anything is written.
// Unknown names are skipped and reported.
func (s *StatSheetService) Import(ctx context.Context, capability Capability, rd round.Round, r io.Reader) (ImportResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatSheetService.Import")
	defer span.End()

	if err := capability.require("import stat sheet"); err != nil {
		return ImportResult{}, err
	}
	if !rd.Valid() {
		return ImportResult{}, fmt.Errorf("%w: %w: %q", ErrInvalidInput, round.ErrUnknownRound, rd)
	}

	rows, err := parseSheet(r)
	if err != nil {
		return ImportResult{}, err
	}

	players, _, err := s.loadSheetPlayers(ctx)
	if err != nil {
		return ImportResult{}, err
	}
	byName := make(map[string][]player.Player, len(players))
	for _, p := range players {
		key := nameKey(p.Name)
		byName[key] = append(byName[key], p)
	}

	result := ImportResult{Round: rd, Skipped: []string{}}
	matched := make(map[string]sheetRow, len(rows))
	seen := make(map[string]int, len(rows))
	for _, row := range rows {
		key := nameKey(row.name)
		if prev, dup := seen[key]; dup {
			return ImportResult{}, fmt.Errorf("%w: %q appears on lines %d and %d", ErrDuplicatePlayerName, row.name, prev, row.line)
		}
		seen[key] = row.line

		candidates := byName[key]
		switch len(candidates) {
		case 0:
			result.Skipped = append(result.Skipped, row.name)
		case 1:
			matched[candidates[0].ID] = row
		default:
			return ImportResult{}, fmt.Errorf("%w: %q matches %d players", ErrDuplicatePlayerName, row.name, len(candidates))
		}
	}

	if len(matched) > 0 {
		updated, err := s.applySheet(ctx, rd, matched)
		if err != nil {
			return ImportResult{}, err
		}
		result.Updated = updated
	}

	if s.scorer != nil {
		recalc, err := s.scorer.RecalculateRound(ctx, capability, rd)
		if err != nil {
			return result, fmt.Errorf("recalculate after import: %w", err)
		}
		result.Recalculation = recalc
	}

	s.logger.InfoContext(ctx, "stat sheet imported",
		"round", string(rd),
		"updated", result.Updated,
		"skipped", len(result.Skipped),
	)
	return result, nil
}

func (s *StatSheetService) applySheet(ctx context.Context, rd round.Round, matched map[string]sheetRow) (int, error) {
	ids := make([]string, 0, len(matched))
	keys := make([]playerstats.Key, 0, len(matched))
	for playerID := range matched {
		ids = append(ids, playerID)
		keys = append(keys, playerstats.Key{PlayerID: playerID, Round: rd})
	}
	sort.Strings(ids)

	if _, err := s.statsRepo.SeedZero(ctx, keys); err != nil {
		return 0, storeError("seed stat rows", err)
	}
	records, err := s.statsRepo.List(ctx, playerstats.Filter{Round: rd, PlayerIDs: ids})
	if err != nil {
		return 0, storeError("list stats", err)
	}

	// Every line is checked before the first write so a bad row leaves the round untouched.
	type pendingLine struct {
		recordID string
		line     playerstats.Line
	}
	pending := make([]pendingLine, 0, len(records))
	for _, rec := range records {
		row, ok := matched[rec.PlayerID]
		if !ok {
			continue
		}
		line := rec.Line
		for idx, value := range row.values {
			sheetColumns[idx].set(&line, value)
		}
		if err := validateLine(line); err != nil {
			return 0, fmt.Errorf("line %d: %w", row.line, err)
		}
		pending = append(pending, pendingLine{recordID: rec.ID, line: line})
	}

	updated := 0
	for _, item := range pending {
		found, err := s.statsRepo.Upsert(ctx, item.recordID, item.line)
		if err != nil {
			return updated, storeError("upsert stat record", err)
		}
		if found {
			updated++
		}
	}
	return updated, nil
}

func (s *StatSheetService) loadSheetPlayers(ctx context.Context) ([]player.Player, map[string]string, error) {
	players, err := s.playerRepo.List(ctx, player.Filter{})
	if err != nil {
		return nil, nil, storeError("list players", err)
	}
	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, nil, storeError("list teams", err)
	}

	seed := make(map[string]int, len(teams))
	short := make(map[string]string, len(teams))
	for _, t := range teams {
		seed[t.ID] = t.Seed
		short[t.ID] = t.Short
	}
	sort.SliceStable(players, func(i, j int) bool {
		if seed[players[i].TeamID] != seed[players[j].TeamID] {
			return seed[players[i].TeamID] < seed[players[j].TeamID]
		}
		return playerLess(players[i], players[j])
	})
	return players, short, nil
}

type sheetRow struct {
	line   int
	name   string
	values map[int]float64
}

// parseSheet reads the header and rows. Column names match case-insensitively;
// Team, Position and Score are informational and ignored.
func parseSheet(r io.Reader) ([]sheetRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: stat sheet is empty", ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet header: %v", ErrInvalidInput, err)
	}

	nameIdx := -1
	statIdx := make(map[int]int)
	for idx, raw := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff")))
		if name == strings.ToLower(sheetColPlayer) {
			nameIdx = idx
			continue
		}
		for colIdx, col := range sheetColumns {
			if name == col.name {
				statIdx[idx] = colIdx
			}
		}
	}
	if nameIdx < 0 {
		return nil, fmt.Errorf("%w: stat sheet has no %s column", ErrInvalidInput, sheetColPlayer)
	}

	var rows []sheetRow
	for lineNo := 2; ; lineNo++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read sheet line %d: %v", ErrInvalidInput, lineNo, err)
		}
		if nameIdx >= len(record) || strings.TrimSpace(record[nameIdx]) == "" {
			continue
		}

		row := sheetRow{line: lineNo, name: strings.TrimSpace(record[nameIdx]), values: make(map[int]float64, len(statIdx))}
		for fieldIdx, colIdx := range statIdx {
			if fieldIdx >= len(record) {
				continue
			}
			raw := strings.TrimSpace(record[fieldIdx])
			if raw == "" {
				row.values[colIdx] = 0
				continue
			}
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil || !isFinite(value) {
				return nil, fmt.Errorf("%w: line %d column %s: %q is not a number", ErrInvalidInput, lineNo, sheetColumns[colIdx].name, raw)
			}
			row.values[colIdx] = value
		}

		var line playerstats.Line
		for colIdx, value := range row.values {
			sheetColumns[colIdx].set(&line, value)
		}
		if err := validateLine(line); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func nameKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func formatStat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
