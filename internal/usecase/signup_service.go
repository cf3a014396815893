package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/playoff-pool/internal/domain/draft"
	"github.com/riskibarqy/playoff-pool/internal/domain/participant"
	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/playerstats"
	"github.com/riskibarqy/playoff-pool/internal/domain/roster"
	"github.com/riskibarqy/playoff-pool/internal/domain/round"
	"github.com/riskibarqy/playoff-pool/internal/platform/id"
	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
)

type SignupService struct {
	participantRepo participant.Repository
	rosterRepo      roster.Repository
	statsRepo       playerstats.Repository
	playerRepo      player.Repository
	idGen           id.Generator
	logger          *logging.Logger
	now             func() time.Time
}

func NewSignupService(
	participantRepo participant.Repository,
	rosterRepo roster.Repository,
	statsRepo playerstats.Repository,
	playerRepo player.Repository,
	idGen id.Generator,
	logger *logging.Logger,
) *SignupService {
	if logger == nil {
		logger = logging.Default()
	}

	return &SignupService{
		participantRepo: participantRepo,
		rosterRepo:      rosterRepo,
		statsRepo:       statsRepo,
		playerRepo:      playerRepo,
		idGen:           idGen,
		logger:          logger,
		now:             time.Now,
	}
}

// SignupResult is the persisted participant plus the number of stat rows the signup seeded.
type SignupResult struct {
	Participant participant.Participant
	Roster      roster.Roster
	SeededStats int
}

// Check restores a draft snapshot and runs every check Submit would run, without writing.
func (s *SignupService) Check(ctx context.Context, snap draft.Snapshot) (roster.Roster, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SignupService.Check")
	defer span.End()

	session, err := draft.Restore(snap)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return s.verify(ctx, session)
}

// SubmitSnapshot restores a snapshot and submits it.
func (s *SignupService) SubmitSnapshot(ctx context.Context, name string, snap draft.Snapshot) (SignupResult, error) {
	session, err := draft.Restore(snap)
	if err != nil {
		return SignupResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return s.Submit(ctx, name, session)
}

// Submit validates the session and writes the participant, its roster rows and any
// missing zero stat rows, in that order. Validation failures write nothing. A failure
// after the participant exists returns a *PartialWriteError.
func (s *SignupService) Submit(ctx context.Context, name string, session *draft.Session) (SignupResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SignupService.Submit")
	defer span.End()

	name, err := participant.NormalizeName(name)
	if err != nil {
		return SignupResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if session == nil {
		return SignupResult{}, fmt.Errorf("%w: draft session is required", ErrInvalidInput)
	}

	picks, err := s.verify(ctx, session)
	if err != nil {
		return SignupResult{}, err
	}

	participantID, err := s.idGen.NewID()
	if err != nil {
		return SignupResult{}, fmt.Errorf("generate participant id: %w", err)
	}
	item := participant.Participant{
		ID:          participantID,
		Name:        name,
		RoundScores: map[round.Round]float64{},
		CreatedAt:   s.now().UTC(),
	}
	if err := s.participantRepo.Create(ctx, item); err != nil {
		return SignupResult{}, storeError("create participant", err)
	}

	if err := s.rosterRepo.CreateRows(ctx, participantID, picks); err != nil {
		s.logger.ErrorContext(ctx, "signup roster write failed", "participant_id", participantID, "error", err)
		return SignupResult{}, &PartialWriteError{ParticipantID: participantID, Step: "roster rows", Err: storeError("create roster rows", err)}
	}

	seeded, err := s.statsRepo.SeedZero(ctx, playerstats.KeysFor(picks.PlayerIDs()))
	if err != nil {
		s.logger.ErrorContext(ctx, "signup stat seeding failed", "participant_id", participantID, "error", err)
		return SignupResult{}, &PartialWriteError{ParticipantID: participantID, Step: "stat seeding", Err: storeError("seed stat rows", err)}
	}

	s.logger.InfoContext(ctx, "participant signed up",
		"participant_id", participantID,
		"seeded_stats", seeded,
	)
	return SignupResult{Participant: item, Roster: picks, SeededStats: seeded}, nil
}

// verify runs the roster validator, then checks every pick against the stored player
// so a forged snapshot cannot smuggle in a wrong team or position.
func (s *SignupService) verify(ctx context.Context, session *draft.Session) (roster.Roster, error) {
	picks := session.Roster()
	if err := roster.Validate(picks); err != nil {
		return nil, err
	}
	if err := roster.ValidateEligibility(picks); err != nil {
		return nil, err
	}

	stored, err := s.playerRepo.GetByIDs(ctx, picks.PlayerIDs())
	if err != nil {
		return nil, storeError("get drafted players", err)
	}
	byID := make(map[string]player.Player, len(stored))
	for _, p := range stored {
		byID[p.ID] = p
	}

	verified := make(roster.Roster, len(picks))
	for key, pick := range picks {
		p, ok := byID[pick.ID]
		if !ok {
			return nil, fmt.Errorf("%w: player %s not found", ErrInvalidInput, pick.ID)
		}
		if p.TeamID != pick.TeamID || p.Position != pick.Position {
			return nil, fmt.Errorf("%w: player %s does not match stored team or position", ErrInvalidInput, pick.ID)
		}
		verified[key] = p
	}
	return verified, nil
}
