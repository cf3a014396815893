package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/playerstats"
	"github.com/riskibarqy/playoff-pool/internal/domain/round"
	"github.com/riskibarqy/playoff-pool/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const maxStatSheetBytes = 2 << 20

type adminLoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type eliminationRequest struct {
	EliminatedIn *string `json:"eliminated_in"`
}

type lockRequest struct {
	Locked *bool `json:"locked" validate:"required"`
}

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdminLogin")
	defer span.End()

	var req adminLoginRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	token, err := h.authService.Login(ctx, req.Username, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "admin login failed", "username", req.Username, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, token)
}

func (h *Handler) UpdateStatLine(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateStatLine")
	defer span.End()

	var line playerstats.Line
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&line); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}

	recordID := r.PathValue("statID")
	result, err := h.adminService.UpdateStatLine(ctx, capabilityFromContext(ctx), recordID, line)
	if err != nil {
		h.logger.WarnContext(ctx, "update stat line failed", "stat_id", recordID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, statUpdateDTO{
		Stat:          statToDTO(result.Record, player.Player{ID: result.Record.PlayerID}, result.Score),
		Recalculation: result.Recalculation,
	})
}

func (h *Handler) ExportStatSheet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ExportStatSheet")
	defer span.End()

	rd, err := pathRound(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	result, err := h.sheetService.Export(ctx, capabilityFromContext(ctx), rd, buf)
	if err != nil {
		h.logger.WarnContext(ctx, "export stat sheet failed", "round", string(rd), "error", err)
		writeError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "stats-"+string(rd)+".csv"))
	w.Header().Set("X-Sheet-Rows", strconv.Itoa(result.Rows))
	if result.ArchiveURL != "" {
		w.Header().Set("X-Archive-Location", result.ArchiveURL)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.B)
}

// ImportStatSheet takes the CSV sheet as the raw request body.
func (h *Handler) ImportStatSheet(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ImportStatSheet")
	defer span.End()

	rd, err := pathRound(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	body := http.MaxBytesReader(w, r.Body, maxStatSheetBytes)
	result, err := h.sheetService.Import(ctx, capabilityFromContext(ctx), rd, body)
	if err != nil {
		h.logger.WarnContext(ctx, "import stat sheet failed", "round", string(rd), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) SetElimination(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetElimination")
	defer span.End()

	var req eliminationRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}

	var eliminatedIn *round.Round
	if req.EliminatedIn != nil && strings.TrimSpace(*req.EliminatedIn) != "" {
		rd, err := round.Parse(*req.EliminatedIn)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: %w", usecase.ErrInvalidInput, err))
			return
		}
		eliminatedIn = &rd
	}

	teamID := r.PathValue("teamID")
	item, err := h.adminService.SetElimination(ctx, capabilityFromContext(ctx), teamID, eliminatedIn)
	if err != nil {
		h.logger.WarnContext(ctx, "set elimination failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamToDTO(item))
}

func (h *Handler) SetParticipantLock(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetParticipantLock")
	defer span.End()

	req, err := h.decodeLock(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	participantID := r.PathValue("participantID")
	if err := h.adminService.SetLock(ctx, capabilityFromContext(ctx), participantID, *req.Locked); err != nil {
		h.logger.WarnContext(ctx, "set participant lock failed", "participant_id", participantID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"participant_id": participantID, "locked": *req.Locked})
}

func (h *Handler) SetAllParticipantLocks(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetAllParticipantLocks")
	defer span.End()

	req, err := h.decodeLock(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	count, err := h.adminService.SetLockAll(ctx, capabilityFromContext(ctx), *req.Locked)
	if err != nil {
		h.logger.WarnContext(ctx, "set all participant locks failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, lockAllDTO{Locked: *req.Locked, Updated: count})
}

func (h *Handler) decodeLock(r *http.Request) (lockRequest, error) {
	var req lockRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return lockRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	if err := h.validateRequest(r.Context(), req); err != nil {
		return lockRequest{}, err
	}
	return req, nil
}

func (h *Handler) DeleteParticipant(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteParticipant")
	defer span.End()

	participantID := r.PathValue("participantID")
	if err := h.adminService.DeleteParticipant(ctx, capabilityFromContext(ctx), participantID); err != nil {
		h.logger.WarnContext(ctx, "delete participant failed", "participant_id", participantID, "error", err)
		writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SeedStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SeedStats")
	defer span.End()

	created, err := h.adminService.SeedStats(ctx, capabilityFromContext(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "seed stats failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, seedStatsDTO{Created: created})
}

func (h *Handler) RecalculateRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecalculateRound")
	defer span.End()

	rd, err := pathRound(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.scoringService.RecalculateRound(ctx, capabilityFromContext(ctx), rd)
	if err != nil {
		h.logger.ErrorContext(ctx, "recalculate round failed", "round", string(rd), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RecalculateAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecalculateAll")
	defer span.End()

	results, err := h.scoringService.RecalculateAll(ctx, capabilityFromContext(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "recalculate all failed", "completed_rounds", len(results), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, results)
}
