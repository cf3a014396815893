package httpapi

import (
	"net/http"
)

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Leaderboard")
	defer span.End()

	standings, err := h.scoringService.Leaderboard(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "leaderboard failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingsToDTO(standings))
}

func (h *Handler) RoundRanking(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RoundRanking")
	defer span.End()

	rd, err := pathRound(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	standings, err := h.scoringService.RoundRanking(ctx, rd)
	if err != nil {
		h.logger.ErrorContext(ctx, "round ranking failed", "round", string(rd), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingsToDTO(standings))
}

func (h *Handler) ParticipantBreakdown(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ParticipantBreakdown")
	defer span.End()

	participantID := r.PathValue("participantID")
	breakdown, err := h.scoringService.ParticipantBreakdown(ctx, participantID)
	if err != nil {
		h.logger.WarnContext(ctx, "participant breakdown failed", "participant_id", participantID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, breakdownToDTO(breakdown))
}
