package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/roster"
	"github.com/riskibarqy/playoff-pool/internal/usecase"
)

func (h *Handler) ListSlots(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSlots")
	defer span.End()

	slots := h.catalogService.Slots()
	items := make([]slotDTO, 0, len(slots))
	for _, s := range slots {
		items = append(items, slotToDTO(s))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	teams, err := h.catalogService.ListTeams(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamDTO, 0, len(teams))
	for _, t := range teams {
		items = append(items, teamToDTO(t))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

// ListPlayers filters by ?team=, ?position= (repeatable or comma separated) and
// ?slot=, which narrows to the positions that slot accepts.
func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	query := r.URL.Query()
	filter := player.Filter{TeamID: strings.TrimSpace(query.Get("team"))}
	for _, raw := range query["position"] {
		for _, part := range strings.Split(raw, ",") {
			pos := player.Position(strings.ToUpper(strings.TrimSpace(part)))
			if pos == "" {
				continue
			}
			if !pos.Valid() {
				writeError(ctx, w, fmt.Errorf("%w: unknown position %q", usecase.ErrInvalidInput, part))
				return
			}
			filter.Positions = append(filter.Positions, pos)
		}
	}
	slot := roster.SlotKey(strings.ToUpper(strings.TrimSpace(query.Get("slot"))))

	players, err := h.catalogService.ListPlayers(ctx, filter, slot)
	if err != nil {
		h.logger.WarnContext(ctx, "list players failed", "team", filter.TeamID, "slot", string(slot), "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]playerDTO, 0, len(players))
	for _, p := range players {
		items = append(items, playerToDTO(p))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListRoundStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRoundStats")
	defer span.End()

	rd, err := pathRound(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	stats, err := h.catalogService.ListRoundStats(ctx, rd)
	if err != nil {
		h.logger.WarnContext(ctx, "list round stats failed", "round", string(rd), "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]playerStatDTO, 0, len(stats))
	for _, s := range stats {
		items = append(items, statToDTO(s.Record, s.Player, s.Score))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
