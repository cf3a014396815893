package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/playoff-pool/internal/domain/draft"
	"github.com/riskibarqy/playoff-pool/internal/usecase"
)

type draftCheckRequest struct {
	Draft draft.Snapshot `json:"draft"`
}

type signupRequest struct {
	Name  string         `json:"name" validate:"required,max=80"`
	Draft draft.Snapshot `json:"draft"`
}

// ValidateDraft runs the signup checks against a draft snapshot without writing.
func (h *Handler) ValidateDraft(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ValidateDraft")
	defer span.End()

	var req draftCheckRequest
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

	picks, err := h.signupService.Check(ctx, req.Draft)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, draftCheckDTO{Valid: true, Roster: rosterToDTO(picks)})
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Signup")
	defer span.End()

	var req signupRequest
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

	result, err := h.signupService.SubmitSnapshot(ctx, req.Name, req.Draft)
	if err != nil {
		var partial *usecase.PartialWriteError
		if errors.As(err, &partial) {
			h.logger.ErrorContext(ctx, "signup partially written", "participant_id", partial.ParticipantID, "step", partial.Step, "error", err)
		} else {
			h.logger.WarnContext(ctx, "signup rejected", "error", err)
		}
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, signupDTO{
		Participant: participantToDTO(result.Participant),
		Roster:      rosterToDTO(result.Roster),
		SeededStats: result.SeededStats,
	})
}
