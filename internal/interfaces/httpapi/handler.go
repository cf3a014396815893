package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/playoff-pool/internal/domain/round"
	"github.com/riskibarqy/playoff-pool/internal/platform/logging"
	"github.com/riskibarqy/playoff-pool/internal/usecase"
)

type Handler struct {
	catalogService *usecase.CatalogService
	signupService  *usecase.SignupService
	scoringService *usecase.ScoringService
	adminService   *usecase.AdminService
	sheetService   *usecase.StatSheetService
	authService    *usecase.AuthService
	logger         *logging.Logger
	validator      *validator.Validate
}

func NewHandler(
	catalogService *usecase.CatalogService,
	signupService *usecase.SignupService,
	scoringService *usecase.ScoringService,
	adminService *usecase.AdminService,
	sheetService *usecase.StatSheetService,
	authService *usecase.AuthService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		catalogService: catalogService,
		signupService:  signupService,
		scoringService: scoringService,
		adminService:   adminService,
		sheetService:   sheetService,
		authService:    authService,
		logger:         logger,
		validator:      validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func pathRound(r *http.Request) (round.Round, error) {
	rd, err := round.Parse(r.PathValue("round"))
	if err != nil {
		return "", fmt.Errorf("%w: %w", usecase.ErrInvalidInput, err)
	}
	return rd, nil
}
