package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tracecalc/internal/domain/dto"
	"github.com/guttosm/tracecalc/internal/logger"
	"github.com/guttosm/tracecalc/internal/metrics"
	"github.com/guttosm/tracecalc/internal/middleware"
	"github.com/guttosm/tracecalc/internal/service"
)

const (
	invalidInputMessage      = "Invalid input: empty list or negative numbers"
	calculationFailedMessage = "Calculation failed"
	invalidBodyMessage       = "invalid request body"
)

// CalculationRecorder receives the outcome of every calculation request.
type CalculationRecorder interface {
	RecordCalculation(outcome string, count int)
}

// Handler provides the HTTP handler for the calculation endpoint.
//
// Responsibilities:
//   - Decode the JSON array of integers
//   - Run validation, then aggregation, through the service layer
//   - Translate the result or failure into the response envelope
type Handler struct {
	svc      service.Calculator
	recorder CalculationRecorder
}

// NewHandler constructs a new Handler instance.
//
// Parameters:
//   - svc (service.Calculator): validation and aggregation logic.
//   - recorder (CalculationRecorder): outcome sink, usually *metrics.Metrics; may be nil.
func NewHandler(svc service.Calculator, recorder CalculationRecorder) *Handler {
	return &Handler{svc: svc, recorder: recorder}
}

// Calculate handles POST /calculate requests.
//
// Responses:
//   - 200 OK: {"status": "success", "data": {"total", "average", "count"}}.
//   - 400 Bad Request: empty list or negative numbers.
//   - 422 Unprocessable Entity: body is not a JSON array of integers.
//   - 500 Internal Server Error: aggregation failed.
//
// Calculate godoc
// @Summary      Sum and average a list of integers
// @Description  Validates the list (non-empty, no negatives) and returns its total, truncated average and count
// @Tags         calculate
// @Accept       json
// @Produce      json
// @Param        numbers  body      []int                    true  "Integers to aggregate"
// @Success      200      {object}  dto.CalculationResponse  "Success"
// @Failure      400      {object}  dto.ErrorResponse        "Invalid input"
// @Failure      422      {object}  dto.ErrorResponse        "Malformed body"
// @Failure      500      {object}  dto.ErrorResponse        "Calculation failed"
// @Router       /calculate [post]
func (h *Handler) Calculate(c *gin.Context) {
	ctx := c.Request.Context()
	log := logger.NamedCtx(ctx, "api")

	// ─── Decode body ──────────────────────────────────────────
	var numbers []int64
	if err := c.ShouldBindJSON(&numbers); err != nil {
		middleware.AbortWithError(c, http.StatusUnprocessableEntity, invalidBodyMessage, err)
		return
	}
	log.Info().Int("count", len(numbers)).Msg("calculate endpoint called")

	// ─── Validate ─────────────────────────────────────────────
	if !h.svc.Validate(ctx, numbers) {
		h.record(metrics.OutcomeInvalid, len(numbers))
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(invalidInputMessage, nil))
		return
	}

	// ─── Aggregate ────────────────────────────────────────────
	result, err := h.svc.Aggregate(ctx, numbers)
	if err != nil {
		log.Error().Err(err).Msg("error in calculation")
		h.record(metrics.OutcomeFailed, len(numbers))
		middleware.AbortWithError(c, http.StatusInternalServerError, calculationFailedMessage, err)
		return
	}

	// ─── Respond ──────────────────────────────────────────────
	log.Info().Msg("calculation completed successfully")
	h.record(metrics.OutcomeSuccess, len(numbers))
	c.JSON(http.StatusOK, dto.NewCalculationResponse(result))
}

func (h *Handler) record(outcome string, count int) {
	if h.recorder != nil {
		h.recorder.RecordCalculation(outcome, count)
	}
}
