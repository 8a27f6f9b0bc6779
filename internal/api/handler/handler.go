package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/limaJavier/timetabling-csp/internal/api/response"
	"github.com/limaJavier/timetabling-csp/internal/export"
	"github.com/limaJavier/timetabling-csp/internal/service"
	"github.com/limaJavier/timetabling-csp/pkg/model"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Error codes carried in the response envelope
const (
	codeMalformedInput  = 40001
	codeBadRequest      = 40002
	codeUnknownStrategy = 40401
	codeInfeasible      = 42201
	codeSearchLimit     = 50401
)

type SolverHandler struct {
	solver service.SolverService
	logger *zap.Logger
}

func NewSolverHandler(solver service.SolverService, logger *zap.Logger) *SolverHandler {
	return &SolverHandler{solver: solver, logger: logger}
}

// VerifyRequest pairs an instance, in the same document format the solve endpoint accepts, with a schedule to check.
type VerifyRequest struct {
	Input    json.RawMessage             `json:"input" binding:"required"`
	Schedule map[string]model.Assignment `json:"schedule" binding:"required"`
}

type VerifyResponse struct {
	Valid bool `json:"valid"`
}

// Solve runs one strategy over the instance in the request body
// POST /api/v1/solve/:strategy?format=xlsx
func (h *SolverHandler) Solve(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.BadRequest(c, codeBadRequest, "cannot read request body", err.Error())
		return
	}
	input, err := model.InputFromJsonBytes(body)
	if err != nil {
		h.handleError(c, err)
		return
	}

	run, err := h.solver.Solve(c.Request.Context(), c.Param("strategy"), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if !run.Feasible {
		response.WithData(c, http.StatusUnprocessableEntity, codeInfeasible, "no feasible schedule", run)
		return
	}

	if c.Query("format") == "xlsx" {
		buf, err := export.Workbook(run.Schedule, input, run.Unscheduled)
		if err != nil {
			h.logger.Error("cannot render workbook", zap.String("run_id", run.ID), zap.Error(err))
			response.InternalError(c)
			return
		}
		c.Header("Content-Disposition", "attachment; filename=timetable-"+run.ID+".xlsx")
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
		return
	}

	response.OK(c, run)
}

// Verify checks a finished schedule against every hard rule
// POST /api/v1/verify
func (h *SolverHandler) Verify(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, codeBadRequest, "invalid request", err.Error())
		return
	}

	input, err := model.InputFromJsonBytes(req.Input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	schedule := model.NewSchedule()
	for course, assignment := range req.Schedule {
		schedule.Assign(course, assignment)
	}

	valid, err := h.solver.Verify(schedule, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, VerifyResponse{Valid: valid})
}

func (h *SolverHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrMalformedInput), errors.Is(err, model.ErrInvalidConfig):
		response.BadRequest(c, codeMalformedInput, "malformed input", err.Error())
	case errors.Is(err, service.ErrUnknownStrategy):
		response.NotFound(c, codeUnknownStrategy, err.Error())
	case errors.Is(err, model.ErrSearchLimit):
		response.Error(c, http.StatusGatewayTimeout, codeSearchLimit, err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
