package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hearthhub/configflow/internal/definition"
	"github.com/hearthhub/configflow/internal/engine"
	"github.com/hearthhub/configflow/internal/store"
	"github.com/hearthhub/configflow/pkg/api"
)

var (
	ErrListFlows   = errors.New("failed to list flows")
	ErrGetFlow     = errors.New("failed to get flow")
	ErrListEntries = errors.New("failed to list entries")
)

func (s *Server) listFlows(c *gin.Context) {
	flows, err := s.engine.ListFlows(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %v", ErrListFlows, err),
			Status: http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, api.FlowsListResponse{
		Flows: flows,
		Count: len(flows),
	})
}

func (s *Server) startFlow(c *gin.Context) {
	var req api.StartFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %v", ErrInvalidJSON, err),
			Status: http.StatusBadRequest,
		})
		return
	}

	domain := api.SanitizeDomain(req.Domain)
	if domain == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  "Valid domain is required",
			Status: http.StatusBadRequest,
		})
		return
	}

	flow, result, err := s.engine.StartFlow(c.Request.Context(), domain)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusBadRequest,
		})
		return
	}

	c.JSON(http.StatusCreated, api.FlowStartedResponse{
		FlowID: flow.ID,
		Result: result,
	})
}

func (s *Server) getFlow(c *gin.Context) {
	flowID := api.FlowID(c.Param("flowID"))

	flow, err := s.engine.GetFlow(c.Request.Context(), flowID)
	if err == nil {
		c.JSON(http.StatusOK, flow)
		return
	}

	if errors.Is(err, engine.ErrFlowNotFound) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %s", err.Error(), flowID),
			Status: http.StatusNotFound,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, api.ErrorResponse{
		Error:  fmt.Sprintf("%s: %v", ErrGetFlow, err),
		Status: http.StatusInternalServerError,
	})
}

func (s *Server) advanceFlow(c *gin.Context) {
	var req api.AdvanceFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %v", ErrInvalidJSON, err),
			Status: http.StatusBadRequest,
		})
		return
	}

	flowID := api.FlowID(c.Param("flowID"))
	result, err := s.engine.AdvanceFlow(c.Request.Context(), flowID, req.Input)
	s.respondStepResult(c, flowID, result, err)
}

func (s *Server) confirmFlow(c *gin.Context) {
	var req api.ConfirmFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %v", ErrInvalidJSON, err),
			Status: http.StatusBadRequest,
		})
		return
	}

	flowID := api.FlowID(c.Param("flowID"))
	result, err := s.engine.ConfirmFlow(
		c.Request.Context(), flowID, req.Fields,
	)
	s.respondStepResult(c, flowID, result, err)
}

// handleCallback completes an external step. The caller is the hub or an
// OAuth redirect target; its payload is merged as step input
func (s *Server) handleCallback(c *gin.Context) {
	var input api.Data
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %v", ErrInvalidJSON, err),
			Status: http.StatusBadRequest,
		})
		return
	}

	flowID := api.FlowID(c.Param("flowID"))
	result, err := s.engine.AdvanceFlow(c.Request.Context(), flowID, input)
	s.respondStepResult(c, flowID, result, err)
}

func (s *Server) nextStep(c *gin.Context) {
	var req api.NextStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %v", ErrInvalidJSON, err),
			Status: http.StatusBadRequest,
		})
		return
	}

	flowID := api.FlowID(c.Param("flowID"))
	res, err := s.engine.GetNextStep(
		c.Request.Context(), flowID, req.StepID, req.StepData,
	)
	if err == nil {
		c.JSON(http.StatusOK, res)
		return
	}

	switch {
	case errors.Is(err, engine.ErrFlowNotFound),
		errors.Is(err, definition.ErrStepNotFound),
		errors.Is(err, definition.ErrDefinitionNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusNotFound,
		})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusInternalServerError,
		})
	}
}

func (s *Server) listEntries(c *gin.Context) {
	entries, err := s.engine.ListEntries(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %v", ErrListEntries, err),
			Status: http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, api.EntriesListResponse{
		Entries: entries,
		Count:   len(entries),
	})
}

// respondStepResult maps engine errors onto HTTP statuses. A result whose
// field errors are set still returns 200; re-showing a form is not a
// protocol failure
func (s *Server) respondStepResult(
	c *gin.Context, flowID api.FlowID, result *api.StepResult, err error,
) {
	if err == nil {
		c.JSON(http.StatusOK, result)
		return
	}

	switch {
	case errors.Is(err, engine.ErrFlowNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %s", err.Error(), flowID),
			Status: http.StatusNotFound,
		})
	case errors.Is(err, engine.ErrFlowTerminal),
		errors.Is(err, store.ErrFlowBusy):
		c.JSON(http.StatusConflict, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusConflict,
		})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusInternalServerError,
		})
	}
}
