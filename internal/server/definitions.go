package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hearthhub/configflow/internal/definition"
	"github.com/hearthhub/configflow/pkg/api"
	"github.com/hearthhub/configflow/pkg/events"
)

var ErrListVersions = errors.New("failed to list definition versions")

// createDefinition stores a new definition version for the domain and
// activates it. Validation failures reject the whole payload; the prior
// active version stays in effect
func (s *Server) createDefinition(c *gin.Context) {
	var def api.FlowDefinition
	if err := c.ShouldBindJSON(&def); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %v", ErrInvalidJSON, err),
			Status: http.StatusBadRequest,
		})
		return
	}

	def.Domain = api.Domain(c.Param("domain"))
	created, err := s.engine.Definitions().CreateFlowDefinition(
		c.Request.Context(), &def,
	)
	if err == nil {
		ev := events.NewFlowEvent(events.EventDefinitionActivated, nil)
		ev.Domain = created.Domain
		ev.Version = created.Version
		s.engine.Hub().Publish(ev)

		c.JSON(http.StatusCreated, created)
		return
	}

	if errors.Is(err, definition.ErrInvalidDefinition) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusBadRequest,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, api.ErrorResponse{
		Error:  err.Error(),
		Status: http.StatusInternalServerError,
	})
}

func (s *Server) getActiveDefinition(c *gin.Context) {
	domain := api.Domain(c.Param("domain"))

	def, err := s.engine.Definitions().GetActiveFlowDefinition(
		c.Request.Context(), domain,
	)
	if err == nil {
		c.JSON(http.StatusOK, def)
		return
	}

	if errors.Is(err, definition.ErrDefinitionNotFound) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %s", err.Error(), domain),
			Status: http.StatusNotFound,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, api.ErrorResponse{
		Error:  err.Error(),
		Status: http.StatusInternalServerError,
	})
}

func (s *Server) listDefinitionVersions(c *gin.Context) {
	domain := api.Domain(c.Param("domain"))

	versions, err := s.engine.Definitions().GetFlowDefinitionVersions(
		c.Request.Context(), domain,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{
			Error:  fmt.Sprintf("%s: %v", ErrListVersions, err),
			Status: http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, api.DefinitionVersionsResponse{
		Domain:   domain,
		Versions: versions,
	})
}
