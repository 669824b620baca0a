package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	provisioningdomain "github.com/nexusverde/console/internal/provisioning/domain"
)

// ProvisionCompany runs the two-step provisioning workflow: create the
// company record, then ask the provisioning backend for the user accounts.
func (s *Server) ProvisionCompany(c *gin.Context) {
	var form provisioningdomain.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.provisioningSvc.Provision(c.Request.Context(), form)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}
