package handlers

import (
	"distress-server/internal/middleware"
	"distress-server/internal/services"
	"distress-server/internal/utils"
	"distress-server/internal/validators"

	"github.com/gin-gonic/gin"
)

type DeployHandler struct {
	deployService services.DeployService
}

func NewDeployHandler(deployService services.DeployService) *DeployHandler {
	return &DeployHandler{
		deployService: deployService,
	}
}

func (h *DeployHandler) DeployDrone(c *gin.Context) {
	var request validators.DeployRequest
	if !bindJSON(c, &request) {
		return
	}

	result, err := h.deployService.Deploy(c.Request.Context(), middleware.GetIdentity(c), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, result.Message, result)
}
