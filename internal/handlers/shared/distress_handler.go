package handlers

import (
	"distress-server/internal/middleware"
	"distress-server/internal/services"
	"distress-server/internal/utils"
	"distress-server/internal/validators"

	"github.com/gin-gonic/gin"
)

type DistressHandler struct {
	distressService services.DistressService
}

func NewDistressHandler(distressService services.DistressService) *DistressHandler {
	return &DistressHandler{
		distressService: distressService,
	}
}

// CreateDistress files an alert for the caller and notifies their emergency contacts
func (h *DistressHandler) CreateDistress(c *gin.Context) {
	var request validators.CreateDistressRequest
	if !bindJSON(c, &request) {
		return
	}

	alert, err := h.distressService.Create(c.Request.Context(), middleware.GetIdentity(c), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Distress signal sent", alert)
}

func (h *DistressHandler) ListDistress(c *gin.Context) {
	alerts, err := h.distressService.List(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Distress alerts retrieved", alerts, &utils.Meta{Count: len(alerts)})
}

func (h *DistressHandler) ListUserDistress(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	alerts, err := h.distressService.ListByUser(c.Request.Context(), middleware.GetIdentity(c), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Distress alerts retrieved", alerts, &utils.Meta{Count: len(alerts)})
}

func (h *DistressHandler) GetDistress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	alert, err := h.distressService.Get(c.Request.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Distress alert retrieved", alert)
}

func (h *DistressHandler) UpdateDistress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var request validators.UpdateDistressRequest
	if !bindJSON(c, &request) {
		return
	}

	alert, err := h.distressService.Update(c.Request.Context(), middleware.GetIdentity(c), id, &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Distress alert updated", alert)
}

func (h *DistressHandler) DeleteDistress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.distressService.Delete(c.Request.Context(), middleware.GetIdentity(c), id); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Distress alert deleted", nil)
}

// EscalateDistress is public: whoever holds the alert id may escalate it once.
func (h *DistressHandler) EscalateDistress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var request validators.EscalateRequest
	if !bindOptionalJSON(c, &request) {
		return
	}

	alert, err := h.distressService.Escalate(c.Request.Context(), id, &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Distress alert escalated", alert)
}
