package handlers

import (
	"distress-server/internal/middleware"
	"distress-server/internal/services"
	"distress-server/internal/utils"
	"distress-server/internal/validators"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Users retrieved", users, &utils.Meta{Count: len(users)})
}

func (h *UserHandler) ListUsersByRole(c *gin.Context) {
	users, err := h.userService.ListByRole(c.Request.Context(), middleware.GetIdentity(c), c.Param("role"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponseWithMeta(c, "Users retrieved", users, &utils.Meta{Count: len(users)})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "User retrieved", user)
}

// CreateUser is the admin path for creating accounts, admins included
func (h *UserHandler) CreateUser(c *gin.Context) {
	var request validators.RegisterRequest
	if !bindJSON(c, &request) {
		return
	}

	result, err := h.userService.Create(c.Request.Context(), middleware.GetIdentity(c), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "User created successfully", gin.H{"user": result.User, "token": result.Token})
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var request validators.UserUpdateRequest
	if !bindJSON(c, &request) {
		return
	}

	user, err := h.userService.Update(c.Request.Context(), middleware.GetIdentity(c), id, &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "User updated successfully", user)
}

func (h *UserHandler) HasEmergencyContacts(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	has, err := h.userService.HasEmergencyContacts(c.Request.Context(), middleware.GetIdentity(c), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Emergency contacts checked", gin.H{"hasEmergencyContacts": has})
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), middleware.GetIdentity(c), id); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "User deleted successfully", nil)
}
