package handler

import (
	"go-shop-api/common"
	"go-shop-api/model"
	"go-shop-api/service"
	"net/http"
	"strconv"
)

// UserHandler serves administrative account changes.
type UserHandler struct {
	service *service.UserService
	audit   *service.AuditService
}

func NewUserHandler(s *service.UserService, audit *service.AuditService) *UserHandler {
	return &UserHandler{service: s, audit: audit}
}

// UpdateUserRole godoc
// @Summary      Change a user's role
// @Description  Takes effect with the user's next access token.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  int                          true  "User ID"
// @Param        role  body  model.UpdateUserRoleRequest  true  "New role"
// @Success      200  {object}  MessageResponse
// @Failure      400  {object}  common.AppError
// @Failure      403  {object}  common.AppError "Admin privileges required"
// @Failure      404  {object}  common.AppError "User not found"
// @Router       /api/admin/users/{id}/role [put]
func (h *UserHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) *common.AppError {
	targetID, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || targetID <= 0 {
		return common.NewAppError(http.StatusBadRequest, "Invalid user ID in URL path", err)
	}

	var req model.UpdateUserRoleRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	if err := h.service.UpdateUserRole(r.Context(), targetID, req.Role); err != nil {
		return mapServiceError(err)
	}

	adminID, _ := userIDFrom(r)
	recordAudit(h.audit, r, adminID, model.AuditActionRoleUpdate, "User role updated", map[string]any{
		"target_user_id": targetID,
		"role":           req.Role,
	})

	common.WriteJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "User role updated successfully"})
	return nil
}
