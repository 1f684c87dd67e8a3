package handler

import (
	"go-shop-api/common"
	"go-shop-api/model"
	"go-shop-api/service"
	"net/http"
	"strconv"
	"time"
)

// AuditHandler exposes the audit trail to administrators.
type AuditHandler struct {
	service *service.AuditService
}

func NewAuditHandler(s *service.AuditService) *AuditHandler {
	return &AuditHandler{service: s}
}

type auditListResponse struct {
	Success    bool              `json:"success"`
	Data       []*model.AuditLog `json:"data"`
	Pagination model.Pagination  `json:"pagination"`
}

// ListAuditLogs godoc
// @Summary      List audit logs
// @Description  Newest first. limit is clamped to [1,50]; action matches case-insensitively as a substring.
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        page        query  int     false  "Page number (default 1)"
// @Param        limit       query  int     false  "Page size (default 10, max 50)"
// @Param        user_id     query  int     false  "Only entries for this user"
// @Param        action      query  string  false  "Action substring"
// @Param        start_date  query  string  false  "RFC 3339 timestamp or YYYY-MM-DD"
// @Param        end_date    query  string  false  "RFC 3339 timestamp or YYYY-MM-DD (inclusive)"
// @Success      200  {object}  auditListResponse
// @Failure      400  {object}  common.AppError
// @Failure      401  {object}  common.AppError
// @Failure      403  {object}  common.AppError
// @Router       /api/audit-logs [get]
func (h *AuditHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) *common.AppError {
	filter, appErr := parseAuditFilter(r)
	if appErr != nil {
		return appErr
	}

	page, err := h.service.List(r.Context(), filter)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Error fetching audit logs", err)
	}

	common.WriteJSON(w, http.StatusOK, auditListResponse{
		Success:    true,
		Data:       page.Data,
		Pagination: page.Pagination,
	})
	return nil
}

// ClearAuditLogs godoc
// @Summary      Delete all audit logs
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  MessageResponse
// @Failure      401  {object}  common.AppError
// @Failure      403  {object}  common.AppError
// @Router       /api/audit-logs [delete]
func (h *AuditHandler) ClearAuditLogs(w http.ResponseWriter, r *http.Request) *common.AppError {
	n, err := h.service.Clear(r.Context())
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Error clearing logs", err)
	}

	userID, _ := userIDFrom(r)
	recordAudit(h.service, r, userID, model.AuditActionClear, "All audit logs cleared", map[string]any{"deleted": n})

	common.WriteJSON(w, http.StatusOK, MessageResponse{Success: true, Message: "All audit logs cleared"})
	return nil
}

// parseAuditFilter reads listing parameters. Unparseable page/limit fall
// back to defaults; malformed filters are rejected.
func parseAuditFilter(r *http.Request) (model.AuditFilter, *common.AppError) {
	q := r.URL.Query()
	var f model.AuditFilter

	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))
	f.Action = q.Get("action")

	if v := q.Get("user_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			return f, common.NewAppError(http.StatusBadRequest, "Invalid user_id", nil)
		}
		f.UserID = id
	}

	if v := q.Get("start_date"); v != "" {
		t, err := parseDate(v, false)
		if err != nil {
			return f, common.NewAppError(http.StatusBadRequest, "Invalid start_date", nil)
		}
		f.StartDate = &t
	}
	if v := q.Get("end_date"); v != "" {
		t, err := parseDate(v, true)
		if err != nil {
			return f, common.NewAppError(http.StatusBadRequest, "Invalid end_date", nil)
		}
		f.EndDate = &t
	}

	return service.NormalizeAuditFilter(f), nil
}

// parseDate accepts RFC 3339 or a bare date. A bare end date covers the
// whole day.
func parseDate(v string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

func recordAudit(audit *service.AuditService, r *http.Request, userID int, action, description string, metadata map[string]any) {
	if audit == nil {
		return
	}
	entry := &model.AuditLog{
		Action:      action,
		Description: description,
		IPAddress:   clientIP(r),
		UserAgent:   r.UserAgent(),
		Metadata:    metadata,
	}
	if userID > 0 {
		entry.UserID = &userID
	}
	audit.Record(r.Context(), entry)
}
