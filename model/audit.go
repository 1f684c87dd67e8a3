package model

import "time"

// Audit actions recorded by the API.
const (
	AuditActionSignup     = "auth.signup"
	AuditActionLogin      = "auth.login"
	AuditActionLogout     = "auth.logout"
	AuditActionRoleUpdate = "user.role_update"
	AuditActionClear      = "audit.clear"
	AuditActionProductAdd = "product.add"
	AuditActionProductDel = "product.remove"
)

type AuditLog struct {
	ID          int            `json:"id"`
	UserID      *int           `json:"user_id"`
	Action      string         `json:"action"`
	Description string         `json:"description"`
	IPAddress   string         `json:"ip_address"`
	UserAgent   string         `json:"user_agent"`
	Metadata    map[string]any `json:"metadata"`
	CreatedAt   time.Time      `json:"created_at"`
}

// AuditFilter narrows an audit log listing. Zero values mean "no filter".
type AuditFilter struct {
	Page      int
	Limit     int
	UserID    int
	Action    string
	StartDate *time.Time
	EndDate   *time.Time
}

type Pagination struct {
	Current int `json:"current"`
	Pages   int `json:"pages"`
	Total   int `json:"total"`
}

type AuditPage struct {
	Data       []*AuditLog `json:"data"`
	Pagination Pagination  `json:"pagination"`
}
